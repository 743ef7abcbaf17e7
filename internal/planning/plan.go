package planning

import (
	"context"
	"math"
	"time"

	"invopt-mcp/internal/forecast"
	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/policy"
	"invopt-mcp/internal/stats"

	"github.com/rs/zerolog/log"
)

// PlanRequest asks for purchase recommendations over a set of variants.
type PlanRequest struct {
	VariantIDs  []string            `json:"variant_ids"`
	Forecast    forecast.Parameters `json:"forecast"`
	Assumptions Assumptions         `json:"assumptions"`
}

// PurchasePlanItem is the recommendation for one variant with its supporting figures.
type PurchasePlanItem struct {
	Variant                  inventory.Variant      `json:"variant"`
	ForecastPeriods          int                    `json:"forecast_periods"`
	ForecastedDemand         float64                `json:"forecasted_demand"`
	Demand                   stats.DemandStatistics `json:"demand"`
	Parameters               Parameters             `json:"parameters"`
	SafetyStock              float64                `json:"safety_stock"`
	ReorderPoint             float64                `json:"reorder_point"`
	OnHand                   float64                `json:"on_hand"`
	Reserved                 float64                `json:"reserved"`
	Available                float64                `json:"available"`
	RecommendedOrderQuantity float64                `json:"recommended_order_quantity"`
	UnitPrice                float64                `json:"unit_price"`
	EstimatedOrderValue      float64                `json:"estimated_order_value"`
	Currency                 string                 `json:"currency"`
}

// PurchasePlan lists one item per requested variant, in request order.
type PurchasePlan struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Items       []PurchasePlanItem `json:"items"`
}

// TotalOrderValue sums the estimated value of every item.
func (p PurchasePlan) TotalOrderValue() float64 {
	total := 0.0
	for _, it := range p.Items {
		total += it.EstimatedOrderValue
	}
	return stats.RoundQuantity(total)
}

// PlanItem turns a forecast total and a policy input into a purchase recommendation.
// The quantity covers the forecast horizon plus the reorder point net of available stock.
func PlanItem(in policy.Input, forecastTotal float64) (policy.Policy, float64) {
	p := policy.Calculate(in)
	qty := math.Max(0, stats.Finite(forecastTotal)+p.ReorderPoint-p.Available)
	return p, stats.RoundQuantity(qty)
}

// GeneratePurchasePlan forecasts every variant and converts forecast and stock
// position into a recommended order quantity. Variants without data still get an item.
func (s *Service) GeneratePurchasePlan(ctx context.Context, req PlanRequest) (PurchasePlan, error) {
	fp, err := s.forecastParameters(req.Forecast)
	if err != nil {
		return PurchasePlan{}, err
	}
	if err := req.Assumptions.Validate(); err != nil {
		return PurchasePlan{}, err
	}
	snaps, err := s.load(ctx, req.VariantIDs)
	if err != nil {
		return PurchasePlan{}, err
	}

	now := s.now()
	items := make([]PurchasePlanItem, len(snaps))
	err = forEach(ctx, s.defaults.Concurrency, len(snaps), func(i int) error {
		snap := snaps[i]
		an, params, in, err := s.prepare(snap, fp, req.Assumptions, now)
		if err != nil {
			return err
		}
		total := an.forecast.Total()
		p, qty := PlanItem(in, total)

		items[i] = PurchasePlanItem{
			Variant:                  snap.Variant,
			ForecastPeriods:          len(an.forecast.Forecast),
			ForecastedDemand:         total,
			Demand:                   an.demand,
			Parameters:               params,
			SafetyStock:              p.SafetyStock,
			ReorderPoint:             p.ReorderPoint,
			OnHand:                   stats.RoundQuantity(snap.Stock.OnHand),
			Reserved:                 stats.RoundQuantity(snap.Stock.Reserved),
			Available:                p.Available,
			RecommendedOrderQuantity: qty,
			UnitPrice:                p.UnitPrice,
			EstimatedOrderValue:      stats.RoundQuantity(qty * p.UnitPrice),
			Currency:                 p.Currency,
		}
		return nil
	})
	if err != nil {
		return PurchasePlan{}, err
	}

	log.Info().Int("items", len(items)).Msg("Purchase plan generated")
	return PurchasePlan{GeneratedAt: now, Items: items}, nil
}
