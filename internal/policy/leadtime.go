package policy

import (
	"math"

	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/stats"
)

// DefaultLeadTimeOptions are evaluated when the caller supplies none.
var DefaultLeadTimeOptions = []float64{7, 14, 21, 30, 45, 60}

// LeadTimeOutcome is the stocking picture for one candidate lead time.
type LeadTimeOutcome struct {
	LeadTimeDays             float64 `json:"lead_time_days"`
	Coverage                 float64 `json:"coverage"`
	SafetyStock              float64 `json:"safety_stock"`
	ReorderPoint             float64 `json:"reorder_point"`
	StockoutRisk             float64 `json:"stockout_risk"`
	ResidualRisk             float64 `json:"residual_risk"`
	RecommendedOrderQuantity float64 `json:"recommended_order_quantity"`
}

// LeadTimeSimulation collects outcomes for every lead-time option, in caller order.
type LeadTimeSimulation struct {
	Variant            inventory.Variant `json:"variant"`
	Available          float64           `json:"available"`
	AverageDailyDemand float64           `json:"average_daily_demand"`
	DemandStdDev       float64           `json:"demand_std_dev"`
	ReviewPeriodDays   float64           `json:"review_period_days"`
	ServiceLevel       float64           `json:"service_level"`
	Outcomes           []LeadTimeOutcome `json:"outcomes"`
}

// SimulateLeadTimes re-derives safety stock, reorder point and risk for each
// lead time while every other input stays fixed. in.LeadTimeDays is ignored.
func SimulateLeadTimes(in Input, options []float64) LeadTimeSimulation {
	in = Normalize(in)
	if len(options) == 0 {
		options = DefaultLeadTimeOptions
	}

	available := in.Available()
	d, sd, review := in.AverageDailyDemand, in.DemandStdDev, in.ReviewPeriodDays

	sim := LeadTimeSimulation{
		Variant:            in.Variant,
		Available:          stats.RoundQuantity(available),
		AverageDailyDemand: stats.RoundRate(d),
		DemandStdDev:       stats.RoundRate(sd),
		ReviewPeriodDays:   review,
		ServiceLevel:       stats.RoundRate(in.TargetServiceLevel),
		Outcomes:           make([]LeadTimeOutcome, 0, len(options)),
	}

	for _, lt := range options {
		lt = math.Max(MinLeadTimeDays, stats.Finite(lt))

		variant := in
		variant.LeadTimeDays = lt
		p := Calculate(variant)

		leadDemand := d * lt
		coverage := 0.0
		if leadDemand > 0 {
			coverage = available / leadDemand
		}

		// Order up to cover lead time plus the next review period
		qty := math.Max(0, d*(lt+review)+p.SafetyStock-available)

		residual := 0.0
		if d > 0 {
			sigma := sd * math.Sqrt(lt+review)
			residual = stats.Clamp(1-stats.NormalCDF((available+qty-d*(lt+review))/sigma), 0, 1)
		}

		sim.Outcomes = append(sim.Outcomes, LeadTimeOutcome{
			LeadTimeDays:             lt,
			Coverage:                 stats.RoundRate(coverage),
			SafetyStock:              p.SafetyStock,
			ReorderPoint:             p.ReorderPoint,
			StockoutRisk:             stats.RoundRate(LeadTimeExposure(available, d, sd, lt)),
			ResidualRisk:             stats.RoundRate(residual),
			RecommendedOrderQuantity: stats.RoundQuantity(qty),
		})
	}

	return sim
}
