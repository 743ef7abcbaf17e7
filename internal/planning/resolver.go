package planning

import (
	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/stats"
)

// Origins of a resolved planning parameter.
const (
	OriginRequest        = "request"
	OriginMasterData     = "master_data"
	OriginClassification = "classification"
	OriginAggregates     = "aggregates"
	OriginDefault        = "default"
)

// Assumptions are the caller-supplied logistics and cost parameters. Nil means
// "resolve from data or defaults".
type Assumptions struct {
	LeadTimeDays     *float64 `json:"lead_time_days,omitempty"`
	ReviewPeriodDays *float64 `json:"review_period_days,omitempty"`
	ServiceLevel     *float64 `json:"service_level,omitempty"`
	HoldingCostRate  *float64 `json:"holding_cost_rate,omitempty"`
	OrderingCost     *float64 `json:"ordering_cost,omitempty"`
	StockoutCost     *float64 `json:"stockout_cost,omitempty"`
}

// Validate rejects values no fallback can repair.
func (a Assumptions) Validate() error {
	if a.LeadTimeDays != nil && !(*a.LeadTimeDays > 0) {
		return invalid("lead_time_days must be positive, got %v", *a.LeadTimeDays)
	}
	if a.ReviewPeriodDays != nil && !(*a.ReviewPeriodDays > 0) {
		return invalid("review_period_days must be positive, got %v", *a.ReviewPeriodDays)
	}
	if a.ServiceLevel != nil && !(*a.ServiceLevel > 0 && *a.ServiceLevel < 1) {
		return invalid("service_level must be within (0,1), got %v", *a.ServiceLevel)
	}
	if a.HoldingCostRate != nil && !(*a.HoldingCostRate > 0 && *a.HoldingCostRate <= 1) {
		return invalid("holding_cost_rate must be within (0,1], got %v", *a.HoldingCostRate)
	}
	if a.OrderingCost != nil && !(*a.OrderingCost >= 0) {
		return invalid("ordering_cost must not be negative, got %v", *a.OrderingCost)
	}
	if a.StockoutCost != nil && !(*a.StockoutCost >= 0) {
		return invalid("stockout_cost must not be negative, got %v", *a.StockoutCost)
	}
	return nil
}

// Resolved is a parameter value together with where it came from.
type Resolved struct {
	Value  float64 `json:"value"`
	Origin string  `json:"origin"`
}

// Parameters are the per-variant resolved logistics parameters.
type Parameters struct {
	LeadTimeDays     Resolved `json:"lead_time_days"`
	ReviewPeriodDays Resolved `json:"review_period_days"`
	ServiceLevel     Resolved `json:"service_level"`
	HoldingCostRate  float64  `json:"holding_cost_rate"`
	OrderingCost     float64  `json:"ordering_cost"`
	StockoutCost     float64  `json:"stockout_cost"`
}

// Resolve applies the precedence chain to one variant:
//
//	lead time:     request > master data > aggregate average > default
//	review period: request > default
//	service level: request > classification table > configured class table > default
func (d Defaults) Resolve(snap inventory.VariantSnapshot, a Assumptions) Parameters {
	d = d.withFallbacks()
	return Parameters{
		LeadTimeDays:     d.resolveLeadTime(snap, a.LeadTimeDays),
		ReviewPeriodDays: firstOf(a.ReviewPeriodDays, d.ReviewPeriodDays),
		ServiceLevel:     d.resolveServiceLevel(snap.Classification, a.ServiceLevel),
		HoldingCostRate:  valueOr(a.HoldingCostRate, d.HoldingCostRate),
		OrderingCost:     valueOr(a.OrderingCost, d.OrderingCost),
		StockoutCost:     valueOr(a.StockoutCost, d.StockoutCost),
	}
}

func (d Defaults) resolveLeadTime(snap inventory.VariantSnapshot, requested *float64) Resolved {
	if requested != nil {
		return Resolved{Value: *requested, Origin: OriginRequest}
	}
	if lt := snap.Master.LeadTimeDays; lt != nil && *lt > 0 {
		return Resolved{Value: *lt, Origin: OriginMasterData}
	}
	if avg, ok := stats.AverageLeadTime(snap.Aggregates); ok {
		return Resolved{Value: stats.RoundQuantity(avg), Origin: OriginAggregates}
	}
	return Resolved{Value: d.LeadTimeDays, Origin: OriginDefault}
}

func (d Defaults) resolveServiceLevel(class *inventory.Classification, requested *float64) Resolved {
	if requested != nil {
		return Resolved{Value: *requested, Origin: OriginRequest}
	}
	if class != nil && class.Label != "" {
		if sl, ok := lookupLevel(class.ServiceLevels, class.Label); ok {
			return Resolved{Value: sl, Origin: OriginClassification}
		}
		if sl, ok := lookupLevel(d.ServiceLevels, class.Label); ok {
			return Resolved{Value: sl, Origin: OriginClassification}
		}
	}
	return Resolved{Value: d.ServiceLevel, Origin: OriginDefault}
}

func lookupLevel(table map[string]float64, label string) (float64, bool) {
	sl, ok := table[label]
	if !ok || sl <= 0 || sl >= 1 {
		return 0, false
	}
	return sl, true
}

func firstOf(requested *float64, fallback float64) Resolved {
	if requested != nil {
		return Resolved{Value: *requested, Origin: OriginRequest}
	}
	return Resolved{Value: fallback, Origin: OriginDefault}
}

func valueOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
