package planning

import (
	"invopt-mcp/internal/simulation"
	"invopt-mcp/internal/stats"
)

// FallbackServiceLevel is used when neither the request, the classification
// nor the configured class table yields a service level.
const FallbackServiceLevel = 0.95

// Defaults are the global fallbacks of the parameter precedence chain.
type Defaults struct {
	LeadTimeDays     float64            `mapstructure:"lead_time_days" json:"lead_time_days"`
	ReviewPeriodDays float64            `mapstructure:"review_period_days" json:"review_period_days"`
	ServiceLevel     float64            `mapstructure:"service_level" json:"service_level"`
	ServiceLevels    map[string]float64 `mapstructure:"service_levels" json:"service_levels"`
	HoldingCostRate  float64            `mapstructure:"holding_cost_rate" json:"holding_cost_rate"`
	OrderingCost     float64            `mapstructure:"ordering_cost" json:"ordering_cost"`
	StockoutCost     float64            `mapstructure:"stockout_cost" json:"stockout_cost"`
	ForecastPeriods  int                `mapstructure:"forecast_periods" json:"forecast_periods"`
	StatsWindow      int                `mapstructure:"stats_window" json:"stats_window"`
	Iterations       int                `mapstructure:"iterations" json:"iterations"`
	Seed             int64              `mapstructure:"seed" json:"seed"`
	Concurrency      int                `mapstructure:"concurrency" json:"concurrency"`
}

// DefaultDefaults returns the built-in planning defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		LeadTimeDays:     14,
		ReviewPeriodDays: 30,
		ServiceLevel:     FallbackServiceLevel,
		ServiceLevels:    map[string]float64{"A": 0.98, "B": 0.95, "C": 0.90},
		HoldingCostRate:  0.2,
		OrderingCost:     50,
		StockoutCost:     0,
		ForecastPeriods:  3,
		StatsWindow:      stats.DefaultWindow,
		Iterations:       simulation.DefaultIterations,
		Seed:             42,
		Concurrency:      4,
	}
}

// withFallbacks fills zero values so a partially configured Defaults is still usable.
func (d Defaults) withFallbacks() Defaults {
	def := DefaultDefaults()
	if d.LeadTimeDays <= 0 {
		d.LeadTimeDays = def.LeadTimeDays
	}
	if d.ReviewPeriodDays <= 0 {
		d.ReviewPeriodDays = def.ReviewPeriodDays
	}
	if d.ServiceLevel <= 0 || d.ServiceLevel >= 1 {
		d.ServiceLevel = def.ServiceLevel
	}
	if d.ServiceLevels == nil {
		d.ServiceLevels = def.ServiceLevels
	}
	if d.HoldingCostRate <= 0 {
		d.HoldingCostRate = def.HoldingCostRate
	}
	if d.OrderingCost < 0 {
		d.OrderingCost = def.OrderingCost
	}
	if d.StockoutCost < 0 {
		d.StockoutCost = def.StockoutCost
	}
	if d.ForecastPeriods <= 0 {
		d.ForecastPeriods = def.ForecastPeriods
	}
	if d.StatsWindow <= 0 {
		d.StatsWindow = def.StatsWindow
	}
	if d.Iterations <= 0 {
		d.Iterations = def.Iterations
	}
	if d.Concurrency <= 0 {
		d.Concurrency = def.Concurrency
	}
	return d
}
