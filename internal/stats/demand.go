package stats

import (
	"math"
	"sort"

	"invopt-mcp/internal/inventory"
)

const (
	// DaysPerMonth converts monthly figures to daily ones.
	DaysPerMonth = 30.0
	// MinDemandStdDev is the floor applied to the daily standard deviation
	// handed to policy calculations.
	MinDemandStdDev = 0.01
	// DefaultWindow is the number of most recent monthly periods used.
	DefaultWindow = 6
)

// Demand statistic sources, in order of preference.
const (
	SourceAggregates = "aggregates"
	SourceHistory    = "history"
	SourceForecast   = "forecast"
	SourceNone       = "none"
)

// DemandStatistics summarises demand rate and variability for one variant.
type DemandStatistics struct {
	Source               string  `json:"source"`
	Periods              int     `json:"periods"`
	AverageMonthlyDemand float64 `json:"average_monthly_demand"`
	MonthlyStdDev        float64 `json:"monthly_std_dev"`
	AverageDailyDemand   float64 `json:"average_daily_demand"`
	DailyStdDev          float64 `json:"daily_std_dev"`
}

// DemandInput is what the aggregator reduces. Aggregates win over History;
// the forecast figures are only used when neither holds any data.
type DemandInput struct {
	History         []inventory.Observation
	Aggregates      []inventory.MonthlyAggregate
	Window          int
	ForecastTotal   float64
	ForecastPeriods int
}

// AggregateDemand reduces history into average demand and variability.
// It never fails: missing data yields zero demand with the std dev floor.
func AggregateDemand(in DemandInput) DemandStatistics {
	window := in.Window
	if window <= 0 {
		window = DefaultWindow
	}

	var values []float64
	source := SourceNone

	// 1. Prefer pre-aggregated monthly totals
	if len(in.Aggregates) > 0 {
		aggs := make([]inventory.MonthlyAggregate, len(in.Aggregates))
		copy(aggs, in.Aggregates)
		sort.SliceStable(aggs, func(i, j int) bool { return aggs[i].Period.Before(aggs[j].Period) })
		for _, a := range aggs {
			values = append(values, a.Quantity)
		}
		values = tail(values, window)
		source = SourceAggregates
	} else if len(in.History) > 0 {
		// 2. Fall back to raw history bucketed by month
		values = tail(Quantities(MonthlySeries(in.History)), window)
		source = SourceHistory
	}

	res := DemandStatistics{Source: source, Periods: len(values)}

	switch {
	case len(values) > 0:
		res.AverageMonthlyDemand = Mean(values)
		res.MonthlyStdDev = SampleStdDev(values)
	case in.ForecastPeriods > 0:
		// 3. Nothing observed: derive the rate from the forecast itself
		res.Source = SourceForecast
		res.AverageMonthlyDemand = in.ForecastTotal / float64(in.ForecastPeriods)
	}

	res.AverageMonthlyDemand = math.Max(0, Finite(res.AverageMonthlyDemand))
	res.AverageDailyDemand = RoundRate(res.AverageMonthlyDemand / DaysPerMonth)
	res.DailyStdDev = RoundRate(FloorStdDev(res.MonthlyStdDev / DaysPerMonth))
	res.AverageMonthlyDemand = RoundRate(res.AverageMonthlyDemand)
	res.MonthlyStdDev = RoundRate(res.MonthlyStdDev)
	return res
}

// FloorStdDev applies MinDemandStdDev to a standard deviation.
func FloorStdDev(sd float64) float64 {
	sd = Finite(sd)
	if sd < MinDemandStdDev {
		return MinDemandStdDev
	}
	return sd
}

// AverageLeadTime returns the mean observed lead time over the aggregates that report one.
func AverageLeadTime(aggregates []inventory.MonthlyAggregate) (float64, bool) {
	var values []float64
	for _, a := range aggregates {
		if a.AverageLeadTimeDays != nil && *a.AverageLeadTimeDays > 0 {
			values = append(values, *a.AverageLeadTimeDays)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	return Mean(values), true
}
