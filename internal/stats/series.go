package stats

import (
	"sort"
	"time"

	"invopt-mcp/internal/inventory"
)

// MonthlyPoint is one calendar month of aggregated demand.
type MonthlyPoint struct {
	Month    time.Time
	Quantity float64
}

// Label renders the month as YYYY-MM.
func (p MonthlyPoint) Label() string {
	return p.Month.Format("2006-01")
}

// MonthStart truncates t to the first instant of its calendar month (UTC).
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlySeries buckets observations by calendar month. The result is
// chronological and contiguous: months between the first and last
// observation without any demand appear with quantity 0.
func MonthlySeries(observations []inventory.Observation) []MonthlyPoint {
	if len(observations) == 0 {
		return nil
	}

	totals := make(map[time.Time]float64)
	for _, o := range observations {
		totals[MonthStart(o.Period)] += o.Quantity
	}

	months := make([]time.Time, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	first, last := months[0], months[len(months)-1]
	series := make([]MonthlyPoint, 0, len(months))
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		series = append(series, MonthlyPoint{Month: m, Quantity: totals[m]})
	}
	return series
}

// Quantities extracts the quantity column of a series.
func Quantities(series []MonthlyPoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Quantity
	}
	return out
}

func tail(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
