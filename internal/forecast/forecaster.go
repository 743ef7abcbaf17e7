package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/stats"
)

const (
	DefaultAlpha        = 0.3
	DefaultBeta         = 0.1
	DefaultSeasonLength = 12
	// MaxPeriods bounds the forecast horizon.
	MaxPeriods = 60
)

// ErrInvalidParameters is returned when forecast parameters are out of range.
var ErrInvalidParameters = errors.New("invalid forecast parameters")

// Parameters controls a forecast run. Nil smoothing values fall back to the defaults.
type Parameters struct {
	Periods            int      `json:"periods"`
	Alpha              *float64 `json:"alpha,omitempty"`
	Beta               *float64 `json:"beta,omitempty"`
	SeasonLength       *int     `json:"season_length,omitempty"`
	IncludeSeasonality bool     `json:"include_seasonality"`
}

// Validate checks ranges without applying defaults.
func (p Parameters) Validate() error {
	if p.Periods < 1 || p.Periods > MaxPeriods {
		return fmt.Errorf("%w: periods must be between 1 and %d, got %d", ErrInvalidParameters, MaxPeriods, p.Periods)
	}
	if p.Alpha != nil && !(*p.Alpha >= 0 && *p.Alpha <= 1) {
		return fmt.Errorf("%w: alpha must be within [0,1], got %v", ErrInvalidParameters, *p.Alpha)
	}
	if p.Beta != nil && !(*p.Beta >= 0 && *p.Beta <= 1) {
		return fmt.Errorf("%w: beta must be within [0,1], got %v", ErrInvalidParameters, *p.Beta)
	}
	if p.SeasonLength != nil && *p.SeasonLength < 1 {
		return fmt.Errorf("%w: season length must be >= 1, got %d", ErrInvalidParameters, *p.SeasonLength)
	}
	return nil
}

func (p Parameters) alpha() float64 {
	if p.Alpha == nil {
		return DefaultAlpha
	}
	return *p.Alpha
}

func (p Parameters) beta() float64 {
	if p.Beta == nil {
		return DefaultBeta
	}
	return *p.Beta
}

func (p Parameters) seasonLength() int {
	if p.SeasonLength == nil {
		return DefaultSeasonLength
	}
	return *p.SeasonLength
}

// Point is one labelled period of demand.
type Point struct {
	Period   string  `json:"period"`
	Quantity float64 `json:"quantity"`
	Factor   float64 `json:"seasonal_factor,omitempty"`
}

// Result pairs the historical monthly series with the projection built from it.
type Result struct {
	Historical   []Point `json:"historical"`
	Forecast     []Point `json:"forecast"`
	Alpha        float64 `json:"alpha"`
	Beta         float64 `json:"beta"`
	SeasonLength int     `json:"season_length"`
	Level        float64 `json:"level"`
	Trend        float64 `json:"trend"`
}

// Total is the summed forecast quantity over the horizon.
func (r Result) Total() float64 {
	total := 0.0
	for _, p := range r.Forecast {
		total += p.Quantity
	}
	return stats.RoundQuantity(total)
}

// Request is the full input of a forecast run. AsOf anchors the horizon when
// there is no history and decides which seasonal factors are effective.
type Request struct {
	History         []inventory.Observation
	SeasonalFactors []inventory.SeasonalFactor
	Parameters      Parameters
	AsOf            time.Time
}

// Run fits Holt's linear trend model to the monthly series and projects
// Parameters.Periods months past the last observed month.
func Run(req Request) (Result, error) {
	params := req.Parameters
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	series := stats.MonthlySeries(req.History)
	res := Result{
		Historical:   make([]Point, len(series)),
		Forecast:     make([]Point, 0, params.Periods),
		Alpha:        params.alpha(),
		Beta:         params.beta(),
		SeasonLength: params.seasonLength(),
	}
	for i, p := range series {
		res.Historical[i] = Point{Period: p.Label(), Quantity: stats.RoundQuantity(p.Quantity)}
	}

	level, trend := holt(stats.Quantities(series), res.Alpha, res.Beta)
	res.Level = stats.RoundQuantity(level)
	res.Trend = stats.RoundQuantity(trend)

	start := stats.MonthStart(req.AsOf)
	if len(series) > 0 {
		start = series[len(series)-1].Month
	}

	factors := seasonalLookup(req.SeasonalFactors, req.AsOf)

	for h := 1; h <= params.Periods; h++ {
		target := start.AddDate(0, h, 0)
		raw := level + float64(h)*trend

		factor := 1.0
		if params.IncludeSeasonality {
			if f, ok := factors[sequenceOf(target, res.SeasonLength)]; ok {
				factor = f
			}
		}

		point := Point{
			Period:   target.Format("2006-01"),
			Quantity: stats.RoundQuantity(math.Max(0, raw*factor)),
		}
		if params.IncludeSeasonality {
			point.Factor = factor
		}
		res.Forecast = append(res.Forecast, point)
	}

	return res, nil
}

// holt returns the final level and trend after smoothing values.
// Empty input gives (0, 0); a single value gives a flat model.
func holt(values []float64, alpha, beta float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	level := values[0]
	trend := 0.0
	if len(values) > 1 {
		trend = values[1] - values[0]
	}

	for _, y := range values[1:] {
		prevLevel := level
		level = alpha*y + (1-alpha)*(prevLevel+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}
	return level, trend
}

// seasonalLookup keeps the factors effective at asOf, keyed by sequence.
// When several overlap, the last one in input order wins.
func seasonalLookup(factors []inventory.SeasonalFactor, asOf time.Time) map[int]float64 {
	out := make(map[int]float64, len(factors))
	for _, f := range factors {
		if f.Sequence < 1 || f.Factor < 0 || !f.EffectiveAt(asOf) {
			continue
		}
		out[f.Sequence] = f.Factor
	}
	return out
}

func sequenceOf(month time.Time, seasonLength int) int {
	if seasonLength <= 0 {
		seasonLength = DefaultSeasonLength
	}
	return (int(month.Month())-1)%seasonLength + 1
}
