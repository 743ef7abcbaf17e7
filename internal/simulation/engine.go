package simulation

import (
	"math"
	"math/rand"

	"invopt-mcp/internal/policy"
	"invopt-mcp/internal/stats"
)

const (
	// MinIterations is the floor applied to Options.Iterations.
	MinIterations = 10
	// MaxIterations bounds the cost of a single call.
	MaxIterations = 100000
	// DefaultIterations is used by callers that do not choose.
	DefaultIterations = 1000
)

// Options controls a simulation run.
type Options struct {
	Iterations int   `json:"iterations"`
	Seed       int64 `json:"seed"`
}

// Summary holds the simulated estimates of a policy.
type Summary struct {
	Iterations          int     `json:"iterations"`
	Seed                int64   `json:"seed"`
	AverageFillRate     float64 `json:"average_fill_rate"`
	AverageTotalCost    float64 `json:"average_total_cost"`
	StockoutProbability float64 `json:"stockout_probability"`
}

// Trial is the outcome of one simulated review cycle.
type Trial struct {
	Demand   float64
	Served   float64
	Ordered  float64
	Cost     float64
	Stockout bool
}

// FillRate is served / demand, or 1 when there was no demand.
func (t Trial) FillRate() float64 {
	if t.Demand <= 0 {
		return 1
	}
	return math.Min(1, t.Served/t.Demand)
}

// Engine performs the Monte-Carlo simulation of one policy.
// An Engine owns its generator and must not be shared between goroutines.
type Engine struct {
	input  policy.Input
	policy policy.Policy
	seed   int64
	rng    *rand.Rand
}

// NewEngine creates an engine whose generator is seeded from seed.
func NewEngine(in policy.Input, p policy.Policy, seed int64) *Engine {
	return &Engine{
		input:  policy.Normalize(in),
		policy: p,
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// SetSeed resets the generator.
func (e *Engine) SetSeed(seed int64) {
	e.seed = seed
	e.rng = rand.New(rand.NewSource(seed))
}

// Simulate runs a fresh engine for opts. The same (input, policy, options)
// always yields the same summary.
func Simulate(in policy.Input, p policy.Policy, opts Options) Summary {
	return NewEngine(in, p, opts.Seed).Run(opts.Iterations)
}

// ClampIterations applies MinIterations and MaxIterations.
func ClampIterations(n int) int {
	if n < MinIterations {
		return MinIterations
	}
	if n > MaxIterations {
		return MaxIterations
	}
	return n
}

// Run performs the requested number of trials and aggregates them.
func (e *Engine) Run(iterations int) Summary {
	iterations = ClampIterations(iterations)

	fillSum, costSum := 0.0, 0.0
	stockouts := 0
	for i := 0; i < iterations; i++ {
		trial := e.simulateTrial()
		fillSum += trial.FillRate()
		costSum += trial.Cost
		if trial.Stockout {
			stockouts++
		}
	}

	n := float64(iterations)
	return Summary{
		Iterations:          iterations,
		Seed:                e.seed,
		AverageFillRate:     stats.RoundRate(fillSum / n),
		AverageTotalCost:    stats.RoundQuantity(costSum / n),
		StockoutProbability: stats.RoundRate(float64(stockouts) / n),
	}
}

// simulateTrial samples lead-time demand and plays one review cycle: every
// review orders up to the max stock level, so supply is
// max(available, max stock level). Costs are annualised over
// 365 / review period cycles.
func (e *Engine) simulateTrial() Trial {
	in, p := e.input, e.policy

	mean := in.AverageDailyDemand * in.LeadTimeDays
	sigma := in.DemandStdDev * math.Sqrt(in.LeadTimeDays)
	demand := math.Max(0, mean+sigma*e.rng.NormFloat64())

	available := math.Max(0, in.Available())
	ordered := math.Max(0, p.MaxStockLevel-available)
	supply := available + ordered

	served := math.Min(demand, supply)
	unmet := demand - served
	cycles := policy.DaysPerYear / in.ReviewPeriodDays

	averageInventory := (supply + (supply - served)) / 2
	holding := averageInventory * in.UnitPrice * in.HoldingCostRate
	ordering := 0.0
	if ordered > 0 {
		ordering = in.OrderingCost * cycles
	}
	shortage := unmet * in.StockoutCost * cycles

	return Trial{
		Demand:   demand,
		Served:   served,
		Ordered:  ordered,
		Cost:     holding + ordering + shortage,
		Stockout: unmet > 1e-9,
	}
}
