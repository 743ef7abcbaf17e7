package scenario

import (
	"time"

	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/policy"
	"invopt-mcp/internal/simulation"
)

// BaselineName labels the unadjusted outcome.
const BaselineName = "baseline"

// Adjustment is a named partial patch over a baseline policy input.
// Nil fields inherit the baseline value.
type Adjustment struct {
	Name             string   `json:"name"`
	ServiceLevel     *float64 `json:"service_level,omitempty"`
	LeadTimeDays     *float64 `json:"lead_time_days,omitempty"`
	ReviewPeriodDays *float64 `json:"review_period_days,omitempty"`
	HoldingCostRate  *float64 `json:"holding_cost_rate,omitempty"`
	OrderingCost     *float64 `json:"ordering_cost,omitempty"`
	StockoutCost     *float64 `json:"stockout_cost,omitempty"`
}

// Apply returns a copy of base with the adjustment's fields applied.
// base itself is not modified.
func (a Adjustment) Apply(base policy.Input) policy.Input {
	out := base
	if a.ServiceLevel != nil {
		out.TargetServiceLevel = *a.ServiceLevel
	}
	if a.LeadTimeDays != nil {
		out.LeadTimeDays = *a.LeadTimeDays
	}
	if a.ReviewPeriodDays != nil {
		out.ReviewPeriodDays = *a.ReviewPeriodDays
	}
	if a.HoldingCostRate != nil {
		out.HoldingCostRate = *a.HoldingCostRate
	}
	if a.OrderingCost != nil {
		out.OrderingCost = *a.OrderingCost
	}
	if a.StockoutCost != nil {
		out.StockoutCost = *a.StockoutCost
	}
	return out
}

// Outcome is the evaluated policy of one scenario.
type Outcome struct {
	Scenario   string             `json:"scenario"`
	Input      policy.Input       `json:"input"`
	Policy     policy.Policy      `json:"policy"`
	KPI        policy.KPI         `json:"kpi"`
	Simulation simulation.Summary `json:"simulation"`
}

// Comparison is the baseline outcome and one alternative per adjustment, in input order.
type Comparison struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	Variant      inventory.Variant `json:"variant"`
	Baseline     Outcome           `json:"baseline"`
	Alternatives []Outcome         `json:"alternatives"`
}

// Evaluate runs the policy calculator and the simulator for one input.
func Evaluate(name string, in policy.Input, opts simulation.Options) Outcome {
	p, kpi := policy.Evaluate(in)
	return Outcome{
		Scenario:   name,
		Input:      in,
		Policy:     p,
		KPI:        kpi,
		Simulation: simulation.Simulate(in, p, opts),
	}
}

// Compare evaluates the baseline and each adjustment. Every scenario is
// simulated with the same options, so differences come from the patch alone.
func Compare(base policy.Input, adjustments []Adjustment, opts simulation.Options, generatedAt time.Time) Comparison {
	cmp := Comparison{
		GeneratedAt:  generatedAt,
		Variant:      base.Variant,
		Baseline:     Evaluate(BaselineName, base, opts),
		Alternatives: make([]Outcome, 0, len(adjustments)),
	}
	for _, adj := range adjustments {
		cmp.Alternatives = append(cmp.Alternatives, Evaluate(adj.Name, adj.Apply(base), opts))
	}
	return cmp
}
