package planning

import (
	"context"
	"fmt"
	"time"

	"invopt-mcp/internal/forecast"
	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/policy"
	"invopt-mcp/internal/scenario"
	"invopt-mcp/internal/simulation"
	"invopt-mcp/internal/stats"

	"github.com/rs/zerolog/log"
)

// OptimizeRequest asks for stress-tested stocking policies over a set of variants.
type OptimizeRequest struct {
	VariantIDs  []string            `json:"variant_ids"`
	Forecast    forecast.Parameters `json:"forecast"`
	Assumptions Assumptions         `json:"assumptions"`
	Iterations  int                 `json:"iterations"`
	Seed        *int64              `json:"seed,omitempty"`
}

// Recommendation is the policy, analytic KPI and simulated summary of one variant.
type Recommendation struct {
	Variant    inventory.Variant      `json:"variant"`
	Parameters Parameters             `json:"parameters"`
	Demand     stats.DemandStatistics `json:"demand"`
	Policy     policy.Policy          `json:"policy"`
	KPI        policy.KPI             `json:"kpi"`
	Simulation simulation.Summary     `json:"simulation"`
}

// RecommendationSet lists one recommendation per requested variant, in request order.
type RecommendationSet struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Recommend computes and simulates a policy for every requested variant.
func (s *Service) Recommend(ctx context.Context, req OptimizeRequest) (RecommendationSet, error) {
	fp, err := s.forecastParameters(req.Forecast)
	if err != nil {
		return RecommendationSet{}, err
	}
	if err := req.Assumptions.Validate(); err != nil {
		return RecommendationSet{}, err
	}
	snaps, err := s.load(ctx, req.VariantIDs)
	if err != nil {
		return RecommendationSet{}, err
	}

	now := s.now()
	opts := s.simulationOptions(req.Iterations, req.Seed)
	recs := make([]Recommendation, len(snaps))
	err = forEach(ctx, s.defaults.Concurrency, len(snaps), func(i int) error {
		an, params, in, err := s.prepare(snaps[i], fp, req.Assumptions, now)
		if err != nil {
			return err
		}
		out := scenario.Evaluate(scenario.BaselineName, in, opts)
		recs[i] = Recommendation{
			Variant:    snaps[i].Variant,
			Parameters: params,
			Demand:     an.demand,
			Policy:     out.Policy,
			KPI:        out.KPI,
			Simulation: out.Simulation,
		}
		return nil
	})
	if err != nil {
		return RecommendationSet{}, err
	}

	log.Info().Int("variants", len(recs)).Int("iterations", opts.Iterations).Int64("seed", opts.Seed).Msg("Optimization complete")
	return RecommendationSet{GeneratedAt: now, Recommendations: recs}, nil
}

// CompareRequest asks for a baseline-vs-alternatives comparison of one variant.
type CompareRequest struct {
	VariantID   string                `json:"variant_id"`
	Forecast    forecast.Parameters   `json:"forecast"`
	Assumptions Assumptions           `json:"assumptions"`
	Scenarios   []scenario.Adjustment `json:"scenarios"`
	Iterations  int                   `json:"iterations"`
	Seed        *int64                `json:"seed,omitempty"`
}

// CompareScenarios evaluates the resolved baseline of one variant and every adjustment over it.
func (s *Service) CompareScenarios(ctx context.Context, req CompareRequest) (scenario.Comparison, error) {
	fp, err := s.forecastParameters(req.Forecast)
	if err != nil {
		return scenario.Comparison{}, err
	}
	if err := req.Assumptions.Validate(); err != nil {
		return scenario.Comparison{}, err
	}
	for i, adj := range req.Scenarios {
		if err := validateAdjustment(adj); err != nil {
			return scenario.Comparison{}, fmt.Errorf("scenario %d: %w", i, err)
		}
	}
	snap, err := s.loadOne(ctx, req.VariantID)
	if err != nil {
		return scenario.Comparison{}, err
	}

	now := s.now()
	_, _, base, err := s.prepare(snap, fp, req.Assumptions, now)
	if err != nil {
		return scenario.Comparison{}, err
	}
	return scenario.Compare(base, req.Scenarios, s.simulationOptions(req.Iterations, req.Seed), now), nil
}

func validateAdjustment(adj scenario.Adjustment) error {
	if adj.Name == "" {
		return invalid("name is required")
	}
	return Assumptions{
		LeadTimeDays:     adj.LeadTimeDays,
		ReviewPeriodDays: adj.ReviewPeriodDays,
		ServiceLevel:     adj.ServiceLevel,
		HoldingCostRate:  adj.HoldingCostRate,
		OrderingCost:     adj.OrderingCost,
		StockoutCost:     adj.StockoutCost,
	}.Validate()
}

// LeadTimeRequest asks how one variant's stocking picture changes across lead times.
type LeadTimeRequest struct {
	VariantID   string              `json:"variant_id"`
	Forecast    forecast.Parameters `json:"forecast"`
	Assumptions Assumptions         `json:"assumptions"`
	Options     []float64           `json:"lead_time_options"`
}

// LeadTimeReport is the per-lead-time outcome set of one variant.
type LeadTimeReport struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Parameters  Parameters `json:"parameters"`
	policy.LeadTimeSimulation
}

// SimulateLeadTimes evaluates every lead-time option with all other inputs resolved once.
func (s *Service) SimulateLeadTimes(ctx context.Context, req LeadTimeRequest) (LeadTimeReport, error) {
	fp, err := s.forecastParameters(req.Forecast)
	if err != nil {
		return LeadTimeReport{}, err
	}
	if err := req.Assumptions.Validate(); err != nil {
		return LeadTimeReport{}, err
	}
	snap, err := s.loadOne(ctx, req.VariantID)
	if err != nil {
		return LeadTimeReport{}, err
	}

	now := s.now()
	_, params, in, err := s.prepare(snap, fp, req.Assumptions, now)
	if err != nil {
		return LeadTimeReport{}, err
	}
	return LeadTimeReport{
		GeneratedAt:        now,
		Parameters:         params,
		LeadTimeSimulation: policy.SimulateLeadTimes(in, req.Options),
	}, nil
}
