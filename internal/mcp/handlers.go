package mcp

import (
	"context"
	"fmt"
	"strings"

	"invopt-mcp/internal/forecast"
	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/planning"
	"invopt-mcp/internal/scenario"
	"invopt-mcp/internal/stats"
	"invopt-mcp/internal/visuals"
)

// ForecastArgs are the smoothing arguments shared by the forecasting tools.
type ForecastArgs struct {
	Periods            int      `json:"periods,omitempty"`
	Alpha              *float64 `json:"alpha,omitempty"`
	Beta               *float64 `json:"beta,omitempty"`
	SeasonLength       *int     `json:"season_length,omitempty"`
	IncludeSeasonality bool     `json:"include_seasonality,omitempty"`
}

func (a ForecastArgs) parameters() forecast.Parameters {
	return forecast.Parameters{
		Periods:            a.Periods,
		Alpha:              a.Alpha,
		Beta:               a.Beta,
		SeasonLength:       a.SeasonLength,
		IncludeSeasonality: a.IncludeSeasonality,
	}
}

// SimulationArgs control the Monte-Carlo stress test.
type SimulationArgs struct {
	Iterations int    `json:"iterations,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
}

// ListVariantsInput filters the variant catalogue for list_variants.
type ListVariantsInput struct {
	Query string `json:"query,omitempty"`
}

// ForecastDemandInput are the arguments of forecast_demand.
type ForecastDemandInput struct {
	VariantID string `json:"variant_id"`
	ForecastArgs
}

// ForecastBacktestInput are the arguments of forecast_backtest.
type ForecastBacktestInput struct {
	VariantID   string   `json:"variant_id"`
	Alpha       *float64 `json:"alpha,omitempty"`
	Beta        *float64 `json:"beta,omitempty"`
	MinTraining int      `json:"min_training,omitempty"`
}

// PurchasePlanInput are the arguments of generate_purchase_plan.
type PurchasePlanInput struct {
	VariantIDs []string `json:"variant_ids"`
	ForecastArgs
	planning.Assumptions
}

// OptimizeInventoryInput are the arguments of optimize_inventory.
type OptimizeInventoryInput struct {
	VariantIDs []string `json:"variant_ids"`
	ForecastArgs
	planning.Assumptions
	SimulationArgs
}

// CompareScenariosInput are the arguments of compare_scenarios.
type CompareScenariosInput struct {
	VariantID string                `json:"variant_id"`
	Scenarios []scenario.Adjustment `json:"scenarios,omitempty"`
	ForecastArgs
	planning.Assumptions
	SimulationArgs
}

// SimulateLeadTimesInput are the arguments of simulate_lead_times.
type SimulateLeadTimesInput struct {
	VariantID       string    `json:"variant_id"`
	LeadTimeOptions []float64 `json:"lead_time_options,omitempty"`
	ForecastArgs
	planning.Assumptions
}

func (s *Server) handleListVariants(_ context.Context, in ListVariantsInput) (ResponseEnvelope, error) {
	query := strings.ToLower(strings.TrimSpace(in.Query))

	variants := make([]inventory.Variant, 0)
	for _, v := range s.catalog.Variants() {
		if query == "" ||
			strings.Contains(strings.ToLower(v.ID), query) ||
			strings.Contains(strings.ToLower(v.SKU), query) ||
			strings.Contains(strings.ToLower(v.ProductName), query) {
			variants = append(variants, v)
		}
	}

	guidance := ""
	if len(variants) == 0 {
		guidance = "No variants matched. Generate snapshots with 'mockgen' or check SNAPSHOT_DIR."
	}
	return WrapResponse(map[string]any{"count": len(variants), "variants": variants}, guidance), nil
}

func (s *Server) handleForecastDemand(ctx context.Context, in ForecastDemandInput) (ResponseEnvelope, error) {
	rep, err := s.service.Forecast(ctx, planning.ForecastRequest{VariantID: in.VariantID, Parameters: in.parameters()})
	if err != nil {
		return ResponseEnvelope{}, err
	}

	env := WrapResponse(rep, demandGuidance(rep.Demand))
	env.Chart = visuals.GenerateForecastChart(rep.Result)
	return env, nil
}

func (s *Server) handleForecastBacktest(ctx context.Context, in ForecastBacktestInput) (ResponseEnvelope, error) {
	rep, err := s.service.Backtest(ctx, planning.BacktestRequest{
		VariantID:   in.VariantID,
		Parameters:  forecast.Parameters{Periods: 1, Alpha: in.Alpha, Beta: in.Beta},
		MinTraining: in.MinTraining,
	})
	if err != nil {
		return ResponseEnvelope{}, err
	}

	guidance := rep.ValidationMessage
	if guidance == "" && rep.MAPE > 0.5 {
		guidance = fmt.Sprintf("MAPE of %.0f%% indicates erratic demand; treat point forecasts as rough and prefer higher safety stock.", rep.MAPE*100)
	}
	return WrapResponse(rep, guidance), nil
}

func (s *Server) handleGeneratePurchasePlan(ctx context.Context, in PurchasePlanInput) (ResponseEnvelope, error) {
	plan, err := s.service.GeneratePurchasePlan(ctx, planning.PlanRequest{
		VariantIDs:  in.VariantIDs,
		Forecast:    in.parameters(),
		Assumptions: in.Assumptions,
	})
	if err != nil {
		return ResponseEnvelope{}, err
	}

	var guidance []string
	for _, it := range plan.Items {
		if it.Demand.Source == stats.SourceNone || it.Demand.Source == stats.SourceForecast {
			guidance = append(guidance, fmt.Sprintf("%s has no observed demand; its recommendation rests on defaults only.", it.Variant.ID))
		}
	}

	env := WrapResponse(map[string]any{
		"generated_at":      plan.GeneratedAt,
		"items":             plan.Items,
		"total_order_value": plan.TotalOrderValue(),
	}, guidance...)
	env.Chart = visuals.GeneratePurchasePlanChart(plan)
	return env, nil
}

func (s *Server) handleOptimizeInventory(ctx context.Context, in OptimizeInventoryInput) (ResponseEnvelope, error) {
	set, err := s.service.Recommend(ctx, planning.OptimizeRequest{
		VariantIDs:  in.VariantIDs,
		Forecast:    in.parameters(),
		Assumptions: in.Assumptions,
		Iterations:  in.Iterations,
		Seed:        in.Seed,
	})
	if err != nil {
		return ResponseEnvelope{}, err
	}

	var guidance []string
	for _, rec := range set.Recommendations {
		if rec.Simulation.StockoutProbability > 1-rec.Policy.ServiceLevel+0.05 {
			guidance = append(guidance, fmt.Sprintf("%s: simulated stockout probability %.1f%% exceeds the %.1f%% target; available stock is short of lead-time demand.",
				rec.Variant.ID, rec.Simulation.StockoutProbability*100, (1-rec.Policy.ServiceLevel)*100))
		}
	}
	return WrapResponse(set, guidance...), nil
}

func (s *Server) handleCompareScenarios(ctx context.Context, in CompareScenariosInput) (ResponseEnvelope, error) {
	cmp, err := s.service.CompareScenarios(ctx, planning.CompareRequest{
		VariantID:   in.VariantID,
		Forecast:    in.parameters(),
		Assumptions: in.Assumptions,
		Scenarios:   in.Scenarios,
		Iterations:  in.Iterations,
		Seed:        in.Seed,
	})
	if err != nil {
		return ResponseEnvelope{}, err
	}

	guidance := ""
	if len(cmp.Alternatives) == 0 {
		guidance = "No scenarios supplied; only the baseline was evaluated."
	}
	env := WrapResponse(cmp, guidance)
	env.Chart = visuals.GenerateScenarioChart(cmp)
	return env, nil
}

func (s *Server) handleSimulateLeadTimes(ctx context.Context, in SimulateLeadTimesInput) (ResponseEnvelope, error) {
	rep, err := s.service.SimulateLeadTimes(ctx, planning.LeadTimeRequest{
		VariantID:   in.VariantID,
		Forecast:    in.parameters(),
		Assumptions: in.Assumptions,
		Options:     in.LeadTimeOptions,
	})
	if err != nil {
		return ResponseEnvelope{}, err
	}

	env := WrapResponse(rep)
	env.Chart = visuals.GenerateLeadTimeChart(rep.LeadTimeSimulation)
	return env, nil
}

func demandGuidance(d stats.DemandStatistics) string {
	switch d.Source {
	case stats.SourceNone, stats.SourceForecast:
		return "No demand history for this variant; the forecast is flat at zero."
	}
	if d.Periods < 3 {
		return fmt.Sprintf("Only %d month(s) of demand observed; the trend estimate is unreliable.", d.Periods)
	}
	return ""
}
