package visuals

import (
	"strings"
	"testing"

	"invopt-mcp/internal/forecast"
	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/planning"
	"invopt-mcp/internal/policy"
	"invopt-mcp/internal/scenario"
)

func TestGenerateForecastChart(t *testing.T) {
	res := forecast.Result{
		Historical: []forecast.Point{{Period: "2026-07", Quantity: 10}, {Period: "2026-08", Quantity: 12}},
		Forecast:   []forecast.Point{{Period: "2026-09", Quantity: 14}},
	}
	chart := GenerateForecastChart(res)

	if !strings.HasPrefix(chart, "```mermaid\nxychart-beta") || !strings.HasSuffix(chart, "```") {
		t.Fatalf("expected fenced xychart, got %q", chart)
	}
	if !strings.Contains(chart, `x-axis ["2026-07", "2026-08", "2026-09"]`) {
		t.Errorf("expected all periods on the x-axis, got %q", chart)
	}
	if !strings.Contains(chart, "bar [10.0, 12.0, 0]") || !strings.Contains(chart, "line [0, 12.0, 14.0]") {
		t.Errorf("expected history bars and a joined projection line, got %q", chart)
	}
	if !strings.Contains(chart, "0 --> 17") {
		t.Errorf("expected 20%% headroom on the y-axis, got %q", chart)
	}
}

func TestGenerateForecastChart_Empty(t *testing.T) {
	if got := GenerateForecastChart(forecast.Result{}); got != "" {
		t.Errorf("expected empty chart, got %q", got)
	}
	onlyForecast := GenerateForecastChart(forecast.Result{Forecast: []forecast.Point{{Period: "2026-11", Quantity: 0}}})
	if !strings.Contains(onlyForecast, "0 --> 1") {
		t.Errorf("expected a minimum axis of 1, got %q", onlyForecast)
	}
}

func TestGenerateScenarioChart(t *testing.T) {
	cmp := scenario.Comparison{
		Baseline:     scenario.Outcome{Scenario: "baseline", KPI: policy.KPI{TotalCost: 100}},
		Alternatives: []scenario.Outcome{{Scenario: `say "hi"`, KPI: policy.KPI{TotalCost: 50}}},
	}
	chart := GenerateScenarioChart(cmp)
	if !strings.Contains(chart, `x-axis ["baseline", "say 'hi'"]`) {
		t.Errorf("expected sanitized scenario labels, got %q", chart)
	}
	if !strings.Contains(chart, "bar [100.00, 50.00]") {
		t.Errorf("expected cost bars, got %q", chart)
	}
}

func TestGenerateLeadTimeChart(t *testing.T) {
	sim := policy.LeadTimeSimulation{Outcomes: []policy.LeadTimeOutcome{
		{LeadTimeDays: 7, StockoutRisk: 0.05, ResidualRisk: 0.01},
		{LeadTimeDays: 14, StockoutRisk: 0.5, ResidualRisk: 0.02},
	}}
	chart := GenerateLeadTimeChart(sim)
	if !strings.Contains(chart, `x-axis ["7d", "14d"]`) || !strings.Contains(chart, "line [5.0, 50.0]") {
		t.Errorf("unexpected lead time chart %q", chart)
	}
	if GenerateLeadTimeChart(policy.LeadTimeSimulation{}) != "" {
		t.Error("expected empty chart without outcomes")
	}
}

func TestGeneratePurchasePlanChart_Limit(t *testing.T) {
	var plan planning.PurchasePlan
	for i := 0; i < 30; i++ {
		plan.Items = append(plan.Items, planning.PurchasePlanItem{Variant: inventory.Variant{ID: "v"}, RecommendedOrderQuantity: 1})
	}
	chart := GeneratePurchasePlanChart(plan)
	if got := strings.Count(chart, `"v"`); got != maxBars {
		t.Errorf("expected %d bars, got %d", maxBars, got)
	}
}
