package visuals

import (
	"fmt"
	"math"
	"strings"

	"invopt-mcp/internal/forecast"
	"invopt-mcp/internal/planning"
	"invopt-mcp/internal/policy"
	"invopt-mcp/internal/scenario"
)

// maxBars limits bar charts to keep the text chart readable.
const maxBars = 20

// GenerateForecastChart creates a Mermaid xychart-beta with the historical series followed by the forecast.
func GenerateForecastChart(res forecast.Result) string {
	if len(res.Historical) == 0 && len(res.Forecast) == 0 {
		return ""
	}

	var labels, history, projection []string
	maxY := 0.0

	for _, p := range res.Historical {
		labels = append(labels, quote(p.Period))
		history = append(history, fmt.Sprintf("%.1f", p.Quantity))
		maxY = math.Max(maxY, p.Quantity)
	}
	// The projection line starts at the last observed point so both lines join.
	for range res.Historical[:max(0, len(res.Historical)-1)] {
		projection = append(projection, "0")
	}
	if n := len(res.Historical); n > 0 {
		projection = append(projection, fmt.Sprintf("%.1f", res.Historical[n-1].Quantity))
	}
	for _, p := range res.Forecast {
		labels = append(labels, quote(p.Period))
		history = append(history, "0")
		projection = append(projection, fmt.Sprintf("%.1f", p.Quantity))
		maxY = math.Max(maxY, p.Quantity)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Monthly Demand: History and Forecast\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Units\" 0 --> %d\n", ceilAxis(maxY)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(history, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(projection, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateScenarioChart creates a Mermaid bar chart of total cost per scenario.
func GenerateScenarioChart(cmp scenario.Comparison) string {
	outcomes := append([]scenario.Outcome{cmp.Baseline}, cmp.Alternatives...)

	var labels, costs, simulated []string
	maxY := 0.0
	for _, o := range outcomes {
		labels = append(labels, quote(o.Scenario))
		costs = append(costs, fmt.Sprintf("%.2f", o.KPI.TotalCost))
		simulated = append(simulated, fmt.Sprintf("%.2f", o.Simulation.AverageTotalCost))
		maxY = math.Max(maxY, math.Max(o.KPI.TotalCost, o.Simulation.AverageTotalCost))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Annual Cost by Scenario (Analytic vs Simulated)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Cost\" 0 --> %d\n", ceilAxis(maxY)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(costs, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(simulated, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateLeadTimeChart creates a Mermaid line chart of stockout risk (in %) per lead time.
func GenerateLeadTimeChart(sim policy.LeadTimeSimulation) string {
	if len(sim.Outcomes) == 0 {
		return ""
	}

	var labels, risks, residuals []string
	for _, o := range sim.Outcomes {
		labels = append(labels, quote(fmt.Sprintf("%gd", o.LeadTimeDays)))
		risks = append(risks, fmt.Sprintf("%.1f", o.StockoutRisk*100))
		residuals = append(residuals, fmt.Sprintf("%.1f", o.ResidualRisk*100))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Stockout Risk by Lead Time\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Risk (%)\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(risks, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(residuals, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GeneratePurchasePlanChart creates a Mermaid bar chart of recommended order quantities.
func GeneratePurchasePlanChart(plan planning.PurchasePlan) string {
	if len(plan.Items) == 0 {
		return ""
	}

	var labels, values []string
	maxY := 0.0
	for i, it := range plan.Items {
		if i == maxBars {
			break
		}
		label := it.Variant.SKU
		if label == "" {
			label = it.Variant.ID
		}
		labels = append(labels, quote(label))
		values = append(values, fmt.Sprintf("%.1f", it.RecommendedOrderQuantity))
		maxY = math.Max(maxY, it.RecommendedOrderQuantity)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Recommended Order Quantity\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Units\" 0 --> %d\n", ceilAxis(maxY)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// ceilAxis leaves 20% headroom above the largest value, with a minimum of 1.
func ceilAxis(maxVal float64) int {
	return int(math.Max(1, math.Ceil(maxVal*1.2)))
}

func quote(s string) string {
	return fmt.Sprintf("\"%s\"", strings.ReplaceAll(s, "\"", "'"))
}
