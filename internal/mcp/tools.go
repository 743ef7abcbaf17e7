package mcp

import (
	"maps"

	"github.com/google/jsonschema-go/jsonschema"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var listVariantsTool = &gomcp.Tool{
	Name:        "list_variants",
	Description: "List the variants (SKUs) available for planning. Guidance: use the returned 'id' values as 'variant_id' / 'variant_ids' in every other tool.",
	InputSchema: object(nil, map[string]*jsonschema.Schema{
		"query": str("Optional case-insensitive filter on id, SKU or product name"),
	}),
}

var forecastDemandTool = &gomcp.Tool{
	Name: "forecast_demand",
	Description: "Forecast monthly demand for one variant using Holt's linear trend method (level + trend exponential smoothing), optionally adjusted by the variant's seasonal factor table. \n\n" +
		"Returns the historical monthly series that fed the model together with exactly 'periods' forecast points. Negative projections are clamped to zero.\n" +
		"STRICT GUARDRAIL: DO NOT extrapolate further than the returned horizon yourself. Run 'forecast_backtest' first if the user asks how reliable the forecast is.",
	InputSchema: object([]string{"variant_id"}, withForecastProps(map[string]*jsonschema.Schema{
		"variant_id": str("The variant id"),
	})),
}

var forecastBacktestTool = &gomcp.Tool{
	Name:        "forecast_backtest",
	Description: "Walk-forward backtest of the demand forecaster for one variant: fits on months [0, i) and predicts month i for every month after the training window. Reports MAE, MAPE and median absolute error.",
	InputSchema: object([]string{"variant_id"}, map[string]*jsonschema.Schema{
		"variant_id":   str("The variant id"),
		"alpha":        num("Optional level smoothing factor in [0,1] (default 0.3)"),
		"beta":         num("Optional trend smoothing factor in [0,1] (default 0.1)"),
		"min_training": integer("Optional minimum number of training months (default 3)"),
	}),
}

var generatePurchasePlanTool = &gomcp.Tool{
	Name: "generate_purchase_plan",
	Description: "Convert forecast and current stock position into a recommended order quantity per variant: max(0, forecasted demand + reorder point - available stock). \n\n" +
		"Lead time, review period and service level are resolved per variant (request > master data > observed average > default) and every resolved value reports its origin. No simulation is run; use 'optimize_inventory' for risk-quantified policies.",
	InputSchema: object([]string{"variant_ids"}, withAssumptionProps(withForecastProps(map[string]*jsonschema.Schema{
		"variant_ids": array(str(""), "Variant ids to plan (at least one)"),
	}))),
}

var optimizeInventoryTool = &gomcp.Tool{
	Name: "optimize_inventory",
	Description: "Compute a periodic-review stocking policy (safety stock, reorder point, max stock level, EOQ) per variant, with analytic KPIs and a seeded Monte-Carlo stress test of fill rate, cost and stockout probability. \n\n" +
		"Results are reproducible for the same seed. STRICT GUARDRAIL: DO NOT invent probabilities that the tool did not return.",
	InputSchema: object([]string{"variant_ids"}, withSimulationProps(withAssumptionProps(withForecastProps(map[string]*jsonschema.Schema{
		"variant_ids": array(str(""), "Variant ids to optimize (at least one)"),
	})))),
}

var compareScenariosTool = &gomcp.Tool{
	Name: "compare_scenarios",
	Description: "Compare the baseline policy of one variant against named what-if scenarios. Each scenario patches only the fields it sets (service level, lead time, review period, holding cost rate, ordering cost, stockout cost); everything else inherits the baseline. \n\n" +
		"Every scenario is simulated with the same seed so differences come from the patch alone. Alternatives are returned in request order, tagged with their scenario name.",
	InputSchema: object([]string{"variant_id"}, withSimulationProps(withAssumptionProps(withForecastProps(map[string]*jsonschema.Schema{
		"variant_id": str("The variant id"),
		"scenarios": array(object([]string{"name"}, map[string]*jsonschema.Schema{
			"name":               str("Scenario name, echoed in the result"),
			"service_level":      num("Target service level in (0,1)"),
			"lead_time_days":     num("Lead time in days"),
			"review_period_days": num("Review period in days"),
			"holding_cost_rate":  num("Annual holding cost as a fraction of unit price, in (0,1]"),
			"ordering_cost":      num("Fixed cost per order"),
			"stockout_cost":      num("Cost per unit of unmet demand"),
		}), "Scenarios to evaluate. An empty list returns the baseline only."),
	})))),
}

var simulateLeadTimesTool = &gomcp.Tool{
	Name:        "simulate_lead_times",
	Description: "Show how coverage, safety stock, reorder point, stockout risk, residual risk and the recommended order quantity of one variant change across candidate supplier lead times (default 7, 14, 21, 30, 45 and 60 days).",
	InputSchema: object([]string{"variant_id"}, withAssumptionProps(withForecastProps(map[string]*jsonschema.Schema{
		"variant_id":        str("The variant id"),
		"lead_time_options": array(num(""), "Optional lead times in days to evaluate, in the order they should be reported"),
	}))),
}

var toolDefinitions = []*gomcp.Tool{
	listVariantsTool,
	forecastDemandTool,
	forecastBacktestTool,
	generatePurchasePlanTool,
	optimizeInventoryTool,
	compareScenariosTool,
	simulateLeadTimesTool,
}

func (s *Server) registerTools(server *gomcp.Server) {
	addTool(s, server, listVariantsTool, s.handleListVariants)
	addTool(s, server, forecastDemandTool, s.handleForecastDemand)
	addTool(s, server, forecastBacktestTool, s.handleForecastBacktest)
	addTool(s, server, generatePurchasePlanTool, s.handleGeneratePurchasePlan)
	addTool(s, server, optimizeInventoryTool, s.handleOptimizeInventory)
	addTool(s, server, compareScenariosTool, s.handleCompareScenarios)
	addTool(s, server, simulateLeadTimesTool, s.handleSimulateLeadTimes)
}

func withForecastProps(props map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	maps.Copy(props, map[string]*jsonschema.Schema{
		"periods":             integer("Forecast horizon in months, 1-60 (default 3)"),
		"alpha":               num("Optional level smoothing factor in [0,1] (default 0.3)"),
		"beta":                num("Optional trend smoothing factor in [0,1] (default 0.1)"),
		"season_length":       integer("Optional season length in months (default 12)"),
		"include_seasonality": boolean("If true, applies the variant's currently effective seasonal factors"),
	})
	return props
}

func withAssumptionProps(props map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	maps.Copy(props, map[string]*jsonschema.Schema{
		"lead_time_days":     num("Optional lead time override in days"),
		"review_period_days": num("Optional review period override in days"),
		"service_level":      num("Optional target service level override in (0,1)"),
		"holding_cost_rate":  num("Optional annual holding cost rate in (0,1]"),
		"ordering_cost":      num("Optional fixed cost per order"),
		"stockout_cost":      num("Optional cost per unit of unmet demand"),
	})
	return props
}

func withSimulationProps(props map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	maps.Copy(props, map[string]*jsonschema.Schema{
		"iterations": integer("Monte-Carlo iterations, clamped to 10-100000 (default 1000)"),
		"seed":       integer("Monte-Carlo seed (default from configuration)"),
	})
	return props
}

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func array(items *jsonschema.Schema, description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: items, Description: description}
}

func str(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func num(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: description}
}

func integer(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: description}
}

func boolean(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: description}
}
