package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"invopt-mcp/internal/forecast"
	"invopt-mcp/internal/planning"
	"invopt-mcp/internal/scenario"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// planFlags holds the flags shared by the offline commands.
type planFlags struct {
	variants     []string
	periods      int
	alpha        float64
	beta         float64
	seasonLength int
	seasonality  bool

	leadTime     float64
	reviewPeriod float64
	serviceLevel float64
	holdingRate  float64
	orderingCost float64
	stockoutCost float64

	iterations int
	seed       int64
	scenarios  []string
	leadTimes  []float64
	minTrain   int
}

var flags planFlags

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast monthly demand for one variant",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := singleVariant()
		if err != nil {
			return err
		}
		rep, err := service().Forecast(cmd.Context(), planning.ForecastRequest{VariantID: id, Parameters: forecastParams(cmd.Flags())})
		if err != nil {
			return err
		}
		return printJSON(rep)
	},
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Walk-forward backtest of the forecaster for one variant",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := singleVariant()
		if err != nil {
			return err
		}
		fp := forecastParams(cmd.Flags())
		fp.Periods = 1
		rep, err := service().Backtest(cmd.Context(), planning.BacktestRequest{VariantID: id, Parameters: fp, MinTraining: flags.minTrain})
		if err != nil {
			return err
		}
		return printJSON(rep)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a purchase plan for the given variants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := service().GeneratePurchasePlan(cmd.Context(), planning.PlanRequest{
			VariantIDs:  flags.variants,
			Forecast:    forecastParams(cmd.Flags()),
			Assumptions: assumptions(cmd.Flags()),
		})
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"generated_at":      plan.GeneratedAt,
			"items":             plan.Items,
			"total_order_value": plan.TotalOrderValue(),
		})
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Compute stocking policies with KPIs and a Monte-Carlo stress test",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := service().Recommend(cmd.Context(), planning.OptimizeRequest{
			VariantIDs:  flags.variants,
			Forecast:    forecastParams(cmd.Flags()),
			Assumptions: assumptions(cmd.Flags()),
			Iterations:  flags.iterations,
			Seed:        seed(cmd.Flags()),
		})
		if err != nil {
			return err
		}
		return printJSON(set)
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the baseline policy of one variant against what-if scenarios",
	Example: `  invopt-mcp compare -i SKU-1 --scenario fast:lead_time_days=7 \
    --scenario strict:service_level=0.99,stockout_cost=20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := singleVariant()
		if err != nil {
			return err
		}
		adjustments := make([]scenario.Adjustment, 0, len(flags.scenarios))
		for _, raw := range flags.scenarios {
			adj, err := parseScenario(raw)
			if err != nil {
				return err
			}
			adjustments = append(adjustments, adj)
		}
		cmp, err := service().CompareScenarios(cmd.Context(), planning.CompareRequest{
			VariantID:   id,
			Forecast:    forecastParams(cmd.Flags()),
			Assumptions: assumptions(cmd.Flags()),
			Scenarios:   adjustments,
			Iterations:  flags.iterations,
			Seed:        seed(cmd.Flags()),
		})
		if err != nil {
			return err
		}
		return printJSON(cmp)
	},
}

var leadTimeCmd = &cobra.Command{
	Use:   "leadtime",
	Short: "Simulate policy and risk across candidate supplier lead times",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := singleVariant()
		if err != nil {
			return err
		}
		rep, err := service().SimulateLeadTimes(cmd.Context(), planning.LeadTimeRequest{
			VariantID:   id,
			Forecast:    forecastParams(cmd.Flags()),
			Assumptions: assumptions(cmd.Flags()),
			Options:     flags.leadTimes,
		})
		if err != nil {
			return err
		}
		return printJSON(rep)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	// Skips config and snapshot loading
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "invopt-mcp %s (commit %s, built %s)\n", Version, Commit, BuildDate)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{forecastCmd, backtestCmd, planCmd, optimizeCmd, compareCmd, leadTimeCmd} {
		f := cmd.Flags()
		f.StringSliceVarP(&flags.variants, "variant", "i", nil, "variant id (repeatable or comma separated)")
		f.IntVar(&flags.periods, "periods", 0, "forecast horizon in months (default from configuration)")
		f.Float64Var(&flags.alpha, "alpha", 0, "level smoothing factor in [0,1]")
		f.Float64Var(&flags.beta, "beta", 0, "trend smoothing factor in [0,1]")
		f.IntVar(&flags.seasonLength, "season-length", 0, "season length in months")
		f.BoolVar(&flags.seasonality, "seasonality", false, "apply the variant's seasonal factors")
		_ = cmd.MarkFlagRequired("variant")
	}
	for _, cmd := range []*cobra.Command{planCmd, optimizeCmd, compareCmd, leadTimeCmd} {
		f := cmd.Flags()
		f.Float64Var(&flags.leadTime, "lead-time", 0, "lead time override in days")
		f.Float64Var(&flags.reviewPeriod, "review-period", 0, "review period override in days")
		f.Float64Var(&flags.serviceLevel, "service-level", 0, "target service level override in (0,1)")
		f.Float64Var(&flags.holdingRate, "holding-cost-rate", 0, "annual holding cost rate in (0,1]")
		f.Float64Var(&flags.orderingCost, "ordering-cost", 0, "fixed cost per order")
		f.Float64Var(&flags.stockoutCost, "stockout-cost", 0, "cost per unit of unmet demand")
	}
	for _, cmd := range []*cobra.Command{optimizeCmd, compareCmd} {
		f := cmd.Flags()
		f.IntVar(&flags.iterations, "iterations", 0, "Monte-Carlo iterations (default from configuration)")
		f.Int64Var(&flags.seed, "seed", 0, "Monte-Carlo seed (default from configuration)")
	}
	compareCmd.Flags().StringArrayVar(&flags.scenarios, "scenario", nil, "scenario as name:field=value,... (repeatable)")
	leadTimeCmd.Flags().Float64SliceVar(&flags.leadTimes, "options", nil, "lead times in days to evaluate")
	backtestCmd.Flags().IntVar(&flags.minTrain, "min-training", 0, "minimum number of training months")
}

func service() *planning.Service {
	return planning.NewService(store, cfg.Planning, nil)
}

func singleVariant() (string, error) {
	if len(flags.variants) != 1 {
		return "", fmt.Errorf("exactly one --variant is required, got %d", len(flags.variants))
	}
	return flags.variants[0], nil
}

func forecastParams(fs *pflag.FlagSet) forecast.Parameters {
	p := forecast.Parameters{Periods: flags.periods, IncludeSeasonality: flags.seasonality}
	if fs.Changed("alpha") {
		p.Alpha = &flags.alpha
	}
	if fs.Changed("beta") {
		p.Beta = &flags.beta
	}
	if fs.Changed("season-length") {
		p.SeasonLength = &flags.seasonLength
	}
	return p
}

// assumptions only sets the overrides the user actually passed.
func assumptions(fs *pflag.FlagSet) planning.Assumptions {
	var a planning.Assumptions
	set := func(name string, v *float64, dst **float64) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("lead-time", &flags.leadTime, &a.LeadTimeDays)
	set("review-period", &flags.reviewPeriod, &a.ReviewPeriodDays)
	set("service-level", &flags.serviceLevel, &a.ServiceLevel)
	set("holding-cost-rate", &flags.holdingRate, &a.HoldingCostRate)
	set("ordering-cost", &flags.orderingCost, &a.OrderingCost)
	set("stockout-cost", &flags.stockoutCost, &a.StockoutCost)
	return a
}

func seed(fs *pflag.FlagSet) *int64 {
	if fs.Changed("seed") {
		return &flags.seed
	}
	return nil
}

// parseScenario reads "name:field=value,field=value". Field names match the
// JSON names of scenario.Adjustment.
func parseScenario(raw string) (scenario.Adjustment, error) {
	name, body, _ := strings.Cut(raw, ":")
	adj := scenario.Adjustment{Name: strings.TrimSpace(name)}
	if adj.Name == "" {
		return adj, fmt.Errorf("scenario %q has no name", raw)
	}
	if strings.TrimSpace(body) == "" {
		return adj, nil
	}

	for _, pair := range strings.Split(body, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return adj, fmt.Errorf("scenario %q: expected field=value, got %q", adj.Name, pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return adj, fmt.Errorf("scenario %q: invalid value for %s: %w", adj.Name, key, err)
		}
		switch strings.TrimSpace(key) {
		case "service_level":
			adj.ServiceLevel = &v
		case "lead_time_days":
			adj.LeadTimeDays = &v
		case "review_period_days":
			adj.ReviewPeriodDays = &v
		case "holding_cost_rate":
			adj.HoldingCostRate = &v
		case "ordering_cost":
			adj.OrderingCost = &v
		case "stockout_cost":
			adj.StockoutCost = &v
		default:
			return adj, fmt.Errorf("scenario %q: unknown field %q", adj.Name, key)
		}
	}
	return adj, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
