package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/snapshot"
	"invopt-mcp/internal/stats"
)

// Demand scenarios understood by Generate.
const (
	ScenarioSteady       = "steady"
	ScenarioTrend        = "trend"
	ScenarioSeasonal     = "seasonal"
	ScenarioIntermittent = "intermittent"
)

// Scenarios lists every supported scenario, in the order "mixed" cycles through them.
var Scenarios = []string{ScenarioSteady, ScenarioTrend, ScenarioSeasonal, ScenarioIntermittent}

var classes = []string{"A", "B", "C"}

// GeneratorConfig controls the shape and size of the generated data set.
type GeneratorConfig struct {
	Scenario string // one of Scenarios, or "mixed"
	Count    int
	Months   int
	Seed     int64
	Now      time.Time
}

// Generate produces Count synthetic variant snapshots. Identical configs give identical output.
func Generate(cfg GeneratorConfig) ([]inventory.VariantSnapshot, error) {
	if cfg.Count <= 0 {
		cfg.Count = 20
	}
	if cfg.Months <= 0 {
		cfg.Months = 24
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	if cfg.Scenario == "" {
		cfg.Scenario = "mixed"
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	// The current month is still open, so history ends with the previous one.
	end := stats.MonthStart(cfg.Now).AddDate(0, -1, 0)

	snaps := make([]inventory.VariantSnapshot, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		scenario := cfg.Scenario
		if scenario == "mixed" {
			scenario = Scenarios[i%len(Scenarios)]
		} else if !known(scenario) {
			return nil, fmt.Errorf("unknown scenario %q", cfg.Scenario)
		}
		snaps = append(snaps, generateVariant(rng, i, scenario, cfg.Months, end))
	}
	return snaps, nil
}

func known(scenario string) bool {
	for _, s := range Scenarios {
		if s == scenario {
			return true
		}
	}
	return false
}

func generateVariant(rng *rand.Rand, i int, scenario string, months int, end time.Time) inventory.VariantSnapshot {
	base := 50 + rng.Float64()*450
	noise := 0.1 + rng.Float64()*0.15
	leadTime := float64(7 + rng.Intn(40))

	var history []inventory.Observation
	var aggregates []inventory.MonthlyAggregate
	start := end.AddDate(0, -(months - 1), 0)

	for m := 0; m < months; m++ {
		month := start.AddDate(0, m, 0)
		mean := base
		switch scenario {
		case ScenarioTrend:
			mean = base * (1 + 0.03*float64(m))
		case ScenarioSeasonal:
			mean = base * (1 + 0.35*math.Sin(2*math.Pi*float64(month.Month()-1)/12))
		case ScenarioIntermittent:
			if rng.Float64() < 0.45 {
				mean = 0
			}
		}
		total := math.Max(0, math.Round(mean*(1+noise*rng.NormFloat64())))

		// Split each month into a few orders so aggregation has work to do
		orders := 1 + rng.Intn(4)
		remaining := total
		for o := 0; o < orders && remaining > 0; o++ {
			qty := remaining
			if o < orders-1 {
				qty = math.Floor(remaining * rng.Float64())
			}
			remaining -= qty
			history = append(history, inventory.Observation{
				Period:   month.AddDate(0, 0, rng.Intn(28)),
				Quantity: qty,
			})
		}

		if m >= months-6 {
			observed := stats.RoundQuantity(math.Max(1, leadTime+rng.NormFloat64()*3))
			aggregates = append(aggregates, inventory.MonthlyAggregate{Period: month, Quantity: total, AverageLeadTimeDays: &observed})
		}
	}

	var factors []inventory.SeasonalFactor
	if scenario == ScenarioSeasonal {
		for seq := 1; seq <= 12; seq++ {
			factors = append(factors, inventory.SeasonalFactor{
				Sequence: seq,
				Factor:   stats.RoundRate(1 + 0.35*math.Sin(2*math.Pi*float64(seq-1)/12)),
			})
		}
	}

	snap := inventory.VariantSnapshot{
		Variant: inventory.Variant{
			ID:          fmt.Sprintf("MOCK-%03d", i+1),
			SKU:         fmt.Sprintf("SKU-%s-%03d", scenario[:3], i+1),
			ProductName: fmt.Sprintf("Mock %s product %d", scenario, i+1),
		},
		History:         history,
		SeasonalFactors: factors,
		Classification:  &inventory.Classification{Label: classes[i%len(classes)]},
		Stock: inventory.StockSnapshot{
			OnHand:        math.Round(base * rng.Float64() * 1.5),
			Reserved:      math.Round(base * rng.Float64() * 0.2),
			MinStockLevel: math.Round(base * 0.1),
		},
		Master: inventory.MasterData{
			UnitPrice: stats.RoundQuantity(2 + rng.Float64()*98),
			Currency:  "EUR",
		},
	}
	// Only every other variant has pre-aggregated totals, the rest exercise raw history.
	if i%2 == 0 {
		snap.Aggregates = aggregates
	} else {
		snap.Master.LeadTimeDays = &leadTime
	}
	return snap
}

// Save writes the snapshots to the store file inside dir.
func Save(dir string, snaps []inventory.VariantSnapshot) error {
	store := snapshot.NewStore()
	if err := store.Put(snaps...); err != nil {
		return err
	}
	return store.Save(dir)
}
