package mcp

import (
	"context"
	"math"
	"testing"
	"time"

	"invopt-mcp/cmd/mockgen/engine"
	"invopt-mcp/internal/config"
	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/planning"
	"invopt-mcp/internal/snapshot"
)

func TestMockgen_Integration(t *testing.T) {
	for _, scen := range engine.Scenarios {
		t.Run(scen, func(t *testing.T) {
			dir := t.TempDir()
			snaps, err := engine.Generate(engine.GeneratorConfig{Scenario: scen, Count: 6, Months: 24, Seed: 3, Now: time.Now().UTC()})
			if err != nil {
				t.Fatalf("Failed to generate mock data: %v", err)
			}
			if err := engine.Save(dir, snaps); err != nil {
				t.Fatalf("Failed to save mock data: %v", err)
			}

			store := snapshot.NewStore()
			if err := store.Load(dir); err != nil {
				t.Fatalf("Failed to load snapshots: %v", err)
			}
			server := NewServer(&config.AppConfig{Planning: planning.DefaultDefaults()}, store, "test")

			ids := variantIDs(store.Variants())
			if len(ids) != 6 {
				t.Fatalf("expected 6 variants after reload, got %d", len(ids))
			}

			// 1. Purchase plan
			env, err := server.handleGeneratePurchasePlan(context.Background(), PurchasePlanInput{VariantIDs: ids})
			if err != nil {
				t.Fatalf("Failed to generate purchase plan: %v", err)
			}
			items := env.Data.(map[string]any)["items"].([]planning.PurchasePlanItem)
			for _, it := range items {
				if it.RecommendedOrderQuantity < 0 || math.IsNaN(it.RecommendedOrderQuantity) {
					t.Errorf("%s: invalid order quantity %v", it.Variant.ID, it.RecommendedOrderQuantity)
				}
				if it.ForecastPeriods != 3 {
					t.Errorf("%s: expected the default 3-month horizon, got %d", it.Variant.ID, it.ForecastPeriods)
				}
			}

			// 2. Optimization
			env, err = server.handleOptimizeInventory(context.Background(), OptimizeInventoryInput{
				VariantIDs:     ids,
				SimulationArgs: SimulationArgs{Iterations: 200},
			})
			if err != nil {
				t.Fatalf("Failed to optimize inventory: %v", err)
			}
			set := env.Data.(planning.RecommendationSet)
			for _, rec := range set.Recommendations {
				p := rec.Policy
				if p.ReorderPoint < p.SafetyStock || p.MaxStockLevel < p.ReorderPoint {
					t.Errorf("%s: expected safety stock <= reorder point <= max level, got %+v", rec.Variant.ID, p)
				}
				sim := rec.Simulation
				if sim.AverageFillRate < 0 || sim.AverageFillRate > 1 || sim.StockoutProbability < 0 || sim.StockoutProbability > 1 {
					t.Errorf("%s: simulation rates out of range %+v", rec.Variant.ID, sim)
				}
				t.Logf("[%s] %s: SS=%.2f ROP=%.2f fill=%.3f", scen, rec.Variant.ID, p.SafetyStock, p.ReorderPoint, sim.AverageFillRate)
			}

			// 3. Backtest
			bt, err := server.handleForecastBacktest(context.Background(), ForecastBacktestInput{VariantID: ids[0]})
			if err != nil {
				t.Fatalf("Failed to backtest: %v", err)
			}
			rep := bt.Data.(planning.BacktestReport)
			if len(rep.Checkpoints) == 0 {
				t.Errorf("expected backtest checkpoints over 24 months of history")
			}
		})
	}
}

func variantIDs(variants []inventory.Variant) []string {
	ids := make([]string, 0, len(variants))
	for _, v := range variants {
		ids = append(ids, v.ID)
	}
	return ids
}
