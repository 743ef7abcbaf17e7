package planning

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"invopt-mcp/internal/forecast"
	"invopt-mcp/internal/inventory"
	"invopt-mcp/internal/scenario"
)

type memorySource map[string]inventory.VariantSnapshot

func (m memorySource) LoadVariants(_ context.Context, ids []string) (map[string]inventory.VariantSnapshot, error) {
	out := make(map[string]inventory.VariantSnapshot, len(ids))
	for _, id := range ids {
		if snap, ok := m[id]; ok {
			out[id] = snap
		}
	}
	return out, nil
}

type failingSource struct{}

func (failingSource) LoadVariants(context.Context, []string) (map[string]inventory.VariantSnapshot, error) {
	return nil, errors.New("connection refused")
}

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func steadySnapshot(id string, monthly float64, onHand float64) inventory.VariantSnapshot {
	var history []inventory.Observation
	for m := time.March; m <= time.August; m++ {
		history = append(history, inventory.Observation{Period: time.Date(2026, m, 15, 0, 0, 0, 0, time.UTC), Quantity: monthly})
	}
	return inventory.VariantSnapshot{
		Variant: inventory.Variant{ID: id, SKU: "SKU-" + id, ProductName: "Widget " + id},
		History: history,
		Stock:   inventory.StockSnapshot{OnHand: onHand},
		Master:  inventory.MasterData{LeadTimeDays: ptr(14.0), UnitPrice: 2, Currency: "EUR"},
	}
}

func newTestService(src Source) *Service {
	return NewService(src, DefaultDefaults(), func() time.Time { return fixedNow })
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestGeneratePurchasePlan_SteadyDemand(t *testing.T) {
	svc := newTestService(memorySource{"v1": steadySnapshot("v1", 300, 100)})

	plan, err := svc.GeneratePurchasePlan(context.Background(), PlanRequest{VariantIDs: []string{"v1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Items) != 1 || !plan.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("unexpected plan header: %+v", plan)
	}

	it := plan.Items[0]
	if it.ForecastPeriods != 3 || !almostEqual(it.ForecastedDemand, 900) {
		t.Errorf("expected 3 periods totalling 900, got %d / %v", it.ForecastPeriods, it.ForecastedDemand)
	}
	if it.Demand.AverageDailyDemand != 10 {
		t.Errorf("expected 10 units/day, got %v", it.Demand.AverageDailyDemand)
	}
	if it.Parameters.LeadTimeDays.Origin != OriginMasterData || it.Parameters.ServiceLevel.Origin != OriginDefault {
		t.Errorf("unexpected parameter origins: %+v", it.Parameters)
	}
	// z(0.95) x 0.01 x sqrt(44) = 0.109 -> 0.11
	if !almostEqual(it.SafetyStock, 0.11) || !almostEqual(it.ReorderPoint, 140.11) {
		t.Errorf("expected ss 0.11 and rop 140.11, got %v / %v", it.SafetyStock, it.ReorderPoint)
	}
	if !almostEqual(it.RecommendedOrderQuantity, 940.11) {
		t.Errorf("expected 900 + 140.11 - 100 = 940.11, got %v", it.RecommendedOrderQuantity)
	}
	if !almostEqual(it.EstimatedOrderValue, 1880.22) || it.Currency != "EUR" {
		t.Errorf("expected value 1880.22 EUR, got %v %s", it.EstimatedOrderValue, it.Currency)
	}
}

func TestGeneratePurchasePlan_NeverNegative(t *testing.T) {
	svc := newTestService(memorySource{"v1": steadySnapshot("v1", 30, 100000)})

	plan, err := svc.GeneratePurchasePlan(context.Background(), PlanRequest{VariantIDs: []string{"v1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := plan.Items[0].RecommendedOrderQuantity; got != 0 {
		t.Errorf("expected zero recommendation when stock covers demand, got %v", got)
	}
}

func TestGeneratePurchasePlan_VariantWithoutData(t *testing.T) {
	empty := inventory.VariantSnapshot{Variant: inventory.Variant{ID: "new"}}
	svc := newTestService(memorySource{"new": empty})

	plan, err := svc.GeneratePurchasePlan(context.Background(), PlanRequest{VariantIDs: []string{"new"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Items) != 1 {
		t.Fatalf("expected the variant to produce an item, got %d", len(plan.Items))
	}
	it := plan.Items[0]
	if it.ForecastedDemand != 0 || it.Demand.AverageDailyDemand != 0 {
		t.Errorf("expected zero demand, got %+v", it)
	}
	if it.RecommendedOrderQuantity < 0 || math.IsNaN(it.RecommendedOrderQuantity) {
		t.Errorf("expected a finite non-negative recommendation, got %v", it.RecommendedOrderQuantity)
	}
	if it.Parameters.LeadTimeDays.Origin != OriginDefault || it.Parameters.LeadTimeDays.Value != 14 {
		t.Errorf("expected default lead time, got %+v", it.Parameters.LeadTimeDays)
	}
}

func TestService_RequestErrors(t *testing.T) {
	svc := newTestService(memorySource{"v1": steadySnapshot("v1", 10, 0)})
	ctx := context.Background()

	if _, err := svc.GeneratePurchasePlan(ctx, PlanRequest{VariantIDs: []string{" ", ""}}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for empty ids, got %v", err)
	}
	if _, err := svc.Recommend(ctx, OptimizeRequest{}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for nil ids, got %v", err)
	}

	_, err := svc.GeneratePurchasePlan(ctx, PlanRequest{VariantIDs: []string{"v1", "ghost", "phantom"}})
	if !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || !reflect.DeepEqual(nf.IDs, []string{"ghost", "phantom"}) {
		t.Errorf("expected the missing ids to be listed, got %v", err)
	}

	_, err = svc.Forecast(ctx, ForecastRequest{VariantID: "v1", Parameters: forecast.Parameters{Periods: 1000}})
	if !errors.Is(err, ErrInvalidRequest) || !errors.Is(err, forecast.ErrInvalidParameters) {
		t.Errorf("expected invalid forecast parameters to be a request error, got %v", err)
	}

	_, err = svc.Recommend(ctx, OptimizeRequest{VariantIDs: []string{"v1"}, Assumptions: Assumptions{ServiceLevel: ptr(1.0)}})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for service level 1, got %v", err)
	}

	failing := newTestService(failingSource{})
	if _, err := failing.Forecast(ctx, ForecastRequest{VariantID: "v1"}); err == nil || errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected the source error to propagate, got %v", err)
	}
}

func TestRecommend_OrderAndDeterminism(t *testing.T) {
	src := memorySource{}
	ids := []string{"a", "b", "c", "d", "e", "f"}
	for i, id := range ids {
		src[id] = steadySnapshot(id, float64(100*(i+1)), 50)
	}
	svc := newTestService(src)
	req := OptimizeRequest{VariantIDs: append(ids, "a"), Iterations: 200, Seed: ptr(int64(5))}

	first, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Recommendations) != len(ids) {
		t.Fatalf("expected duplicates to collapse to %d recommendations, got %d", len(ids), len(first.Recommendations))
	}
	for i, rec := range first.Recommendations {
		if rec.Variant.ID != ids[i] {
			t.Errorf("position %d: expected %s, got %s", i, ids[i], rec.Variant.ID)
		}
		if rec.Simulation.Seed != 5 || rec.Simulation.Iterations != 200 {
			t.Errorf("expected seed 5 and 200 iterations, got %+v", rec.Simulation)
		}
	}

	second, _ := svc.Recommend(context.Background(), req)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical recommendation sets for identical requests")
	}
}

func TestCompareScenarios(t *testing.T) {
	svc := newTestService(memorySource{"v1": steadySnapshot("v1", 300, 100)})
	ctx := context.Background()

	cmp, err := svc.CompareScenarios(ctx, CompareRequest{
		VariantID: "v1",
		Scenarios: []scenario.Adjustment{{Name: "faster", LeadTimeDays: ptr(7.0)}, {Name: "strict", ServiceLevel: ptr(0.99)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmp.Alternatives) != 2 || cmp.Alternatives[0].Scenario != "faster" || cmp.Alternatives[1].Scenario != "strict" {
		t.Fatalf("unexpected alternatives: %+v", cmp.Alternatives)
	}
	if cmp.Alternatives[0].Policy.ReorderPoint >= cmp.Baseline.Policy.ReorderPoint {
		t.Errorf("expected a shorter lead time to lower the reorder point")
	}
	if cmp.Baseline.Simulation.Seed != DefaultDefaults().Seed {
		t.Errorf("expected the configured default seed, got %d", cmp.Baseline.Simulation.Seed)
	}

	_, err = svc.CompareScenarios(ctx, CompareRequest{VariantID: "v1", Scenarios: []scenario.Adjustment{{LeadTimeDays: ptr(7.0)}}})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected unnamed scenario to be rejected, got %v", err)
	}
	_, err = svc.CompareScenarios(ctx, CompareRequest{VariantID: "v1", Scenarios: []scenario.Adjustment{{Name: "x", HoldingCostRate: ptr(0.0)}}})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected zero holding rate to be rejected, got %v", err)
	}
}

func TestSimulateLeadTimes_DefaultOptions(t *testing.T) {
	svc := newTestService(memorySource{"v1": steadySnapshot("v1", 300, 200)})

	rep, err := svc.SimulateLeadTimes(context.Background(), LeadTimeRequest{VariantID: "v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Outcomes) != 6 {
		t.Fatalf("expected 6 default outcomes, got %d", len(rep.Outcomes))
	}
	for i := 1; i < len(rep.Outcomes); i++ {
		if rep.Outcomes[i].ReorderPoint < rep.Outcomes[i-1].ReorderPoint {
			t.Errorf("expected reorder point to grow with lead time at %v", rep.Outcomes[i].LeadTimeDays)
		}
	}
	if rep.Variant.ID != "v1" || rep.Parameters.LeadTimeDays.Origin != OriginMasterData {
		t.Errorf("unexpected report header: %+v", rep)
	}
}

func TestBacktest(t *testing.T) {
	svc := newTestService(memorySource{"v1": steadySnapshot("v1", 50, 0)})

	rep, err := svc.Backtest(context.Background(), BacktestRequest{VariantID: "v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Checkpoints) != 3 || rep.MAE != 0 {
		t.Errorf("expected 3 perfect checkpoints on flat demand, got %+v", rep.BacktestResult)
	}
	if _, err := svc.Backtest(context.Background(), BacktestRequest{VariantID: "v1", MinTraining: -1}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected negative training window to be rejected, got %v", err)
	}
}
