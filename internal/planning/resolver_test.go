package planning

import (
	"testing"
	"time"

	"invopt-mcp/internal/inventory"
)

func TestResolve_LeadTimePrecedence(t *testing.T) {
	withAggregates := inventory.VariantSnapshot{Aggregates: []inventory.MonthlyAggregate{
		{Period: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Quantity: 10, AverageLeadTimeDays: ptr(20.0)},
		{Period: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Quantity: 10, AverageLeadTimeDays: ptr(25.0)},
	}}
	withMaster := withAggregates
	withMaster.Master.LeadTimeDays = ptr(9.0)

	tests := []struct {
		name   string
		snap   inventory.VariantSnapshot
		req    Assumptions
		value  float64
		origin string
	}{
		{"Request", withMaster, Assumptions{LeadTimeDays: ptr(3.0)}, 3, OriginRequest},
		{"MasterData", withMaster, Assumptions{}, 9, OriginMasterData},
		{"Aggregates", withAggregates, Assumptions{}, 22.5, OriginAggregates},
		{"Default", inventory.VariantSnapshot{}, Assumptions{}, 14, OriginDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultDefaults().Resolve(tt.snap, tt.req).LeadTimeDays
			if got.Value != tt.value || got.Origin != tt.origin {
				t.Errorf("expected %v from %s, got %+v", tt.value, tt.origin, got)
			}
		})
	}
}

func TestResolve_ServiceLevelPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		class  *inventory.Classification
		req    Assumptions
		value  float64
		origin string
	}{
		{"Request", &inventory.Classification{Label: "A"}, Assumptions{ServiceLevel: ptr(0.9)}, 0.9, OriginRequest},
		{"SnapshotTable", &inventory.Classification{Label: "A", ServiceLevels: map[string]float64{"A": 0.995}}, Assumptions{}, 0.995, OriginClassification},
		{"ConfiguredTable", &inventory.Classification{Label: "C"}, Assumptions{}, 0.90, OriginClassification},
		{"UnknownLabel", &inventory.Classification{Label: "Z"}, Assumptions{}, FallbackServiceLevel, OriginDefault},
		{"NoClassification", nil, Assumptions{}, FallbackServiceLevel, OriginDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultDefaults().Resolve(inventory.VariantSnapshot{Classification: tt.class}, tt.req).ServiceLevel
			if got.Value != tt.value || got.Origin != tt.origin {
				t.Errorf("expected %v from %s, got %+v", tt.value, tt.origin, got)
			}
		})
	}
}

func TestResolve_CostsAndReview(t *testing.T) {
	d := DefaultDefaults()
	got := d.Resolve(inventory.VariantSnapshot{}, Assumptions{OrderingCost: ptr(0.0), ReviewPeriodDays: ptr(7.0)})
	if got.OrderingCost != 0 {
		t.Errorf("expected an explicit zero ordering cost to be kept, got %v", got.OrderingCost)
	}
	if got.HoldingCostRate != d.HoldingCostRate || got.StockoutCost != d.StockoutCost {
		t.Errorf("expected default costs, got %+v", got)
	}
	if got.ReviewPeriodDays != (Resolved{Value: 7, Origin: OriginRequest}) {
		t.Errorf("expected requested review period, got %+v", got.ReviewPeriodDays)
	}
}

func TestDefaults_WithFallbacks(t *testing.T) {
	got := Defaults{LeadTimeDays: 21}.withFallbacks()
	if got.LeadTimeDays != 21 {
		t.Errorf("expected configured lead time to survive, got %v", got.LeadTimeDays)
	}
	if got.ReviewPeriodDays != 30 || got.ServiceLevel != 0.95 || got.Concurrency != 4 || got.ServiceLevels["A"] != 0.98 {
		t.Errorf("expected zero fields to fall back, got %+v", got)
	}
}
