package policy

import (
	"math"
	"testing"

	"invopt-mcp/internal/inventory"
)

func ptr(v float64) *float64 { return &v }

func baseInput() Input {
	return Input{
		Variant:            inventory.Variant{ID: "v-1", SKU: "SKU-1", ProductName: "Widget"},
		OnHand:             120,
		Reserved:           20,
		AverageDailyDemand: 10,
		DemandStdDev:       2,
		LeadTimeDays:       14,
		ReviewPeriodDays:   30,
		UnitPrice:          50,
		Currency:           "USD",
		HoldingCostRate:    0.2,
		OrderingCost:       25,
		TargetServiceLevel: 0.95,
		StockoutCost:       5,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func TestCalculate_ClosedForm(t *testing.T) {
	p := Calculate(baseInput())

	z := 1.6448536269514722
	wantSS := round2(z * 2 * math.Sqrt(44))
	wantROP := round2(10*14 + wantSS)
	wantEOQ := round2(math.Sqrt(2 * 3650 * 25 / (0.2 * 50)))

	if math.Abs(p.SafetyStock-wantSS) > 1e-9 {
		t.Errorf("safety stock: expected %v, got %v", wantSS, p.SafetyStock)
	}
	if math.Abs(p.ReorderPoint-wantROP) > 1e-9 {
		t.Errorf("reorder point: expected %v, got %v", wantROP, p.ReorderPoint)
	}
	if math.Abs(p.EconomicOrderQuantity-wantEOQ) > 1e-9 {
		t.Errorf("EOQ: expected %v, got %v", wantEOQ, p.EconomicOrderQuantity)
	}
	if math.Abs(p.MaxStockLevel-round2(wantROP+wantEOQ)) > 1e-9 {
		t.Errorf("max stock: expected %v, got %v", round2(wantROP+wantEOQ), p.MaxStockLevel)
	}

	// Hand-computed reference values
	if p.SafetyStock != 21.82 || p.ReorderPoint != 161.82 || p.EconomicOrderQuantity != 135.09 {
		t.Errorf("unexpected policy %+v", p)
	}
	if p.Available != 100 {
		t.Errorf("expected available 100, got %v", p.Available)
	}
}

func TestCalculate_Overrides(t *testing.T) {
	in := baseInput()
	in.SafetyStockOverride = ptr(50)
	p := Calculate(in)
	if p.SafetyStock != 50 || p.ReorderPoint != 190 {
		t.Errorf("expected safety stock override to flow into ROP, got ss=%v rop=%v", p.SafetyStock, p.ReorderPoint)
	}

	in.ReorderPointOverride = ptr(75)
	in.ReorderQuantityOverride = ptr(200)
	p = Calculate(in)
	if p.ReorderPoint != 75 {
		t.Errorf("expected ROP override to win outright, got %v", p.ReorderPoint)
	}
	if p.MaxStockLevel != 275 || p.OrderQuantity != 200 {
		t.Errorf("expected max stock from reorder quantity override, got max=%v qty=%v", p.MaxStockLevel, p.OrderQuantity)
	}
	if p.EconomicOrderQuantity != 135.09 {
		t.Errorf("EOQ should still be reported, got %v", p.EconomicOrderQuantity)
	}
}

func TestCalculate_ServiceLevelMonotonic(t *testing.T) {
	levels := []float64{0.5, 0.8, 0.9, 0.95, 0.975, 0.99, 0.999}
	prev := Policy{}
	for i, sl := range levels {
		in := baseInput()
		in.TargetServiceLevel = sl
		p := Calculate(in)
		if i > 0 && (p.SafetyStock < prev.SafetyStock || p.ReorderPoint < prev.ReorderPoint) {
			t.Errorf("service level %v decreased policy: ss %v -> %v, rop %v -> %v", sl, prev.SafetyStock, p.SafetyStock, prev.ReorderPoint, p.ReorderPoint)
		}
		prev = p
	}
}

func TestCalculate_LeadTimeMonotonic(t *testing.T) {
	prev := -1.0
	for lt := 1.0; lt <= 90; lt += 7 {
		in := baseInput()
		in.LeadTimeDays = lt
		p := Calculate(in)
		if p.ReorderPoint < prev {
			t.Errorf("lead time %v decreased ROP: %v -> %v", lt, prev, p.ReorderPoint)
		}
		prev = p.ReorderPoint
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	in := baseInput()
	p1, k1 := Evaluate(in)
	p2, k2 := Evaluate(in)
	if p1 != p2 || k1 != k2 {
		t.Errorf("expected identical outputs, got %+v/%+v vs %+v/%+v", p1, k1, p2, k2)
	}
}

func TestCalculate_ZeroStdDevIsFloored(t *testing.T) {
	in := baseInput()
	in.DemandStdDev = 0
	p := Calculate(in)
	if p.DemandStdDev != 0.01 {
		t.Errorf("expected std dev floor 0.01, got %v", p.DemandStdDev)
	}
	want := round2(1.6448536269514722 * 0.01 * math.Sqrt(44))
	if p.SafetyStock != want {
		t.Errorf("expected safety stock %v from floored std dev, got %v", want, p.SafetyStock)
	}
}

func TestEvaluate_DegenerateInputsAreFinite(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"ZeroEverything", Input{}},
		{"ZeroDemand", Input{OnHand: 10, UnitPrice: 5, HoldingCostRate: 0.2, OrderingCost: 30, TargetServiceLevel: 0.95}},
		{"ZeroPrice", Input{AverageDailyDemand: 4, DemandStdDev: 1, LeadTimeDays: 7, ReviewPeriodDays: 7, OrderingCost: 10, TargetServiceLevel: 0.9}},
		{"NegativeLeadTime", Input{AverageDailyDemand: 4, LeadTimeDays: -3, TargetServiceLevel: 1.5}},
		{"NaN", Input{AverageDailyDemand: math.NaN(), DemandStdDev: math.Inf(1), UnitPrice: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, k := Evaluate(tt.in)
			values := []float64{
				p.SafetyStock, p.ReorderPoint, p.MaxStockLevel, p.EconomicOrderQuantity,
				k.FillRate, k.TotalCost, k.HoldingCost, k.OrderingCost, k.StockoutRisk, k.AverageInventory,
			}
			for i, v := range values {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Errorf("value %d is not finite: %v", i, v)
				}
			}
			if p.LeadTimeDays < MinLeadTimeDays || p.ReviewPeriodDays < MinReviewPeriodDays {
				t.Errorf("expected lead time and review period floors, got %v/%v", p.LeadTimeDays, p.ReviewPeriodDays)
			}
			if k.FillRate < 0 || k.FillRate > 1 || k.StockoutRisk < 0 || k.StockoutRisk > 1 {
				t.Errorf("ratios out of range: fill=%v risk=%v", k.FillRate, k.StockoutRisk)
			}
		})
	}

	_, k := Evaluate(Input{})
	if k.TotalCost != 0 || k.OrderingCost != 0 || k.StockoutRisk != 0 {
		t.Errorf("expected zero-valued KPI for zero demand, got %+v", k)
	}
}

func TestEstimateKPI(t *testing.T) {
	in := baseInput()
	in.OnHand = 1000 // plenty of stock: risk reduces to 1 - service level
	p, k := Evaluate(in)

	avgInv := p.SafetyStock + p.EconomicOrderQuantity/2
	if math.Abs(k.AverageInventory-round2(avgInv)) > 1e-9 {
		t.Errorf("average inventory: expected %v, got %v", round2(avgInv), k.AverageInventory)
	}
	if math.Abs(k.HoldingCost-round2(avgInv*50*0.2)) > 1e-9 {
		t.Errorf("holding cost: expected %v, got %v", round2(avgInv*50*0.2), k.HoldingCost)
	}
	wantOrdering := round2(25 * 3650 / p.EconomicOrderQuantity)
	if math.Abs(k.OrderingCost-wantOrdering) > 1e-9 {
		t.Errorf("ordering cost: expected %v, got %v", wantOrdering, k.OrderingCost)
	}
	if k.StockoutRisk != 0.05 || k.FillRate != 0.95 {
		t.Errorf("expected residual risk 0.05 and fill rate 0.95, got %v and %v", k.StockoutRisk, k.FillRate)
	}
	wantTotal := k.HoldingCost + k.OrderingCost + 5*0.05*3650
	if math.Abs(k.TotalCost-wantTotal) > 0.011 {
		t.Errorf("total cost: expected ~%v, got %v", wantTotal, k.TotalCost)
	}

	// Short available stock raises the estimated risk above the residual
	in.OnHand, in.Reserved = 50, 0
	_, short := Evaluate(in)
	if short.StockoutRisk <= k.StockoutRisk {
		t.Errorf("expected higher risk with short stock, got %v vs %v", short.StockoutRisk, k.StockoutRisk)
	}
}
