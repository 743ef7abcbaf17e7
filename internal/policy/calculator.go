package policy

import (
	"math"

	"invopt-mcp/internal/stats"
)

// Normalize applies the numerical guards: demand and costs are made
// non-negative, the std dev is floored, lead time and review period are
// raised to one day and the service level is bounded to (0,1).
func Normalize(in Input) Input {
	out := in
	out.AverageDailyDemand = math.Max(0, stats.Finite(in.AverageDailyDemand))
	out.DemandStdDev = stats.FloorStdDev(in.DemandStdDev)
	out.LeadTimeDays = math.Max(MinLeadTimeDays, stats.Finite(in.LeadTimeDays))
	out.ReviewPeriodDays = math.Max(MinReviewPeriodDays, stats.Finite(in.ReviewPeriodDays))
	out.TargetServiceLevel = stats.Clamp(in.TargetServiceLevel, stats.MinProbability, stats.MaxProbability)
	out.UnitPrice = math.Max(0, stats.Finite(in.UnitPrice))
	out.HoldingCostRate = math.Max(0, stats.Finite(in.HoldingCostRate))
	out.OrderingCost = math.Max(0, stats.Finite(in.OrderingCost))
	out.StockoutCost = math.Max(0, stats.Finite(in.StockoutCost))
	return out
}

// SafetyStock is z(serviceLevel) x sigma x sqrt(protection days), never negative.
func SafetyStock(serviceLevel, stdDev, protectionDays float64) float64 {
	z := stats.InverseNormalCDF(serviceLevel)
	return math.Max(0, z*stats.FloorStdDev(stdDev)*math.Sqrt(math.Max(0, protectionDays)))
}

// EconomicOrderQuantity is sqrt(2 x annual demand x ordering cost / carrying cost).
func EconomicOrderQuantity(annualDemand, orderingCost, holdingCostRate, unitPrice float64) float64 {
	carrying := math.Max(MinCarryingCost, holdingCostRate*unitPrice)
	return math.Sqrt(math.Max(0, 2*annualDemand*orderingCost/carrying))
}

// Calculate derives the periodic-review policy. Configured master-data
// overrides take precedence over computed values.
func Calculate(in Input) Policy {
	in = Normalize(in)

	safety := SafetyStock(in.TargetServiceLevel, in.DemandStdDev, in.LeadTimeDays+in.ReviewPeriodDays)
	if in.SafetyStockOverride != nil {
		safety = math.Max(0, *in.SafetyStockOverride)
	}
	safety = stats.RoundQuantity(safety)

	reorder := stats.RoundQuantity(in.AverageDailyDemand*in.LeadTimeDays + safety)
	if in.ReorderPointOverride != nil {
		reorder = stats.RoundQuantity(math.Max(0, *in.ReorderPointOverride))
	}

	eoq := stats.RoundQuantity(EconomicOrderQuantity(in.AverageDailyDemand*DaysPerYear, in.OrderingCost, in.HoldingCostRate, in.UnitPrice))
	orderQty := eoq
	if in.ReorderQuantityOverride != nil {
		orderQty = stats.RoundQuantity(math.Max(0, *in.ReorderQuantityOverride))
	}

	return Policy{
		Variant:               in.Variant,
		SafetyStock:           safety,
		ReorderPoint:          reorder,
		MaxStockLevel:         stats.RoundQuantity(reorder + orderQty),
		EconomicOrderQuantity: eoq,
		OrderQuantity:         orderQty,
		ServiceLevel:          stats.RoundRate(in.TargetServiceLevel),
		LeadTimeDays:          in.LeadTimeDays,
		ReviewPeriodDays:      in.ReviewPeriodDays,
		AverageDailyDemand:    stats.RoundRate(in.AverageDailyDemand),
		DemandStdDev:          stats.RoundRate(in.DemandStdDev),
		Available:             stats.RoundQuantity(in.Available()),
		MinStockLevel:         stats.RoundQuantity(in.MinStockLevel),
		UnitPrice:             stats.RoundQuantity(in.UnitPrice),
		Currency:              in.Currency,
	}
}

// LeadTimeExposure is P(lead-time demand > available). Zero demand carries no exposure.
func LeadTimeExposure(available, dailyDemand, stdDev, leadTimeDays float64) float64 {
	if dailyDemand <= 0 {
		return 0
	}
	sigma := stats.FloorStdDev(stdDev) * math.Sqrt(math.Max(MinLeadTimeDays, leadTimeDays))
	mean := dailyDemand * leadTimeDays
	return stats.Clamp(1-stats.NormalCDF((available-mean)/sigma), 0, 1)
}

// EstimateKPI derives analytic cost and service estimates for a policy.
// The stockout risk is the larger of the policy's residual risk (1 - service level)
// and the immediate exposure of current available stock over the lead time.
func EstimateKPI(in Input, p Policy) KPI {
	in = Normalize(in)
	annualDemand := in.AverageDailyDemand * DaysPerYear

	avgInventory := p.SafetyStock + p.OrderQuantity/2
	holding := avgInventory * in.UnitPrice * in.HoldingCostRate

	ordering := 0.0
	if p.OrderQuantity > 0 {
		ordering = in.OrderingCost * (annualDemand / p.OrderQuantity)
	}

	residual := 1 - in.TargetServiceLevel
	exposure := LeadTimeExposure(in.Available(), in.AverageDailyDemand, in.DemandStdDev, in.LeadTimeDays)
	risk := stats.Clamp(math.Max(residual, exposure), 0, 1)
	if annualDemand <= 0 {
		risk = 0
	}

	stockout := in.StockoutCost * risk * annualDemand

	return KPI{
		FillRate:         stats.RoundRate(stats.Clamp(1-risk, 0, 1)),
		TotalCost:        stats.RoundQuantity(holding + ordering + stockout),
		HoldingCost:      stats.RoundQuantity(holding),
		OrderingCost:     stats.RoundQuantity(ordering),
		StockoutRisk:     stats.RoundRate(risk),
		AverageInventory: stats.RoundQuantity(avgInventory),
	}
}

// Evaluate is Calculate followed by EstimateKPI.
func Evaluate(in Input) (Policy, KPI) {
	p := Calculate(in)
	return p, EstimateKPI(in, p)
}
