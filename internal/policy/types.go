package policy

import (
	"invopt-mcp/internal/inventory"
)

// Numerical guards applied before any policy math.
const (
	MinLeadTimeDays     = 1.0
	MinReviewPeriodDays = 1.0
	// MinCarryingCost floors holdingCostRate x unitPrice in the EOQ denominator.
	MinCarryingCost = 0.01
	DaysPerYear     = 365.0
)

// Input is the complete configuration of one variant's inventory policy.
type Input struct {
	Variant            inventory.Variant `json:"variant"`
	OnHand             float64           `json:"on_hand"`
	Reserved           float64           `json:"reserved"`
	AverageDailyDemand float64           `json:"average_daily_demand"`
	DemandStdDev       float64           `json:"demand_std_dev"`
	LeadTimeDays       float64           `json:"lead_time_days"`
	ReviewPeriodDays   float64           `json:"review_period_days"`
	UnitPrice          float64           `json:"unit_price"`
	Currency           string            `json:"currency"`
	HoldingCostRate    float64           `json:"holding_cost_rate"`
	OrderingCost       float64           `json:"ordering_cost"`
	TargetServiceLevel float64           `json:"target_service_level"`
	StockoutCost       float64           `json:"stockout_cost"`
	MinStockLevel      float64           `json:"min_stock_level"`

	SafetyStockOverride     *float64 `json:"safety_stock_override,omitempty"`
	ReorderPointOverride    *float64 `json:"reorder_point_override,omitempty"`
	ReorderQuantityOverride *float64 `json:"reorder_quantity_override,omitempty"`
}

// Available is on-hand stock minus reservations.
func (in Input) Available() float64 {
	return in.OnHand - in.Reserved
}

// Policy is the derived periodic-review stocking policy.
type Policy struct {
	Variant               inventory.Variant `json:"variant"`
	SafetyStock           float64           `json:"safety_stock"`
	ReorderPoint          float64           `json:"reorder_point"`
	MaxStockLevel         float64           `json:"max_stock_level"`
	EconomicOrderQuantity float64           `json:"economic_order_quantity"`
	OrderQuantity         float64           `json:"order_quantity"`

	ServiceLevel       float64 `json:"service_level"`
	LeadTimeDays       float64 `json:"lead_time_days"`
	ReviewPeriodDays   float64 `json:"review_period_days"`
	AverageDailyDemand float64 `json:"average_daily_demand"`
	DemandStdDev       float64 `json:"demand_std_dev"`
	Available          float64 `json:"available"`
	MinStockLevel      float64 `json:"min_stock_level"`
	UnitPrice          float64 `json:"unit_price"`
	Currency           string  `json:"currency"`
}

// KPI holds analytic (non-simulated) estimates derived from a policy.
type KPI struct {
	FillRate         float64 `json:"fill_rate"`
	TotalCost        float64 `json:"total_cost"`
	HoldingCost      float64 `json:"holding_cost"`
	OrderingCost     float64 `json:"ordering_cost"`
	StockoutRisk     float64 `json:"stockout_risk"`
	AverageInventory float64 `json:"average_inventory"`
}
