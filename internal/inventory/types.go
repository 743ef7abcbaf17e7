package inventory

import "time"

// Observation is a single historical demand record for a variant.
type Observation struct {
	Period   time.Time `json:"period"`
	Quantity float64   `json:"quantity"`
}

// MonthlyAggregate is a pre-aggregated monthly demand total supplied by the data layer.
type MonthlyAggregate struct {
	Period              time.Time `json:"period"`
	Quantity            float64   `json:"quantity"`
	AverageLeadTimeDays *float64  `json:"average_lead_time_days,omitempty"`
}

// SeasonalFactor is a multiplicative adjustment for one position (1-12) of the seasonal cycle.
type SeasonalFactor struct {
	Sequence      int        `json:"sequence"`
	Factor        float64    `json:"factor"`
	EffectiveFrom *time.Time `json:"effective_from,omitempty"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
}

// EffectiveAt reports whether the factor's date window contains t. Open bounds always match.
func (f SeasonalFactor) EffectiveAt(t time.Time) bool {
	if f.EffectiveFrom != nil && t.Before(*f.EffectiveFrom) {
		return false
	}
	if f.EffectiveTo != nil && t.After(*f.EffectiveTo) {
		return false
	}
	return true
}

// Variant identifies a purchasable SKU.
type Variant struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
}

// StockSnapshot is the current stock position, aggregated across warehouses.
type StockSnapshot struct {
	OnHand        float64 `json:"on_hand"`
	Reserved      float64 `json:"reserved"`
	MinStockLevel float64 `json:"min_stock_level"`
}

// Available is on-hand stock not yet promised to an order.
func (s StockSnapshot) Available() float64 {
	return s.OnHand - s.Reserved
}

// MasterData holds product/variant level overrides. Nil pointers mean "not configured".
type MasterData struct {
	LeadTimeDays    *float64 `json:"lead_time_days,omitempty"`
	SafetyStock     *float64 `json:"safety_stock,omitempty"`
	ReorderPoint    *float64 `json:"reorder_point,omitempty"`
	ReorderQuantity *float64 `json:"reorder_quantity,omitempty"`
	UnitPrice       float64  `json:"unit_price"`
	Currency        string   `json:"currency"`
}

// Classification is the currently effective ABC class of a variant together with
// the service level thresholds of the classification policy that produced it.
type Classification struct {
	Label         string             `json:"label"`
	ServiceLevels map[string]float64 `json:"service_levels,omitempty"`
}

// VariantSnapshot is everything the data layer knows about one variant at request time.
type VariantSnapshot struct {
	Variant         Variant            `json:"variant"`
	History         []Observation      `json:"history,omitempty"`
	Aggregates      []MonthlyAggregate `json:"aggregates,omitempty"`
	SeasonalFactors []SeasonalFactor   `json:"seasonal_factors,omitempty"`
	Classification  *Classification    `json:"classification,omitempty"`
	Stock           StockSnapshot      `json:"stock"`
	Master          MasterData         `json:"master"`
}
