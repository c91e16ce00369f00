package shipping

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andesgear/tienda-backend/pkg/enums"
)

// QuoteInput describes a single-destination rate request.
type QuoteInput struct {
	RegionID  uuid.UUID
	CommuneID *uuid.UUID
	CarrierID *uuid.UUID
	WeightKg  decimal.Decimal
}

// Quote is the resolved shipping cost for a destination. When Method is
// QuoteMethodError, CostCLP is zero and Reason explains the failure.
type Quote struct {
	CostCLP int               `json:"cost"`
	Method  enums.QuoteMethod `json:"method"`
	Carrier string            `json:"carrier"`
	DaysMin int               `json:"days_min"`
	DaysMax int               `json:"days_max"`
	Reason  string            `json:"error,omitempty"`
}

// OptionsInput describes a cart-aware carrier options request.
type OptionsInput struct {
	CommuneID        uuid.UUID
	ShippingClassIDs []uuid.UUID
	WeightKg         decimal.Decimal
}

// Option is one eligible carrier with its zone-priced cost.
type Option struct {
	CarrierID   uuid.UUID `json:"carrier_id"`
	CarrierName string    `json:"carrier_name"`
	CarrierCode string    `json:"carrier_code"`
	CostCLP     int       `json:"cost"`
	DaysMin     int       `json:"days_min"`
	DaysMax     int       `json:"days_max"`
}
