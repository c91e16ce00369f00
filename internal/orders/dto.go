package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/andesgear/tienda-backend/internal/customers"
	"github.com/andesgear/tienda-backend/pkg/enums"
)

// ItemInput is one requested cart line.
type ItemInput struct {
	VariantID uuid.UUID
	Quantity  int
}

// AddressInput is the checkout form's destination block.
type AddressInput struct {
	AddressLine1 string
	AddressLine2 *string
	RegionID     uuid.UUID
	CommuneID    uuid.UUID
}

// CreateOrderInput is everything checkout needs to assemble an order.
type CreateOrderInput struct {
	Customer      customers.CustomerInput
	Address       AddressInput
	Items         []ItemInput
	PaymentMethod enums.PaymentMethod
	CarrierID     *uuid.UUID
	CustomerIP    string
}

// TrackingItem is a public projection of one purchased line.
type TrackingItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

// TrackingView is the public order-status projection returned to shoppers.
// It deliberately omits customer identity and address data.
type TrackingView struct {
	OrderNumber        string         `json:"order_number"`
	Status             string         `json:"status"`
	StatusLabel        string         `json:"status_label"`
	PaymentStatus      string         `json:"payment_status"`
	PaymentStatusLabel string         `json:"payment_status_label"`
	PaymentMethod      *string        `json:"payment_method"`
	TotalCLP           int            `json:"total"`
	CreatedAt          time.Time      `json:"created_at"`
	Carrier            *string        `json:"carrier"`
	TrackingCode       *string        `json:"tracking_code"`
	SellerMessage      *string        `json:"seller_message"`
	ItemsCount         int            `json:"items_count"`
	Items              []TrackingItem `json:"items"`
}
