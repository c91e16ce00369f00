package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/andesgear/tienda-backend/pkg/enums"
	"github.com/andesgear/tienda-backend/pkg/types"
)

// Order is the durable record produced by checkout. SubtotalCLP is stored
// net of IVA so that TotalCLP == SubtotalCLP + ShippingCostCLP + TaxCLP
// holds for every persisted row.
type Order struct {
	ID                      uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber             string              `gorm:"column:order_number;uniqueIndex:uq_orders_order_number;not null"`
	CustomerID              uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	ShippingAddressID       uuid.UUID           `gorm:"column:shipping_address_id;type:uuid;not null"`
	CarrierID               *uuid.UUID          `gorm:"column:carrier_id;type:uuid"`
	Status                  enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus           enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	SubtotalCLP             int                 `gorm:"column:subtotal_clp;not null"`
	ShippingCostCLP         int                 `gorm:"column:shipping_cost_clp;not null;default:0"`
	TaxCLP                  int                 `gorm:"column:tax_clp;not null"`
	TotalCLP                int                 `gorm:"column:total_clp;not null"`
	AgeVerificationComplete bool                `gorm:"column:age_verification_completed;not null;default:false"`
	Metadata                types.JSONMap       `gorm:"column:metadata;type:jsonb;serializer:json"`
	Customer                *Customer           `gorm:"foreignKey:CustomerID"`
	ShippingAddress         *CustomerAddress    `gorm:"foreignKey:ShippingAddressID"`
	Carrier                 *Carrier            `gorm:"foreignKey:CarrierID"`
	Items                   []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt               time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
