package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is the immutable snapshot of a purchased line. It survives later
// catalog edits, so name/SKU/price are copied rather than referenced.
type OrderItem struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductVariantID *uuid.UUID      `gorm:"column:product_variant_id;type:uuid"`
	ProductName      string          `gorm:"column:product_name;not null"`
	SKU              string          `gorm:"column:sku;not null"`
	Quantity         int             `gorm:"column:quantity;not null"`
	UnitPriceCLP     int             `gorm:"column:unit_price_clp;not null"`
	SubtotalCLP      int             `gorm:"column:subtotal_clp;not null"`
	ProductVariant   *ProductVariant `gorm:"foreignKey:ProductVariantID"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
