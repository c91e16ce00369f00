package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. The fulfillment core reads it for pricing,
// restriction flags and shipping class; catalog management owns its lifecycle.
type Product struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	SKU             string           `gorm:"column:sku;uniqueIndex;not null"`
	BasePriceCLP    int              `gorm:"column:base_price_clp;not null"`
	ShippingClassID *uuid.UUID       `gorm:"column:shipping_class_id;type:uuid"`
	IsRestricted    bool             `gorm:"column:is_restricted;not null;default:false"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	ShippingClass   *ShippingClass   `gorm:"foreignKey:ShippingClassID"`
	Variants        []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
