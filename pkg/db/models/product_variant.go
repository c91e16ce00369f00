package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is the sellable unit. StockQuantity is mutated only by the
// inventory ledger, under a row lock, and may never go negative.
type ProductVariant struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	SKU           string          `gorm:"column:sku;uniqueIndex;not null"`
	Name          string          `gorm:"column:name;not null"`
	PriceCLP      int             `gorm:"column:price_clp;not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	WeightKg      decimal.Decimal `gorm:"column:weight_kg;type:numeric(8,3);not null;default:1.0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	Product       *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
