package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andesgear/tienda-backend/pkg/enums"
)

// Carrier is a shipping company able to move parcels between communes.
type Carrier struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name         string              `gorm:"column:name;not null"`
	Code         string              `gorm:"column:code;uniqueIndex;not null"`
	IsActive     bool                `gorm:"column:is_active;not null;default:true"`
	Zones        []ShippingZone      `gorm:"foreignKey:CarrierID"`
	Capabilities []CarrierCapability `gorm:"foreignKey:CarrierID"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ShippingClass is a handling category (normal, oversized, dangerous,
// pickup-only) that constrains which carriers may transport a product.
type ShippingClass struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Code      enums.ShippingClassCode `gorm:"column:code;type:text;uniqueIndex;not null"`
	Name      string                  `gorm:"column:name;not null"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}

// CarrierCapability marks whether a carrier supports a shipping class.
// Absent rows mean unsupported.
type CarrierCapability struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CarrierID       uuid.UUID `gorm:"column:carrier_id;type:uuid;not null;uniqueIndex:uq_carrier_capability"`
	ShippingClassID uuid.UUID `gorm:"column:shipping_class_id;type:uuid;not null;uniqueIndex:uq_carrier_capability"`
	IsSupported     bool      `gorm:"column:is_supported;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ShippingZone is the admin-configured exact rate for a (commune, carrier)
// pair. At most one row may exist per pair.
type ShippingZone struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CommuneID            uuid.UUID       `gorm:"column:commune_id;type:uuid;not null;uniqueIndex:uq_shipping_zone"`
	CarrierID            uuid.UUID       `gorm:"column:carrier_id;type:uuid;not null;uniqueIndex:uq_shipping_zone"`
	BaseRate             decimal.Decimal `gorm:"column:base_rate;type:numeric(10,2);not null"`
	PerKgRate            decimal.Decimal `gorm:"column:per_kg_rate;type:numeric(10,2);not null"`
	ExtremeZoneSurcharge decimal.Decimal `gorm:"column:extreme_zone_surcharge;type:numeric(10,2);not null;default:0"`
	EstimatedDaysMin     int             `gorm:"column:estimated_days_min;not null;default:2"`
	EstimatedDaysMax     int             `gorm:"column:estimated_days_max;not null;default:5"`
	Commune              *Commune        `gorm:"foreignKey:CommuneID"`
	Carrier              *Carrier        `gorm:"foreignKey:CarrierID"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
