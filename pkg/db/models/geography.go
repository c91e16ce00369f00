package models

import (
	"time"

	"github.com/google/uuid"
)

// Region is a first-level administrative division. Code matches the Chilean
// roman-numeral convention (RM, V, XII, ...) used by the fallback rate table.
type Region struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Code          string    `gorm:"column:code;uniqueIndex;not null"`
	IsExtremeZone bool      `gorm:"column:is_extreme_zone;not null;default:false"`
	Communes      []Commune `gorm:"foreignKey:RegionID"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Commune is the shipping-destination granularity.
type Commune struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	RegionID      uuid.UUID `gorm:"column:region_id;type:uuid;not null"`
	Name          string    `gorm:"column:name;not null"`
	IsExtremeZone bool      `gorm:"column:is_extreme_zone;not null;default:false"`
	Region        *Region   `gorm:"foreignKey:RegionID"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
