package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the commercial identity behind an order. The fulfillment core
// only finds-by-email or creates unverified customers; profile management
// owns the rest of the lifecycle.
type Customer struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	FirstName  string            `gorm:"column:first_name;not null"`
	LastName   string            `gorm:"column:last_name;not null"`
	Email      string            `gorm:"column:email;uniqueIndex;not null"`
	RUT        *string           `gorm:"column:rut"`
	Phone      *string           `gorm:"column:phone"`
	IsVerified bool              `gorm:"column:is_verified;not null;default:false"`
	Addresses  []CustomerAddress `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerAddress is a delivery destination. Checkout upserts on the
// (customer, line1, commune) natural key.
type CustomerAddress struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID        uuid.UUID `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:uq_customer_address"`
	AddressLine1      string    `gorm:"column:address_line1;not null;uniqueIndex:uq_customer_address"`
	AddressLine2      *string   `gorm:"column:address_line2"`
	CommuneID         uuid.UUID `gorm:"column:commune_id;type:uuid;not null;uniqueIndex:uq_customer_address"`
	IsDefaultShipping bool      `gorm:"column:is_default_shipping;not null;default:false"`
	Commune           *Commune  `gorm:"foreignKey:CommuneID"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
