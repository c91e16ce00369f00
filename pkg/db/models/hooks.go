package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORM hooks assigning IDs client-side so inserts work on every dialect.
// The SQL schema keeps its gen_random_uuid() default for rows created
// outside the app.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *Region) BeforeCreate(*gorm.DB) error            { ensureID(&m.ID); return nil }
func (m *Commune) BeforeCreate(*gorm.DB) error           { ensureID(&m.ID); return nil }
func (m *Product) BeforeCreate(*gorm.DB) error           { ensureID(&m.ID); return nil }
func (m *ProductVariant) BeforeCreate(*gorm.DB) error    { ensureID(&m.ID); return nil }
func (m *ShippingClass) BeforeCreate(*gorm.DB) error     { ensureID(&m.ID); return nil }
func (m *Carrier) BeforeCreate(*gorm.DB) error           { ensureID(&m.ID); return nil }
func (m *CarrierCapability) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }
func (m *ShippingZone) BeforeCreate(*gorm.DB) error      { ensureID(&m.ID); return nil }
func (m *Customer) BeforeCreate(*gorm.DB) error          { ensureID(&m.ID); return nil }
func (m *CustomerAddress) BeforeCreate(*gorm.DB) error   { ensureID(&m.ID); return nil }
func (m *Order) BeforeCreate(*gorm.DB) error             { ensureID(&m.ID); return nil }
func (m *OrderItem) BeforeCreate(*gorm.DB) error         { ensureID(&m.ID); return nil }
