package shipping

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andesgear/tienda-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a shipping repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindZone(ctx context.Context, communeID uuid.UUID, carrierID *uuid.UUID) (*models.ShippingZone, error) {
	query := r.db.WithContext(ctx).Where("commune_id = ?", communeID)
	if carrierID != nil {
		query = query.Where("carrier_id = ?", *carrierID)
	}
	var zone models.ShippingZone
	if err := query.Order("created_at ASC").First(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *repository) FindZonesByCommune(ctx context.Context, communeID uuid.UUID) ([]models.ShippingZone, error) {
	var zones []models.ShippingZone
	err := r.db.WithContext(ctx).
		Where("commune_id = ?", communeID).
		Find(&zones).Error
	if err != nil {
		return nil, err
	}
	return zones, nil
}

func (r *repository) FindCommune(ctx context.Context, id uuid.UUID) (*models.Commune, error) {
	var commune models.Commune
	err := r.db.WithContext(ctx).
		Preload("Region").
		Where("id = ?", id).
		First(&commune).Error
	if err != nil {
		return nil, err
	}
	return &commune, nil
}

func (r *repository) FindRegion(ctx context.Context, id uuid.UUID) (*models.Region, error) {
	var region models.Region
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&region).Error; err != nil {
		return nil, err
	}
	return &region, nil
}

func (r *repository) ListActiveCarriers(ctx context.Context) ([]models.Carrier, error) {
	var carriers []models.Carrier
	err := r.db.WithContext(ctx).
		Preload("Capabilities").
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&carriers).Error
	if err != nil {
		return nil, err
	}
	return carriers, nil
}
