package orders

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andesgear/tienda-backend/pkg/db/models"
	"github.com/andesgear/tienda-backend/pkg/types"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Carrier").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	// map-based Updates bypasses the serializer tag, so the jsonb column
	// gets its JSON encoding here
	if meta, ok := updates["metadata"].(types.JSONMap); ok {
		raw, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		clone := make(map[string]any, len(updates))
		for k, v := range updates {
			clone[k] = v
		}
		clone["metadata"] = string(raw)
		updates = clone
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) FindVariantsForSale(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}
