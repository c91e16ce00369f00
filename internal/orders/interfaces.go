package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andesgear/tienda-backend/pkg/db/models"
)

// Repository defines persistence operations for order assembly and lookup.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	FindVariantsForSale(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error)
}

// txRunner is the slice of pkg/db.Client the service needs.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
