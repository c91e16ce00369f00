package shipping

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andesgear/tienda-backend/pkg/db/models"
)

// Repository defines the read-only persistence surface for rate resolution.
// Zone and geography rows are admin-owned; the fulfillment core never writes
// them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindZone(ctx context.Context, communeID uuid.UUID, carrierID *uuid.UUID) (*models.ShippingZone, error)
	FindZonesByCommune(ctx context.Context, communeID uuid.UUID) ([]models.ShippingZone, error)
	FindCommune(ctx context.Context, id uuid.UUID) (*models.Commune, error)
	FindRegion(ctx context.Context, id uuid.UUID) (*models.Region, error)
	ListActiveCarriers(ctx context.Context) ([]models.Carrier, error)
}
