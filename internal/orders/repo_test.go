package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andesgear/tienda-backend/pkg/db/models"
	"github.com/andesgear/tienda-backend/pkg/enums"
)

func TestRepositoryRoundTripsOrderWithItems(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	repo := NewRepository(f.db)

	customer := models.Customer{ID: uuid.New(), FirstName: "Pedro", LastName: "Soto", Email: "pedro@example.com"}
	require.NoError(t, f.db.Create(&customer).Error)
	address := models.CustomerAddress{
		ID:           uuid.New(),
		CustomerID:   customer.ID,
		AddressLine1: "Calle Uno 100",
		CommuneID:    f.commune.ID,
	}
	require.NoError(t, f.db.Create(&address).Error)
	carrier := models.Carrier{ID: uuid.New(), Name: "Starken", Code: "starken", IsActive: true}
	require.NoError(t, f.db.Create(&carrier).Error)

	order, err := repo.CreateOrder(ctx, &models.Order{
		OrderNumber:       "ORD-REPO123456",
		CustomerID:        customer.ID,
		ShippingAddressID: address.ID,
		CarrierID:         &carrier.ID,
		Status:            enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusPending,
		SubtotalCLP:       10000,
		TaxCLP:            1900,
		TotalCLP:          11900,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, order.ID)

	require.NoError(t, repo.CreateOrderItems(ctx, []models.OrderItem{
		{OrderID: order.ID, ProductName: "Polera", SKU: "POL-1", Quantity: 2, UnitPriceCLP: 5000, SubtotalCLP: 10000},
	}))

	found, err := repo.FindByOrderNumber(ctx, "ORD-REPO123456")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Polera", found.Items[0].ProductName)
	require.NotNil(t, found.Carrier)
	assert.Equal(t, "Starken", found.Carrier.Name)
}

func TestRepositoryUpdateOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	repo := NewRepository(f.db)

	customer := models.Customer{ID: uuid.New(), FirstName: "Ana", LastName: "Leiva", Email: "ana@example.com"}
	require.NoError(t, f.db.Create(&customer).Error)
	address := models.CustomerAddress{
		ID:           uuid.New(),
		CustomerID:   customer.ID,
		AddressLine1: "Calle Dos 200",
		CommuneID:    f.commune.ID,
	}
	require.NoError(t, f.db.Create(&address).Error)

	order, err := repo.CreateOrder(ctx, &models.Order{
		OrderNumber:       "ORD-UPDT123456",
		CustomerID:        customer.ID,
		ShippingAddressID: address.ID,
		Status:            enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusPending,
		SubtotalCLP:       5000,
		TaxCLP:            950,
		TotalCLP:          5950,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateOrder(ctx, order.ID, map[string]any{
		"status":         enums.OrderStatusProcessing,
		"payment_status": enums.PaymentStatusPaid,
	}))

	found, err := repo.FindByOrderNumber(ctx, "ORD-UPDT123456")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, found.Status)
	assert.Equal(t, enums.PaymentStatusPaid, found.PaymentStatus)
}

func TestRepositoryFindVariantsForSaleSkipsInactive(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	repo := NewRepository(f.db)

	activeID := f.seedVariant(t, "ACT", 9990, 5, false)
	inactiveID := f.seedVariant(t, "OFF", 9990, 5, false)
	require.NoError(t, f.db.Model(&models.ProductVariant{}).
		Where("id = ?", inactiveID).
		Update("is_active", false).Error)

	variants, err := repo.FindVariantsForSale(ctx, []uuid.UUID{activeID, inactiveID})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, activeID, variants[0].ID)
	require.NotNil(t, variants[0].Product)
}
