package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andesgear/tienda-backend/pkg/db/models"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
)

func TestDecrementReducesStockAtomically(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variantA := seedVariant(t, db, "SKU-A", 5)
	variantB := seedVariant(t, db, "SKU-B", 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Decrement(ctx, tx, []LineRequest{
			{VariantID: variantA, Qty: 3},
			{VariantID: variantB, Qty: 1},
		})
	})
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}

	if got := stockOf(t, db, variantA); got != 2 {
		t.Fatalf("expected variant A stock 2, got %d", got)
	}
	if got := stockOf(t, db, variantB); got != 0 {
		t.Fatalf("expected variant B stock 0, got %d", got)
	}
}

func TestDecrementInsufficientStockRollsBackAllLines(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variantA := seedVariant(t, db, "SKU-A", 5)
	variantB := seedVariant(t, db, "SKU-B", 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Decrement(ctx, tx, []LineRequest{
			{VariantID: variantA, Qty: 2},
			{VariantID: variantB, Qty: 3},
		})
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	// the whole transaction rolled back, including the fulfillable line
	if got := stockOf(t, db, variantA); got != 5 {
		t.Fatalf("expected variant A stock unchanged at 5, got %d", got)
	}
	if got := stockOf(t, db, variantB); got != 1 {
		t.Fatalf("expected variant B stock unchanged at 1, got %d", got)
	}
}

func TestDecrementLastUnit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "SKU-LAST", 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Decrement(ctx, tx, []LineRequest{{VariantID: variant, Qty: 1}})
	})
	if err != nil {
		t.Fatalf("decrement last unit: %v", err)
	}
	if got := stockOf(t, db, variant); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return Decrement(ctx, tx, []LineRequest{{VariantID: variant, Qty: 1}})
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock on empty variant, got %v", err)
	}
}

func TestDecrementConcurrentLastUnitHasOneWinner(t *testing.T) {
	t.Parallel()

	// immediate transactions make the second writer wait instead of
	// failing a deferred lock upgrade
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared&_txlock=immediate&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ProductVariant{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	variant := seedVariant(t, db, "SKU-RACE", 1)

	start := make(chan struct{})
	outcomes := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			outcomes <- db.Transaction(func(tx *gorm.DB) error {
				return Decrement(ctx, tx, []LineRequest{{VariantID: variant, Qty: 1}})
			})
		}()
	}
	close(start)

	var won, outOfStock int
	for i := 0; i < 2; i++ {
		switch err := <-outcomes; {
		case err == nil:
			won++
		case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock):
			outOfStock++
		default:
			t.Fatalf("unexpected decrement error: %v", err)
		}
	}
	if won != 1 || outOfStock != 1 {
		t.Fatalf("expected exactly one winner and one insufficient-stock loser, got %d/%d", won, outOfStock)
	}
	if got := stockOf(t, db, variant); got != 0 {
		t.Fatalf("expected stock 0 after the race, got %d", got)
	}
}

func TestDecrementUnknownVariant(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return Decrement(ctx, tx, []LineRequest{{VariantID: uuid.New(), Qty: 1}})
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDecrementInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "SKU-A", 5)

	err := Decrement(ctx, db, []LineRequest{{VariantID: variant, Qty: 0}})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = Decrement(ctx, db, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty lines, got %v", err)
	}
}

func TestCheckAvailabilityReportsWithoutMutating(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "SKU-A", 2)

	results, err := CheckAvailability(ctx, db, []LineRequest{{VariantID: variant, Qty: 3}})
	if err != nil {
		t.Fatalf("check availability: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Fulfillable {
		t.Fatalf("expected line to be unfulfillable: %+v", results[0])
	}
	if results[0].Available != 2 || results[0].Requested != 3 {
		t.Fatalf("unexpected result %+v", results[0])
	}
	if got := stockOf(t, db, variant); got != 2 {
		t.Fatalf("availability check mutated stock: %d", got)
	}
}

func TestRestoreReturnsUnitsAndSkipsMissingVariants(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, "SKU-A", 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Restore(ctx, tx, []LineRequest{
			{VariantID: variant, Qty: 2},
			{VariantID: uuid.New(), Qty: 4},
		})
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := stockOf(t, db, variant); got != 3 {
		t.Fatalf("expected stock 3 after restore, got %d", got)
	}
}

func seedVariant(t *testing.T, db *gorm.DB, sku string, stock int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:           uuid.New(),
		Name:         "Producto " + sku,
		SKU:          "P-" + sku,
		BasePriceCLP: 10000,
		IsActive:     true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	variant := models.ProductVariant{
		ID:            uuid.New(),
		ProductID:     product.ID,
		SKU:           sku,
		Name:          "Variante " + sku,
		PriceCLP:      10000,
		StockQuantity: stock,
		WeightKg:      decimal.NewFromFloat(1.0),
		IsActive:      true,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	return variant.ID
}

func stockOf(t *testing.T, db *gorm.DB, variantID uuid.UUID) int {
	t.Helper()
	var variant models.ProductVariant
	if err := db.First(&variant, "id = ?", variantID).Error; err != nil {
		t.Fatalf("load variant: %v", err)
	}
	return variant.StockQuantity
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ProductVariant{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
