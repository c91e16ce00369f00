package inventory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andesgear/tienda-backend/pkg/db/models"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
)

// LineRequest asks for qty units of a variant.
type LineRequest struct {
	VariantID uuid.UUID
	Qty       int
}

// AvailabilityResult reports whether a single line can currently be fulfilled.
type AvailabilityResult struct {
	VariantID   uuid.UUID
	Requested   int
	Available   int
	Fulfillable bool
}

// CheckAvailability reports stock for each line without taking locks. It is
// advisory only: the authoritative check happens under lock in Decrement.
func CheckAvailability(ctx context.Context, db *gorm.DB, requests []LineRequest) ([]AvailabilityResult, error) {
	if err := validateRequests(requests); err != nil {
		return nil, err
	}

	variants, err := loadVariants(ctx, db, requests, false)
	if err != nil {
		return nil, err
	}

	results := make([]AvailabilityResult, 0, len(requests))
	for _, req := range requests {
		variant, ok := variants[req.VariantID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found").
				WithDetails(map[string]any{"variant_id": req.VariantID.String()})
		}
		results = append(results, AvailabilityResult{
			VariantID:   req.VariantID,
			Requested:   req.Qty,
			Available:   variant.StockQuantity,
			Fulfillable: variant.StockQuantity >= req.Qty,
		})
	}
	return results, nil
}

// Decrement reduces stock for every line, or none. Rows are locked in
// ascending variant-ID order so concurrent checkouts cannot deadlock.
// Callers must run it inside a transaction.
func Decrement(ctx context.Context, tx *gorm.DB, requests []LineRequest) error {
	if err := validateRequests(requests); err != nil {
		return err
	}

	variants, err := loadVariants(ctx, tx, requests, true)
	if err != nil {
		return err
	}

	for _, req := range requests {
		variant, ok := variants[req.VariantID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found").
				WithDetails(map[string]any{"variant_id": req.VariantID.String()})
		}
		if variant.StockQuantity < req.Qty {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"variant_id": req.VariantID.String(),
					"sku":        variant.SKU,
					"requested":  req.Qty,
					"available":  variant.StockQuantity,
				})
		}
	}

	for _, req := range requests {
		result := tx.WithContext(ctx).
			Model(&models.ProductVariant{}).
			Where("id = ? AND stock_quantity >= ?", req.VariantID, req.Qty).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", req.Qty))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{"variant_id": req.VariantID.String(), "requested": req.Qty})
		}
	}
	return nil
}

// Restore returns units to stock, e.g. when an order is cancelled. Lines
// whose variant no longer exists are skipped silently.
func Restore(ctx context.Context, tx *gorm.DB, requests []LineRequest) error {
	if err := validateRequests(requests); err != nil {
		return err
	}

	for _, req := range requests {
		err := tx.WithContext(ctx).
			Model(&models.ProductVariant{}).
			Where("id = ?", req.VariantID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", req.Qty)).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

func validateRequests(requests []LineRequest) error {
	if len(requests) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	for _, req := range requests {
		if req.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"variant_id": req.VariantID.String()})
		}
	}
	return nil
}

func loadVariants(ctx context.Context, db *gorm.DB, requests []LineRequest, lock bool) (map[uuid.UUID]models.ProductVariant, error) {
	ids := make([]uuid.UUID, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.VariantID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	query := db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC")
	if lock && db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rows []models.ProductVariant
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	variants := make(map[uuid.UUID]models.ProductVariant, len(rows))
	for _, row := range rows {
		variants[row.ID] = row
	}
	return variants, nil
}
