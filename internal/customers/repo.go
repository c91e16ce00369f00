package customers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andesgear/tienda-backend/pkg/db/models"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
)

// CustomerInput carries the checkout form's identity fields.
type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	RUT       *string
	Phone     *string
}

// AddressInput carries the checkout form's destination fields.
type AddressInput struct {
	CustomerID   uuid.UUID
	AddressLine1 string
	AddressLine2 *string
	CommuneID    uuid.UUID
}

// Repository defines persistence for customers and their addresses. Checkout
// never updates verified profiles; it only finds-or-creates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindOrCreateByEmail(ctx context.Context, input CustomerInput) (*models.Customer, error)
	UpsertAddress(ctx context.Context, input AddressInput) (*models.CustomerAddress, error)
	FindAddress(ctx context.Context, id uuid.UUID) (*models.CustomerAddress, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindOrCreateByEmail returns the existing customer for the email, or creates
// an unverified one from the checkout form. Existing profiles keep their
// identity fields; only a freshly supplied phone is written back.
func (r *repository) FindOrCreateByEmail(ctx context.Context, input CustomerInput) (*models.Customer, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	existing, err := r.FindByEmail(ctx, email)
	if err == nil {
		if input.Phone != nil && *input.Phone != "" {
			existing.Phone = input.Phone
			if err := r.db.WithContext(ctx).Model(existing).Update("phone", input.Phone).Error; err != nil {
				return nil, err
			}
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer := models.Customer{
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      email,
		RUT:        input.RUT,
		Phone:      input.Phone,
		IsVerified: false,
	}
	if err := r.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpsertAddress reuses the address matching the (customer, line1, commune)
// natural key, updating line2, and creates it otherwise. Either way the
// address becomes the customer's default shipping destination.
func (r *repository) UpsertAddress(ctx context.Context, input AddressInput) (*models.CustomerAddress, error) {
	line1 := strings.TrimSpace(input.AddressLine1)
	if line1 == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address line is required")
	}

	var address models.CustomerAddress
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND address_line1 = ? AND commune_id = ?", input.CustomerID, line1, input.CommuneID).
		First(&address).Error
	if err == nil {
		updates := map[string]any{"is_default_shipping": true}
		address.IsDefaultShipping = true
		if input.AddressLine2 != nil {
			address.AddressLine2 = input.AddressLine2
			updates["address_line2"] = input.AddressLine2
		}
		if err := r.db.WithContext(ctx).Model(&address).Updates(updates).Error; err != nil {
			return nil, err
		}
		return &address, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	address = models.CustomerAddress{
		CustomerID:        input.CustomerID,
		AddressLine1:      line1,
		AddressLine2:      input.AddressLine2,
		CommuneID:         input.CommuneID,
		IsDefaultShipping: true,
	}
	if err := r.db.WithContext(ctx).Create(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) FindAddress(ctx context.Context, id uuid.UUID) (*models.CustomerAddress, error) {
	var address models.CustomerAddress
	err := r.db.WithContext(ctx).
		Preload("Commune").
		Preload("Commune.Region").
		Where("id = ?", id).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
