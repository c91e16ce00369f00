package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/andesgear/tienda-backend/api/responses"
	"github.com/andesgear/tienda-backend/api/validators"
	"github.com/andesgear/tienda-backend/internal/customers"
	ordersvc "github.com/andesgear/tienda-backend/internal/orders"
	"github.com/andesgear/tienda-backend/pkg/db/models"
	"github.com/andesgear/tienda-backend/pkg/enums"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
	"github.com/andesgear/tienda-backend/pkg/logger"
)

// Checkout handles submission of the storefront cart.
func Checkout(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]ordersvc.ItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, ordersvc.ItemInput{
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
			})
		}

		order, err := svc.CreateOrder(r.Context(), ordersvc.CreateOrderInput{
			Customer: customers.CustomerInput{
				FirstName: payload.Customer.FirstName,
				LastName:  payload.Customer.LastName,
				Email:     payload.Customer.Email,
				RUT:       payload.Customer.RUT,
				Phone:     payload.Customer.Phone,
			},
			Address: ordersvc.AddressInput{
				AddressLine1: payload.Address.AddressLine1,
				AddressLine2: payload.Address.AddressLine2,
				RegionID:     payload.Address.RegionID,
				CommuneID:    payload.Address.CommuneID,
			},
			Items:         items,
			PaymentMethod: enums.PaymentMethod(payload.PaymentMethod),
			CarrierID:     payload.CarrierID,
			CustomerIP:    clientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(order))
	}
}

type checkoutRequest struct {
	Customer      checkoutCustomer `json:"customer" validate:"required"`
	Address       checkoutAddress  `json:"shipping_address" validate:"required"`
	Items         []checkoutItem   `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=webpay transfer"`
	CarrierID     *uuid.UUID       `json:"carrier_id,omitempty" validate:"omitempty"`
}

type checkoutCustomer struct {
	FirstName string  `json:"first_name" validate:"required,max=120"`
	LastName  string  `json:"last_name" validate:"required,max=120"`
	Email     string  `json:"email" validate:"required,email"`
	RUT       *string `json:"rut,omitempty" validate:"omitempty,max=20"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

type checkoutAddress struct {
	AddressLine1 string    `json:"address_line1" validate:"required,max=250"`
	AddressLine2 *string   `json:"address_line2,omitempty" validate:"omitempty,max=250"`
	RegionID     uuid.UUID `json:"region_id" validate:"required"`
	CommuneID    uuid.UUID `json:"commune_id" validate:"required"`
}

type checkoutItem struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type checkoutResponse struct {
	OrderNumber     string             `json:"order_number"`
	Status          string             `json:"status"`
	PaymentStatus   string             `json:"payment_status"`
	SubtotalCLP     int                `json:"subtotal"`
	ShippingCostCLP int                `json:"shipping_cost"`
	TaxCLP          int                `json:"tax"`
	TotalCLP        int                `json:"total"`
	Items           []checkoutItemView `json:"items"`
}

type checkoutItemView struct {
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	UnitPriceCLP int    `json:"unit_price"`
	SubtotalCLP  int    `json:"subtotal"`
}

func newCheckoutResponse(order *models.Order) checkoutResponse {
	if order == nil {
		return checkoutResponse{}
	}
	items := make([]checkoutItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, checkoutItemView{
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			UnitPriceCLP: item.UnitPriceCLP,
			SubtotalCLP:  item.SubtotalCLP,
		})
	}
	return checkoutResponse{
		OrderNumber:     order.OrderNumber,
		Status:          string(order.Status),
		PaymentStatus:   string(order.PaymentStatus),
		SubtotalCLP:     order.SubtotalCLP,
		ShippingCostCLP: order.ShippingCostCLP,
		TaxCLP:          order.TaxCLP,
		TotalCLP:        order.TotalCLP,
		Items:           items,
	}
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
