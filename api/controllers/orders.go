package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andesgear/tienda-backend/api/responses"
	"github.com/andesgear/tienda-backend/api/validators"
	ordersvc "github.com/andesgear/tienda-backend/internal/orders"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
	"github.com/andesgear/tienda-backend/pkg/logger"
)

// TrackOrder returns the public status projection for an order number.
// No authentication: the order number itself is the lookup secret.
func TrackOrder(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderNumber, err := validators.ParseQueryString(r, "order_number", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Track(r.Context(), orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// CancelOrder cancels an order and restores its stock. Back-office only.
func CancelOrder(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderNumber := chi.URLParam(r, "orderNumber")
		if orderNumber == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		order, err := svc.Cancel(r.Context(), orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"order_number": order.OrderNumber,
			"status":       string(order.Status),
		})
	}
}
