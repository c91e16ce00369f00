package controllers

import (
	"net/http"

	"github.com/andesgear/tienda-backend/api/responses"
	"github.com/andesgear/tienda-backend/api/validators"
	paymentsvc "github.com/andesgear/tienda-backend/internal/payments"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
	"github.com/andesgear/tienda-backend/pkg/logger"
)

// WebpayStart creates the gateway transaction for a pending order and
// returns the redirect the storefront sends the shopper to.
func WebpayStart(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload webpayStartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Start(r.Context(), payload.OrderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// WebpayReturn processes the gateway's redirect back to the store. Webpay
// may POST form fields or GET query parameters, and an aborted payment
// arrives with TBK_TOKEN instead of token_ws.
func WebpayReturn(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		params := returnParamsFromRequest(r)

		result, err := svc.HandleReturn(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type webpayStartRequest struct {
	OrderNumber string `json:"order_number" validate:"required,max=30"`
}

func returnParamsFromRequest(r *http.Request) paymentsvc.ReturnParams {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			return paymentsvc.ReturnParams{
				TokenWS:  r.PostFormValue("token_ws"),
				TBKToken: r.PostFormValue("TBK_TOKEN"),
			}
		}
	}
	query := r.URL.Query()
	return paymentsvc.ReturnParams{
		TokenWS:  query.Get("token_ws"),
		TBKToken: query.Get("TBK_TOKEN"),
	}
}
