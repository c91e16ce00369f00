package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andesgear/tienda-backend/api/responses"
	"github.com/andesgear/tienda-backend/api/validators"
	shippingsvc "github.com/andesgear/tienda-backend/internal/shipping"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
	"github.com/andesgear/tienda-backend/pkg/logger"
	"github.com/andesgear/tienda-backend/pkg/metrics"
)

// ShippingQuote resolves a single-destination shipping cost. The storefront
// calls it with GET query parameters; POST with a JSON body works too. The
// commune and carrier are optional; without them the quote falls back to the
// regional rate table.
func ShippingQuote(calc *shippingsvc.Calculator, m *metrics.CheckoutMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping calculator unavailable"))
			return
		}

		input, err := quoteInputFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := calc.Quote(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncQuote(string(quote.Method))
		responses.WriteSuccess(w, quote)
	}
}

func quoteInputFromRequest(r *http.Request) (*shippingsvc.QuoteInput, error) {
	if r.Method == http.MethodPost {
		var payload shippingQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		weight := decimal.NewFromInt(1)
		if payload.WeightKg != nil {
			parsed, err := decimal.NewFromString(*payload.WeightKg)
			if err != nil || parsed.IsNegative() {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be a non-negative number")
			}
			weight = parsed
		}
		return &shippingsvc.QuoteInput{
			RegionID:  payload.RegionID,
			CommuneID: payload.CommuneID,
			CarrierID: payload.CarrierID,
			WeightKg:  weight,
		}, nil
	}

	regionID, err := validators.ParseQueryUUID(r, "region_id", true)
	if err != nil {
		return nil, err
	}
	communeID, err := validators.ParseQueryUUID(r, "commune_id", false)
	if err != nil {
		return nil, err
	}
	carrierID, err := validators.ParseQueryUUID(r, "carrier_id", false)
	if err != nil {
		return nil, err
	}
	weight, err := validators.ParseQueryDecimal(r, "weight_kg", decimal.NewFromInt(1))
	if err != nil {
		return nil, err
	}

	input := shippingsvc.QuoteInput{
		RegionID: regionID,
		WeightKg: weight,
	}
	if communeID != uuid.Nil {
		input.CommuneID = &communeID
	}
	if carrierID != uuid.Nil {
		input.CarrierID = &carrierID
	}
	return &input, nil
}

type shippingQuoteRequest struct {
	RegionID  uuid.UUID  `json:"region_id" validate:"required"`
	CommuneID *uuid.UUID `json:"commune_id,omitempty"`
	CarrierID *uuid.UUID `json:"carrier_id,omitempty"`
	WeightKg  *string    `json:"weight_kg,omitempty"`
}

// ShippingOptions lists the eligible carriers for a cart, priced per zone.
func ShippingOptions(svc *shippingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		var payload shippingOptionsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		weight := decimal.NewFromInt(1)
		if payload.WeightKg != nil {
			parsed, err := decimal.NewFromString(*payload.WeightKg)
			if err != nil || parsed.IsNegative() {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "weight must be a non-negative number"))
				return
			}
			weight = parsed
		}

		options, err := svc.Options(r.Context(), shippingsvc.OptionsInput{
			CommuneID:        payload.CommuneID,
			ShippingClassIDs: payload.ShippingClassIDs,
			WeightKg:         weight,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"options": options})
	}
}

type shippingOptionsRequest struct {
	CommuneID        uuid.UUID   `json:"commune_id" validate:"required"`
	ShippingClassIDs []uuid.UUID `json:"shipping_class_ids" validate:"omitempty"`
	WeightKg         *string     `json:"weight_kg,omitempty"`
}
