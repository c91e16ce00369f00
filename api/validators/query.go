package validators

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
)

// ParseQueryUUID reads a uuid query parameter. A missing parameter is an
// error only when required is true; otherwise uuid.Nil is returned.
func ParseQueryUUID(r *http.Request, key string, required bool) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		if required {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
		}
		return uuid.Nil, nil
	}
	value, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a valid id").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseQueryDecimal reads a positive decimal query parameter, falling back
// to defaultVal when absent.
func ParseQueryDecimal(r *http.Request, key string, defaultVal decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must not be negative").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseQueryString reads a trimmed string query parameter.
func ParseQueryString(r *http.Request, key string, required bool) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" && required {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}
