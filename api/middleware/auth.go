package middleware

import (
	"net/http"
	"strings"

	"github.com/andesgear/tienda-backend/api/responses"
	pkgauth "github.com/andesgear/tienda-backend/pkg/auth"
	"github.com/andesgear/tienda-backend/pkg/config"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
	"github.com/andesgear/tienda-backend/pkg/logger"
)

// StaffAuth validates a back-office bearer token and seeds the request
// context with the staff identity. Storefront routes stay public; only
// order administration goes through this.
func StaffAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseStaffToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithStaff(r.Context(), claims.StaffID.String(), string(claims.Role))
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"staff_id":   claims.StaffID.String(),
					"staff_role": string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCancelPermission gates the order-cancel endpoint on the staff role.
func RequireCancelPermission(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := pkgauth.StaffRole(StaffRoleFromContext(r.Context()))
			if !role.CanCancelOrders() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role may not cancel orders"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
