package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/andesgear/tienda-backend/api/responses"
	"github.com/andesgear/tienda-backend/pkg/config"
	"github.com/andesgear/tienda-backend/pkg/db"
	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
	"github.com/andesgear/tienda-backend/pkg/logger"
	"github.com/andesgear/tienda-backend/pkg/redis"
)

const readyProbeTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tienda-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the datasources the checkout pipeline depends on. The
// redis probe is optional: checkout survives without the callback guard.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tienda-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()

		checks := map[string]string{}

		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not configured"))
			return
		}
		if err := dbP.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}
		checks["database"] = "ok"

		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "degraded"
				if logg != nil {
					logg.Warn(r.Context(), "redis unreachable, callbacks lose replay protection")
				}
			} else {
				checks["redis"] = "ok"
			}
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
