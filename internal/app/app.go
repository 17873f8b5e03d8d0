// internal/app/app.go
//
// Root HTTP handler.
//
/*
Context
--------
The business API is mounted elsewhere; this package only builds the shell
every deployment needs:

  • GET /health         – liveness, never touches dependencies
  • GET /health/ready   – pings every Checker concurrently; failures are
                          logged, the body only says "unavailable"
  • GET /metrics        – Prometheus
  • /debug/*            – modules/debug, development only

Middleware order
----------------
  1. chi RequestID, RealIP, Recoverer
  2. requestinfo.Enrich, then AccessLog
  3. Security headers (HSTS in production)
  4. Health routes are registered here so platform probes skip 5 to 7.
  5. Production only: TrustedHosts(ALLOWED_HOSTS), then ForceHTTPS
  6. CORS with the resolved origin list
  7. Per-IP rate limit (RATE_LIMIT_MAX_REQUESTS per RATE_LIMIT_WINDOW)
*/
package app

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/afterlight/api/internal/config"
	"github.com/afterlight/api/internal/middleware"
	"github.com/afterlight/api/internal/requestinfo"
	"github.com/afterlight/api/modules/debug"
)

// ReadyTimeout bounds a readiness probe.
const ReadyTimeout = 3 * time.Second

// Checker is a dependency the readiness probe can ping.
type Checker interface {
	Ping(ctx context.Context) error
}

// Deps carries the runtime collaborators of the handler.
type Deps struct {
	Log       *zap.SugaredLogger
	Geo       requestinfo.Locator // optional
	Checks    map[string]Checker  // name → dependency
	AccessLog bool
}

// New builds the root handler for cfg.
func New(cfg config.Config, d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(requestinfo.Enrich(d.Geo))
	r.Use(middleware.AccessLog(log, d.AccessLog))
	r.Use(middleware.Security(cfg.IsProduction()))

	r.Get("/health", healthHandler(cfg))
	r.Get("/health/ready", readyHandler(d.Checks, log))

	r.Group(func(r chi.Router) {
		if cfg.IsProduction() {
			r.Use(middleware.TrustedHosts(cfg.Hosts.Allowed))
			r.Use(middleware.ForceHTTPS)
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(httprate.LimitByIP(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()))

		r.Handle("/metrics", promhttp.Handler())

		if cfg.Features.DebugRoutes && cfg.App.Debug {
			r.Mount("/debug", debug.Routes(cfg))
			log.Infow("debug routes enabled", "prefix", "/debug")
		}
	})

	return r
}

func healthHandler(cfg config.Config) http.HandlerFunc {
	body := map[string]string{
		"status":      "ok",
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}

func readyHandler(checks map[string]Checker, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), ReadyTimeout)
		defer cancel()

		var (
			mu      sync.Mutex
			results = make(map[string]string, len(checks))
			healthy = true
			g       errgroup.Group
		)
		for name, c := range checks {
			g.Go(func() error {
				status := "ok"
				if err := c.Ping(ctx); err != nil {
					log.Warnw("readiness check failed", "check", name, "err", err)
					status = "unavailable"
				}
				mu.Lock()
				results[name] = status
				if status != "ok" {
					healthy = false
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		code, status := http.StatusOK, "ready"
		if !healthy {
			code, status = http.StatusServiceUnavailable, "unavailable"
		}
		writeJSON(w, code, map[string]any{"status": status, "checks": results})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
