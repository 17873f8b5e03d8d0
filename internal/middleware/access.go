package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/afterlight/api/internal/metrics"
	"github.com/afterlight/api/internal/requestinfo"
)

// AccessLog records every request in Prometheus and, when enabled, writes
// one INFO line per request.  Place it after requestinfo.Enrich so client
// and UA fields are available.
func AccessLog(log *zap.SugaredLogger, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())

			if !enabled {
				return
			}
			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
				"request_id", chimw.GetReqID(r.Context()),
			}
			if info := requestinfo.FromContext(r.Context()); info != nil {
				fields = append(fields,
					"ip", info.Geo.IP.String(),
					"country", info.Geo.CountryISO,
					"browser", info.UA.Browser,
					"device", info.UA.Device,
					"bot", info.UA.IsBot,
				)
			}
			log.Infow("request", fields...)
		})
	}
}
