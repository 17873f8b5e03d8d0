// modules/debug/debug.go
//
// Development-only routes that echo the resolved configuration and what the
// server sees of the current request.  Mounted by internal/app only when
// ENABLE_DEBUG_ROUTES is on and the environment is development.
package debug

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/afterlight/api/internal/config"
	"github.com/afterlight/api/internal/requestinfo"
)

// Routes returns a router with /config and /request.
func Routes(cfg config.Config) chi.Router {
	r := chi.NewRouter()
	redacted := cfg.Redacted()

	r.Get("/config", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, redacted)
	})
	r.Get("/request", requestHandler)
	return r
}

// requestHandler writes a JSON blob with selected request fields.
func requestHandler(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"host":       r.Host,
		"path":       r.URL.Path,
		"query":      r.URL.RawQuery,
		"request_id": chimw.GetReqID(r.Context()),
		"ua":         r.UserAgent(),
	}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		out["ip"] = info.Geo.IP.String()
		out["geo"] = info.Geo
		out["ua_parsed"] = info.UA
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
