// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects industry-standard headers on every response:
//
//   • Strict-Transport-Security  –  production only (2 years)
//   • Content-Security-Policy   –  API responses never embed active content
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Headers are set before next.ServeHTTP; handlers may overwrite any of
//   them with Header().Set.
// • Railway and Render terminate TLS in front of the process, so HSTS is
//   still meaningful even though the socket itself is plain HTTP.

package middleware

import "net/http"

// Security returns a middleware that sets security headers.  hsts enables
// Strict-Transport-Security.
func Security(hsts bool) func(http.Handler) http.Handler {
	const (
		hstsVal = "max-age=63072000; includeSubDomains"
		csp     = "default-src 'none'; frame-ancestors 'none'"
		xfo     = "DENY"
		nosn    = "nosniff"
		refer   = "strict-origin-when-cross-origin"
		perm    = "geolocation=(), microphone=(), camera=()"
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if hsts {
				h.Set("Strict-Transport-Security", hstsVal)
			}
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Frame-Options", xfo)
			h.Set("X-Content-Type-Options", nosn)
			h.Set("Referrer-Policy", refer)
			h.Set("Permissions-Policy", perm)

			next.ServeHTTP(w, r)
		})
	}
}
