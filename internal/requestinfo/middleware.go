// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
Sits right after chi's RealIP and before the access log.  For every request
it:

  1. Parses the User-Agent header and Accept-Language list.
  2. Extracts the client IP from X-Forwarded-For or X-Real-IP, falling back
     to `r.RemoteAddr`.  Railway and Render both terminate TLS at a proxy
     that sets these headers.
  3. Performs a GeoLite2 lookup when a Locator is configured.
  4. Stores the result in the request context under an unexported key.
*/
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// Enrich returns middleware that attaches *RequestInfo.  geo may be nil.
func Enrich(geo Locator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			g := Geo{IP: ip}
			if geo != nil {
				g = geo.Lookup(ip)
			}

			info := &RequestInfo{
				UA:        ParseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
				Geo:       g,
				Timestamp: time.Now().UTC(),
			}
			ctx := context.WithValue(r.Context(), ctxKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP extracts the left-most valid address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func ClientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
