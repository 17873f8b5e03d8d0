package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/unrolled/secure"
)

// TrustedHosts rejects requests whose Host header is not in allowed with
// 400.  An entry of "*" allows everything; "*.example.com" matches any
// subdomain of example.com but not example.com itself.  A :port suffix on the
// request Host is ignored.  An empty list allows every host.
func TrustedHosts(allowed []string) func(http.Handler) http.Handler {
	patterns := make([]string, 0, len(allowed))
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		switch {
		case a == "":
			continue
		case a == "*":
			return func(next http.Handler) http.Handler { return next }
		case strings.HasPrefix(a, "*."):
			a = `[^/]+` + regexp.QuoteMeta(a[1:])
		default:
			a = regexp.QuoteMeta(a)
		}
		patterns = append(patterns, `(?i)`+a+`(:[0-9]+)?`)
	}

	s := secure.New(secure.Options{
		AllowedHosts:         patterns,
		AllowedHostsAreRegex: true,
	})
	s.SetBadHostHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Invalid host header", http.StatusBadRequest)
	}))
	return s.Handler
}
