// internal/middleware/middleware_test.go
//
// Unit-tests for the HTTP wrappers.
//
// Run: go test ./internal/middleware -v

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/afterlight/api/internal/requestinfo"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurity(t *testing.T) {
	rr := httptest.NewRecorder()
	Security(true)(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, h := range []string{"Strict-Transport-Security", "X-Frame-Options", "X-Content-Type-Options"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}

	rr = httptest.NewRecorder()
	Security(false)(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS set although disabled")
	}
}

func TestForceHTTPS(t *testing.T) {
	tests := []struct {
		name, host, proto string
		want              int
	}{
		{"proxied http redirects", "api.afterlight.app", "http", http.StatusPermanentRedirect},
		{"proxied https passes", "api.afterlight.app", "https", http.StatusOK},
		{"no header passes", "api.afterlight.app", "", http.StatusOK},
		{"localhost passes", "localhost:8000", "http", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/health?x=1", nil)
			r.Host = tc.host
			if tc.proto != "" {
				r.Header.Set("X-Forwarded-Proto", tc.proto)
			}
			rr := httptest.NewRecorder()
			ForceHTTPS(ok).ServeHTTP(rr, r)
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
			if tc.want == http.StatusPermanentRedirect {
				if loc := rr.Header().Get("Location"); loc != "https://api.afterlight.app/health?x=1" {
					t.Fatalf("Location = %q", loc)
				}
			}
		})
	}
}

func TestTrustedHosts(t *testing.T) {
	mw := TrustedHosts([]string{"afterlight.app", "*.onrender.com"})
	tests := map[string]int{
		"afterlight.app":           http.StatusOK,
		"AfterLight.app:443":       http.StatusOK,
		"api-x.onrender.com":       http.StatusOK,
		"onrender.com":             http.StatusBadRequest,
		"evil.example":             http.StatusBadRequest,
		"afterlight.app.evil.test": http.StatusBadRequest,
	}
	for host, want := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Host = host
		rr := httptest.NewRecorder()
		mw(ok).ServeHTTP(rr, r)
		if rr.Code != want {
			t.Errorf("host %q: status = %d, want %d", host, rr.Code, want)
		}
	}
}

func TestTrustedHosts_Wildcard(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "anything.example"
	rr := httptest.NewRecorder()
	TrustedHosts([]string{"*"})(ok).ServeHTTP(rr, r)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestTrustedHosts_BeforeRedirect(t *testing.T) {
	h := TrustedHosts([]string{"afterlight.app"})(ForceHTTPS(ok))

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.Host = "evil.example"
	r.Header.Set("X-Forwarded-Proto", "http")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "" {
		t.Fatalf("unexpected redirect to %q", loc)
	}

	r = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.Host = "afterlight.app"
	r.Header.Set("X-Forwarded-Proto", "http")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusPermanentRedirect {
		t.Fatalf("status = %d, want 308", rr.Code)
	}
}

func TestTrustedHosts_EmptyAllowsAll(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "anything.example"
	rr := httptest.NewRecorder()
	TrustedHosts(nil)(ok).ServeHTTP(rr, r)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := requestinfo.Enrich(nil)(AccessLog(zap.New(core).Sugar(), true)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pot", nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d access lines, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["path"] != "/pot" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if fields["ip"] != "192.0.2.1" {
		t.Fatalf("ip = %v", fields["ip"])
	}
}

func TestAccessLog_Disabled(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	AccessLog(zap.New(core).Sugar(), false)(ok).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if logs.Len() != 0 {
		t.Fatalf("access log written while disabled")
	}
}
