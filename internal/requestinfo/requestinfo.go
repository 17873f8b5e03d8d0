//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, client IP, best-effort geolocation, and
//  timestamp).  These structs are inert, so they are safe to log or
//  JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	surfer "github.com/avct/uasurfer"
)

// UA holds the parsed user-agent properties written to the access log.
type UA struct {
	Browser     string `json:"browser"`
	Version     string `json:"version"`
	OS          string `json:"os"`
	OSVersion   string `json:"os_version"`
	Device      string `json:"device"`   // Desktop, Mobile, Tablet, Other
	Platform    string `json:"platform"` // Mac, Windows, Linux, iPhone, ...
	IsBot       bool   `json:"is_bot"`
	PrimaryLang string `json:"primary_lang"`
}

// Geo holds IP-based geolocation hints.  Fields other than IP are empty when
// no database is configured or the address has no match.
type Geo struct {
	IP         net.IP `json:"ip"`
	CountryISO string `json:"country_iso,omitempty"`
	City       string `json:"city,omitempty"`
}

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	UA        UA        `json:"ua"`
	Geo       Geo       `json:"geo"`
	Timestamp time.Time `json:"timestamp"`
}

type ctxKey struct{}

// FromContext returns the value stored by Enrich, or nil if it has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// ParseUA converts raw headers into a UA.
func ParseUA(uaHeader, acceptLang string) UA {
	u := surfer.Parse(uaHeader)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return UA{
		Browser:     strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:     versionString(u.Browser.Version),
		OS:          osName,
		OSVersion:   versionString(u.OS.Version),
		Device:      deviceString(u.DeviceType),
		Platform:    strings.TrimPrefix(u.OS.Platform.String(), "Platform"),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}
}

// versionString renders 17.0.0 as "17", 17.3.0 as "17.3", and so on.
func versionString(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	case v.Minor != 0:
		return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
	default:
		return strconv.Itoa(v.Major)
	}
}

func deviceString(dt surfer.DeviceType) string {
	switch dt {
	case surfer.DeviceComputer:
		return "Desktop"
	case surfer.DeviceTablet:
		return "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		return "Mobile"
	default:
		return "Other"
	}
}

// primaryLang extracts the first language tag before any ";q=" weight.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag := strings.TrimSpace(strings.Split(al, ",")[0])
	if i := strings.IndexByte(tag, ';'); i != -1 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
