package requestinfo

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Locator resolves an IP to Geo.  A nil Locator is allowed everywhere.
type Locator interface {
	Lookup(ip net.IP) Geo
}

// GeoDB wraps a MaxMind GeoLite2-City reader.  Safe for concurrent reads.
type GeoDB struct {
	r *geoip2.Reader
}

// OpenGeo opens the database at path (GEOIP_DB_PATH).
func OpenGeo(path string) (*GeoDB, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoDB{r: r}, nil
}

// Lookup returns best-effort Geo data; failures yield only the IP.
func (g *GeoDB) Lookup(ip net.IP) Geo {
	if g == nil || g.r == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := g.r.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}

func (g *GeoDB) Close() error {
	if g == nil || g.r == nil {
		return nil
	}
	return g.r.Close()
}
