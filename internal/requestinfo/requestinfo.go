//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request visitor
//  metadata (user-agent fingerprint, IP + geolocation, and timestamp)
//  for public-site request logging.  These structs are inert: no
//  database handles, no large buffers, safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup)
//

package requestinfo

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// UA holds the parsed user-agent properties we log for visitors.
type UA struct {
	Browser string // "Chrome", "Firefox", "Safari", …
	Version string // major version, "124"
	OS      string // "Windows", "macOS", "Android", …
	Device  string // "Desktop", "Phone", "Tablet", …
	IsBot   bool
}

// Geo holds IP-based geolocation hints.  Best-effort; empty when the DB
// has no match or is not configured.
type Geo struct {
	IP         net.IP
	CountryISO string // "US", "CA", "FR", …
}

// Info is attached to the request context by the Enrich middleware.
type Info struct {
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

// geoReader is a singleton MaxMind handle.  Safe for concurrent reads,
// which is all we ever perform.  Nil when geolocation is disabled.
var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2 database at startup.  An empty path leaves
// geolocation disabled; an unreadable file is an error the caller can
// choose to ignore.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich, or nil if
// the middleware has not run.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

//
//  internal helpers
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(uaHeader string) UA {
	u := uasurfer.Parse(uaHeader)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	device := deviceTypeToString(u.DeviceType)
	if u.IsBot() {
		device = "Bot"
	}

	return UA{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version: strconv.Itoa(u.Browser.Version.Major),
		OS:      osName,
		Device:  device,
		IsBot:   u.IsBot(),
	}
}

// lookupGeo resolves the client IP against the MaxMind DB, if open.
func lookupGeo(ip net.IP) Geo {
	g := Geo{IP: ip}
	if geoReader == nil || ip == nil {
		return g
	}
	if country, err := geoReader.Country(ip); err == nil {
		g.CountryISO = country.Country.IsoCode
	}
	return g
}

// deviceTypeToString maps uasurfer.DeviceType to a user-friendly string.
func deviceTypeToString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}
