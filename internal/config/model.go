// internal/config/model.go
//
// Typed configuration model for the platform.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                  – dotenv values,
//   • `conf/global.yaml`                    – primary static file,
//   • `BB_`-prefixed environment overrides  – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the secrets client *after* unmarshalling, so the rest of the
// app only ever sees plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`; Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import (
	"errors"
	"strings"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Database section
//

// Database holds the platform store DSN.  The password may be a `vault:`
// reference resolved at load time.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

// ResolveDSN splices the resolved password into the DSN's `%s`
// placeholder.  A plain string replace keeps literal `%` characters in
// the DSN (URL-encoded socket paths, printf-looking passwords) intact,
// where fmt.Sprintf would mangle them.
func (d Database) ResolveDSN() (string, error) {
	if d.Password == "" {
		return d.DSN, nil
	}
	if !strings.Contains(d.DSN, "%s") {
		return "", errors.New("database.dsn needs a %s placeholder when database.password is set")
	}
	return strings.Replace(d.DSN, "%s", d.Password, 1), nil
}

//
// Tenancy section
//

// Tenancy configures host-name resolution.  MainDomains is the explicit
// exact-match set identifying the platform's own surface; BaseDomain is
// the suffix under which tenant subdomains are minted (informational,
// used for owner-facing URLs only; resolution never infers from it).
type Tenancy struct {
	MainDomains []string `koanf:"main_domains" validate:"required,min=1"`
	BaseDomain  string   `koanf:"base_domain"  validate:"required"`
}

//
// Blob section
//

// S3 holds object-store settings for gallery uploads.  SecretAccessKey
// may be a `vault:` reference.
type S3 struct {
	Region          string `koanf:"region"`
	Bucket          string `koanf:"bucket" validate:"required"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	Endpoint        string `koanf:"endpoint"`
	UsePathStyle    bool   `koanf:"use_path_style"`
}

// Blob groups gallery storage settings.  PublicBaseURL is the prefix
// under which committed objects are publicly reachable.
type Blob struct {
	S3            S3     `koanf:"s3"`
	PublicBaseURL string `koanf:"public_base_url" validate:"required,url"`
}

//
// Auth section
//

// Auth verifies owner tokens issued by the external identity provider.
// JWTSecret may be a `vault:` reference.
type Auth struct {
	JWTSecret string `koanf:"jwt_secret" validate:"required"`
}

//
// GeoIP section
//

// GeoIP points at the optional MaxMind database used to enrich public
// request logs.  Empty path disables the lookup.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or BB_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Tenancy  Tenancy  `koanf:"tenancy"`
	Blob     Blob     `koanf:"blob"`
	Auth     Auth     `koanf:"auth"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"`
}
