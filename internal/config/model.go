// internal/config/model.go
//
// Typed configuration model for the AfterLight API.
//
// Context
// -------
// The structs below are the immutable result of `Resolve`.  Every field maps
// to exactly one flat environment key (see `envKeys` in provider.go), so an
// operator only ever deals with names such as `DATABASE_HOST` or
// `RATE_LIMIT_WINDOW`, while Go code reads `cfg.Database.Host` or
// `cfg.RateLimit.Window()`.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`.  Koanf ignores `yaml` tags unless told
//     otherwise.
//   - List-valued fields are always `[]string` of trimmed, non-empty entries.
//     The decode hook in provider.go guarantees that regardless of whether
//     the source was a comma-delimited string or a YAML sequence.
//   - Two spaces after periods.
package config

import (
	"net"
	"strconv"
	"time"
)

// App identifies the running service.
type App struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment" validate:"required"`
	Debug       bool   `koanf:"debug"`
}

// Server holds the listen address.
type Server struct {
	Host string `koanf:"host" validate:"required"`
	Port int    `koanf:"-"    validate:"min=1,max=65535"`
}

// JWT holds token signing parameters.
type JWT struct {
	Secret                   string `koanf:"secret"                      validate:"required"`
	Algorithm                string `koanf:"algorithm"                   validate:"required"`
	ExpirationMinutes        int    `koanf:"expiration_minutes"          validate:"min=0"`
	AccessTokenExpireMinutes int    `koanf:"access_token_expire_minutes" validate:"min=0"`
}

// CORS holds the browser origins allowed to call the API.
type CORS struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Hosts lists the Host header values accepted in production.
type Hosts struct {
	Allowed []string `koanf:"allowed"`
}

// Database holds either a full URL or the discrete fields used to build one.
type Database struct {
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"     validate:"min=1,max=65535"`
	Name     string `koanf:"name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// Redis mirrors Database for the cache connection.
type Redis struct {
	URL  string `koanf:"url"`
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`
	DB   int    `koanf:"db"   validate:"min=0"`
}

type OpenAI struct {
	APIKey    string `koanf:"api_key"`
	Model     string `koanf:"model"`
	MaxTokens int    `koanf:"max_tokens" validate:"min=0"`
}

// Upload constrains user file uploads.
type Upload struct {
	MaxFileSize  int64    `koanf:"max_file_size" validate:"min=0"`
	Dir          string   `koanf:"dir"`
	AllowedTypes []string `koanf:"allowed_types"`
}

// RateLimit describes a fixed request ceiling per window.
type RateLimit struct {
	WindowSeconds int `koanf:"window"       validate:"min=1"`
	MaxRequests   int `koanf:"max_requests" validate:"min=1"`
}

// Window returns the rate-limit window as a duration.
func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// Log selects level, encoder, and an optional rotating file sink.
type Log struct {
	Level  string `koanf:"level"  validate:"required"`
	Format string `koanf:"format" validate:"oneof=console json"`
	File   string `koanf:"file"`
}

type Supabase struct {
	URL string `koanf:"url"`
	Key string `koanf:"key"`
}

type SMTP struct {
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"       validate:"min=1,max=65535"`
	User      string `koanf:"user"`
	Password  string `koanf:"password"`
	EmailFrom string `koanf:"email_from"`
}

// Print holds keys for the keepsake print vendors.
type Print struct {
	PrintfulAPIKey string `koanf:"printful_api_key"`
	LobAPIKey      string `koanf:"lob_api_key"`
}

type Frontend struct {
	URL string `koanf:"url"`
}

// Features groups development toggles and optional data files.
type Features struct {
	DebugRoutes bool   `koanf:"debug_routes"`
	GeoIPDBPath string `koanf:"geoip_db_path"`
}

// Config is the aggregate returned by Resolve.  Treat it as read-only and pass
// it by value.
type Config struct {
	App       App       `koanf:"app"`
	Server    Server    `koanf:"server"`
	JWT       JWT       `koanf:"jwt"`
	CORS      CORS      `koanf:"cors"`
	Hosts     Hosts     `koanf:"hosts"`
	Database  Database  `koanf:"database"`
	Redis     Redis     `koanf:"redis"`
	OpenAI    OpenAI    `koanf:"openai"`
	Upload    Upload    `koanf:"upload"`
	RateLimit RateLimit `koanf:"rate_limit"`
	Log       Log       `koanf:"log"`
	Supabase  Supabase  `koanf:"supabase"`
	SMTP      SMTP      `koanf:"smtp"`
	Print     Print     `koanf:"print"`
	Frontend  Frontend  `koanf:"frontend"`
	Features  Features  `koanf:"features"`
}

// Addr is Host:Port ready for net.Listen.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// IsProduction reports whether the resolved environment is "production".
func (c Config) IsProduction() bool { return c.App.Environment == EnvProduction }
