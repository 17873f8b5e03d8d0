// internal/config/provider.go
//
// Koanf provider over an explicit Env snapshot.
//
// Context
// -------
// Resolve must be a pure function of its input, so it never touches the
// process environment.  envProvider walks `envKeys`, copies every non-empty
// value to its dotted koanf path, and hands Koanf a nested map.  Keys that
// are not in the table are ignored.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/maps"
)

// Env is a snapshot of environment variables.  Empty values count as absent.
type Env map[string]string

// Get returns the value for key, or "" when unset.
func (e Env) Get(key string) string { return e[key] }

// envKeys maps flat environment names to koanf paths.  PORT is handled by the
// resolver pipeline so it can fail with ErrInvalidPort.
var envKeys = map[string]string{
	"APP_NAME":    "app.name",
	"VERSION":     "app.version",
	"ENVIRONMENT": "app.environment",
	"DEBUG":       "app.debug",

	"HOST": "server.host",

	"JWT_SECRET":                  "jwt.secret",
	"JWT_ALGORITHM":               "jwt.algorithm",
	"JWT_EXPIRATION_MINUTES":      "jwt.expiration_minutes",
	"ACCESS_TOKEN_EXPIRE_MINUTES": "jwt.access_token_expire_minutes",

	"ALLOWED_ORIGINS": "cors.allowed_origins",
	"ALLOWED_HOSTS":   "hosts.allowed",

	"DATABASE_URL":      "database.url",
	"DATABASE_HOST":     "database.host",
	"DATABASE_PORT":     "database.port",
	"DATABASE_NAME":     "database.name",
	"DATABASE_USER":     "database.user",
	"DATABASE_PASSWORD": "database.password",

	"REDIS_URL":  "redis.url",
	"REDIS_HOST": "redis.host",
	"REDIS_PORT": "redis.port",
	"REDIS_DB":   "redis.db",

	"OPENAI_API_KEY":    "openai.api_key",
	"OPENAI_MODEL":      "openai.model",
	"OPENAI_MAX_TOKENS": "openai.max_tokens",

	"MAX_FILE_SIZE":      "upload.max_file_size",
	"UPLOAD_DIR":         "upload.dir",
	"ALLOWED_FILE_TYPES": "upload.allowed_types",

	"RATE_LIMIT_WINDOW":       "rate_limit.window",
	"RATE_LIMIT_MAX_REQUESTS": "rate_limit.max_requests",

	"LOG_LEVEL":  "log.level",
	"LOG_FORMAT": "log.format",
	"LOG_FILE":   "log.file",

	"SUPABASE_URL": "supabase.url",
	"SUPABASE_KEY": "supabase.key",

	"SMTP_HOST":     "smtp.host",
	"SMTP_PORT":     "smtp.port",
	"SMTP_USER":     "smtp.user",
	"SMTP_PASSWORD": "smtp.password",
	"EMAIL_FROM":    "smtp.email_from",

	"PRINTFUL_API_KEY": "print.printful_api_key",
	"LOB_API_KEY":      "print.lob_api_key",

	"FRONTEND_URL": "frontend.url",

	"ENABLE_DEBUG_ROUTES": "features.debug_routes",
	"GEOIP_DB_PATH":       "features.geoip_db_path",
}

type envProvider struct{ env Env }

func (p envProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: env provider does not support ReadBytes")
}

func (p envProvider) Read() (map[string]any, error) {
	flat := make(map[string]any, len(envKeys))
	for key, path := range envKeys {
		if v := p.env[key]; v != "" {
			flat[path] = v
		}
	}
	return maps.Unflatten(flat, "."), nil
}

var stringSliceType = reflect.TypeOf([]string(nil))

// listHook turns delimited strings and loose sequences into []string.
func listHook(from, to reflect.Type, data any) (any, error) {
	if to != stringSliceType {
		return data, nil
	}
	return SplitList(data), nil
}

// boolHook accepts the usual truthy and falsy spellings: 1/0, true/false,
// t/f, yes/no, y/n, on/off, in any case.
func boolHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	switch v := strings.ToLower(strings.TrimSpace(reflect.ValueOf(data).String())); v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return nil, fmt.Errorf("invalid boolean %q", v)
	}
}

func decoderConfig(out *Config) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(listHook, boolHook),
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "koanf",
	}
}
