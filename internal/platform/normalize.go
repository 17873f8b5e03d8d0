package platform

// Signal is one platform variable as seen during normalisation.  Value holds
// the default when the variable was unset.
type Signal struct {
	Key   string
	Value string
}

// Canonical values written by Normalize.
const (
	defaultPort = "8000"

	envProduction  = "production"
	envStaging     = "staging"
	envDevelopment = "development"
)

// Signals lists the variables Normalize inspects for p, in a stable order,
// with platform defaults applied.  Local has none.
func Signals(p Platform, env map[string]string) []Signal {
	get := func(key, def string) Signal {
		if v := env[key]; v != "" {
			return Signal{Key: key, Value: v}
		}
		return Signal{Key: key, Value: def}
	}

	switch p {
	case Railway:
		return []Signal{
			get("PORT", defaultPort),
			get("RAILWAY_ENVIRONMENT", envDevelopment),
			get("RAILWAY_PROJECT_ID", ""),
			get("RAILWAY_SERVICE_ID", ""),
			get("RAILWAY_DEPLOYMENT_ID", ""),
		}
	case Render:
		return []Signal{
			get("PORT", defaultPort),
			get("RENDER", "false"),
			get("RENDER_EXTERNAL_URL", ""),
			get("RENDER_EXTERNAL_HOSTNAME", ""),
		}
	default:
		return nil
	}
}

// Normalize returns a copy of env with ENVIRONMENT, DEBUG, and LOG_LEVEL set
// according to p.  Hosted platforms overwrite those keys; Local only fills
// them in when absent.  Every non-empty inspected signal is copied through
// unchanged.
func Normalize(p Platform, env map[string]string) map[string]string {
	out := make(map[string]string, len(env)+8)
	for k, v := range env {
		out[k] = v
	}

	signals := Signals(p, env)
	set := func(environment, debug, level string) {
		out["ENVIRONMENT"] = environment
		out["DEBUG"] = debug
		out["LOG_LEVEL"] = level
	}

	switch p {
	case Railway:
		switch signals[1].Value {
		case envProduction:
			set(envProduction, "false", "INFO")
		case envStaging:
			set(envStaging, "false", "INFO")
		default:
			set(envDevelopment, "true", "DEBUG")
		}
	case Render:
		if signals[1].Value == "true" {
			set(envProduction, "false", "INFO")
		}
	default:
		fill := func(key, val string) {
			if out[key] == "" {
				out[key] = val
			}
		}
		fill("ENVIRONMENT", envDevelopment)
		fill("DEBUG", "true")
		fill("LOG_LEVEL", "DEBUG")
	}

	for _, s := range signals {
		if s.Value != "" {
			out[s.Key] = s.Value
		}
	}
	return out
}
