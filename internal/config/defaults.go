package config

// Environment names understood by the override step.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// DefaultPort is used when PORT is absent.
const DefaultPort = 8000

var (
	productionOrigins = []string{"https://afterlight.app", "https://www.afterlight.app"}
	stagingOrigins    = []string{"https://staging.afterlight.app", "https://staging-www.afterlight.app"}
)

// Defaults returns the configuration used when no environment key is set.
func Defaults() Config {
	return Config{
		App: App{
			Name:        "AfterLight API",
			Version:     "1.1.0",
			Environment: EnvDevelopment,
			Debug:       true,
		},
		Server: Server{Host: "0.0.0.0", Port: DefaultPort},
		JWT: JWT{
			Secret:                   "your-super-secret-key-change-in-production",
			Algorithm:                "HS256",
			ExpirationMinutes:        30,
			AccessTokenExpireMinutes: 30,
		},
		CORS: CORS{AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"https://afterlight.app",
			"https://www.afterlight.app",
		}},
		Hosts: Hosts{Allowed: []string{"localhost", "127.0.0.1", "afterlight.app", "www.afterlight.app"}},
		Database: Database{
			Host: "localhost",
			Port: 5432,
			Name: "afterlight",
			User: "postgres",
		},
		Redis:  Redis{Host: "localhost", Port: 6379},
		OpenAI: OpenAI{Model: "gpt-4", MaxTokens: 2000},
		Upload: Upload{
			MaxFileSize:  5 * 1024 * 1024,
			Dir:          "uploads",
			AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		},
		RateLimit: RateLimit{WindowSeconds: 60, MaxRequests: 100},
		Log:       Log{Level: "INFO", Format: "console"},
		SMTP:      SMTP{Port: 587, EmailFrom: "noreply@afterlight.app"},
		Frontend:  Frontend{URL: "http://localhost:3000"},
		Features:  Features{DebugRoutes: true},
	}
}
