package config

import "net/url"

const mask = "********"

// Redacted returns a copy of c that is safe to log or serve on a debug route.
func (c Config) Redacted() Config {
	r := c
	r.JWT.Secret = maskIfSet(c.JWT.Secret)
	r.Database.Password = maskIfSet(c.Database.Password)
	r.Database.URL = redactURL(c.Database.URL)
	r.Redis.URL = redactURL(c.Redis.URL)
	r.OpenAI.APIKey = maskIfSet(c.OpenAI.APIKey)
	r.Supabase.Key = maskIfSet(c.Supabase.Key)
	r.SMTP.Password = maskIfSet(c.SMTP.Password)
	r.Print.PrintfulAPIKey = maskIfSet(c.Print.PrintfulAPIKey)
	r.Print.LobAPIKey = maskIfSet(c.Print.LobAPIKey)
	return r
}

func maskIfSet(s string) string {
	if s == "" {
		return ""
	}
	return mask
}

// redactURL hides the password segment, if any.  Unparseable input is
// masked entirely.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return mask
	}
	return u.Redacted()
}
