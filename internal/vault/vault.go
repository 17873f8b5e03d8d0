// internal/vault/vault.go
//
// Vault client wrapper.
//
// Context
// -------
//   - Provides a concurrency-safe client around the HashiCorp Vault Go SDK.
//   - Adds background token renewal, a KV-v2 helper with per-key caching,
//     and Expand, which swaps `vault:` references in an Env snapshot for the
//     secret values before settings are resolved.
//
// Public workflow
// ---------------
//  1. if vault.HasRefs(env) { cli, err := vault.New(ctx, env, log.Infof) }
//  2. env, err = vault.Expand(ctx, cli, env)
//
// Reference format: `vault:<mount>/<path>#<key>`, for example
// `JWT_SECRET=vault:secret/afterlight/api#jwt_secret`.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

//
// SECTION 1.  Public façade
//

// Client is safe for concurrent use.  Create once at startup.  Zero value is
// invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client and starts a background token-renewal loop
// bound to ctx.
//
// Environment expectations (read from env, not the process)
// ---------------------------------------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token used for every request.
func New(ctx context.Context, env map[string]string, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vault.DefaultConfig()
	if cfg.Error != nil {
		return nil, fmt.Errorf("vault cfg: %w", cfg.Error)
	}
	if addr := env["VAULT_ADDR"]; addr != "" {
		cfg.Address = addr
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := env["VAULT_TOKEN"]; tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{
		api:   apiCli,
		logFn: logFn,
		cache: make(map[string]cached),
	}

	go c.renewLoop(ctx)

	return c, nil
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
			c.cacheMu.RUnlock()
			return cv.val, nil
		}
		c.cacheMu.RUnlock()
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}

	return sval, nil
}

//
// SECTION 2.  Env expansion
//

// RefPrefix marks a value that must be fetched from Vault.
const RefPrefix = "vault:"

// KVReader is the subset of Client used by Expand.
type KVReader interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// HasRefs reports whether any value in env is a Vault reference.
func HasRefs(env map[string]string) bool {
	for _, v := range env {
		if strings.HasPrefix(v, RefPrefix) {
			return true
		}
	}
	return false
}

// Expand returns a copy of env with every reference replaced by its secret.
// The first failing reference aborts the expansion.
func Expand(ctx context.Context, r KVReader, env map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(env))
	for k, v := range env {
		if !strings.HasPrefix(v, RefPrefix) {
			out[k] = v
			continue
		}
		path, key, err := ParseRef(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		secret, err := r.GetKV(ctx, path, key, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = secret
	}
	return out, nil
}

// ParseRef splits "vault:<path>#<key>".
func ParseRef(ref string) (path, key string, err error) {
	body := strings.TrimPrefix(ref, RefPrefix)
	path, key, found := strings.Cut(body, "#")
	if !found || path == "" || key == "" {
		return "", "", fmt.Errorf("malformed vault reference %q (want vault:<path>#<key>)", ref)
	}
	return path, key, nil
}

//
// SECTION 3.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	for ctx.Err() == nil {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			c.logFn("vault: token renew self failed: %v", err)
			backoff(ctx, 30*time.Second)
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			c.logFn("vault: token is not renewable, sleeping 1h")
			backoff(ctx, time.Hour)
			continue
		}

		watcher, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
			Secret: sec,
		})
		if err != nil {
			c.logFn("vault: watcher init error: %v", err)
			backoff(ctx, 30*time.Second)
			continue
		}

		go watcher.Start()
		c.watch(ctx, watcher)
		watcher.Stop()
		backoff(ctx, 15*time.Second)
	}
}

// watch blocks until the watcher finishes or ctx is done.
func (c *Client) watch(ctx context.Context, w *vault.LifetimeWatcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				c.logFn("vault: token renewal stopped: %v", err)
			}
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.logFn("vault: token renewed, ttl=%ds", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

//
// SECTION 4.  Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
