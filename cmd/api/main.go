// cmd/api/main.go
//
// AfterLight API – process entry point.
//
// Boot sequence
// -------------
//
//  1. Snapshot the environment once (settings.yaml → .env → process env).
//
//  2. Start a console logger at the raw LOG_LEVEL so early failures are
//     visible.
//
//  3. Expand `vault:` references when any are present.
//
//  4. Hand the snapshot to startup.Sequencer, which detects the platform,
//     normalises the environment, checks required variables, resolves the
//     port, pauses, and calls launch.
//
//  5. launch resolves the typed Config, rebuilds the logger from it, opens
//     lazy DB and Redis handles, and serves until SIGINT or SIGTERM.
//
// The exit code is whatever the sequencer returns.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/afterlight/api/internal/app"
	"github.com/afterlight/api/internal/cache"
	"github.com/afterlight/api/internal/config"
	"github.com/afterlight/api/internal/database"
	"github.com/afterlight/api/internal/logger"
	"github.com/afterlight/api/internal/requestinfo"
	"github.com/afterlight/api/internal/server"
	"github.com/afterlight/api/internal/startup"
	"github.com/afterlight/api/internal/vault"
)

func main() { os.Exit(run()) }

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := config.Environ(config.RootDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "read environment: %v\n", err)
		return startup.ExitFailure
	}

	boot, err := logger.New(logger.Options{Level: env.Get("LOG_LEVEL")})
	if err != nil {
		boot, _ = logger.New(logger.Options{})
		boot.Warnw("falling back to info logging", "err", err)
	}
	defer boot.Sync()

	if vault.HasRefs(env) {
		cli, err := vault.New(ctx, env, boot.Infof)
		if err != nil {
			boot.Errorw("vault client", "err", err)
			return startup.ExitFailure
		}
		expanded, err := vault.Expand(ctx, cli, env)
		if err != nil {
			boot.Errorw("vault expansion failed", "err", err)
			return startup.ExitFailure
		}
		env = config.Env(expanded)
	}

	seq := &startup.Sequencer{Launch: launch, Log: boot}
	return seq.Run(ctx, env)
}

// launch is the application side of the handoff.  It blocks until ctx is
// cancelled or the listener fails.
func launch(ctx context.Context, env config.Env, listen startup.ListenSpec) error {
	cfg, err := config.Resolve(env)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{
		Level:  listen.LogLevel,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	red := cfg.Redacted()
	log.Infow("config resolved",
		"app", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"database", red.Database.URL,
		"redis", red.Redis.URL,
		"origins", cfg.CORS.AllowedOrigins,
		"reload", listen.Reload,
	)

	db, err := database.Open(cfg.Database.URL, database.DefaultOptions)
	if err != nil {
		return err
	}
	defer db.Close()

	rc, err := cache.Open(cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer rc.Close()

	deps := app.Deps{
		Log:       log,
		Checks:    map[string]app.Checker{"database": db, "redis": rc},
		AccessLog: listen.AccessLog,
	}
	if path := cfg.Features.GeoIPDBPath; path != "" {
		geo, err := requestinfo.OpenGeo(path)
		if err != nil {
			log.Warnw("geoip disabled", "path", path, "err", err)
		} else {
			defer geo.Close()
			deps.Geo = geo
		}
	}

	srv := server.New(listen.Addr(), app.New(cfg, deps))
	log.Infow("starting server",
		"addr", listen.Addr(),
		"health", fmt.Sprintf("http://%s/health", listen.Addr()),
	)
	return server.Run(ctx, srv, log)
}
