// internal/startup/sequencer.go
//
// Process launch sequence.
//
/*
Context
--------
`Sequencer.Run` is what cmd/api calls after taking the environment snapshot.
It performs, in order:

  1. Platform detection and normalisation (internal/platform).
  2. Required-variable check.  Local needs JWT_SECRET; hosted platforms also
     need DATABASE_URL.  Missing names abort with exit code 1.
  3. Port resolution with the lenient policy in port.go.  The resolved port
     is written back into the Env handed to the launcher so config.Resolve
     never sees the raw value.
  4. A fixed pause (3 s on Render, 5 s elsewhere).  The pause is cosmetic;
     it is not a readiness check.
  5. Launch on 0.0.0.0 with reload off, access log on, and the lowercased
     LOG_LEVEL as verbosity.

Any launcher error is logged and mapped to exit code 1.

Notes
-----
  • Prepare is the pure part (steps 1 to 3) and is what the tests exercise.
  • Sleep is injectable; the default honours ctx cancellation.
*/
package startup

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/afterlight/api/internal/config"
	"github.com/afterlight/api/internal/metrics"
	"github.com/afterlight/api/internal/platform"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// ErrMissingRequired matches any *MissingError via errors.Is.
var ErrMissingRequired = errors.New("missing required environment variables")

// MissingError lists required variables that were empty.
type MissingError struct {
	Platform platform.Platform
	Names    []string
}

func (e *MissingError) Error() string {
	return ErrMissingRequired.Error() + ": " + strings.Join(e.Names, ", ")
}

func (e *MissingError) Is(target error) bool { return target == ErrMissingRequired }

// ListenSpec is what the launcher needs to start serving.
type ListenSpec struct {
	Host      string
	Port      int
	Reload    bool
	AccessLog bool
	LogLevel  string
}

// Addr is Host:Port.
func (s ListenSpec) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Plan is the outcome of Prepare.
type Plan struct {
	Platform platform.Platform
	Env      config.Env
	Spec     ListenSpec
	Delay    time.Duration
}

// LaunchFunc starts the application and blocks until it stops.
type LaunchFunc func(ctx context.Context, env config.Env, listen ListenSpec) error

// Sequencer wires the launch steps together.  Launch and Log are required.
type Sequencer struct {
	Launch LaunchFunc
	Log    *zap.SugaredLogger
	Sleep  func(ctx context.Context, d time.Duration) error
}

// Required returns the variables that must be non-empty on p.
func Required(p platform.Platform) []string {
	if !p.Hosted() {
		return []string{"JWT_SECRET"}
	}
	return []string{"DATABASE_URL", "JWT_SECRET"}
}

// Delay is the pre-launch pause for p.
func Delay(p platform.Platform) time.Duration {
	if p == platform.Render {
		return 3 * time.Second
	}
	return 5 * time.Second
}

// Prepare runs detection, normalisation, the required check, and port
// resolution without side effects other than logging.
func (s *Sequencer) Prepare(env config.Env) (Plan, error) {
	p := platform.Detect(env)
	norm := config.Env(platform.Normalize(p, env))

	s.Log.Infow("starting AfterLight backend", "platform", p)
	for _, sig := range platform.Signals(p, env) {
		s.Log.Infow("platform signal", "key", sig.Key, "value", sig.Value)
	}

	var missing []string
	for _, name := range Required(p) {
		if norm.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Plan{}, &MissingError{Platform: p, Names: missing}
	}

	port, fellBack := ResolvePort(norm.Get("PORT"))
	if fellBack {
		metrics.PortFallbackTotal.Inc()
		s.Log.Warnw("invalid PORT value, using default",
			"value", norm.Get("PORT"), "default", DefaultPort)
	}
	norm["PORT"] = strconv.Itoa(port)

	level := norm.Get("LOG_LEVEL")
	if level == "" {
		level = "INFO"
	}

	metrics.PlatformInfo.WithLabelValues(p.String(), norm.Get("ENVIRONMENT")).Set(1)

	return Plan{
		Platform: p,
		Env:      norm,
		Spec: ListenSpec{
			Host:      "0.0.0.0",
			Port:      port,
			Reload:    false,
			AccessLog: true,
			LogLevel:  strings.ToLower(level),
		},
		Delay: Delay(p),
	}, nil
}

// Run executes the full sequence and returns the process exit code.
func (s *Sequencer) Run(ctx context.Context, env config.Env) int {
	plan, err := s.Prepare(env)
	if err != nil {
		var me *MissingError
		if errors.As(err, &me) {
			metrics.StartupFailuresTotal.WithLabelValues(metrics.ReasonMissingEnv).Inc()
			s.Log.Errorw("missing required environment variables",
				"names", strings.Join(me.Names, ", "))
			s.Log.Error(me.Platform.Hint())
		}
		s.Log.Errorw("startup failed", "err", err)
		return ExitFailure
	}

	s.Log.Infow("environment setup complete",
		"addr", plan.Spec.Addr(),
		"health", "http://"+plan.Spec.Addr()+"/health",
	)

	s.Log.Infow("waiting for system to stabilize", "delay", plan.Delay)
	sleep := s.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	if err := sleep(ctx, plan.Delay); err != nil {
		s.Log.Errorw("startup interrupted", "err", err)
		return ExitFailure
	}

	if err := s.Launch(ctx, plan.Env, plan.Spec); err != nil {
		metrics.StartupFailuresTotal.WithLabelValues(metrics.ReasonLaunch).Inc()
		s.Log.Errorw("failed to start server", "err", err)
		return ExitFailure
	}
	return ExitOK
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
