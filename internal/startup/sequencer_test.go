package startup

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/afterlight/api/internal/config"
	"github.com/afterlight/api/internal/platform"
)

// recorder captures the launcher call instead of serving.
type recorder struct {
	called bool
	env    config.Env
	listen ListenSpec
	err    error
}

func (r *recorder) launch(_ context.Context, env config.Env, listen ListenSpec) error {
	r.called = true
	r.env = env
	r.listen = listen
	return r.err
}

func newSequencer(t *testing.T, rec *recorder) (*Sequencer, *observer.ObservedLogs, *[]time.Duration) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	var slept []time.Duration
	return &Sequencer{
		Launch: rec.launch,
		Log:    zap.New(core).Sugar(),
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}, logs, &slept
}

func TestResolvePort(t *testing.T) {
	tests := []struct {
		raw      string
		want     int
		fellBack bool
	}{
		{"", 8000, false},
		{"$PORT", 8000, false},
		{"10000", 10000, false},
		{" 9000 ", 9000, false},
		{"abc", 8000, true},
	}
	for _, tc := range tests {
		got, fb := ResolvePort(tc.raw)
		if got != tc.want || fb != tc.fellBack {
			t.Errorf("ResolvePort(%q) = %d, %v; want %d, %v", tc.raw, got, fb, tc.want, tc.fellBack)
		}
	}
}

// The sequencer downgrades a bad PORT to a warning while the resolver treats
// the very same value as fatal.
func TestPortPolicies_AreDistinct(t *testing.T) {
	rec := &recorder{}
	seq, logs, _ := newSequencer(t, rec)

	if code := seq.Run(context.Background(), config.Env{"JWT_SECRET": "s", "PORT": "abc"}); code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}
	if rec.listen.Port != 8000 {
		t.Errorf("port = %d, want 8000", rec.listen.Port)
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("warnings = %d, want 1", n)
	}

	if _, err := config.Resolve(config.Env{"PORT": "abc"}); !errors.Is(err, config.ErrInvalidPort) {
		t.Fatalf("Resolve err = %v, want ErrInvalidPort", err)
	}
}

func TestRun_LocalOnlyNeedsJWTSecret(t *testing.T) {
	rec := &recorder{}
	seq, _, slept := newSequencer(t, rec)

	if code := seq.Run(context.Background(), config.Env{"JWT_SECRET": "s"}); code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}
	if !rec.called {
		t.Fatal("launcher was not invoked")
	}
	want := ListenSpec{
		Host:      "0.0.0.0",
		Port:      8000,
		Reload:    false,
		AccessLog: true,
		LogLevel:  "debug",
	}
	if rec.listen != want {
		t.Errorf("listen = %+v, want %+v", rec.listen, want)
	}
	if got := rec.env["ENVIRONMENT"]; got != "development" {
		t.Errorf("ENVIRONMENT = %q", got)
	}
	if got := rec.env["PORT"]; got != "8000" {
		t.Errorf("PORT = %q", got)
	}
	if !reflect.DeepEqual(*slept, []time.Duration{5 * time.Second}) {
		t.Errorf("slept = %v, want [5s]", *slept)
	}
}

func TestRun_PlaceholderPort(t *testing.T) {
	rec := &recorder{}
	seq, logs, _ := newSequencer(t, rec)

	if code := seq.Run(context.Background(), config.Env{"JWT_SECRET": "s", "PORT": "$PORT"}); code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}
	if rec.listen.Port != 8000 || rec.env["PORT"] != "8000" {
		t.Errorf("port = %d env PORT = %q, want 8000", rec.listen.Port, rec.env["PORT"])
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 0 {
		t.Errorf("warnings = %d, want 0", n)
	}
}

func TestRun_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		env     config.Env
		missing []string
	}{
		{"local", config.Env{}, []string{"JWT_SECRET"}},
		{"railway", config.Env{"RAILWAY_ENVIRONMENT": "production", "JWT_SECRET": "s"}, []string{"DATABASE_URL"}},
		{"render", config.Env{"RENDER": "true"}, []string{"DATABASE_URL", "JWT_SECRET"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			seq, logs, _ := newSequencer(t, rec)

			_, err := seq.Prepare(tc.env)
			var me *MissingError
			if !errors.As(err, &me) {
				t.Fatalf("err = %v, want *MissingError", err)
			}
			if !errors.Is(err, ErrMissingRequired) {
				t.Errorf("err does not match ErrMissingRequired")
			}
			if !reflect.DeepEqual(me.Names, tc.missing) {
				t.Errorf("missing = %v, want %v", me.Names, tc.missing)
			}

			if code := seq.Run(context.Background(), tc.env); code != ExitFailure {
				t.Errorf("exit = %d, want %d", code, ExitFailure)
			}
			if rec.called {
				t.Error("launcher must not run")
			}
			if logs.FilterMessage(me.Platform.Hint()).Len() == 0 {
				t.Errorf("hint %q not logged", me.Platform.Hint())
			}
		})
	}
}

func TestRun_RenderUsesShortDelay(t *testing.T) {
	rec := &recorder{}
	seq, _, slept := newSequencer(t, rec)

	env := config.Env{"RENDER": "true", "DATABASE_URL": "postgres://x", "JWT_SECRET": "s", "PORT": "10000"}
	if code := seq.Run(context.Background(), env); code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}

	if !reflect.DeepEqual(*slept, []time.Duration{3 * time.Second}) {
		t.Errorf("slept = %v, want [3s]", *slept)
	}
	if rec.listen.Port != 10000 || rec.listen.LogLevel != "info" {
		t.Errorf("listen = %+v", rec.listen)
	}
	if got := rec.env["ENVIRONMENT"]; got != "production" {
		t.Errorf("ENVIRONMENT = %q", got)
	}
}

func TestRun_LaunchErrorExitsNonZero(t *testing.T) {
	rec := &recorder{err: errors.New("address in use")}
	seq, logs, _ := newSequencer(t, rec)

	if code := seq.Run(context.Background(), config.Env{"JWT_SECRET": "s"}); code != ExitFailure {
		t.Fatalf("exit = %d, want %d", code, ExitFailure)
	}
	if n := logs.FilterMessage("failed to start server").Len(); n != 1 {
		t.Errorf("failure logs = %d, want 1", n)
	}
}

func TestRun_CancelledDuringDelay(t *testing.T) {
	rec := &recorder{}
	seq, _, _ := newSequencer(t, rec)
	seq.Sleep = nil

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if code := seq.Run(ctx, config.Env{"JWT_SECRET": "s"}); code != ExitFailure {
		t.Fatalf("exit = %d, want %d", code, ExitFailure)
	}
	if rec.called {
		t.Error("launcher must not run after cancellation")
	}
}

func TestPrepare_DoesNotMutateInput(t *testing.T) {
	seq, _, _ := newSequencer(t, &recorder{})
	in := config.Env{"JWT_SECRET": "s", "RAILWAY_ENVIRONMENT": "staging", "DATABASE_URL": "x"}

	plan, err := seq.Prepare(in)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if plan.Platform != platform.Railway {
		t.Errorf("platform = %s, want railway", plan.Platform)
	}
	if len(in) != 3 {
		t.Errorf("input grew to %d keys", len(in))
	}
	if _, ok := in["ENVIRONMENT"]; ok {
		t.Error("input gained ENVIRONMENT")
	}
}

func TestRequired_FollowsHosted(t *testing.T) {
	if got := Required(platform.Local); !reflect.DeepEqual(got, []string{"JWT_SECRET"}) {
		t.Errorf("local = %v", got)
	}
	for _, p := range []platform.Platform{platform.Railway, platform.Render} {
		if got := Required(p); !reflect.DeepEqual(got, []string{"DATABASE_URL", "JWT_SECRET"}) {
			t.Errorf("%s = %v", p, got)
		}
	}
}
