// internal/config/loader.go
//
// Environment boundary.
//
/*
Context
--------
`Environ(root)` is the only function in the repository that reads the
process environment.  It returns a flat Env snapshot merged from three
layers (highest precedence last):

  1. Optional `<root>/conf/settings.yaml`, flat UPPER_CASE keys.  Sequence
     values are joined with commas so list settings may be written as YAML
     lists.
  2. Optional `<root>/.env`, read with godotenv.Read so the process
     environment is never mutated.
  3. The process environment itself.

Everything downstream (platform normalisation, Resolve, the launcher)
works on the returned map.

Instrumentation
---------------
  • DEBUG spans for each optional layer found.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface before the configured logger exists.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	settingsFile = "conf/settings.yaml"
	dotenvFile   = ".env"
)

// RootDir resolves AFTERLIGHT_ROOT or falls back to the working directory.
func RootDir() string {
	if r := os.Getenv("AFTERLIGHT_ROOT"); r != "" {
		return r
	}
	wd, _ := os.Getwd()
	return wd
}

// Environ snapshots settings.yaml, .env, and the process environment.
func Environ(root string) (Env, error) {
	out := Env{}

	yamlPath := filepath.Join(root, settingsFile)
	if _, err := os.Stat(yamlPath); err == nil {
		k := koanf.New(".")
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", yamlPath, err)
		}
		merge(out, k.All())
		zap.S().Debugw("settings file loaded", "file", yamlPath)
	}

	envPath := filepath.Join(root, dotenvFile)
	if _, err := os.Stat(envPath); err == nil {
		vals, err := godotenv.Read(envPath)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", envPath, err)
		}
		for key, val := range vals {
			out[key] = val
		}
		zap.S().Debugw("dotenv loaded", "file", envPath)
	}

	// The callback keeps names verbatim; only the empty prefix filter applies.
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("config: read process env: %w", err)
	}
	merge(out, k.All())

	return out, nil
}

// merge flattens koanf values into dst, joining sequences with commas.
func merge(dst Env, src map[string]any) {
	for key, val := range src {
		switch t := val.(type) {
		case []any:
			dst[key] = strings.Join(SplitList(t), ",")
		case nil:
		default:
			dst[key] = fmt.Sprint(t)
		}
	}
}
