// Package config is the ambient, core-external configuration loader
// spec.md §1 carves out of scope ("the core receives a fully resolved
// configuration object"). It resolves a Config from a TOML file (default
// location via XDG, overridable) merged with environment variables, using
// koanf the way the teacher CLI resolves its own settings.
package config

import (
	"os"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/PaulYuuu/guisu/pkg/errors"
)

// Config is the resolved, caller-facing settings object; the engine never
// sees this type, only the Options it's projected into.
type Config struct {
	SourceRoot      string            `koanf:"source_root"`
	DestinationRoot string            `koanf:"destination_root"`
	LedgerPath      string            `koanf:"ledger_path"`
	IdentityFiles   []string          `koanf:"identity_files"`
	IgnorePatterns  []string          `koanf:"ignore_patterns"`
	Variables       map[string]string `koanf:"variables"`
}

const envPrefix = "GUISU_"

// DefaultPath returns the XDG-resolved default config file location,
// $XDG_CONFIG_HOME/guisu/config.toml.
func DefaultPath() (string, error) {
	// The xdg package reads XDG_* variables once at init; reload so the
	// current environment is used.
	xdg.Reload()
	path, err := xdg.ConfigFile("guisu/config.toml")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "resolve XDG config path")
	}
	return path, nil
}

// Load reads path (if it exists; a missing file is not an error, since
// every field has a usable zero value or environment override) and
// overlays GUISU_*-prefixed environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrap(err, errors.ErrInternal, "load config file").WithPath(path)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyTransform), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "unmarshal configuration")
	}
	return &cfg, nil
}

func envKeyTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}
