package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"

	"filippo.io/age"

	"github.com/PaulYuuu/guisu/pkg/content"
	"github.com/PaulYuuu/guisu/pkg/crypto"
	"github.com/PaulYuuu/guisu/pkg/engine"
	"github.com/PaulYuuu/guisu/pkg/errors"
	"github.com/PaulYuuu/guisu/pkg/filesystem"
	"github.com/PaulYuuu/guisu/pkg/paths"
	"github.com/PaulYuuu/guisu/pkg/state"
	"github.com/PaulYuuu/guisu/pkg/tmpl"
)

// IgnorePredicate builds a state.IgnorePredicate out of the shell glob
// patterns in Config.IgnorePatterns, matched with filepath.Match the way
// the teacher CLI matches its own file patterns.
func (c *Config) IgnorePredicate() state.IgnorePredicate {
	patterns := c.IgnorePatterns
	return func(p paths.SourceRelativePath) bool {
		for _, pattern := range patterns {
			if ok, err := filepath.Match(pattern, p.String()); err == nil && ok {
				return true
			}
		}
		return false
	}
}

// RenderContext assembles the base context spec.md §6 requires (os, arch,
// hostname, username, home_dir) merged with caller-supplied variables.
func (c *Config) RenderContext() map[string]interface{} {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}

	ctx := map[string]interface{}{
		"os":       runtime.GOOS,
		"arch":     runtime.GOARCH,
		"hostname": hostname,
		"home_dir": home,
		"username": username,
	}
	for k, v := range c.Variables {
		ctx[k] = v
	}
	return ctx
}

// loadIdentities parses every configured identity file into age
// identities, in order. A file that cannot be read or parsed fails the
// whole load with an error naming that file.
func (c *Config) loadIdentities(fsys filesystem.FS) ([]age.Identity, error) {
	var out []age.Identity
	for _, path := range c.IdentityFiles {
		data, err := fsys.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrDecryption, "read identity file").WithPath(path)
		}
		ids, err := crypto.ParseIdentities(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrDecryption, "parse identity file").WithPath(path)
		}
		out = append(out, ids...)
	}
	return out, nil
}

// ToOptions projects a resolved Config into engine.Options.
func (c *Config) ToOptions(fsys filesystem.FS) (engine.Options, error) {
	src, err := paths.NewAbsolute(c.SourceRoot)
	if err != nil {
		return engine.Options{}, err
	}
	dst, err := paths.NewAbsolute(c.DestinationRoot)
	if err != nil {
		return engine.Options{}, err
	}

	var decryptor content.Decryptor
	if len(c.IdentityFiles) > 0 {
		identities, err := c.loadIdentities(fsys)
		if err != nil {
			return engine.Options{}, err
		}
		decryptor = crypto.NewAgeDecryptor(identities...)
	}

	return engine.Options{
		SourceRoot:      src,
		DestinationRoot: dst,
		LedgerPath:      c.LedgerPath,
		Ignore:          c.IgnorePredicate(),
		Context:         c.RenderContext(),
		Decryptor:       decryptor,
		Renderer:        tmpl.New(nil),
		FS:              fsys,
	}, nil
}
