package main

import (
	"github.com/PaulYuuu/guisu/pkg/config"
	"github.com/PaulYuuu/guisu/pkg/engine"
	"github.com/PaulYuuu/guisu/pkg/filesystem"
)

// loadEngine resolves configuration (explicit path, or the XDG default)
// and constructs a ready-to-use Engine over the real filesystem.
func loadEngine() (*engine.Engine, error) {
	path := cfgFile
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	fsys := filesystem.NewOS()
	opts, err := cfg.ToOptions(fsys)
	if err != nil {
		return nil, err
	}

	return engine.New(opts)
}
