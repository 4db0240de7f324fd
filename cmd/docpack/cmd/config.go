package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/rawbytedev/docpack"
)

// Options are the resolved tool settings after defaults and the config
// file have been merged.
type Options struct {
	ScratchCapacity int
	Compress        bool
	Level           int
}

func defaultOptions() Options {
	return Options{
		ScratchCapacity: docpack.DefaultScratchCapacity,
		Compress:        false,
		Level:           3,
	}
}

type fileConfig struct {
	ScratchCapacity int  `toml:"scratch_capacity"`
	Compress        bool `toml:"compress"`
	Level           int  `toml:"level"`
}

func loadOptions(path string) (Options, error) {
	cfg := defaultOptions()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Options{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("scratch_capacity") {
		if raw.ScratchCapacity <= 0 {
			return Options{}, fmt.Errorf("config: scratch_capacity must be positive, got %d", raw.ScratchCapacity)
		}
		cfg.ScratchCapacity = raw.ScratchCapacity
	}

	if meta.IsDefined("compress") {
		cfg.Compress = raw.Compress
	}

	if meta.IsDefined("level") {
		if raw.Level < 1 || raw.Level > 22 {
			return Options{}, fmt.Errorf("config: level must be in [1,22], got %d", raw.Level)
		}
		cfg.Level = raw.Level
	}

	return cfg, nil
}
