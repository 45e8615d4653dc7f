// cmd/texquad/config.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/texquad/texquad/frame"
	"github.com/texquad/texquad/log"
	"github.com/texquad/texquad/platform"
	"github.com/texquad/texquad/renderer"

	"github.com/brunoga/deep"
)

// CurrentConfigVersion is the newest config file layout that is understood.
const CurrentConfigVersion = 1

// Config holds the user-adjustable settings. It is only ever read; the
// program does not write it back.
type Config struct {
	platform.Config

	Version       int
	FillColor     renderer.RGBA
	ClearColor    renderer.RGBA
	StatsInterval int
}

var defaultConfig = Config{
	Config:        platform.DefaultConfig(),
	Version:       CurrentConfigVersion,
	FillColor:     frame.DefaultOptions().FillColor,
	ClearColor:    frame.DefaultOptions().ClearColor,
	StatsInterval: frame.DefaultOptions().StatsInterval,
}

func getDefaultConfig() *Config {
	c := deep.MustCopy(defaultConfig)
	return &c
}

func configFilePath(lg *log.Logger) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		lg.Errorf("Unable to find user config dir: %v", err)
		dir = "."
	}
	return filepath.Join(dir, "texquad", "config.json")
}

func (c *Config) Validate() error {
	var errs []error
	if c.Version > CurrentConfigVersion {
		errs = append(errs, fmt.Errorf("version %d is newer than supported version %d", c.Version,
			CurrentConfigVersion))
	}
	if err := c.FillColor.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("FillColor: %w", err))
	}
	if err := c.ClearColor.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ClearColor: %w", err))
	}
	if c.StatsInterval < 0 {
		errs = append(errs, fmt.Errorf("StatsInterval %d: must not be negative", c.StatsInterval))
	}
	return errors.Join(errs...)
}

// FrameOptions returns the options for the frame renderer given by the
// config.
func (c *Config) FrameOptions() frame.Options {
	opts := frame.DefaultOptions()
	opts.FillColor = c.FillColor
	opts.ClearColor = c.ClearColor
	opts.StatsInterval = c.StatsInterval
	return opts
}

// LoadOrMakeDefaultConfig reads the config file at fn. A missing file is
// not an error. If the file can't be parsed or holds invalid settings, the
// default config is returned along with an error describing the problem.
func LoadOrMakeDefaultConfig(fn string, lg *log.Logger) (*Config, error) {
	lg.Infof("Loading config from: %s", fn)

	contents, err := os.ReadFile(fn)
	if errors.Is(err, fs.ErrNotExist) {
		lg.Infof("%s: no config file; using defaults", fn)
		return getDefaultConfig(), nil
	} else if err != nil {
		return getDefaultConfig(), fmt.Errorf("%s: %w", fn, err)
	}

	// Settings missing from the file keep their default values.
	config := getDefaultConfig()
	d := json.NewDecoder(bytes.NewReader(contents))
	d.DisallowUnknownFields()
	if err := d.Decode(config); err != nil {
		return getDefaultConfig(), fmt.Errorf("%s: %w", fn, err)
	}
	if err := config.Validate(); err != nil {
		return getDefaultConfig(), fmt.Errorf("%s: %w", fn, err)
	}

	if config.Version < CurrentConfigVersion {
		lg.Infof("%s: upgrading config from version %d", fn, config.Version)
		config.Version = CurrentConfigVersion
	}
	return config, nil
}
