// cmd/texquad/config_test.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/texquad/texquad/log"
	"github.com/texquad/texquad/renderer"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(fn, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestLoadMissingConfig(t *testing.T) {
	lg := log.NewWriter(io.Discard, "info")
	fn := filepath.Join(t.TempDir(), "nonexistent.json")

	config, err := LoadOrMakeDefaultConfig(fn, lg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *config != defaultConfig {
		t.Errorf("got %+v, expected defaults %+v", *config, defaultConfig)
	}
	if _, err := os.Stat(fn); err == nil {
		t.Errorf("config file was created")
	}
}

func TestLoadConfig(t *testing.T) {
	lg := log.NewWriter(io.Discard, "info")
	fn := writeConfig(t, `{"Version": 1, "Title": "blue", "FillColor": {"R": 0, "G": 0, "B": 1, "A": 1}}`)

	config, err := LoadOrMakeDefaultConfig(fn, lg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Title != "blue" {
		t.Errorf("Title: got %q expected %q", config.Title, "blue")
	}
	if blue := (renderer.RGBA{B: 1, A: 1}); config.FillColor != blue {
		t.Errorf("FillColor: got %+v expected %+v", config.FillColor, blue)
	}
	// Unspecified settings keep their defaults.
	if config.ClearColor != renderer.Black {
		t.Errorf("ClearColor: got %+v expected %+v", config.ClearColor, renderer.Black)
	}
	if config.InitialWindowSize != defaultConfig.InitialWindowSize {
		t.Errorf("InitialWindowSize: got %v expected %v", config.InitialWindowSize, defaultConfig.InitialWindowSize)
	}

	opts := config.FrameOptions()
	if opts.FillColor != config.FillColor || opts.StatsInterval != config.StatsInterval {
		t.Errorf("FrameOptions %+v does not match config", opts)
	}
}

func TestLoadBadConfig(t *testing.T) {
	lg := log.NewWriter(io.Discard, "info")

	for _, test := range []struct {
		name, contents, errText string
	}{
		{name: "corrupt", contents: `{"Title": `, errText: "unexpected EOF"},
		{name: "unknown field", contents: `{"Colour": 1}`, errText: "Colour"},
		{name: "color range", contents: `{"FillColor": {"R": 2, "A": 1}}`, errText: "FillColor"},
		{name: "stats", contents: `{"StatsInterval": -1}`, errText: "StatsInterval"},
		{name: "version", contents: `{"Version": 99}`, errText: "version 99"},
	} {
		t.Run(test.name, func(t *testing.T) {
			fn := writeConfig(t, test.contents)
			config, err := LoadOrMakeDefaultConfig(fn, lg)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), test.errText) {
				t.Errorf("error %q does not mention %q", err, test.errText)
			}
			if *config != defaultConfig {
				t.Errorf("got %+v, expected defaults after error", *config)
			}
		})
	}
}

func TestDefaultConfigIsCopied(t *testing.T) {
	c := getDefaultConfig()
	c.Title = "changed"
	c.FillColor = renderer.Black
	if d := getDefaultConfig(); d.Title == "changed" || d.FillColor != renderer.Red {
		t.Errorf("modifying a returned config changed the defaults")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
