// log/log_test.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, test := range []struct {
		name  string
		level slog.Level
		err   bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"chatty", slog.LevelInfo, true},
	} {
		lvl, err := ParseLevel(test.name)
		if lvl != test.level {
			t.Errorf("%q: got level %v, expected %v", test.name, lvl, test.level)
		}
		if (err != nil) != test.err {
			t.Errorf("%q: got error %v, expected error %v", test.name, err, test.err)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWriter(&buf, "warn")

	lg.Info("dropped")
	lg.Debugf("dropped %d", 1)
	if buf.Len() != 0 {
		t.Errorf("info/debug written at warn level: %s", buf.String())
	}

	lg.Warnf("kept %d", 2)
	if !strings.Contains(buf.String(), "kept 2") {
		t.Errorf("warning missing from output: %s", buf.String())
	}
}

func TestCallstackAttached(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWriter(&buf, "debug")
	lg.Debug("hello", slog.Int("frame", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unable to decode log record %q: %v", buf.String(), err)
	}
	if rec["msg"] != "hello" {
		t.Errorf("msg = %v, expected hello", rec["msg"])
	}
	if rec["frame"] != float64(3) {
		t.Errorf("frame = %v, expected 3", rec["frame"])
	}
	stack, ok := rec["callstack"].([]any)
	if !ok || len(stack) == 0 {
		t.Fatalf("no callstack in record: %v", rec)
	}
	top := stack[0].(map[string]any)
	if top["file"] != "log_test.go" {
		t.Errorf("top frame file = %v, expected log_test.go", top["file"])
	}
}

func TestNilLogger(t *testing.T) {
	var lg *Logger

	// None of these should crash.
	lg.Debug("debug")
	lg.Debugf("debug %d", 1)
	lg.Info("info")
	lg.Infof("info %d", 1)
	if lg.With("k", "v") != nil {
		t.Errorf("With on nil logger should give nil")
	}
}

func TestCatchAndReportCrash(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWriter(&buf, "info")

	func() {
		defer lg.CatchAndReportCrash()
		panic("boom")
	}()
	if !strings.Contains(buf.String(), "Crashed: boom") {
		t.Errorf("crash not logged: %s", buf.String())
	}
}
