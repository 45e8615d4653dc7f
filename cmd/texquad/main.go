// cmd/texquad/main.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// This file contains the implementation of the main() function, which
// creates the window and the renderer and then draws frames until the
// window is closed.

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/texquad/texquad/frame"
	"github.com/texquad/texquad/log"
	"github.com/texquad/texquad/platform"
	"github.com/texquad/texquad/platform/glfwplatform"
	"github.com/texquad/texquad/renderer"
	"github.com/texquad/texquad/renderer/opengl"

	"github.com/apenwarr/fixconsole"
	"github.com/goforj/godump"
)

var (
	// Command-line options are only used for developer features.
	logLevel      = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir        = flag.String("logdir", "", "log file directory")
	configFile    = flag.String("config", "", "path to JSON config file (default: user config directory)")
	dumpConfig    = flag.Bool("dumpconfig", false, "print the resolved configuration and exit")
	captureFile   = flag.String("capture", "", "write the command streams of the first frames to this file")
	captureFrames = flag.Int("captureframes", 2, "number of frames to capture with -capture")
)

func init() {
	// OpenGL and GLFW require that all calls be made from the primary
	// application thread, while by default, go allows the main thread to
	// run on different hardware threads over the course of
	// execution. Therefore, we must lock the main thread at startup time.
	runtime.LockOSThread()
}

// setupSignalHandler turns SIGINT and SIGTERM into a request to close the
// window so that the usual shutdown path runs. The returned function stops
// signal delivery; it must be called before the platform is disposed.
func setupSignalHandler(plat platform.Platform, lg *log.Logger) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		lg.Infof("Caught signal %v, closing window", sig)
		plat.RequestClose()
	}()

	return func() { signal.Stop(sigCh) }
}

func saveCapture(rec *renderer.CaptureRecorder, fn string, lg *log.Logger) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := rec.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	lg.Infof("%s: saved %d captured frames", fn, len(rec.Frames()))
	return nil
}

func main() {
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		// Not sure this will actually appear, but what else are we going
		// to do...
		fmt.Printf("FixConsole: %v\n", err)
	}

	// Initialize the logging system first and foremost.
	lg := log.New(*logLevel, *logDir)
	defer lg.CatchAndReportCrash()

	// os.Exit skips deferred functions, so everything that runs after the
	// window is created happens in run().
	if code := run(lg); code != 0 {
		os.Exit(code)
	}
}

func run(lg *log.Logger) int {
	fn := *configFile
	if fn == "" {
		fn = configFilePath(lg)
	}
	config, err := LoadOrMakeDefaultConfig(fn, lg)
	if err != nil {
		lg.Errorf("Error loading config: %v; using defaults", err)
	}

	if *dumpConfig {
		godump.Dump(config)
		return 0
	}

	plat, err := glfwplatform.New(&config.Config, lg)
	if err != nil {
		lg.Errorf("Unable to create application window: %v", err)
		return 1
	}
	defer plat.Dispose()

	dev, err := opengl.NewDevice(lg)
	if err != nil {
		lg.Errorf("Unable to initialize OpenGL: %v", err)
		return 1
	}
	defer dev.Dispose()

	opts := config.FrameOptions()
	if *captureFile != "" {
		opts.Capture = renderer.NewCaptureRecorder(*captureFrames)
	}

	fr, err := frame.New(plat, dev, opts, lg)
	if err != nil {
		lg.Errorf("Unable to initialize renderer: %v", err)
		return 1
	}
	defer fr.Dispose()

	stopSignals := setupSignalHandler(plat, lg)
	defer stopSignals()

	fr.Run()

	if *captureFile != "" {
		if err := saveCapture(opts.Capture, *captureFile, lg); err != nil {
			lg.Errorf("%s: unable to save capture: %v", *captureFile, err)
			return 1
		}
	}
	return 0
}
