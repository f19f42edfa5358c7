// Command flutterhost runs a Flutter application bundle in a gogpu window.
//
// Usage:
//
//	flutterhost -config flutterhost.toml
//	flutterhost -library ./libflutter_engine.so
//
// Without -config the defaults apply, overridden by FLUTTERHOST_*
// environment variables. A config file is watched; edits to the log level
// take effect immediately.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/gogpu/gogpu"
	"github.com/google/uuid"

	"github.com/gogpu/flutterhost"
	"github.com/gogpu/flutterhost/config"
	"github.com/gogpu/flutterhost/internal/embedder"
	"github.com/gogpu/flutterhost/platformview"
)

// The engine's UI and raster tasks run on the window thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		cfgPath = flag.String("config", "", "config file (.toml, .yaml or .json)")
		library = flag.String("library", "", "engine shared library, overrides engine.library")
		level   = flag.String("log-level", "", "log level, overrides logging.level")
	)
	flag.Parse()

	if err := run(*cfgPath, *library, *level); err != nil {
		fmt.Fprintln(os.Stderr, "flutterhost:", err)
		os.Exit(1)
	}
}

func run(cfgPath, library, level string) error {
	loader := config.NewLoader(cfgPath)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	defer loader.Close()
	if library != "" {
		cfg.Engine.Library = library
	}
	if level != "" {
		cfg.Logging.Level = level
	}

	var lv slog.LevelVar
	lv.Set(cfg.SlogLevel())
	logger := newLogger(os.Stderr, cfg.Logging.Format, &lv).With("session", uuid.NewString())
	slog.SetDefault(logger)
	flutterhost.SetLogger(logger)

	if cfgPath != "" {
		loader.OnChange(func(c *config.Config) {
			if level == "" {
				lv.Set(c.SlogLevel())
			}
			logger.Info("flutterhost: config reloaded", "level", lv.Level())
		})
		if err := loader.Watch(); err != nil {
			logger.Warn("flutterhost: config not watched", "err", err)
		}
		go func() {
			for err := range loader.Errors() {
				logger.Warn("flutterhost: config", "err", err)
			}
		}()
	}

	bundle, err := flutterhost.PrepareBundle(cfg)
	if err != nil {
		return err
	}
	clearColor, err := config.ParseColor(cfg.Render.ClearColor)
	if err != nil {
		return err
	}

	lib, err := embedder.Open(cfg.Engine.Library)
	if err != nil {
		return err
	}
	defer lib.Close()
	logger.Info("flutterhost: engine loaded",
		"library", lib.Path(), "aot", lib.RunsAOTCompiledDartCode(), "assets", bundle.Assets)

	window := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(cfg.Window.Title).
		WithSize(cfg.Window.Width, cfg.Window.Height).
		WithContinuousRender(false))

	h := &host{
		window: window,
		cfg:    cfg,
		bundle: bundle,
		lib:    lib,
		clear:  clearColor,
		views:  platformview.NewRegistry(),
	}
	h.views.Register(platformview.LogViewType, platformview.LogFactory(0))
	window.OnDraw(h.draw)
	window.OnClose(h.close)

	if err := window.Run(); err != nil {
		return err
	}
	return h.err
}

func newLogger(w io.Writer, format string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
