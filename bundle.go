package flutterhost

import (
	"fmt"
	"path/filepath"

	"github.com/gogpu/flutterhost/config"
)

// Bundle holds the absolute paths of the application files the engine
// loads at startup.
type Bundle struct {
	Assets     string
	ICUData    string
	AOTLibrary string // empty in JIT mode
	CacheDir   string
	Flags      []string
}

// PrepareBundle validates cfg, creates the cache directory and resolves the
// bundle paths against the working directory.
func PrepareBundle(cfg *config.Config) (Bundle, error) {
	if err := cfg.Validate(); err != nil {
		return Bundle{}, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return Bundle{}, err
	}
	b := Bundle{Flags: append([]string(nil), cfg.Engine.Flags...)}
	for _, p := range []struct {
		dst *string
		src string
	}{
		{&b.Assets, cfg.Engine.Assets},
		{&b.ICUData, cfg.Engine.ICUData},
		{&b.AOTLibrary, cfg.Engine.AOTLibrary},
		{&b.CacheDir, cfg.Engine.CacheDir},
	} {
		if p.src == "" {
			continue
		}
		abs, err := filepath.Abs(p.src)
		if err != nil {
			return Bundle{}, fmt.Errorf("resolve %s: %w", p.src, err)
		}
		*p.dst = abs
	}
	return b, nil
}

// ConfigOptions returns the Application options cfg implies.
func ConfigOptions(cfg *config.Config) []Option {
	opts := []Option{
		WithRefreshRate(cfg.Window.RefreshRate),
		WithScrollLinePixels(cfg.Input.ScrollLinePixels),
	}
	if len(cfg.Locale.Preferred) > 0 {
		opts = append(opts, WithLocales(ParseLocales(cfg.Locale.Preferred)...))
	}
	return opts
}
