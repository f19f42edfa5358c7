// Package config loads flutterhost settings from TOML, YAML or JSON files
// and FLUTTERHOST_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Version is the current configuration schema version.
const Version = 1

// Bundle file names checked by Validate.
const (
	KernelBlob = "kernel_blob.bin"
	ICUData    = "icudtl.dat"
)

// Config is the complete host configuration.
type Config struct {
	Version int `toml:"version" json:"version" yaml:"version"`

	Window  WindowConfig  `toml:"window" json:"window" yaml:"window"`
	Engine  EngineConfig  `toml:"engine" json:"engine" yaml:"engine"`
	Render  RenderConfig  `toml:"render" json:"render" yaml:"render"`
	Input   InputConfig   `toml:"input" json:"input" yaml:"input"`
	Locale  LocaleConfig  `toml:"locale" json:"locale" yaml:"locale"`
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// WindowConfig describes the host window.
type WindowConfig struct {
	Title  string `toml:"title" json:"title" yaml:"title"`
	Width  int    `toml:"width" json:"width" yaml:"width"`
	Height int    `toml:"height" json:"height" yaml:"height"`

	// RefreshRate in Hz paces vsync responses.
	RefreshRate float64 `toml:"refresh_rate" json:"refresh_rate" yaml:"refresh_rate"`
}

// EngineConfig locates the engine and the application bundle.
type EngineConfig struct {
	// Library is the engine shared library (libflutter_engine.so).
	Library string `toml:"library" json:"library" yaml:"library"`

	// Assets is the flutter_assets directory produced by `flutter build bundle`.
	Assets string `toml:"assets" json:"assets" yaml:"assets"`

	// ICUData is the path of icudtl.dat.
	ICUData string `toml:"icu_data" json:"icu_data" yaml:"icu_data"`

	// AOTLibrary is the app's AOT ELF. Empty runs the kernel blob in JIT mode.
	AOTLibrary string `toml:"aot_library" json:"aot_library" yaml:"aot_library"`

	// CacheDir is the engine's persistent cache. Created when absent.
	CacheDir string `toml:"cache_dir" json:"cache_dir" yaml:"cache_dir"`

	// Flags are passed to the engine verbatim.
	Flags []string `toml:"flags" json:"flags" yaml:"flags"`
}

// RenderConfig tunes presentation.
type RenderConfig struct {
	// ClearColor is #RRGGBB or #RRGGBBAA, painted under all layers.
	ClearColor string `toml:"clear_color" json:"clear_color" yaml:"clear_color"`
}

// InputConfig tunes input translation.
type InputConfig struct {
	// ScrollLinePixels is the distance of one wheel line.
	ScrollLinePixels float64 `toml:"scroll_line_pixels" json:"scroll_line_pixels" yaml:"scroll_line_pixels"`
}

// LocaleConfig lists the preferred locales as BCP 47 tags. Empty derives
// them from the environment.
type LocaleConfig struct {
	Preferred []string `toml:"preferred" json:"preferred" yaml:"preferred"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `toml:"level" json:"level" yaml:"level"`
	Format string `toml:"format" json:"format" yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version: Version,
		Window: WindowConfig{
			Title:       "Flutter",
			Width:       1024,
			Height:      768,
			RefreshRate: 60,
		},
		Engine: EngineConfig{
			Library:  defaultLibrary(),
			Assets:   filepath.Join("build", "flutter_assets"),
			ICUData:  filepath.Join("linux", ICUData),
			CacheDir: "cache",
		},
		Render: RenderConfig{
			ClearColor: "#ffffffff",
		},
		Input: InputConfig{
			ScrollLinePixels: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultLibrary() string {
	switch {
	case fileExists("libflutter_engine.so"):
		return "./libflutter_engine.so"
	default:
		return "libflutter_engine.so"
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Engine.Flags = append([]string(nil), c.Engine.Flags...)
	clone.Locale.Preferred = append([]string(nil), c.Locale.Preferred...)
	return &clone
}

// ApplyEnvOverrides applies FLUTTERHOST_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	str := map[string]*string{
		"FLUTTERHOST_ENGINE_LIBRARY": &c.Engine.Library,
		"FLUTTERHOST_ASSETS":         &c.Engine.Assets,
		"FLUTTERHOST_ICU_DATA":       &c.Engine.ICUData,
		"FLUTTERHOST_AOT_LIBRARY":    &c.Engine.AOTLibrary,
		"FLUTTERHOST_CACHE_DIR":      &c.Engine.CacheDir,
		"FLUTTERHOST_CLEAR_COLOR":    &c.Render.ClearColor,
		"FLUTTERHOST_LOG_LEVEL":      &c.Logging.Level,
		"FLUTTERHOST_LOG_FORMAT":     &c.Logging.Format,
	}
	for env, dst := range str {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("FLUTTERHOST_LOCALES"); v != "" {
		c.Locale.Preferred = splitList(v)
	}
	if v := os.Getenv("FLUTTERHOST_ENGINE_FLAGS"); v != "" {
		c.Engine.Flags = strings.Fields(v)
	}
	if v := os.Getenv("FLUTTERHOST_REFRESH_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Window.RefreshRate = f
		}
	}
}

// JIT reports whether the engine runs the kernel blob.
func (c *Config) JIT() bool { return c.Engine.AOTLibrary == "" }

// KernelBlobPath returns the kernel blob inside the asset bundle.
func (c *Config) KernelBlobPath() string {
	return filepath.Join(c.Engine.Assets, KernelBlob)
}

// EnsureDirectories creates the engine cache directory.
func (c *Config) EnsureDirectories() error {
	if c.Engine.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.Engine.CacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	return nil
}

// SlogLevel returns the configured level. Unknown names map to info.
func (c *Config) SlogLevel() slog.Level {
	l, _ := ParseLevel(c.Logging.Level)
	return l
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
	return l, nil
}

// ParseColor parses #RRGGBB or #RRGGBBAA into components in [0,1].
func ParseColor(s string) ([4]float64, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return [4]float64{}, fmt.Errorf("config: color %q is not #RRGGBB[AA]", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]float64{}, fmt.Errorf("config: color %q: %w", s, err)
	}
	return [4]float64{
		float64(v>>24&0xff) / 255,
		float64(v>>16&0xff) / 255,
		float64(v>>8&0xff) / 255,
		float64(v&0xff) / 255,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
