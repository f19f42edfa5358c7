package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is matched by every error returned from Validate.
var ErrInvalid = errors.New("config: invalid")

// ValidationError is one rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors collects every rejected field.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationErrors) Is(target error) bool { return target == ErrInvalid }

// Has reports whether field was rejected.
func (e ValidationErrors) Has(field string) bool {
	for _, v := range e {
		if v.Field == field {
			return true
		}
	}
	return false
}

// Validate checks field ranges and the files the engine needs at startup:
// the asset bundle, its kernel blob in JIT mode, the AOT library otherwise,
// and the ICU data file.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Version < 1 || c.Version > Version {
		add("version", "unsupported version %d (current: %d)", c.Version, Version)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		add("window", "size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.RefreshRate <= 0 {
		add("window.refresh_rate", "must be positive, got %v", c.Window.RefreshRate)
	}
	if c.Engine.Library == "" {
		add("engine.library", "required")
	}

	switch {
	case c.Engine.Assets == "":
		add("engine.assets", "required")
	case !dirExists(c.Engine.Assets):
		add("engine.assets", "bundle directory %s does not exist", c.Engine.Assets)
	case c.JIT() && !fileExists(c.KernelBlobPath()):
		add("engine.assets", "kernel blob %s does not exist", c.KernelBlobPath())
	}
	if !c.JIT() && !fileExists(c.Engine.AOTLibrary) {
		add("engine.aot_library", "%s does not exist", c.Engine.AOTLibrary)
	}
	if !fileExists(c.Engine.ICUData) {
		add("engine.icu_data", "%s not found", c.Engine.ICUData)
	}

	if _, err := ParseColor(c.Render.ClearColor); err != nil {
		add("render.clear_color", "%v", err)
	}
	if c.Input.ScrollLinePixels <= 0 {
		add("input.scroll_line_pixels", "must be positive, got %v", c.Input.ScrollLinePixels)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		add("logging.level", "unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		add("logging.format", "must be text or json, got %q", c.Logging.Format)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
