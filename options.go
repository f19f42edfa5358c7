package flutterhost

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flutterhost/engine"
	"github.com/gogpu/flutterhost/keymap"
	"github.com/gogpu/flutterhost/platformview"
)

// DefaultRefreshRate is the display refresh rate assumed for vsync when
// none is configured.
const DefaultRefreshRate = 60

// Option configures an Application.
//
// Example:
//
//	app := flutterhost.New(comp,
//	    flutterhost.WithPlatform(window),
//	    flutterhost.WithRefreshRate(120),
//	)
type Option func(*options)

type options struct {
	platform    gpucontext.PlatformProvider
	ime         gpucontext.IMEController
	views       *platformview.Registry
	refreshRate float64
	linePixels  float64
	locales     []engine.Locale
	display     *engine.Display
	onQuit      func()
}

func defaultOptions() options {
	return options{
		platform:    gpucontext.NullPlatformProvider{},
		refreshRate: DefaultRefreshRate,
		linePixels:  keymap.DefaultLinePixels,
	}
}

// WithPlatform sets the clipboard and cursor provider, normally the window.
func WithPlatform(p gpucontext.PlatformProvider) Option {
	return func(o *options) {
		if p != nil {
			o.platform = p
		}
	}
}

// WithIME lets the text editor position and toggle the input method.
func WithIME(ime gpucontext.IMEController) Option {
	return func(o *options) {
		o.ime = ime
	}
}

// WithPlatformViews sets the registry serving flutter/platform_views. The
// same registry must be given to the compositor to get views drawn.
func WithPlatformViews(r *platformview.Registry) Option {
	return func(o *options) {
		o.views = r
	}
}

// WithRefreshRate sets the display refresh rate in Hz. It fixes the frame
// interval reported on vsync.
func WithRefreshRate(hz float64) Option {
	return func(o *options) {
		if hz > 0 {
			o.refreshRate = hz
		}
	}
}

// WithScrollLinePixels sets the distance of one wheel line.
func WithScrollLinePixels(px float64) Option {
	return func(o *options) {
		if px > 0 {
			o.linePixels = px
		}
	}
}

// WithLocales sets the preferred locales sent to the engine, most
// preferred first. Without it the process environment decides.
func WithLocales(locales ...engine.Locale) Option {
	return func(o *options) {
		o.locales = locales
	}
}

// WithDisplay describes the display the window is on. It is reported to
// the engine at startup.
func WithDisplay(d engine.Display) Option {
	return func(o *options) {
		o.display = &d
	}
}

// WithQuitHandler sets the function run when the app asks to exit through
// SystemNavigator.pop.
func WithQuitHandler(f func()) Option {
	return func(o *options) {
		o.onQuit = f
	}
}
