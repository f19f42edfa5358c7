package flutterhost

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flutterhost/codec"
	"github.com/gogpu/flutterhost/engine"
	"github.com/gogpu/flutterhost/keymap"
	"github.com/gogpu/flutterhost/platformview"
	"github.com/gogpu/flutterhost/runner"
	"github.com/gogpu/flutterhost/textinput"
)

var (
	// ErrNotAttached reports Start without an engine.
	ErrNotAttached = errors.New("flutterhost: no engine attached")

	// ErrEngineRestart is raised when the engine announces a hot restart,
	// which this host does not support.
	ErrEngineRestart = errors.New("flutterhost: engine restart is not supported")
)

// Application connects a running engine to the window. It implements
// engine.Host: engine callbacks arriving on engine threads are queued on
// the mailbox and run by Drain on the UI thread, which is also the thread
// the engine renders on.
//
// Except for the engine.Host methods, every method must be called on the
// UI thread.
type Application struct {
	opts   options
	comp   engine.Compositor
	engine engine.Engine

	mailbox *runner.Mailbox
	tasks   *runner.TaskRunner
	started time.Time

	channels map[string]MessageHandler
	editor   *textinput.Editor
	views    *platformview.Registry
	tracker  *keymap.Tracker
	pressed  map[gpucontext.Key]bool

	width, height int
	pixelRatio    float64
	lifecycle     string
	cursor        gpucontext.CursorShape

	exitOnce sync.Once
	done     chan struct{}
	err      error
}

var (
	_ engine.Host      = (*Application)(nil)
	_ textinput.Sender = (*Application)(nil)
)

// New returns an Application drawing through comp. Attach an engine before
// Start.
func New(comp engine.Compositor, opts ...Option) *Application {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	a := &Application{
		opts:       o,
		comp:       comp,
		started:    time.Now(),
		channels:   make(map[string]MessageHandler),
		pressed:    make(map[gpucontext.Key]bool),
		pixelRatio: 1,
		done:       make(chan struct{}),
	}
	a.mailbox = runner.NewMailbox()
	a.tasks = runner.NewTaskRunner(a.mailbox, a.now)

	var editorOpts []textinput.Option
	if o.ime != nil {
		editorOpts = append(editorOpts, textinput.WithIME(o.ime))
	}
	a.editor = textinput.New(a, o.platform, editorOpts...)

	a.views = o.views
	if a.views == nil {
		a.views = platformview.NewRegistry()
	}

	a.tracker = keymap.NewTracker()
	a.tracker.LinePixels = o.linePixels
	a.tracker.Now = a.now

	a.HandleMethods(textinput.Channel, codec.JSONMethodCodec{}, a.editor.HandleMethodCall)
	a.HandleMethods(platformview.Channel, codec.StandardMethodCodec{}, a.views.HandleMethodCall)
	a.HandleMethods(ChannelPlatform, codec.JSONMethodCodec{}, a.handlePlatform)
	a.HandleMethods(ChannelMouseCursor, codec.StandardMethodCodec{}, a.handleMouseCursor)
	return a
}

// Attach sets the engine the Application drives. It must be called once,
// before Start.
func (a *Application) Attach(e engine.Engine) { a.engine = e }

// Editor returns the text input state machine.
func (a *Application) Editor() *textinput.Editor { return a.editor }

// PlatformViews returns the platform view registry.
func (a *Application) PlatformViews() *platformview.Registry { return a.views }

// Start binds the calling thread as the UI thread, runs the engine and
// sends the startup state: display, locales, settings, the initial window
// metrics and the resumed lifecycle state. The goroutine must be locked to
// its thread.
func (a *Application) Start(width, height int, pixelRatio float64) error {
	if a.engine == nil {
		return ErrNotAttached
	}
	a.tasks.Bind()
	if err := a.engine.Run(); err != nil {
		return err
	}
	slogger().Info("flutterhost: engine running")

	if d := a.opts.display; d != nil {
		if err := a.engine.NotifyDisplayUpdate([]engine.Display{*d}); err != nil {
			return err
		}
	}
	locales := a.opts.locales
	if len(locales) == 0 {
		locales = SystemLocales()
	}
	if err := a.engine.UpdateLocales(locales); err != nil {
		return err
	}
	a.sendSettings()
	a.MetricsChanged(width, height, pixelRatio, 0, 0)
	a.setLifecycle(LifecycleResumed)
	return nil
}

// Mailbox returns the queue of work for the UI thread. Its Ready channel
// fires when Drain has something to do.
func (a *Application) Mailbox() *runner.Mailbox { return a.mailbox }

// Drain runs the queued UI thread work and returns how much ran.
func (a *Application) Drain() int { return a.mailbox.Drain() }

// Done is closed when the Application wants to exit: after Quit or a
// fatal error. Err tells the two apart.
func (a *Application) Done() <-chan struct{} { return a.done }

// Err returns the fatal error that closed Done, if any.
func (a *Application) Err() error {
	select {
	case <-a.done:
		return a.err
	default:
		return nil
	}
}

// Quit asks the embedding loop to exit.
func (a *Application) Quit() { a.exit(nil) }

func (a *Application) exit(err error) {
	a.exitOnce.Do(func() {
		a.err = err
		close(a.done)
	})
}

func (a *Application) fail(err error) {
	slogger().Error("flutterhost: fatal", "err", err)
	a.exit(err)
}

// Shutdown stops the engine and drops pending work. It is safe to call
// more than once.
func (a *Application) Shutdown() error {
	a.tasks.Stop()
	a.views.DisposeAll()
	var err error
	if a.engine != nil {
		if a.lifecycle != "" && a.lifecycle != LifecycleDetached {
			a.setLifecycle(LifecycleDetached)
		}
		err = a.engine.Shutdown()
	}
	a.mailbox.Close()
	a.exit(nil)
	slogger().Info("flutterhost: shut down")
	return err
}

// now is the engine clock. Before an engine is attached it counts from
// New.
func (a *Application) now() uint64 {
	if a.engine != nil {
		return a.engine.CurrentTime()
	}
	return uint64(time.Since(a.started))
}

func (a *Application) frameInterval() uint64 {
	return uint64(float64(time.Second) / a.opts.refreshRate)
}

// PostTask implements engine.Host.
func (a *Application) PostTask(t engine.Task, targetNanos uint64) {
	a.tasks.Post(func() {
		engine.Must(a.engine.RunTask(t))
	}, targetNanos)
}

// RunsTasksOnCurrentThread implements engine.Host.
func (a *Application) RunsTasksOnCurrentThread() bool {
	return a.tasks.RunsOnCurrentThread()
}

// HandlePlatformMessage implements engine.Host.
func (a *Application) HandlePlatformMessage(msg engine.PlatformMessage) {
	if !a.mailbox.Post(func() { a.dispatch(msg) }) {
		slogger().Warn("flutterhost: message after shutdown", "channel", msg.Channel)
	}
}

// RequestVsync implements engine.Host. The frame is reported as starting
// now and due one refresh interval later.
func (a *Application) RequestVsync(baton uintptr) {
	a.mailbox.Post(func() {
		start := a.engine.CurrentTime()
		engine.Must(a.engine.OnVsync(baton, start, start+a.frameInterval()))
	})
}

// RootIsolateCreated implements engine.Host.
func (a *Application) RootIsolateCreated() {
	slogger().Info("flutterhost: root isolate created")
}

// LogMessage implements engine.Host.
func (a *Application) LogMessage(tag, message string) {
	slogger().Info(message, "tag", tag)
}

// UpdateSemantics implements engine.Host.
func (a *Application) UpdateSemantics(nodes int) {
	slogger().Debug("flutterhost: semantics update", "nodes", nodes)
}

// PreEngineRestart implements engine.Host. It is fatal.
func (a *Application) PreEngineRestart() {
	slogger().Error("flutterhost: engine restart requested")
	panic(ErrEngineRestart)
}

// CreateBackingStore implements engine.Compositor.
func (a *Application) CreateBackingStore(cfg engine.BackingStoreConfig) (engine.BackingStore, error) {
	return a.comp.CreateBackingStore(cfg)
}

// CollectBackingStore implements engine.Compositor.
func (a *Application) CollectBackingStore(id uint64) error {
	return a.comp.CollectBackingStore(id)
}

// PresentLayers implements engine.Compositor. A failed present ends the
// run.
func (a *Application) PresentLayers(layers []engine.Layer) error {
	if err := a.comp.PresentLayers(layers); err != nil {
		a.fail(fmt.Errorf("present: %w", err))
		return err
	}
	return nil
}
