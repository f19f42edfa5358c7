// Package flutterhost embeds the Flutter engine in a gogpu window.
//
// # Overview
//
// An [Application] sits between a running engine and the window. It
// answers the engine's callbacks ([engine.Host]), serves the platform
// channels the framework talks to (text input, clipboard, mouse cursor,
// platform views, lifecycle) and translates window input into engine
// events. Frames are composited by a [compositor.Compositor] drawing into
// the window's swapchain.
//
// # Threading
//
// The engine calls back on its own threads. Those callbacks only queue work
// on the Application's mailbox; the window loop calls [Application.Drain]
// on the UI thread, which is also the thread the engine rasterizes on.
// Every other Application method must be called on the UI thread.
//
// # Quick Start
//
// The engine is any [engine.Engine] that reports back to the Application as
// its [engine.Host]. The binding of the engine shared library is internal
// to this module; cmd/flutterhost shows how it is created.
//
//	comp, _ := compositor.New(device, queue, surface)
//	app := flutterhost.New(comp, flutterhost.WithPlatform(window))
//
//	app.Attach(eng) // eng calls back into app
//	_ = app.Start(width, height, scale)
//
//	for {
//	    select {
//	    case <-app.Mailbox().Ready():
//	        app.Drain()
//	    case <-app.Done():
//	        return app.Shutdown()
//	    }
//	}
//
// The cmd/flutterhost binary does this inside a gogpu window.
package flutterhost
