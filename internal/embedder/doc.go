// Package embedder binds the Flutter engine's embedder API without cgo.
//
// The engine library is loaded at run time with purego (dlopen on Unix,
// LoadLibrary on Windows). Calls into the engine go through functions
// registered with purego.RegisterFunc; calls out of the engine arrive on
// purego callbacks and are dispatched to the engine.Host that created the
// Engine. The C structures exchanged with the engine are mirrored in
// abi.go for 64-bit targets.
package embedder
