// Package engine describes the hosted Flutter engine as the rest of the
// host sees it: the operations the host may invoke (Engine), the callbacks
// the engine may make (Host) and the plain data exchanged across that
// boundary. The cgo-free binding to the engine's shared library lives in
// internal/embedder.
package engine
