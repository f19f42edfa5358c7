package embedder

import (
	"runtime"

	"github.com/gogpu/flutterhost/engine"
)

// AOTData is the engine's handle on an ahead-of-time compiled app ELF.
type AOTData struct {
	lib *Library
	raw uintptr
}

// CreateAOTData loads the app ELF at path, normally
// build/<target>/app.so inside the bundle.
func (l *Library) CreateAOTData(path string) (*AOTData, error) {
	if l.createAOTData == nil {
		return nil, missing("FlutterEngineCreateAOTData")
	}
	src := &aotDataSource{kind: aotDataSourceElfPath, elfPath: cstr(path)}
	var raw uintptr
	r := engine.Result(l.createAOTData(src, &raw))
	runtime.KeepAlive(src)
	if err := r.Err("FlutterEngineCreateAOTData"); err != nil {
		return nil, err
	}
	return &AOTData{lib: l, raw: raw}, nil
}

// Close releases the data. The engine that used it must be shut down.
func (d *AOTData) Close() error {
	if d == nil || d.raw == 0 {
		return nil
	}
	raw := d.raw
	d.raw = 0
	return engine.Result(d.lib.collectAOTData(raw)).Err("FlutterEngineCollectAOTData")
}
