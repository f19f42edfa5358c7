package engine

import (
	"fmt"

	"github.com/gogpu/flutterhost/platformview"
)

// BackingStoreConfig is the engine's request for a render target.
type BackingStoreConfig struct {
	Width, Height float64
	ViewID        int64
}

// BackingStore is what the host hands back for a created render target.
// ID is echoed by the engine when it collects the store.
//
// A GPU store carries a native image handle and its format. A software
// store carries Pixels instead, which the engine rasterizes into with
// RowBytes bytes per row.
type BackingStore struct {
	ID     uint64
	Image  uint64
	Format uint32

	Pixels   []byte
	RowBytes uint64
}

// Software reports whether the store is rasterized on the CPU.
func (b BackingStore) Software() bool { return b.Pixels != nil }

// LayerKind tags a Layer. Values match the engine's enumeration.
type LayerKind int32

const (
	LayerBackingStore LayerKind = iota
	LayerPlatformView
)

func (k LayerKind) String() string {
	switch k {
	case LayerBackingStore:
		return "backing store"
	case LayerPlatformView:
		return "platform view"
	default:
		return fmt.Sprintf("LayerKind(%d)", int32(k))
	}
}

// Layer is one entry of a frame's composition list, valid for the
// duration of a single present.
type Layer struct {
	Kind   LayerKind
	Offset platformview.Point
	Size   platformview.Size

	// BackingStore is the store id for LayerBackingStore.
	BackingStore uint64

	// ViewID and Mutations describe a LayerPlatformView.
	ViewID    int64
	Mutations []platformview.Mutation
}
