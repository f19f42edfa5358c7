package compositor

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// NativeFormat is VK_FORMAT_B8G8R8A8_UNORM, the format reported to the
// engine for every backing store.
const NativeFormat = 44

// ErrUnknownBackingStore is returned for ids that were never handed out or
// were already collected.
var ErrUnknownBackingStore = errors.New("compositor: unknown backing store")

// StoreID names a backing store. The low 32 bits hold the slot index plus
// one and the high 32 bits its generation, so a collected id never aliases
// a later store in the same slot. The zero id is never valid.
type StoreID uint64

// makeStoreID packs a slot index and its generation. Slot 0 is stored as 1
// so the zero StoreID is never valid.
func makeStoreID(slot int, gen uint32) StoreID {
	return StoreID(uint64(gen)<<32 | uint64(slot+1))
}

func (id StoreID) slot() int { return int(uint32(id)) - 1 }

func (id StoreID) generation() uint32 { return uint32(id >> 32) }

func (id StoreID) String() string {
	return fmt.Sprintf("store(%d@%d)", id.slot(), id.generation())
}

// backingStore is one render target handed to the engine.
type backingStore struct {
	width, height uint32

	// pixels is the CPU raster of a software store, uploaded before each
	// draw. Nil for GPU stores.
	pixels []byte

	texture  hal.Texture
	view     hal.TextureView
	uniform  hal.Buffer
	texGroup hal.BindGroup
	uniGroup hal.BindGroup
}

// newBackingStore allocates the GPU objects for a width x height store.
// Software stores also get a CPU pixel buffer the engine renders into.
func newBackingStore(device hal.Device, p *pipeline, width, height uint32, software bool) (*backingStore, error) {
	s := &backingStore{width: width, height: height}
	if software {
		s.pixels = make([]byte, int(width)*int(height)*4)
	}
	if err := s.create(device, p); err != nil {
		s.destroy(device)
		return nil, err
	}
	return s, nil
}

// create makes the texture, its view, the placement uniform and both bind
// groups. On error the caller destroys whatever was made.
func (s *backingStore) create(device hal.Device, p *pipeline) error {
	usage := gputypes.TextureUsageRenderAttachment |
		gputypes.TextureUsageTextureBinding |
		gputypes.TextureUsageCopySrc
	if s.pixels != nil {
		usage |= gputypes.TextureUsageCopyDst
	}

	var err error
	s.texture, err = device.CreateTexture(&hal.TextureDescriptor{
		Label: "backing_store",
		Size: hal.Extent3D{
			Width:              s.width,
			Height:             s.height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        SurfaceFormat,
		Usage:         usage,
	})
	if err != nil {
		return fmt.Errorf("create backing store texture: %w", err)
	}

	s.view, err = device.CreateTextureView(s.texture, &hal.TextureViewDescriptor{
		Label:           "backing_store_view",
		Format:          SurfaceFormat,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create backing store view: %w", err)
	}

	s.uniform, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "backing_store_placement",
		Size:  placementSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create backing store uniform: %w", err)
	}

	s.texGroup, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "backing_store_texture",
		Layout: p.textureLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: s.view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("create backing store texture group: %w", err)
	}

	s.uniGroup, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "backing_store_uniform",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: s.uniform.NativeHandle(),
				Size:   placementSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create backing store uniform group: %w", err)
	}
	return nil
}

// rowBytes is the BGRA8 stride of the CPU pixel buffer.
func (s *backingStore) rowBytes() uint32 { return s.width * 4 }

// upload copies the software raster into the texture.
func (s *backingStore) upload(queue hal.Queue) error {
	if s.pixels == nil {
		return nil
	}
	return queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: s.texture, Aspect: gputypes.TextureAspectAll},
		s.pixels,
		&hal.ImageDataLayout{BytesPerRow: s.rowBytes(), RowsPerImage: s.height},
		&hal.Extent3D{Width: s.width, Height: s.height, DepthOrArrayLayers: 1},
	)
}

// destroy releases the GPU objects in reverse creation order. Nil fields
// are skipped, so a partially created store can be destroyed.
func (s *backingStore) destroy(device hal.Device) {
	if s.uniGroup != nil {
		device.DestroyBindGroup(s.uniGroup)
		s.uniGroup = nil
	}
	if s.texGroup != nil {
		device.DestroyBindGroup(s.texGroup)
		s.texGroup = nil
	}
	if s.uniform != nil {
		device.DestroyBuffer(s.uniform)
		s.uniform = nil
	}
	if s.view != nil {
		device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.texture != nil {
		device.DestroyTexture(s.texture)
		s.texture = nil
	}
}

type slot struct {
	gen   uint32
	store *backingStore
}

// arena holds live backing stores. Freed slots are reused with a bumped
// generation.
type arena struct {
	slots []slot
	free  []int
	live  int
}

// insert places s in a free slot, bumping that slot's generation.
func (a *arena) insert(s *backingStore) StoreID {
	var i int
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot{gen: 1})
		i = len(a.slots) - 1
	}
	a.slots[i].store = s
	a.live++
	return makeStoreID(i, a.slots[i].gen)
}

// get returns the live store for id. Stale generations miss.
func (a *arena) get(id StoreID) (*backingStore, bool) {
	i := id.slot()
	if i < 0 || i >= len(a.slots) {
		return nil, false
	}
	sl := a.slots[i]
	if sl.store == nil || sl.gen != id.generation() {
		return nil, false
	}
	return sl.store, true
}

// remove frees id's slot and returns its store. A second remove of the
// same id misses.
func (a *arena) remove(id StoreID) (*backingStore, bool) {
	s, ok := a.get(id)
	if !ok {
		return nil, false
	}
	i := id.slot()
	a.slots[i].store = nil
	if a.slots[i].gen == math.MaxUint32 {
		// Retire the slot rather than wrap its generation.
		a.live--
		return s, true
	}
	a.slots[i].gen++
	a.free = append(a.free, i)
	a.live--
	return s, true
}

// each calls f for every live store in slot order.
func (a *arena) each(f func(StoreID, *backingStore)) {
	for i, sl := range a.slots {
		if sl.store != nil {
			f(makeStoreID(i, sl.gen), sl.store)
		}
	}
}

func (a *arena) len() int { return a.live }
