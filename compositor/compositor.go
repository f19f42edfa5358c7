// Package compositor presents engine frames on a window surface.
//
// The engine renders each layer of a frame into a backing store, a texture
// the host allocates on request. On present the compositor draws the
// backing stores onto the surface in engine order as textured quads and
// forwards platform view layers to a renderer.
//
// A Compositor is used only from the UI thread; the mutex guards against
// Destroy racing a late engine callback during shutdown.
package compositor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flutterhost/engine"
	"github.com/gogpu/flutterhost/platformview"
)

// PlatformViewRenderer places natively rendered views. It is satisfied by
// *platformview.Registry.
type PlatformViewRenderer interface {
	Render(id int64, offset platformview.Point, size platformview.Size, mutations []platformview.Mutation)
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithClearColor sets the color the surface is cleared to each frame.
// Components are straight alpha in [0,1].
func WithClearColor(rgba [4]float64) Option {
	return func(c *Compositor) {
		c.clear = gputypes.Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	}
}

// WithPlatformViews routes platform view layers to r.
func WithPlatformViews(r PlatformViewRenderer) Option {
	return func(c *Compositor) { c.views = r }
}

// inflight is a submitted frame. Its encoder owns the command buffer and
// lives until the GPU is done with it.
// WithSoftwareStores makes backing stores CPU rasters that the engine's
// software renderer draws into. They are uploaded on every present.
func WithSoftwareStores() Option {
	return func(c *Compositor) { c.software = true }
}

type inflight struct {
	index   uint64
	encoder hal.CommandEncoder
	cmd     hal.CommandBuffer
}

// release frees the command buffer of a completed frame.
func (f inflight) release(device hal.Device) {
	device.FreeCommandBuffer(f.cmd)
	f.encoder.Destroy()
}

// Compositor implements engine.Compositor on a wgpu HAL device.
type Compositor struct {
	mu sync.Mutex

	device  hal.Device
	queue   hal.Queue
	surface hal.Surface

	pipe   *pipeline
	stores arena
	views  PlatformViewRenderer
	clear  gputypes.Color

	software bool

	// width and height are the requested surface size; configuredW and
	// configuredH what the surface currently has.
	width, height            uint32
	configuredW, configuredH uint32

	pending   []inflight
	destroyed bool
}

var _ engine.Compositor = (*Compositor)(nil)

// New creates a compositor drawing to surface. The surface is configured
// lazily on the first present after Resize.
func New(device hal.Device, queue hal.Queue, surface hal.Surface, opts ...Option) (*Compositor, error) {
	if device == nil || queue == nil || surface == nil {
		return nil, errors.New("compositor: device, queue and surface are required")
	}
	p, err := newPipeline(device)
	if err != nil {
		return nil, err
	}
	c := &Compositor{
		device:  device,
		queue:   queue,
		surface: surface,
		pipe:    p,
		clear:   gputypes.Color{R: 1, G: 1, B: 1, A: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resize records the surface size in physical pixels. The surface is
// reconfigured on the next present.
func (c *Compositor) Resize(width, height uint32) {
	c.mu.Lock()
	c.width, c.height = width, height
	c.mu.Unlock()
}

// Size returns the requested surface size.
func (c *Compositor) Size() (width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Len returns the number of live backing stores.
func (c *Compositor) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stores.len()
}

// CreateBackingStore allocates a render target of the requested size.
func (c *Compositor) CreateBackingStore(cfg engine.BackingStoreConfig) (engine.BackingStore, error) {
	w, h := dimension(cfg.Width), dimension(cfg.Height)
	if w == 0 || h == 0 {
		return engine.BackingStore{}, fmt.Errorf("compositor: backing store size %vx%v is empty", cfg.Width, cfg.Height)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return engine.BackingStore{}, errors.New("compositor: destroyed")
	}

	s, err := newBackingStore(c.device, c.pipe, w, h, c.software)
	if err != nil {
		return engine.BackingStore{}, err
	}
	id := c.stores.insert(s)
	slogger().Debug("compositor: backing store created", "id", id, "width", w, "height", h, "software", c.software)
	if c.software {
		return engine.BackingStore{
			ID:       uint64(id),
			Format:   NativeFormat,
			Pixels:   s.pixels,
			RowBytes: uint64(s.rowBytes()),
		}, nil
	}
	return engine.BackingStore{
		ID:     uint64(id),
		Image:  uint64(s.texture.NativeHandle()),
		Format: NativeFormat,
	}, nil
}

// CollectBackingStore releases the store with id. Each id is collected at
// most once; later calls return ErrUnknownBackingStore.
func (c *Compositor) CollectBackingStore(id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.stores.remove(StoreID(id))
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownBackingStore, StoreID(id))
	}
	// The engine may collect a store the last frame still samples.
	c.waitPending()
	s.destroy(c.device)
	slogger().Debug("compositor: backing store collected", "id", StoreID(id))
	return nil
}

// PresentLayers draws layers onto the surface in order and presents it.
// Backing store layers are drawn as quads; platform view layers are handed
// to the PlatformViewRenderer. A zero-sized surface skips the frame.
func (c *Compositor) PresentLayers(layers []engine.Layer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return errors.New("compositor: destroyed")
	}
	if c.width == 0 || c.height == 0 {
		return nil
	}

	c.reclaim()
	if err := c.configure(); err != nil {
		return err
	}

	acquired, err := c.acquire()
	if err != nil {
		return err
	}
	target := acquired.Texture
	presented := false
	defer func() {
		if !presented {
			c.surface.DiscardTexture(target)
		}
	}()

	view, err := c.device.CreateTextureView(target, &hal.TextureViewDescriptor{
		Label:           "composite_target",
		Format:          SurfaceFormat,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create surface view: %w", err)
	}
	defer c.device.DestroyTextureView(view)

	// Resolve every store before recording so an unknown id fails the
	// frame without a half-encoded pass.
	stores := make([]*backingStore, len(layers))
	for i, l := range layers {
		switch l.Kind {
		case engine.LayerBackingStore:
			s, ok := c.stores.get(StoreID(l.BackingStore))
			if !ok {
				return fmt.Errorf("present layer %d: %w: %v", i, ErrUnknownBackingStore, StoreID(l.BackingStore))
			}
			if err := c.queue.WriteBuffer(s.uniform, 0, c.placement(l)); err != nil {
				return fmt.Errorf("write placement: %w", err)
			}
			if err := s.upload(c.queue); err != nil {
				return fmt.Errorf("upload software store: %w", err)
			}
			stores[i] = s
		case engine.LayerPlatformView:
		default:
			panic(fmt.Sprintf("compositor: unknown layer kind %v", l.Kind))
		}
	}

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "composite"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("composite"); err != nil {
		encoder.Destroy()
		return fmt.Errorf("begin encoding: %w", err)
	}

	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "composite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: c.clear,
		}},
	})
	for i, l := range layers {
		if l.Kind == engine.LayerPlatformView {
			if c.views != nil {
				c.views.Render(l.ViewID, l.Offset, l.Size, l.Mutations)
			}
			continue
		}
		s := stores[i]
		pass.SetPipeline(c.pipe.pipeline)
		pass.SetBindGroup(0, s.texGroup, nil)
		pass.SetBindGroup(1, s.uniGroup, nil)
		pass.Draw(4, 1, 0, 0)
	}
	pass.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		encoder.Destroy()
		return fmt.Errorf("end encoding: %w", err)
	}

	index, err := c.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		inflight{encoder: encoder, cmd: cmd}.release(c.device)
		return fmt.Errorf("submit: %w", err)
	}
	c.pending = append(c.pending, inflight{index: index, encoder: encoder, cmd: cmd})

	presented = true
	if err := c.queue.Present(c.surface, target, nil); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// configure applies the requested size to the surface if it changed.
func (c *Compositor) configure() error {
	if c.configuredW == c.width && c.configuredH == c.height {
		return nil
	}
	err := c.surface.Configure(c.device, &hal.SurfaceConfiguration{
		Width:       c.width,
		Height:      c.height,
		Format:      SurfaceFormat,
		Usage:       gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopyDst,
		PresentMode: hal.PresentModeFifo,
		AlphaMode:   hal.CompositeAlphaModeOpaque,
	})
	if err != nil {
		return fmt.Errorf("configure surface %dx%d: %w", c.width, c.height, err)
	}
	slogger().Debug("compositor: surface configured", "width", c.width, "height", c.height)
	c.configuredW, c.configuredH = c.width, c.height
	return nil
}

// acquire takes the next surface texture, reconfiguring once when the
// surface reports it is out of date.
func (c *Compositor) acquire() (*hal.AcquiredSurfaceTexture, error) {
	acquired, err := c.surface.AcquireTexture(nil)
	if errors.Is(err, hal.ErrSurfaceOutdated) || errors.Is(err, hal.ErrSurfaceLost) {
		slogger().Debug("compositor: surface outdated, reconfiguring", "err", err)
		c.configuredW, c.configuredH = 0, 0
		if err := c.configure(); err != nil {
			return nil, err
		}
		acquired, err = c.surface.AcquireTexture(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire surface texture: %w", err)
	}
	if acquired.Suboptimal {
		// Draw this frame and reconfigure before the next one.
		c.configuredW, c.configuredH = 0, 0
	}
	return acquired, nil
}

// placement encodes the Placement uniform for l.
func (c *Compositor) placement(l engine.Layer) []byte {
	var b [placementSize]byte
	for i, f := range [6]float64{
		l.Offset.X, l.Offset.Y,
		l.Size.Width, l.Size.Height,
		float64(c.width), float64(c.height),
	} {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(f)))
	}
	return b[:]
}

// reclaim frees command buffers the GPU has finished with.
func (c *Compositor) reclaim() {
	if len(c.pending) == 0 {
		return
	}
	done := c.queue.PollCompleted()
	n := 0
	for _, p := range c.pending {
		if p.index <= done {
			p.release(c.device)
			continue
		}
		c.pending[n] = p
		n++
	}
	c.pending = c.pending[:n]
}

// waitPending blocks until all submitted frames have completed.
func (c *Compositor) waitPending() {
	if len(c.pending) == 0 {
		return
	}
	if err := c.device.WaitIdle(); err != nil {
		slogger().Warn("compositor: wait idle failed", "err", err)
	}
	for _, p := range c.pending {
		p.release(c.device)
	}
	c.pending = c.pending[:0]
}

// Destroy waits for the GPU and releases every backing store and pipeline
// object. The surface is unconfigured but not destroyed; it belongs to the
// window. Destroy is idempotent.
func (c *Compositor) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true

	if err := c.device.WaitIdle(); err != nil {
		slogger().Warn("compositor: wait idle failed", "err", err)
	}
	for _, p := range c.pending {
		p.release(c.device)
	}
	c.pending = nil

	n := 0
	c.stores.each(func(_ StoreID, s *backingStore) {
		s.destroy(c.device)
		n++
	})
	c.stores = arena{}
	c.pipe.destroy()
	if c.configuredW != 0 {
		c.surface.Unconfigure(c.device)
	}
	slogger().Debug("compositor: destroyed", "stores", n)
}

// dimension rounds a logical engine size to whole pixels.
func dimension(v float64) uint32 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(math.Ceil(v))
}
