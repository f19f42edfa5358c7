package embedder

import (
	"errors"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/flutterhost/engine"
	"github.com/gogpu/flutterhost/platformview"
)

type fakeHost struct {
	messages  []engine.PlatformMessage
	tasks     []engine.Task
	targets   []uint64
	batons    []uintptr
	logs      [][2]string
	semantics []int
	isolate   int
	restarts  int
	onThread  bool

	store      engine.BackingStore
	storeErr   error
	configs    []engine.BackingStoreConfig
	collected  []uint64
	presented  [][]engine.Layer
	presentErr error
}

func (h *fakeHost) PostTask(t engine.Task, target uint64) {
	h.tasks = append(h.tasks, t)
	h.targets = append(h.targets, target)
}
func (h *fakeHost) RunsTasksOnCurrentThread() bool { return h.onThread }
func (h *fakeHost) HandlePlatformMessage(m engine.PlatformMessage) {
	h.messages = append(h.messages, m)
}
func (h *fakeHost) RequestVsync(baton uintptr) { h.batons = append(h.batons, baton) }
func (h *fakeHost) RootIsolateCreated()        { h.isolate++ }
func (h *fakeHost) LogMessage(tag, msg string) { h.logs = append(h.logs, [2]string{tag, msg}) }
func (h *fakeHost) UpdateSemantics(nodes int)  { h.semantics = append(h.semantics, nodes) }
func (h *fakeHost) PreEngineRestart()          { h.restarts++ }
func (h *fakeHost) CollectBackingStore(id uint64) error {
	h.collected = append(h.collected, id)
	return nil
}

func (h *fakeHost) CreateBackingStore(cfg engine.BackingStoreConfig) (engine.BackingStore, error) {
	h.configs = append(h.configs, cfg)
	return h.store, h.storeErr
}

func (h *fakeHost) PresentLayers(layers []engine.Layer) error {
	h.presented = append(h.presented, layers)
	return h.presentErr
}

func newTestEngine(t *testing.T, h *fakeHost) *Engine {
	t.Helper()
	e := &Engine{host: h, stores: make(map[uint64]any)}
	e.user = register(e)
	t.Cleanup(func() { unregister(e.user) })
	return e
}

func addr[T any](p *T) uintptr { return uintptr(unsafe.Pointer(p)) }

func TestPlatformMessageCallback(t *testing.T) {
	h := &fakeHost{}
	e := newTestEngine(t, h)

	payload := []byte(`{"method":"SystemNavigator.pop"}`)
	msg := &platformMessage{
		structSize:     unsafe.Sizeof(platformMessage{}),
		channel:        cstr("flutter/platform"),
		message:        &payload[0],
		messageSize:    uintptr(len(payload)),
		responseHandle: 0x1234,
	}
	onPlatformMessage(addr(msg), e.user)
	runtime.KeepAlive(msg)

	require.Len(t, h.messages, 1)
	got := h.messages[0]
	assert.Equal(t, "flutter/platform", got.Channel)
	assert.Equal(t, engine.ResponseHandle(0x1234), got.Response)

	payload[0] = 'X'
	assert.Equal(t, `{"method":"SystemNavigator.pop"}`, string(got.Message))
}

func TestCallbackUnknownEngine(t *testing.T) {
	h := &fakeHost{onThread: true}
	e := newTestEngine(t, h)
	unregister(e.user)

	assert.Zero(t, onRunsTaskOnCurrentThread(e.user))
	onVsync(e.user, 1)
	onRootIsolateCreate(e.user)
	assert.Empty(t, h.batons)
	assert.Zero(t, h.isolate)
}

func TestTaskCallbacks(t *testing.T) {
	h := &fakeHost{onThread: true}
	e := newTestEngine(t, h)

	assert.Equal(t, uintptr(1), onRunsTaskOnCurrentThread(e.user))
	h.onThread = false
	assert.Equal(t, uintptr(0), onRunsTaskOnCurrentThread(e.user))

	onPostTask(0xAA, 7, 1000, e.user)
	tk := &task{runner: 0xBB, id: 8}
	onPostTaskByRef(addr(tk), 2000, e.user)

	assert.Equal(t, []engine.Task{{Runner: 0xAA, ID: 7}, {Runner: 0xBB, ID: 8}}, h.tasks)
	assert.Equal(t, []uint64{1000, 2000}, h.targets)
}

func TestNotificationCallbacks(t *testing.T) {
	h := &fakeHost{}
	e := newTestEngine(t, h)

	onVsync(e.user, 42)
	onRootIsolateCreate(e.user)
	onLogMessage(ptr(cstr("flutter")), ptr(cstr("hello")), e.user)
	update := &semanticsUpdate{structSize: unsafe.Sizeof(semanticsUpdate{}), nodesCount: 5}
	onUpdateSemantics(addr(update), e.user)
	onUpdateSemantics(0, e.user)
	onPreEngineRestart(e.user)

	assert.Equal(t, []uintptr{42}, h.batons)
	assert.Equal(t, 1, h.isolate)
	assert.Equal(t, [][2]string{{"flutter", "hello"}}, h.logs)
	assert.Equal(t, []int{5}, h.semantics)
	assert.Equal(t, 1, h.restarts)
}

// storeMemory stands in for the engine-owned FlutterBackingStore.
type storeMemory struct {
	header backingStore
	member [8]uintptr
}

func TestCreateSoftwareBackingStore(t *testing.T) {
	pixels := make([]byte, 40*4*10)
	h := &fakeHost{store: engine.BackingStore{ID: 7, Pixels: pixels, RowBytes: 160}}
	e := newTestEngine(t, h)

	cfg := &backingStoreConfig{structSize: unsafe.Sizeof(backingStoreConfig{}), width: 40, height: 10}
	out := &storeMemory{}
	require.Equal(t, uintptr(1), onCreateBackingStore(addr(cfg), addr(out), e.user))
	assert.Equal(t, []engine.BackingStoreConfig{{Width: 40, Height: 10}}, h.configs)

	assert.Equal(t, uintptr(7), out.header.userData)
	assert.Equal(t, backingStoreSoftware, out.header.kind)
	assert.True(t, out.header.didUpdate)
	sw := (*softwareBackingStore)(unsafe.Pointer(&out.member))
	assert.Equal(t, uintptr(unsafe.Pointer(&pixels[0])), sw.allocation)
	assert.Equal(t, uintptr(160), sw.rowBytes)
	assert.Equal(t, uintptr(10), sw.height)
	assert.Equal(t, uintptr(7), sw.userData)
	assert.Len(t, e.stores, 1)

	require.Equal(t, uintptr(1), onCollectBackingStore(addr(out), e.user))
	assert.Equal(t, []uint64{7}, h.collected)
	assert.Empty(t, e.stores)
}

func TestCreateVulkanBackingStore(t *testing.T) {
	h := &fakeHost{store: engine.BackingStore{ID: 3, Image: 0xABCD, Format: 44}}
	e := newTestEngine(t, h)

	cfg := &backingStoreConfig{structSize: unsafe.Sizeof(backingStoreConfig{}), width: 800, height: 600, viewID: 0}
	out := &storeMemory{}
	require.Equal(t, uintptr(1), onCreateBackingStore(addr(cfg), addr(out), e.user))

	assert.Equal(t, backingStoreVulkan, out.header.kind)
	vk := (*vulkanBackingStore)(unsafe.Pointer(&out.member))
	require.NotZero(t, vk.image)
	img := (*vulkanImage)(unsafe.Pointer(vk.image))
	assert.Equal(t, uint64(0xABCD), img.image)
	assert.Equal(t, uint32(44), img.format)
	assert.Same(t, img, e.stores[3])
}

func TestCreateBackingStoreFailure(t *testing.T) {
	h := &fakeHost{storeErr: errors.New("zero size")}
	e := newTestEngine(t, h)

	cfg := &backingStoreConfig{structSize: unsafe.Sizeof(backingStoreConfig{})}
	out := &storeMemory{}
	assert.Equal(t, uintptr(0), onCreateBackingStore(addr(cfg), addr(out), e.user))
	assert.Empty(t, e.stores)
}

func TestPresentLayersCallback(t *testing.T) {
	h := &fakeHost{}
	e := newTestEngine(t, h)

	store := &backingStore{userData: 9}
	opacity := &mutation{kind: int32(platformview.MutationOpacity)}
	opacity.data[0] = 0.5
	clip := &mutation{kind: int32(platformview.MutationClipRect)}
	copy(clip.data[:], []float64{1, 2, 3, 4})
	rounded := &mutation{kind: int32(platformview.MutationClipRoundedRect)}
	copy(rounded.data[:], []float64{0, 0, 10, 10, 1, 1, 2, 2, 3, 3, 4, 4})
	transform := &mutation{kind: int32(platformview.MutationTransformation)}
	copy(transform.data[:], []float64{2, 0, 5, 0, 2, 6, 0, 0, 1})
	unknown := &mutation{kind: 99}
	mutations := []*mutation{opacity, clip, rounded, transform, unknown}
	view := &platformView{
		structSize:     unsafe.Sizeof(platformView{}),
		identifier:     4,
		mutationsCount: uintptr(len(mutations)),
		mutations:      addr(&mutations[0]),
	}
	layers := []*layer{
		{kind: layerBackingStore, content: addr(store), width: 800, height: 600},
		{kind: layerPlatformView, content: addr(view), offsetX: 10, offsetY: 20, width: 100, height: 50},
	}

	require.Equal(t, uintptr(1), onPresentLayers(addr(&layers[0]), uintptr(len(layers)), e.user))
	runtime.KeepAlive(mutations)
	runtime.KeepAlive(layers)

	require.Len(t, h.presented, 1)
	want := []engine.Layer{
		{
			Kind:         engine.LayerBackingStore,
			Size:         platformview.Size{Width: 800, Height: 600},
			BackingStore: 9,
		},
		{
			Kind:   engine.LayerPlatformView,
			Offset: platformview.Point{X: 10, Y: 20},
			Size:   platformview.Size{Width: 100, Height: 50},
			ViewID: 4,
			Mutations: []platformview.Mutation{
				platformview.Opacity(0.5),
				platformview.ClipRect(platformview.Rect{Left: 1, Top: 2, Right: 3, Bottom: 4}),
				platformview.ClipRoundedRect(platformview.RoundedRect{
					Rect:       platformview.Rect{Right: 10, Bottom: 10},
					UpperLeft:  platformview.Size{Width: 1, Height: 1},
					UpperRight: platformview.Size{Width: 2, Height: 2},
					LowerRight: platformview.Size{Width: 3, Height: 3},
					LowerLeft:  platformview.Size{Width: 4, Height: 4},
				}),
				platformview.Transform(platformview.Transformation{
					ScaleX: 2, TransX: 5, ScaleY: 2, TransY: 6, Pers2: 1,
				}),
			},
		},
	}
	assert.Equal(t, want, h.presented[0])

	h.presentErr = errors.New("surface lost")
	assert.Equal(t, uintptr(0), onPresentLayers(addr(&layers[0]), 1, e.user))
	assert.Nil(t, decodeLayers(0, 3))
}

func TestWindowSurfaceCallbacksPanic(t *testing.T) {
	assert.Panics(t, func() { onNextImage(0, 0) })
	assert.Panics(t, func() { onPresentImage(0, 0) })
	assert.Panics(t, func() { onSurfacePresent(0, 0, 0, 0) })
}
