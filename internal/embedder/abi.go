package embedder

import "unsafe"

// Memory layouts of the engine's embedder API structures. Field order and
// widths follow the C declarations on 64-bit targets; layout_test.go pins
// the offsets that matter.
//
// Structures the host fills and the engine only reads hold Go pointers
// (*byte and friends) so the collector keeps their targets alive for the
// duration of the call. Structures the engine owns are read or written
// through uintptr fields.

const engineVersion = 1

type rendererType int32

const (
	rendererOpenGL rendererType = iota
	rendererSoftware
	rendererMetal
	rendererVulkan
)

// rendererConfigUnion is the size of the renderer config union, which is
// set by its Vulkan member.
const rendererConfigUnion = unsafe.Sizeof(vulkanRendererConfig{})

type vulkanRendererConfig struct {
	structSize             uintptr
	version                uint32
	instance               uintptr
	physicalDevice         uintptr
	device                 uintptr
	queueFamilyIndex       uint32
	queue                  uintptr
	instanceExtensionCount uintptr
	instanceExtensions     **byte
	deviceExtensionCount   uintptr
	deviceExtensions       **byte
	getInstanceProcAddress uintptr
	getNextImage           uintptr
	presentImage           uintptr
}

type softwareRendererConfig struct {
	structSize     uintptr
	surfacePresent uintptr
}

type vulkanRenderer struct {
	kind   rendererType
	vulkan vulkanRendererConfig
}

type softwareRenderer struct {
	kind     rendererType
	software softwareRendererConfig
	_        [rendererConfigUnion - unsafe.Sizeof(softwareRendererConfig{})]byte
}

type taskRunnerDescription struct {
	structSize              uintptr
	userData                uintptr
	runsTaskOnCurrentThread uintptr
	postTask                uintptr
	identifier              uintptr
}

type customTaskRunners struct {
	structSize           uintptr
	platform             *taskRunnerDescription
	render               *taskRunnerDescription
	threadPrioritySetter uintptr
}

type compositorConfig struct {
	structSize             uintptr
	userData               uintptr
	createBackingStore     uintptr
	collectBackingStore    uintptr
	presentLayers          uintptr
	avoidBackingStoreCache bool
	presentView            uintptr
}

type projectArgs struct {
	structSize                      uintptr
	assetsPath                      *byte
	mainPath                        *byte
	packagesPath                    *byte
	icuDataPath                     *byte
	commandLineArgc                 int32
	commandLineArgv                 **byte
	platformMessageCallback         uintptr
	vmSnapshotData                  uintptr
	vmSnapshotDataSize              uintptr
	vmSnapshotInstructions          uintptr
	vmSnapshotInstructionsSize      uintptr
	isolateSnapshotData             uintptr
	isolateSnapshotDataSize         uintptr
	isolateSnapshotInstructions     uintptr
	isolateSnapshotInstructionsSize uintptr
	rootIsolateCreateCallback       uintptr
	updateSemanticsNodeCallback     uintptr
	updateSemanticsActionCallback   uintptr
	persistentCachePath             *byte
	isPersistentCacheReadOnly       bool
	vsyncCallback                   uintptr
	customDartEntrypoint            *byte
	customTaskRunners               *customTaskRunners
	shutdownDartVMWhenDone          bool
	compositor                      *compositorConfig
	dartOldGenHeapSize              int64
	aotData                         uintptr
	computeResolvedLocaleCallback   uintptr
	dartEntrypointArgc              int32
	dartEntrypointArgv              **byte
	logMessageCallback              uintptr
	logTag                          *byte
	onPreEngineRestartCallback      uintptr
	updateSemanticsCallback         uintptr
	updateSemanticsCallback2        uintptr
	channelUpdateCallback           uintptr
}

type backingStoreConfig struct {
	structSize uintptr
	width      float64
	height     float64
	viewID     int64
}

type backingStoreType int32

const (
	backingStoreOpenGL backingStoreType = iota
	backingStoreSoftware
	backingStoreMetal
	backingStoreVulkan
	backingStoreSoftware2
)

// backingStore is the header of the engine-owned backing store. The
// renderer specific member starts at backingStoreUnion.
type backingStore struct {
	structSize uintptr
	userData   uintptr
	kind       backingStoreType
	didUpdate  bool
}

const backingStoreUnion = 24

type vulkanImage struct {
	structSize uintptr
	image      uint64
	format     uint32
}

type vulkanBackingStore struct {
	structSize          uintptr
	image               uintptr
	userData            uintptr
	destructionCallback uintptr
}

type softwareBackingStore struct {
	structSize          uintptr
	allocation          uintptr
	rowBytes            uintptr
	height              uintptr
	userData            uintptr
	destructionCallback uintptr
}

type layerType int32

const (
	layerBackingStore layerType = iota
	layerPlatformView
)

type layer struct {
	structSize       uintptr
	kind             layerType
	content          uintptr
	offsetX, offsetY float64
	width, height    float64
	presentInfo      uintptr
	presentationTime uint64
}

type platformView struct {
	structSize     uintptr
	identifier     int64
	mutationsCount uintptr
	mutations      uintptr
}

// mutation carries its payload as raw doubles. The largest member is the
// rounded rect: a rect followed by four corner sizes.
type mutation struct {
	kind int32
	data [12]float64
}

type windowMetricsEvent struct {
	structSize              uintptr
	width, height           uintptr
	pixelRatio              float64
	left, top               uintptr
	physicalViewInsetTop    float64
	physicalViewInsetRight  float64
	physicalViewInsetBottom float64
	physicalViewInsetLeft   float64
	displayID               uint64
	viewID                  int64
}

type pointerEvent struct {
	structSize   uintptr
	phase        int32
	timestamp    uintptr
	x, y         float64
	device       int32
	signalKind   int32
	scrollDeltaX float64
	scrollDeltaY float64
	deviceKind   int32
	buttons      int64
	panX, panY   float64
	scale        float64
	rotation     float64
	viewID       int64
}

const keyboardDeviceType = 1

type keyEvent struct {
	structSize  uintptr
	timestamp   float64
	kind        int32
	physical    uint64
	logical     uint64
	character   *byte
	synthesized bool
	deviceType  int32
}

type platformMessage struct {
	structSize     uintptr
	channel        *byte
	message        *byte
	messageSize    uintptr
	responseHandle uintptr
}

type locale struct {
	structSize   uintptr
	languageCode *byte
	countryCode  *byte
	scriptCode   *byte
	variantCode  *byte
}

const displaysUpdateStartup = 0

type engineDisplay struct {
	structSize       uintptr
	displayID        uint64
	singleDisplay    bool
	refreshRate      float64
	width, height    uintptr
	devicePixelRatio float64
}

const aotDataSourceElfPath = 0

type aotDataSource struct {
	kind    int32
	elfPath *byte
}

type task struct {
	runner uintptr
	id     uint64
}

// semanticsUpdate is the prefix of the engine's semantics update that the
// host reads.
type semanticsUpdate struct {
	structSize uintptr
	nodesCount uintptr
}
