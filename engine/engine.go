package engine

// Engine is the set of operations the host invokes on a running engine.
// Every error is a *ResultError and is fatal to the host.
type Engine interface {
	Run() error
	Shutdown() error

	SendWindowMetricsEvent(m WindowMetrics) error
	SendPointerEvents(events []PointerEvent) error
	SendKeyEvent(e KeyEvent) error
	SendPlatformMessage(channel string, message []byte) error
	SendPlatformMessageResponse(h ResponseHandle, data []byte) error

	ScheduleFrame() error
	OnVsync(baton uintptr, frameStartNanos, frameTargetNanos uint64) error
	RunTask(t Task) error

	UpdateLocales(locales []Locale) error
	NotifyDisplayUpdate(displays []Display) error

	// CurrentTime returns the engine clock in nanoseconds.
	CurrentTime() uint64
}

// Host is the set of callbacks the engine makes into the host. Methods
// marked any-thread are called on engine threads and must only enqueue
// work for the UI thread.
type Host interface {
	Compositor

	// PostTask schedules t to run on the UI thread no earlier than
	// targetNanos on the engine clock. Any thread.
	PostTask(t Task, targetNanos uint64)
	// RunsTasksOnCurrentThread reports whether the caller is the UI
	// thread. Any thread.
	RunsTasksOnCurrentThread() bool
	// HandlePlatformMessage receives a message for the host. Any thread.
	HandlePlatformMessage(msg PlatformMessage)
	// RequestVsync asks for OnVsync to be called with baton. Any thread.
	RequestVsync(baton uintptr)

	RootIsolateCreated()
	LogMessage(tag, message string)
	UpdateSemantics(nodes int)
	// PreEngineRestart is not supported and is fatal.
	PreEngineRestart()
}

// Compositor receives the engine's render target and frame callbacks.
// They run on the raster thread, which this host makes the UI thread.
type Compositor interface {
	CreateBackingStore(cfg BackingStoreConfig) (BackingStore, error)
	CollectBackingStore(id uint64) error
	PresentLayers(layers []Layer) error
}

// Vulkan carries the native Vulkan objects the engine renders with.
type Vulkan struct {
	// APIVersion is the VK_MAKE_API_VERSION the instance was created with.
	APIVersion uint32

	Instance         uintptr
	PhysicalDevice   uintptr
	Device           uintptr
	Queue            uintptr
	QueueFamilyIndex uint32

	InstanceExtensions []string
	DeviceExtensions   []string

	// GetInstanceProcAddr is the address of vkGetInstanceProcAddr. Zero
	// means the embedder resolves it from the system Vulkan loader.
	GetInstanceProcAddr uintptr
}

// VulkanProvider is implemented by GPU devices that can expose their
// native Vulkan objects.
type VulkanProvider interface {
	VulkanHandles() (Vulkan, bool)
}
