package embedder

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/gogpu/flutterhost/engine"
)

func vulkanLoaderName() string {
	switch runtime.GOOS {
	case "windows":
		return "vulkan-1.dll"
	case "darwin":
		return "libvulkan.1.dylib"
	default:
		return "libvulkan.so.1"
	}
}

// resolveGetInstanceProcAddr returns the address of vkGetInstanceProcAddr
// from v, or from the system loader when v does not carry one.
func resolveGetInstanceProcAddr(v *engine.Vulkan) (uintptr, error) {
	if v.GetInstanceProcAddr != 0 {
		return v.GetInstanceProcAddr, nil
	}
	name := vulkanLoaderName()
	lib, err := openLibrary(name)
	if err != nil {
		return 0, fmt.Errorf("embedder: vulkan loader: %w", err)
	}
	addr, err := lookupSymbol(lib, "vkGetInstanceProcAddr")
	if err != nil || addr == 0 {
		return 0, fmt.Errorf("embedder: %s: %w", name, missing("vkGetInstanceProcAddr"))
	}
	return addr, nil
}

// vulkanRenderer builds the Vulkan renderer config from the host's device
// handles.
func (e *Engine) vulkanRenderer(v *engine.Vulkan, cb *callbackTable) (unsafe.Pointer, error) {
	proc, err := resolveGetInstanceProcAddr(v)
	if err != nil {
		return nil, err
	}
	e.getInstanceProcAddr = proc
	instExts, instCount := cstrArray(v.InstanceExtensions)
	devExts, devCount := cstrArray(v.DeviceExtensions)
	r := &vulkanRenderer{
		kind: rendererVulkan,
		vulkan: vulkanRendererConfig{
			structSize:             unsafe.Sizeof(vulkanRendererConfig{}),
			version:                v.APIVersion,
			instance:               v.Instance,
			physicalDevice:         v.PhysicalDevice,
			device:                 v.Device,
			queueFamilyIndex:       v.QueueFamilyIndex,
			queue:                  v.Queue,
			instanceExtensionCount: uintptr(instCount),
			instanceExtensions:     instExts,
			deviceExtensionCount:   uintptr(devCount),
			deviceExtensions:       devExts,
			getInstanceProcAddress: cb.instanceProcAddress,
			getNextImage:           cb.nextImage,
			presentImage:           cb.presentImage,
		},
	}
	return unsafe.Pointer(r), nil
}

// softwareRenderer builds the software renderer config. Frames still go
// through the compositor callbacks.
func (e *Engine) softwareRenderer(cb *callbackTable) unsafe.Pointer {
	r := &softwareRenderer{
		kind: rendererSoftware,
		software: softwareRendererConfig{
			structSize:     unsafe.Sizeof(softwareRendererConfig{}),
			surfacePresent: cb.surfacePresent,
		},
	}
	return unsafe.Pointer(r)
}

func (e *Engine) instanceProcAddress(instance, name uintptr) uintptr {
	if e.getInstanceProcAddr == 0 {
		slogger().Error("embedder: proc address requested without vulkan", "name", goString(name))
		return 0
	}
	return callProc(e.getInstanceProcAddr, instance, name)
}
