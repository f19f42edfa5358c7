package main

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flutterhost/engine"
)

// halProvider is implemented by gogpu's device provider on native builds.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// halSurfaceProvider exposes the window's HAL surface.
type halSurfaceProvider interface {
	HalSurface() any
}

var errNoHAL = errors.New("window does not expose HAL objects")

// halObjects returns the device, queue and surface the compositor draws
// with. Each is looked up on the device provider first, then on the window.
func halObjects(provider gpucontext.DeviceProvider, window any) (hal.Device, hal.Queue, hal.Surface, error) {
	var hp halProvider
	for _, v := range []any{provider, window} {
		if p, ok := v.(halProvider); ok {
			hp = p
			break
		}
	}
	if hp == nil {
		return nil, nil, nil, fmt.Errorf("%w: no HalDevice", errNoHAL)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: HalDevice is not hal.Device", errNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: HalQueue is not hal.Queue", errNoHAL)
	}

	for _, v := range []any{provider, window} {
		if sp, ok := v.(halSurfaceProvider); ok {
			if surface, ok := sp.HalSurface().(hal.Surface); ok {
				return device, queue, surface, nil
			}
		}
	}
	return nil, nil, nil, fmt.Errorf("%w: no HalSurface", errNoHAL)
}

// vulkanHandles returns the native Vulkan objects behind device, if the
// backend exposes them.
func vulkanHandles(device hal.Device) *engine.Vulkan {
	vp, ok := device.(engine.VulkanProvider)
	if !ok {
		return nil
	}
	v, ok := vp.VulkanHandles()
	if !ok {
		return nil
	}
	return &v
}
