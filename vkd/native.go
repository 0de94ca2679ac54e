package vkd

import (
	vk "github.com/goki/vulkan"
)

// Native forwards every Dispatch call to the goki/vulkan bindings. Read operations do the duplicated
// count-then-fill calls and dereference the returned structs so callers only ever see plain Go values.
type Native struct{}

var _ Dispatch = Native{}

func (Native) GetPhysicalDeviceSurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, vk.Result) {
	var supported vk.Bool32
	res := vk.GetPhysicalDeviceSurfaceSupport(pd, family, surface, &supported)
	return supported == vk.True, res
}

func (Native) GetPhysicalDeviceSurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, vk.Result) {
	var caps vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &caps)
	if res != vk.Success {
		return caps, res
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, res
}

func (Native) GetPhysicalDeviceSurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, vk.Result) {
	var count uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &count, nil); res != vk.Success {
		return nil, res
	}
	formats := make([]vk.SurfaceFormat, count)
	res := vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &count, formats)
	if res != vk.Success && res != vk.Incomplete {
		return nil, res
	}
	formats = formats[:count]
	for i := range formats {
		formats[i].Deref()
	}
	return formats, vk.Success
}

func (Native) GetPhysicalDeviceSurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, vk.Result) {
	var count uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &count, nil); res != vk.Success {
		return nil, res
	}
	modes := make([]vk.PresentMode, count)
	res := vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &count, modes)
	if res != vk.Success && res != vk.Incomplete {
		return nil, res
	}
	return modes[:count], vk.Success
}

func (Native) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (Native) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result) {
	var sc vk.Swapchain
	res := vk.CreateSwapchain(device, info, nil, &sc)
	return sc, res
}

func (Native) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

func (Native) GetSwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result) {
	var count uint32
	if res := vk.GetSwapchainImages(device, swapchain, &count, nil); res != vk.Success {
		return nil, res
	}
	images := make([]vk.Image, count)
	res := vk.GetSwapchainImages(device, swapchain, &count, images)
	if res != vk.Success && res != vk.Incomplete {
		return nil, res
	}
	return images[:count], vk.Success
}

func (Native) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result) {
	var iv vk.ImageView
	res := vk.CreateImageView(device, info, nil, &iv)
	return iv, res
}

func (Native) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

func (Native) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore, fence vk.Fence) (uint32, vk.Result) {
	var idx uint32
	res := vk.AcquireNextImage(device, swapchain, timeout, semaphore, fence, &idx)
	return idx, res
}

func (Native) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	return vk.QueuePresent(queue, info)
}

func (Native) CreateSemaphore(device vk.Device) (vk.Semaphore, vk.Result) {
	info := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
		PNext: nil,
		Flags: 0,
	}
	var sem vk.Semaphore
	res := vk.CreateSemaphore(device, &info, nil, &sem)
	return sem, res
}

func (Native) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	vk.DestroySemaphore(device, semaphore, nil)
}

func (Native) CreateFence(device vk.Device, signaled bool) (vk.Fence, vk.Result) {
	info := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		PNext: nil,
	}
	// A signaled fence lets the very first wait on it return immediately
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fen vk.Fence
	res := vk.CreateFence(device, &info, nil, &fen)
	return fen, res
}

func (Native) DestroyFence(device vk.Device, fence vk.Fence) {
	vk.DestroyFence(device, fence, nil)
}

func (Native) WaitForFences(device vk.Device, fences []vk.Fence, timeout uint64) vk.Result {
	return vk.WaitForFences(device, uint32(len(fences)), fences, vk.True, timeout)
}

func (Native) ResetFences(device vk.Device, fences []vk.Fence) vk.Result {
	return vk.ResetFences(device, uint32(len(fences)), fences)
}

func (Native) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result {
	return vk.QueueSubmit(queue, uint32(len(submits)), submits, fence)
}
