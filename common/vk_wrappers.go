package common

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"

	"GPU_present_chain/vkd"
)

// Utility functions wrapping the raw go bindings to provide a more go-lang style interface. This should not
// hide or alter behavior and only allow for more tidy core code by tweaking signatures.

func VkCreateInstance(pCreateInfo *vk.InstanceCreateInfo, pAllocator *vk.AllocationCallbacks) (vk.Instance, error) {
	var in vk.Instance
	if err := vkd.Check(vk.CreateInstance(pCreateInfo, pAllocator, &in), "vkCreateInstance"); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(in); err != nil {
		return nil, errors.Wrap(err, "load instance functions")
	}
	return in, nil
}

func SdlCreateVkSurface(win *sdl.Window, instance vk.Instance) (vk.Surface, error) {
	surfPtr, err := win.VulkanCreateSurface(instance)
	if err != nil {
		return nil, errors.Wrap(err, "create SDL window's Vulkan-surface")
	}
	return vk.SurfaceFromPointer(uintptr(surfPtr)), nil
}

func VkCreateDevice(physicalDevice vk.PhysicalDevice, pCreateInfo *vk.DeviceCreateInfo, pAllocator *vk.AllocationCallbacks) (vk.Device, error) {
	var d vk.Device
	if err := vkd.Check(vk.CreateDevice(physicalDevice, pCreateInfo, pAllocator, &d), "vkCreateDevice"); err != nil {
		return nil, err
	}
	return d, nil
}

func VkGetDeviceQueue(device vk.Device, queueFamilyIndex *uint32, queueIndex uint32) (vk.Queue, error) {
	var q vk.Queue
	if queueFamilyIndex == nil {
		return nil, errors.New("QueueFamily index was nil")
	}
	vk.GetDeviceQueue(device, *queueFamilyIndex, queueIndex, &q)
	return q, nil
}

func VkCreateRenderPass(device vk.Device, pCreateInfo *vk.RenderPassCreateInfo, pAllocator *vk.AllocationCallbacks) (vk.RenderPass, error) {
	var pr vk.RenderPass
	if err := vkd.Check(vk.CreateRenderPass(device, pCreateInfo, pAllocator, &pr), "vkCreateRenderPass"); err != nil {
		return nil, err
	}
	return pr, nil
}

func VkCreateFrameBuffer(device vk.Device, pCreateInfo *vk.FramebufferCreateInfo, pAllocator *vk.AllocationCallbacks) (vk.Framebuffer, error) {
	var fb vk.Framebuffer
	if err := vkd.Check(vk.CreateFramebuffer(device, pCreateInfo, pAllocator, &fb), "vkCreateFramebuffer"); err != nil {
		return nil, err
	}
	return fb, nil
}

func VkCreateCommandPool(device vk.Device, pCreateInfo *vk.CommandPoolCreateInfo, pAllocator *vk.AllocationCallbacks) (vk.CommandPool, error) {
	var cp vk.CommandPool
	if err := vkd.Check(vk.CreateCommandPool(device, pCreateInfo, pAllocator, &cp), "vkCreateCommandPool"); err != nil {
		return nil, err
	}
	return cp, nil
}

func VkAllocateCommandBuffers(device vk.Device, pAllocateInfo *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error) {
	var buffers = make([]vk.CommandBuffer, pAllocateInfo.CommandBufferCount)
	if err := vkd.Check(vk.AllocateCommandBuffers(device, pAllocateInfo, buffers), "vkAllocateCommandBuffers"); err != nil {
		return nil, err
	}
	return buffers, nil
}
