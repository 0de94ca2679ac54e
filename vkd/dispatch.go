// Package vkd is the native dispatch table consumed by the swapchain and frame packages. It exposes the
// presentation engine and synchronization entry points in a go-lang style: every call returns its
// output values next to the raw vk.Result instead of filling pointer arguments.
package vkd

import (
	vk "github.com/goki/vulkan"
)

// Dispatch lists the native entry points needed to query a surface, build a swap chain on it and
// synchronize frames against it. Native forwards to the goki/vulkan bindings, tests substitute a
// scripted implementation.
type Dispatch interface {
	GetPhysicalDeviceSurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, vk.Result)
	GetPhysicalDeviceSurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, vk.Result)
	GetPhysicalDeviceSurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, vk.Result)
	GetPhysicalDeviceSurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, vk.Result)
	DestroySurface(instance vk.Instance, surface vk.Surface)

	CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result)
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)
	GetSwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result)
	CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result)
	DestroyImageView(device vk.Device, view vk.ImageView)
	AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore, fence vk.Fence) (uint32, vk.Result)
	QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result

	CreateSemaphore(device vk.Device) (vk.Semaphore, vk.Result)
	DestroySemaphore(device vk.Device, semaphore vk.Semaphore)
	CreateFence(device vk.Device, signaled bool) (vk.Fence, vk.Result)
	DestroyFence(device vk.Device, fence vk.Fence)
	WaitForFences(device vk.Device, fences []vk.Fence, timeout uint64) vk.Result
	ResetFences(device vk.Device, fences []vk.Fence) vk.Result
	QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result
}

// Device bundles the handles every swap chain and frame operation is issued against.
type Device struct {
	Physical vk.PhysicalDevice
	Logical  vk.Device
	Dispatch Dispatch
}
