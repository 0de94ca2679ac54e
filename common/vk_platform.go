package common

import (
	"GPU_present_chain/swapchain"
)

const APPLICATION_NAME = "GPU present chain"
const APP_MAJOR, APP_MINOR, APP_PATCH = 1, 0, 0
const ENGINE_NAME = "No Engine"
const ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH = 1, 0, 0

// Vulkan API go bindings = v1.0.7, as per: https://github.com/goki/vulkan = 1.3.239
const VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH int = 1, 3, 239

// WindowState is what the render loop needs to know about the window after polling its events. Resized
// is reported once per resize.
type WindowState struct {
	Resized   bool
	Minimized bool
	Close     bool
}

// Platform is a window able to host a Vulkan surface, independent of the windowing library behind it.
// Constructors of a Platform also load the Vulkan entry points, so NewInstance can be called right after.
type Platform interface {
	swapchain.Window
	RequiredInstanceExtensions() []string
	// Poll processes pending events without blocking.
	Poll() WindowState
	// WaitEvents blocks until at least one event arrived, e.g. while the window is minimized.
	WaitEvents()
	Destroy()
}
