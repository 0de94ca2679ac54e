// Package vkdtest provides a scripted vkd.Dispatch for exercising swap chain and frame logic without a GPU.
//
// Handles handed out by Fake point at small Go allocations, so they are unique, comparable and never
// passed to C. The fake models just enough driver state to catch ordering mistakes: fences carry a
// signaled bit, objects are tracked until destroyed and misuse (double destroys, submitting with a
// signaled fence, waiting on a fence nothing will signal) is recorded in Misuse.
package vkdtest

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd"
)

const (
	KindSurface   = "surface"
	KindSwapchain = "swapchain"
	KindImageView = "imageView"
	KindSemaphore = "semaphore"
	KindFence     = "fence"
)

// Acquire records one AcquireNextImage call.
type Acquire struct {
	Swapchain vk.Swapchain
	Semaphore vk.Semaphore
	Fence     vk.Fence
	Timeout   uint64
}

// Submit records one SubmitInfo passed to QueueSubmit.
type Submit struct {
	Queue vk.Queue
	Info  vk.SubmitInfo
	Fence vk.Fence
}

// Present records one QueuePresent call.
type Present struct {
	Queue      vk.Queue
	Wait       []vk.Semaphore
	Swapchains []vk.Swapchain
	Indices    []uint32
}

// Fake implements vkd.Dispatch. Zero valued result fields mean the corresponding call succeeds.
type Fake struct {
	Capabilities    vk.SurfaceCapabilities
	Formats         []vk.SurfaceFormat
	PresentModes    []vk.PresentMode
	PresentFamilies map[uint32]bool

	SupportResult         vk.Result
	CapabilitiesResult    vk.Result
	FormatsResult         vk.Result
	PresentModesResult    vk.Result
	CreateSwapchainResult vk.Result
	ImagesResult          vk.Result
	SemaphoreResult       vk.Result
	FenceResult           vk.Result
	SubmitResult          vk.Result
	WaitResult            vk.Result

	// FailViewAt makes the n-th CreateImageView call (1-based) fail. Zero never fails.
	FailViewAt int
	// ImageCount is the number of images each swap chain reports. Zero uses the requested MinImageCount.
	ImageCount uint32

	// AcquireResults and PresentResults are consumed one per call, vk.Success once exhausted.
	AcquireResults []vk.Result
	PresentResults []vk.Result

	CapabilityQueries int
	SwapchainInfos    []vk.SwapchainCreateInfo
	ViewInfos         []vk.ImageViewCreateInfo
	Acquires          []Acquire
	Submits           []Submit
	Presents          []Present
	Calls             []string
	Misuse            []string

	live      map[unsafe.Pointer]string
	signaled  map[unsafe.Pointer]bool
	retired   map[unsafe.Pointer]bool
	images    map[unsafe.Pointer][]vk.Image
	nextImage map[unsafe.Pointer]uint32
	viewCalls int

	physical vk.PhysicalDevice
	logical  vk.Device
	queue    vk.Queue
	instance vk.Instance
}

var _ vkd.Dispatch = (*Fake)(nil)

// New returns a Fake describing a typical desktop surface: 2..8 images, a fixed 640x480 current extent,
// two BGRA formats and FIFO plus MAILBOX presentation, presentable from queue family 0.
func New() *Fake {
	f := &Fake{
		live:            map[unsafe.Pointer]string{},
		signaled:        map[unsafe.Pointer]bool{},
		retired:         map[unsafe.Pointer]bool{},
		images:          map[unsafe.Pointer][]vk.Image{},
		nextImage:       map[unsafe.Pointer]uint32{},
		PresentFamilies: map[uint32]bool{0: true},
	}
	f.Capabilities = vk.SurfaceCapabilities{
		MinImageCount:           2,
		MaxImageCount:           8,
		CurrentExtent:           vk.Extent2D{Width: 640, Height: 480},
		MinImageExtent:          vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent:          vk.Extent2D{Width: 4096, Height: 4096},
		MaxImageArrayLayers:     1,
		SupportedTransforms:     vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit),
		CurrentTransform:        vk.SurfaceTransformIdentityBit,
		SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
		SupportedUsageFlags:     vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
	}
	f.Formats = []vk.SurfaceFormat{
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	f.PresentModes = []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}
	f.physical = vk.PhysicalDevice(unsafe.Pointer(new(uint64)))
	f.logical = vk.Device(unsafe.Pointer(new(uint64)))
	f.queue = vk.Queue(unsafe.Pointer(new(uint64)))
	f.instance = vk.Instance(unsafe.Pointer(new(uint64)))
	return f
}

// Device returns a device bundle dispatching to f.
func (f *Fake) Device() vkd.Device {
	return vkd.Device{Physical: f.physical, Logical: f.logical, Dispatch: f}
}

func (f *Fake) Instance() vk.Instance { return f.instance }

func (f *Fake) Queue() vk.Queue { return f.queue }

// NewSurface hands out a live surface handle as a window would.
func (f *Fake) NewSurface() vk.Surface {
	return vk.Surface(f.handle(KindSurface))
}

// NewSemaphore hands out a live semaphore without recording a CreateSemaphore call.
func (f *Fake) NewSemaphore() vk.Semaphore {
	return vk.Semaphore(f.handle(KindSemaphore))
}

// NewFence hands out a live fence without recording a CreateFence call.
func (f *Fake) NewFence(signaled bool) vk.Fence {
	p := f.handle(KindFence)
	f.signaled[p] = signaled
	return vk.Fence(p)
}

// Live counts the objects of kind that were created and not destroyed yet.
func (f *Fake) Live(kind string) int {
	n := 0
	for _, k := range f.live {
		if k == kind {
			n++
		}
	}
	return n
}

// Retired reports whether swapchain was handed to a CreateSwapchain call as the old swap chain.
func (f *Fake) Retired(swapchain vk.Swapchain) bool {
	return f.retired[unsafe.Pointer(swapchain)]
}

// Signaled reports the state of fence.
func (f *Fake) Signaled(fence vk.Fence) bool {
	return f.signaled[unsafe.Pointer(fence)]
}

func (f *Fake) handle(kind string) unsafe.Pointer {
	p := unsafe.Pointer(new(uint64))
	f.live[p] = kind
	return p
}

func (f *Fake) release(p unsafe.Pointer, kind string) {
	if p == nil {
		return
	}
	if f.live[p] != kind {
		f.misuse("destroy of %s %p that is not alive", kind, p)
		return
	}
	delete(f.live, p)
	delete(f.signaled, p)
}

func (f *Fake) misuse(format string, a ...interface{}) {
	f.Misuse = append(f.Misuse, fmt.Sprintf(format, a...))
}

func (f *Fake) call(name string) {
	f.Calls = append(f.Calls, name)
}

func (f *Fake) GetPhysicalDeviceSurfaceSupport(_ vk.PhysicalDevice, family uint32, _ vk.Surface) (bool, vk.Result) {
	f.call("GetPhysicalDeviceSurfaceSupport")
	if f.SupportResult != vk.Success {
		return false, f.SupportResult
	}
	return f.PresentFamilies[family], vk.Success
}

func (f *Fake) GetPhysicalDeviceSurfaceCapabilities(_ vk.PhysicalDevice, _ vk.Surface) (vk.SurfaceCapabilities, vk.Result) {
	f.call("GetPhysicalDeviceSurfaceCapabilities")
	f.CapabilityQueries++
	if f.CapabilitiesResult != vk.Success {
		return vk.SurfaceCapabilities{}, f.CapabilitiesResult
	}
	return f.Capabilities, vk.Success
}

func (f *Fake) GetPhysicalDeviceSurfaceFormats(_ vk.PhysicalDevice, _ vk.Surface) ([]vk.SurfaceFormat, vk.Result) {
	f.call("GetPhysicalDeviceSurfaceFormats")
	if f.FormatsResult != vk.Success {
		return nil, f.FormatsResult
	}
	return append([]vk.SurfaceFormat(nil), f.Formats...), vk.Success
}

func (f *Fake) GetPhysicalDeviceSurfacePresentModes(_ vk.PhysicalDevice, _ vk.Surface) ([]vk.PresentMode, vk.Result) {
	f.call("GetPhysicalDeviceSurfacePresentModes")
	if f.PresentModesResult != vk.Success {
		return nil, f.PresentModesResult
	}
	return append([]vk.PresentMode(nil), f.PresentModes...), vk.Success
}

func (f *Fake) DestroySurface(_ vk.Instance, surface vk.Surface) {
	f.call("DestroySurface")
	f.release(unsafe.Pointer(surface), KindSurface)
}

func (f *Fake) CreateSwapchain(_ vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result) {
	f.call("CreateSwapchain")
	f.SwapchainInfos = append(f.SwapchainInfos, *info)
	// A handed over swap chain is retired whether or not the creation succeeds
	if old := unsafe.Pointer(info.OldSwapchain); old != nil {
		if f.live[old] != KindSwapchain {
			f.misuse("old swapchain %p is not alive", old)
		} else if f.retired[old] {
			f.misuse("old swapchain %p is already retired", old)
		}
		f.retired[old] = true
	}
	if f.CreateSwapchainResult != vk.Success {
		return nil, f.CreateSwapchainResult
	}
	p := f.handle(KindSwapchain)
	count := f.ImageCount
	if count == 0 {
		count = info.MinImageCount
	}
	images := make([]vk.Image, count)
	for i := range images {
		images[i] = vk.Image(unsafe.Pointer(new(uint64)))
	}
	f.images[p] = images
	return vk.Swapchain(p), vk.Success
}

func (f *Fake) DestroySwapchain(_ vk.Device, swapchain vk.Swapchain) {
	f.call("DestroySwapchain")
	p := unsafe.Pointer(swapchain)
	f.release(p, KindSwapchain)
	delete(f.retired, p)
	delete(f.images, p)
	delete(f.nextImage, p)
}

func (f *Fake) GetSwapchainImages(_ vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result) {
	f.call("GetSwapchainImages")
	if f.ImagesResult != vk.Success {
		return nil, f.ImagesResult
	}
	return append([]vk.Image(nil), f.images[unsafe.Pointer(swapchain)]...), vk.Success
}

func (f *Fake) CreateImageView(_ vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result) {
	f.call("CreateImageView")
	f.viewCalls++
	if f.FailViewAt > 0 && f.viewCalls == f.FailViewAt {
		return nil, vk.ErrorOutOfDeviceMemory
	}
	f.ViewInfos = append(f.ViewInfos, *info)
	return vk.ImageView(f.handle(KindImageView)), vk.Success
}

func (f *Fake) DestroyImageView(_ vk.Device, view vk.ImageView) {
	f.call("DestroyImageView")
	f.release(unsafe.Pointer(view), KindImageView)
}

func (f *Fake) AcquireNextImage(_ vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore, fence vk.Fence) (uint32, vk.Result) {
	f.call("AcquireNextImage")
	f.Acquires = append(f.Acquires, Acquire{Swapchain: swapchain, Semaphore: semaphore, Fence: fence, Timeout: timeout})
	p := unsafe.Pointer(swapchain)
	if f.live[p] != KindSwapchain {
		f.misuse("acquire on swapchain %p that is not alive", p)
	}
	if f.retired[p] {
		return 0, vk.ErrorOutOfDate
	}
	res := vk.Success
	if len(f.AcquireResults) > 0 {
		res, f.AcquireResults = f.AcquireResults[0], f.AcquireResults[1:]
	}
	if res != vk.Success && res != vk.Suboptimal {
		return 0, res
	}
	count := uint32(len(f.images[p]))
	if count == 0 {
		return 0, vk.ErrorOutOfDate
	}
	idx := f.nextImage[p]
	f.nextImage[p] = (idx + 1) % count
	if fence != nil {
		f.signaled[unsafe.Pointer(fence)] = true
	}
	return idx, res
}

func (f *Fake) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	f.call("QueuePresent")
	f.Presents = append(f.Presents, Present{
		Queue:      queue,
		Wait:       append([]vk.Semaphore(nil), info.PWaitSemaphores...),
		Swapchains: append([]vk.Swapchain(nil), info.PSwapchains...),
		Indices:    append([]uint32(nil), info.PImageIndices...),
	})
	res := vk.Success
	if len(f.PresentResults) > 0 {
		res, f.PresentResults = f.PresentResults[0], f.PresentResults[1:]
	}
	return res
}

func (f *Fake) CreateSemaphore(_ vk.Device) (vk.Semaphore, vk.Result) {
	f.call("CreateSemaphore")
	if f.SemaphoreResult != vk.Success {
		return nil, f.SemaphoreResult
	}
	return vk.Semaphore(f.handle(KindSemaphore)), vk.Success
}

func (f *Fake) DestroySemaphore(_ vk.Device, semaphore vk.Semaphore) {
	f.call("DestroySemaphore")
	f.release(unsafe.Pointer(semaphore), KindSemaphore)
}

func (f *Fake) CreateFence(_ vk.Device, signaled bool) (vk.Fence, vk.Result) {
	f.call("CreateFence")
	if f.FenceResult != vk.Success {
		return nil, f.FenceResult
	}
	p := f.handle(KindFence)
	f.signaled[p] = signaled
	return vk.Fence(p), vk.Success
}

func (f *Fake) DestroyFence(_ vk.Device, fence vk.Fence) {
	f.call("DestroyFence")
	f.release(unsafe.Pointer(fence), KindFence)
}

func (f *Fake) WaitForFences(_ vk.Device, fences []vk.Fence, _ uint64) vk.Result {
	f.call("WaitForFences")
	if f.WaitResult != vk.Success {
		return f.WaitResult
	}
	for _, fence := range fences {
		if !f.signaled[unsafe.Pointer(fence)] {
			// Nothing pending would ever signal it, a real driver would block forever
			f.misuse("wait on fence %p that is never signaled", unsafe.Pointer(fence))
			return vk.Timeout
		}
	}
	return vk.Success
}

func (f *Fake) ResetFences(_ vk.Device, fences []vk.Fence) vk.Result {
	f.call("ResetFences")
	for _, fence := range fences {
		f.signaled[unsafe.Pointer(fence)] = false
	}
	return vk.Success
}

// QueueSubmit completes the submitted work immediately, signaling fence.
func (f *Fake) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result {
	f.call("QueueSubmit")
	for _, s := range submits {
		f.Submits = append(f.Submits, Submit{Queue: queue, Info: s, Fence: fence})
	}
	if f.SubmitResult != vk.Success {
		return f.SubmitResult
	}
	if fence != nil {
		p := unsafe.Pointer(fence)
		if f.signaled[p] {
			f.misuse("submit with fence %p still signaled", p)
		}
		f.signaled[p] = true
	}
	return vk.Success
}
