package swapchain

import (
	"log"
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/google/uuid"

	"GPU_present_chain/vkd"
)

// Chain is a built swap chain: the native handle, its images in index order and one colour view per
// image. It is immutable apart from the index of the most recently acquired image. Chains are created
// by a Builder and owned by whoever built them, usually a Manager.
type Chain struct {
	id          uuid.UUID
	dev         vkd.Device
	handle      vk.Swapchain
	format      vk.SurfaceFormat
	extent      vk.Extent2D
	presentMode vk.PresentMode
	images      []vk.Image
	views       []vk.ImageView
	latest      int
	retired     bool
	destroyed   bool
}

// Acquire waits without a time limit for the next presentable image and returns its index. available
// is signaled once the image may be rendered to, fence may be nil. A Suboptimal status still comes
// with a usable index, an OutOfDate status does not. A retired chain always reports OutOfDate.
func (c *Chain) Acquire(available vk.Semaphore, fence vk.Fence) (uint32, Status, error) {
	if c.destroyed {
		return 0, Optimal, errors.Wrap(ErrDestroyed, "acquire")
	}
	if available == nil {
		return 0, Optimal, ErrNilSemaphore
	}
	if c.retired {
		return 0, OutOfDate, nil
	}
	idx, res := c.dev.Dispatch.AcquireNextImage(c.dev.Logical, c.handle, math.MaxUint64, available, fence)
	status, err := statusOf(res, "vkAcquireNextImageKHR")
	if err != nil {
		return 0, status, errors.Wrap(err, "acquire next image")
	}
	if status == OutOfDate {
		return 0, status, nil
	}
	c.latest = int(idx)
	return idx, status, nil
}

// Present queues image index for presentation once every semaphore in wait is signaled.
func (c *Chain) Present(queue vk.Queue, index uint32, wait []vk.Semaphore) (Status, error) {
	if c.destroyed {
		return Optimal, errors.Wrap(ErrDestroyed, "present")
	}
	if int(index) >= len(c.images) {
		return Optimal, errors.Wrapf(ErrInvalidConfig, "present of image %d, chain has %d images", index, len(c.images))
	}
	info := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(wait)),
		PWaitSemaphores:    wait,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.handle},
		PImageIndices:      []uint32{index},
	}
	status, err := statusOf(c.dev.Dispatch.QueuePresent(queue, &info), "vkQueuePresentKHR")
	if err != nil {
		return status, errors.Wrap(err, "present")
	}
	return status, nil
}

// Views returns the colour views in image index order.
func (c *Chain) Views() []vk.ImageView {
	return append([]vk.ImageView(nil), c.views...)
}

func (c *Chain) View(i int) vk.ImageView {
	return c.views[i]
}

func (c *Chain) Images() []vk.Image {
	return append([]vk.Image(nil), c.images...)
}

func (c *Chain) Extent() vk.Extent2D {
	return c.extent
}

func (c *Chain) Format() vk.SurfaceFormat {
	return c.format
}

func (c *Chain) PresentMode() vk.PresentMode {
	return c.presentMode
}

func (c *Chain) ImageCount() int {
	return len(c.images)
}

// Latest returns the most recently acquired image index. ok is false until the first acquire.
func (c *Chain) Latest() (index uint32, ok bool) {
	if c.latest < 0 {
		return 0, false
	}
	return uint32(c.latest), true
}

// Aspect returns width divided by height.
func (c *Chain) Aspect() float32 {
	if c.extent.Height == 0 {
		return 0
	}
	return float32(c.extent.Width) / float32(c.extent.Height)
}

func (c *Chain) Handle() vk.Swapchain {
	return c.handle
}

// ID identifies one build. A recreated chain always carries a new ID.
func (c *Chain) ID() uuid.UUID {
	return c.id
}

// Retired reports whether the chain was handed to the driver as the old swap chain of a new one. A
// retired chain can still present images acquired before, but no new images.
func (c *Chain) Retired() bool {
	return c.retired
}

func (c *Chain) IsDestroyed() bool {
	return c.destroyed
}

// Destroy releases the views and then the swap chain. The caller makes sure the device no longer uses
// any of the images.
func (c *Chain) Destroy() {
	if c.destroyed {
		log.Printf("Swap chain %s already destroyed, ignoring", c.id)
		return
	}
	for _, iv := range c.views {
		c.dev.Dispatch.DestroyImageView(c.dev.Logical, iv)
	}
	c.dev.Dispatch.DestroySwapchain(c.dev.Logical, c.handle)
	c.views = nil
	c.images = nil
	c.latest = -1
	c.destroyed = true
}
