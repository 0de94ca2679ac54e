// Package frame paces CPU recording against GPU execution with a fixed number of frames in flight.
// Each Slot owns the primitives ordering one frame: a semaphore signaled when the acquired image is
// available, one signaled when rendering finished and a fence guarding reuse of the slot itself.
package frame

import (
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/swapchain"
	"GPU_present_chain/vkd"
)

var (
	// ErrAliasedSemaphores is returned when a slot would signal and wait on the same semaphore.
	ErrAliasedSemaphores = errors.New("image available and render finished semaphores must differ")
	// ErrInvalidSlot is returned for slots built from null handles.
	ErrInvalidSlot = errors.New("invalid frame slot")
)

// Chain is the part of a swap chain a Slot drives.
type Chain interface {
	Acquire(available vk.Semaphore, fence vk.Fence) (uint32, swapchain.Status, error)
	Present(queue vk.Queue, index uint32, wait []vk.Semaphore) (swapchain.Status, error)
}

var _ Chain = (*swapchain.Chain)(nil)

type Slot struct {
	dev       vkd.Device
	index     int
	available vk.Semaphore
	ready     vk.Semaphore
	fence     vk.Fence
}

// NewSlot adopts existing primitives. fence has to start signaled, otherwise the first Acquire blocks
// forever.
func NewSlot(dev vkd.Device, index int, available, ready vk.Semaphore, fence vk.Fence) (*Slot, error) {
	if available == nil || ready == nil || fence == nil {
		return nil, errors.Wrapf(ErrInvalidSlot, "slot %d has a null handle", index)
	}
	if available == ready {
		return nil, errors.Wrapf(ErrAliasedSemaphores, "slot %d", index)
	}
	return &Slot{
		dev:       dev,
		index:     index,
		available: available,
		ready:     ready,
		fence:     fence,
	}, nil
}

// CreateSlot creates two semaphores and a signaled fence for slot index.
func CreateSlot(dev vkd.Device, index int) (*Slot, error) {
	d := dev.Dispatch
	available, res := d.CreateSemaphore(dev.Logical)
	if err := vkd.Check(res, "vkCreateSemaphore"); err != nil {
		return nil, errors.Wrapf(err, "create image available semaphore for slot %d", index)
	}
	ready, res := d.CreateSemaphore(dev.Logical)
	if err := vkd.Check(res, "vkCreateSemaphore"); err != nil {
		d.DestroySemaphore(dev.Logical, available)
		return nil, errors.Wrapf(err, "create render finished semaphore for slot %d", index)
	}
	fence, res := d.CreateFence(dev.Logical, true)
	if err := vkd.Check(res, "vkCreateFence"); err != nil {
		d.DestroySemaphore(dev.Logical, available)
		d.DestroySemaphore(dev.Logical, ready)
		return nil, errors.Wrapf(err, "create in flight fence for slot %d", index)
	}
	return NewSlot(dev, index, available, ready, fence)
}

// Acquire waits until the slot's previous work finished and acquires the next chain image, signaling
// the slot's available semaphore. The fence is only reset once an image was obtained, so an out of
// date chain leaves the slot reusable after recreation.
func (s *Slot) Acquire(chain Chain) (uint32, swapchain.Status, error) {
	if err := s.Wait(); err != nil {
		return 0, swapchain.Optimal, err
	}
	idx, status, err := chain.Acquire(s.available, vk.Fence(nil))
	if err != nil || status.MustRebuild() {
		return idx, status, err
	}
	res := s.dev.Dispatch.ResetFences(s.dev.Logical, []vk.Fence{s.fence})
	if err := vkd.Check(res, "vkResetFences"); err != nil {
		return 0, status, errors.Wrapf(err, "reset fence of slot %d", s.index)
	}
	return idx, status, nil
}

// Render submits seq on its queue, waiting on the available semaphore and signaling the ready
// semaphore and the fence.
func (s *Slot) Render(seq CommandSequence) error {
	err := seq.Queue().Submit(seq, []vk.Semaphore{s.available}, []vk.Semaphore{s.ready}, s.fence)
	return errors.Wrapf(err, "render slot %d", s.index)
}

// Present hands image index back to chain once the ready semaphore is signaled.
func (s *Slot) Present(seq CommandSequence, index uint32, chain Chain) (swapchain.Status, error) {
	return chain.Present(seq.Queue().Handle(), index, []vk.Semaphore{s.ready})
}

// Wait blocks until the slot's last submission completed. The fence stays signaled.
func (s *Slot) Wait() error {
	res := s.dev.Dispatch.WaitForFences(s.dev.Logical, []vk.Fence{s.fence}, math.MaxUint64)
	return errors.Wrapf(vkd.Check(res, "vkWaitForFences"), "wait for slot %d", s.index)
}

func (s *Slot) Index() int {
	return s.index
}

func (s *Slot) Available() vk.Semaphore {
	return s.available
}

func (s *Slot) Ready() vk.Semaphore {
	return s.ready
}

func (s *Slot) Fence() vk.Fence {
	return s.fence
}

// Destroy releases the semaphores and the fence. The caller waits for the slot first.
func (s *Slot) Destroy() {
	s.dev.Dispatch.DestroySemaphore(s.dev.Logical, s.available)
	s.dev.Dispatch.DestroySemaphore(s.dev.Logical, s.ready)
	s.dev.Dispatch.DestroyFence(s.dev.Logical, s.fence)
	s.available, s.ready, s.fence = nil, nil, nil
}
