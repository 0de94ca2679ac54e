package frame

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd"
)

// WorkQueue accepts recorded command sequences for execution on the device.
type WorkQueue interface {
	Handle() vk.Queue
	// Submit executes seq after every semaphore in wait is signaled, then signals every semaphore in
	// signal and fence.
	Submit(seq CommandSequence, wait, signal []vk.Semaphore, fence vk.Fence) error
}

// CommandSequence is recorded work bound to the queue that executes it.
type CommandSequence interface {
	Queue() WorkQueue
	Buffers() []vk.CommandBuffer
}

// DispatchQueue is a WorkQueue submitting through a vkd.Dispatch. Rendering waits on the wait
// semaphores at the colour attachment output stage, so vertex work may start before the image is
// available.
type DispatchQueue struct {
	dispatch vkd.Dispatch
	handle   vk.Queue
	family   uint32
}

var _ WorkQueue = (*DispatchQueue)(nil)

func NewDispatchQueue(dispatch vkd.Dispatch, handle vk.Queue, family uint32) *DispatchQueue {
	return &DispatchQueue{dispatch: dispatch, handle: handle, family: family}
}

func (q *DispatchQueue) Handle() vk.Queue {
	return q.handle
}

// Family is the queue family index the queue was retrieved from.
func (q *DispatchQueue) Family() uint32 {
	return q.family
}

func (q *DispatchQueue) Submit(seq CommandSequence, wait, signal []vk.Semaphore, fence vk.Fence) error {
	stages := make([]vk.PipelineStageFlags, len(wait))
	for i := range stages {
		stages[i] = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	}
	buffers := seq.Buffers()
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		PNext:                nil,
		WaitSemaphoreCount:   uint32(len(wait)),
		PWaitSemaphores:      wait,
		PWaitDstStageMask:    stages,
		CommandBufferCount:   uint32(len(buffers)),
		PCommandBuffers:      buffers,
		SignalSemaphoreCount: uint32(len(signal)),
		PSignalSemaphores:    signal,
	}
	res := q.dispatch.QueueSubmit(q.handle, []vk.SubmitInfo{submitInfo}, fence)
	return errors.Wrap(vkd.Check(res, "vkQueueSubmit"), "submit command buffers")
}
