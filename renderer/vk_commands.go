package renderer

import (
	"log"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/common"
	"GPU_present_chain/frame"
	"GPU_present_chain/vkd"
)

// commandSequence is the command buffer of one frame slot, submitted on the device queue.
type commandSequence struct {
	queue  frame.WorkQueue
	buffer vk.CommandBuffer
}

var _ frame.CommandSequence = (*commandSequence)(nil)

func (s *commandSequence) Queue() frame.WorkQueue {
	return s.queue
}

func (s *commandSequence) Buffers() []vk.CommandBuffer {
	return []vk.CommandBuffer{s.buffer}
}

func (c *Core) createCommandPool() error {
	commandPool, err := common.VKSCreateCommandPool(
		c.device.D,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		c.device.Queue.Family(),
	)
	if err != nil {
		return errors.Wrap(err, "create command pool")
	}
	log.Printf("Successfully created command pool")
	c.commandPool = commandPool
	return nil
}

// createCommandSequences allocates one buffer per frame slot, so recording a frame never touches a buffer
// the device may still execute.
func (c *Core) createCommandSequences() error {
	buffers, err := common.VKSAllocateCommandBuffersPrimary(c.device.D, c.commandPool, uint32(c.frames.Len()))
	if err != nil {
		return errors.Wrap(err, "allocate command buffers")
	}
	log.Printf("Successfully allocated %d command buffers", len(buffers))
	c.sequences = make([]*commandSequence, len(buffers))
	for i := range buffers {
		c.sequences[i] = &commandSequence{queue: c.device.Queue, buffer: buffers[i]}
	}
	return nil
}

// clearColor cycles slowly through the hues so every presented frame is visibly distinct from a stall.
func clearColor(elapsed time.Duration) [4]float32 {
	t := elapsed.Seconds()
	channel := func(phase float64) float32 {
		return float32(0.5 + 0.5*math.Sin(t+phase))
	}
	return [4]float32{channel(0), channel(2 * math.Pi / 3), channel(4 * math.Pi / 3), 1}
}

func (c *Core) recordClear(seq *commandSequence, imageIdx uint32, elapsed time.Duration) error {
	buffer := seq.buffer
	if err := vkd.Check(vk.ResetCommandBuffer(buffer, 0), "vkResetCommandBuffer"); err != nil {
		return err
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
		PInheritanceInfo: nil,
	}
	if err := vkd.Check(vk.BeginCommandBuffer(buffer, &beginInfo), "vkBeginCommandBuffer"); err != nil {
		return errors.Wrap(err, "begin recording command buffer")
	}

	extent := c.chains.Chain().Extent()
	color := clearColor(elapsed)
	clearValues := []vk.ClearValue{
		vk.NewClearValue(color[:]),
	}
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		PNext:       nil,
		RenderPass:  c.renderPass,
		Framebuffer: c.framebuffers[imageIdx],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(buffer, &renderPassInfo, vk.SubpassContentsInline)
	vk.CmdEndRenderPass(buffer)

	if err := vkd.Check(vk.EndCommandBuffer(buffer), "vkEndCommandBuffer"); err != nil {
		return errors.Wrap(err, "record command buffer")
	}
	return nil
}
