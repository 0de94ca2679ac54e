package renderer

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/common"
	"GPU_present_chain/swapchain"
)

// createRenderPass creates a single subpass pass clearing the chain image and leaving it ready to present.
func (c *Core) createRenderPass(format vk.Format) error {
	colorAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	colorAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{colorAttachmentRef},
	}
	// Matches the colour attachment output stage the available semaphore is waited on
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}
	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		PNext:           nil,
		Flags:           0,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	renderPass, err := common.VkCreateRenderPass(c.device.D, &renderPassInfo, nil)
	if err != nil {
		return errors.Wrap(err, "create render pass")
	}
	c.renderPass = renderPass
	c.renderPassFormat = format
	log.Println("Successfully created render pass")
	return nil
}

// createFrameBuffers creates one framebuffer per chain image. The views are resolved through the manager,
// so the same code serves the first chain and every recreated one.
func (c *Core) createFrameBuffers() error {
	chain := c.chains.Chain()
	c.framebuffers = make([]vk.Framebuffer, 0, chain.ImageCount())
	for i := 0; i < chain.ImageCount(); i++ {
		view, err := c.chains.AttachmentView(i).Resolve()
		if err != nil {
			c.destroyFrameBuffers()
			return err
		}
		fb, err := common.VKSCreateFrameBuffer(c.device.D, c.renderPass, []vk.ImageView{view}, chain.Extent())
		if err != nil {
			c.destroyFrameBuffers()
			return errors.Wrapf(err, "create frame buffer [%d]", i)
		}
		c.framebuffers = append(c.framebuffers, fb)
	}
	log.Printf("Successfully created %d frame buffers for swap chain %s", len(c.framebuffers), chain.ID())
	return nil
}

func (c *Core) destroyFrameBuffers() {
	for _, fb := range c.framebuffers {
		vk.DestroyFramebuffer(c.device.D, fb, nil)
	}
	c.framebuffers = nil
}

// rebuildFrameTargets follows a chain recreation. The render pass only changes with the image format.
func (c *Core) rebuildFrameTargets(chain *swapchain.Chain) error {
	if chain.Format().Format != c.renderPassFormat {
		vk.DestroyRenderPass(c.device.D, c.renderPass, nil)
		if err := c.createRenderPass(chain.Format().Format); err != nil {
			return err
		}
	}
	return c.createFrameBuffers()
}
