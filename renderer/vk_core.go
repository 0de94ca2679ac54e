package renderer

import (
	"log"
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/loov/hrtime"

	"GPU_present_chain/common"
	"GPU_present_chain/frame"
	"GPU_present_chain/swapchain"
	"GPU_present_chain/vkd"
)

// Core owns every Vulkan object of the demo and drives the acquire, render and present loop.
type Core struct {
	cfg Config

	// OS/Window level
	Win      common.Platform
	instance vk.Instance
	surface  *swapchain.Surface
	device   *common.Device

	// Target level
	chains *swapchain.Manager

	// Drawing infrastructure level
	renderPass       vk.RenderPass
	renderPassFormat vk.Format
	framebuffers     []vk.Framebuffer
	commandPool      vk.CommandPool

	// Frame level
	frames    *frame.Cycle
	sequences []*commandSequence

	// Set when the chain has to be recreated but the window has no drawable area yet
	pendingRecreate bool
}

func NewRenderCore(cfg Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "render core config")
	}
	c := &Core{cfg: cfg}
	if err := c.initialize(); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

func (c *Core) initialize() error {
	var err error
	if c.Win, err = c.cfg.NewPlatform(); err != nil {
		return errors.Wrap(err, "open window")
	}
	if c.instance, err = common.NewInstance(c.Win, c.cfg.validationLayers()); err != nil {
		return err
	}
	if c.surface, err = swapchain.NewSurface(c.instance, c.Win, vkd.Native{}); err != nil {
		return err
	}
	if c.device, err = common.NewDevice(c.instance, c.surface, vkd.Native{}, c.cfg.validationLayers()); err != nil {
		return err
	}

	strategies := c.cfg.Strategies(c.Win, c.device.QFamilies.Families())
	if c.chains, err = swapchain.NewManager(c.device.Dispatch(), c.surface, strategies...); err != nil {
		return err
	}
	log.Printf("Surface properties:\n%s", common.TableStringSurfaceProperties(c.chains.Properties()))

	if c.frames, err = frame.NewCycle(c.device.Dispatch(), c.cfg.FramesInFlight); err != nil {
		return err
	}
	if err = c.createRenderPass(c.chains.Chain().Format().Format); err != nil {
		return err
	}
	if err = c.createFrameBuffers(); err != nil {
		return err
	}
	if err = c.createCommandPool(); err != nil {
		return err
	}
	return c.createCommandSequences()
}

// Loop renders until the window is closed or a frame fails.
func (c *Core) Loop() error {
	t0 := hrtime.Now()
	frames := 0
	for {
		state := c.Win.Poll()
		if state.Close {
			break
		}
		if state.Resized {
			c.pendingRecreate = true
		}
		if state.Minimized {
			// Sleep until new events restore the window
			c.Win.WaitEvents()
			continue
		}
		if c.pendingRecreate {
			if err := c.recreateSwapChain(); err != nil {
				return err
			}
			if c.pendingRecreate {
				c.Win.WaitEvents()
				continue
			}
		}
		if err := c.drawFrame(hrtime.Since(t0)); err != nil {
			return err
		}
		frames++
	}
	dt := hrtime.Since(t0)
	log.Printf("Elapsed: %v, rough avg fps: %v fps, swap chain generation: %d", dt, float64(frames)/dt.Seconds(), c.chains.Generation())
	return nil
}

func (c *Core) drawFrame(elapsed time.Duration) error {
	slot := c.frames.Next()
	chain := c.chains.Chain()

	imageIdx, acquired, err := slot.Acquire(chain)
	if err != nil {
		return errors.Wrapf(err, "acquire image for frame slot %d", slot.Index())
	}
	if acquired.MustRebuild() {
		return c.recreateSwapChain()
	}

	seq := c.sequences[slot.Index()]
	if err = c.recordClear(seq, imageIdx, elapsed); err != nil {
		return err
	}
	if err = slot.Render(seq); err != nil {
		return errors.Wrapf(err, "render frame slot %d", slot.Index())
	}
	presented, err := slot.Present(seq, imageIdx, chain)
	if err != nil {
		return errors.Wrapf(err, "present image %d", imageIdx)
	}

	if presented.MustRebuild() || c.pendingRecreate ||
		(c.cfg.RebuildOnSuboptimal && (acquired.Degraded() || presented.Degraded())) {
		return c.recreateSwapChain()
	}
	return nil
}

// recreateSwapChain replaces the chain and everything sized after it. While the window has no drawable
// area the recreation stays pending.
func (c *Core) recreateSwapChain() error {
	w, h := c.Win.FramebufferSize()
	if w == 0 || h == 0 {
		c.pendingRecreate = true
		return nil
	}
	if err := c.frames.WaitIdle(); err != nil {
		return errors.Wrap(err, "wait for frames in flight")
	}
	c.destroyFrameBuffers()

	chain, err := c.chains.Recreate()
	if err != nil {
		return err
	}
	if err = c.rebuildFrameTargets(chain); err != nil {
		return err
	}
	c.pendingRecreate = false
	return nil
}

// Destroy releases everything created so far, in reverse order. It is safe on a partially initialized core.
func (c *Core) Destroy() {
	if c.device != nil {
		if err := c.device.WaitIdle(); err != nil {
			log.Printf("Failed to wait for device idle: %v", err)
		}
		if c.frames != nil {
			c.frames.Destroy()
		}
		if c.commandPool != nil {
			vk.DestroyCommandPool(c.device.D, c.commandPool, nil)
		}
		c.destroyFrameBuffers()
		if c.renderPass != nil {
			vk.DestroyRenderPass(c.device.D, c.renderPass, nil)
		}
		if c.chains != nil {
			if err := c.chains.Destroy(); err != nil {
				log.Printf("Failed to destroy swap chain: %v", err)
			}
		}
		c.device.Destroy()
	}
	if c.surface != nil {
		c.surface.Destroy()
	}
	if c.instance != nil {
		vk.DestroyInstance(c.instance, nil)
	}
	if c.Win != nil {
		c.Win.Destroy()
	}
	log.Println("Render core destroyed")
}
