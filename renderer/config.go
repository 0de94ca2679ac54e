package renderer

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/common"
	"GPU_present_chain/swapchain"
)

const (
	WindowSDL  = "sdl"
	WindowGLFW = "glfw"
)

// Config holds every knob of the demo. Zero values are not meaningful, start from DefaultConfig.
type Config struct {
	Title  string
	Width  int
	Height int
	// Window selects the windowing backend, WindowSDL or WindowGLFW.
	Window string

	FramesInFlight int
	PresentMode    vk.PresentMode
	CountPolicy    swapchain.CountPolicy
	Format         vk.SurfaceFormat

	Validation bool
	// RebuildOnSuboptimal recreates the chain as soon as acquire or present report it suboptimal instead of
	// waiting until it is out of date.
	RebuildOnSuboptimal bool
}

func DefaultConfig() Config {
	return Config{
		Title:          common.APPLICATION_NAME,
		Width:          1280,
		Height:         720,
		Window:         WindowSDL,
		FramesInFlight: 2,
		PresentMode:    vk.PresentModeMailbox,
		CountPolicy:    swapchain.CountMinPlusOne,
		Format:         vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		Validation:     false,
	}
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Newf("window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.FramesInFlight < 1 {
		return errors.Newf("at least one frame in flight required, got %d", c.FramesInFlight)
	}
	if c.Window != WindowSDL && c.Window != WindowGLFW {
		return errors.Newf("unknown window backend %q", c.Window)
	}
	return nil
}

func (c Config) validationLayers() []string {
	if !c.Validation {
		return nil
	}
	return common.VALIDATION_LAYERS
}

// NewPlatform opens the configured window.
func (c Config) NewPlatform() (common.Platform, error) {
	switch c.Window {
	case WindowGLFW:
		w, err := common.NewGlfwWindow(c.Title, c.Width, c.Height)
		if err != nil {
			return nil, err
		}
		return w, nil
	case WindowSDL:
		w, err := common.NewWindow(c.Title, int32(c.Width), int32(c.Height))
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, errors.Newf("unknown window backend %q", c.Window)
	}
}

// Strategies returns the swap chain configuration policies for a chain whose images are used by families.
func (c Config) Strategies(win swapchain.FramebufferSizer, families []uint32) []swapchain.Strategy {
	return []swapchain.Strategy{
		imageCount(c.CountPolicy),
		swapchain.SurfaceFormatStrategy{Preferred: c.Format},
		swapchain.ExtentStrategy{Window: win},
		swapchain.PresentModeStrategy{Preferred: []vk.PresentMode{c.PresentMode}},
		swapchain.SharingModeStrategy{Families: families},
		swapchain.CompositeAlphaStrategy{Preferred: []vk.CompositeAlphaFlagBits{vk.CompositeAlphaOpaqueBit}},
	}
}

// imageCount applies policy and falls back to the minimum count when the surface cannot satisfy it.
func imageCount(policy swapchain.CountPolicy) swapchain.Strategy {
	return swapchain.StrategyFunc(func(b *swapchain.Builder, p *swapchain.Properties) error {
		err := swapchain.ImageCountStrategy{Policy: policy}.Configure(b, p)
		if errors.Is(err, swapchain.ErrInvalidConfig) && policy != swapchain.CountMin {
			log.Printf("Image count policy %s not satisfiable (%v), selecting min", policy, err)
			return swapchain.ImageCountStrategy{Policy: swapchain.CountMin}.Configure(b, p)
		}
		return err
	})
}
