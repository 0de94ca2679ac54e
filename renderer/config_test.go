package renderer

import (
	"testing"
	"time"

	vk "github.com/goki/vulkan"

	"GPU_present_chain/swapchain"
	"GPU_present_chain/vkd/vkdtest"
)

type fixedWindow struct{}

func (fixedWindow) FramebufferSize() (int, int) { return 800, 600 }

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"glfw", func(c *Config) { c.Window = WindowGLFW }, true},
		{"unknown window", func(c *Config) { c.Window = "x11" }, false},
		{"no frames", func(c *Config) { c.FramesInFlight = 0 }, false},
		{"zero width", func(c *Config) { c.Width = 0 }, false},
		{"negative height", func(c *Config) { c.Height = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok %v", err, tt.ok)
			}
		})
	}
}

func newManager(t *testing.T, f *vkdtest.Fake, cfg Config) *swapchain.Manager {
	t.Helper()
	surface := swapchain.WrapSurface(f.Instance(), f.NewSurface(), f)
	m, err := swapchain.NewManager(f.Device(), surface, cfg.Strategies(fixedWindow{}, []uint32{0})...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestConfigStrategies(t *testing.T) {
	f := vkdtest.New()
	m := newManager(t, f, DefaultConfig())
	c := m.Chain()
	if c.ImageCount() != 3 {
		t.Errorf("image count = %d, want 3", c.ImageCount())
	}
	if c.PresentMode() != vk.PresentModeMailbox {
		t.Errorf("present mode = %s", swapchain.PresentModeName(c.PresentMode()))
	}
	if c.Format().Format != vk.FormatB8g8r8a8Srgb {
		t.Errorf("format = %s", swapchain.FormatName(c.Format()))
	}
	if e := c.Extent(); e.Width != 640 || e.Height != 480 {
		t.Errorf("extent = %dx%d, want the surface's 640x480", e.Width, e.Height)
	}
	if info := f.SwapchainInfos[0]; info.ImageSharingMode != vk.SharingModeExclusive ||
		info.CompositeAlpha != vk.CompositeAlphaOpaqueBit {
		t.Errorf("sharing = %v, alpha = %v", info.ImageSharingMode, info.CompositeAlpha)
	}
}

func TestConfigImageCountFallback(t *testing.T) {
	f := vkdtest.New()
	f.Capabilities.MaxImageCount = 2
	m := newManager(t, f, DefaultConfig())
	if n := m.Chain().ImageCount(); n != 2 {
		t.Errorf("image count = %d, want the minimum 2", n)
	}
}

func TestConfigPresentModeFallback(t *testing.T) {
	f := vkdtest.New()
	cfg := DefaultConfig()
	cfg.PresentMode = vk.PresentModeImmediate
	m := newManager(t, f, cfg)
	if m.Chain().PresentMode() != vk.PresentModeFifo {
		t.Errorf("present mode = %s, want fifo", swapchain.PresentModeName(m.Chain().PresentMode()))
	}
}

func TestClearColor(t *testing.T) {
	for _, d := range []time.Duration{0, time.Second, 3 * time.Second, time.Minute} {
		c := clearColor(d)
		for i, v := range c {
			if v < 0 || v > 1 {
				t.Errorf("clearColor(%v)[%d] = %v out of range", d, i, v)
			}
		}
		if c[3] != 1 {
			t.Errorf("clearColor(%v) alpha = %v", d, c[3])
		}
	}
	if clearColor(0) == clearColor(time.Second) {
		t.Error("clear colour does not change over time")
	}
}
