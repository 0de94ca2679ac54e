package swapchain

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// Strategy writes one property of the swap chain configuration into b. Strategies read only from p,
// never from what another strategy wrote, so the order they are applied in does not change the result.
type Strategy interface {
	Configure(b *Builder, p *Properties) error
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(b *Builder, p *Properties) error

func (f StrategyFunc) Configure(b *Builder, p *Properties) error {
	return f(b, p)
}

// FramebufferSizer reports the pixel size of a window's drawable area.
type FramebufferSizer interface {
	FramebufferSize() (int, int)
}

// ExtentStrategy uses the surface's current extent when it is defined. Otherwise the window's
// framebuffer size is clamped per component into the supported extent range.
type ExtentStrategy struct {
	Window FramebufferSizer
}

func (s ExtentStrategy) Configure(b *Builder, p *Properties) error {
	if p.CurrentExtentDefined() {
		b.Extent(p.Capabilities.CurrentExtent)
		return nil
	}
	if s.Window == nil {
		return errors.Wrap(ErrInvalidConfig, "surface leaves the extent open but no window was given")
	}
	w, h := s.Window.FramebufferSize()
	caps := p.Capabilities
	b.Extent(vk.Extent2D{
		Width:  clamp(w, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(h, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	})
	return nil
}

func clamp(v int, lo, hi uint32) uint32 {
	if v < 0 || uint64(v) < uint64(lo) {
		return lo
	}
	if uint64(v) > uint64(hi) {
		return hi
	}
	return uint32(v)
}

// CountPolicy picks a swap chain image count from the surface's supported range.
type CountPolicy uint8

const (
	// CountMin requests the minimum image count.
	CountMin CountPolicy = iota
	// CountMax requests the maximum image count. It requires a bounded surface.
	CountMax
	// CountMinPlusOne requests one image above the minimum, so the application never waits on the
	// driver to release an image. It requires max > min.
	CountMinPlusOne
)

func (c CountPolicy) String() string {
	switch c {
	case CountMin:
		return "min"
	case CountMax:
		return "max"
	case CountMinPlusOne:
		return "min+1"
	default:
		return "unknown"
	}
}

// ImageCountStrategy sets the image count according to Policy.
type ImageCountStrategy struct {
	Policy CountPolicy
}

func (s ImageCountStrategy) Configure(b *Builder, p *Properties) error {
	caps := p.Capabilities
	switch s.Policy {
	case CountMin:
		b.ImageCount(caps.MinImageCount)
	case CountMax:
		if !p.ImageCountBounded() {
			return errors.Wrap(ErrInvalidConfig, "max image count requested but the surface reports no upper bound")
		}
		b.ImageCount(caps.MaxImageCount)
	case CountMinPlusOne:
		if p.ImageCountBounded() && caps.MinImageCount >= caps.MaxImageCount {
			return errors.Wrapf(ErrInvalidConfig, "min+1 image count requested but min and max are both %d", caps.MinImageCount)
		}
		b.ImageCount(caps.MinImageCount + 1)
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown image count policy %d", s.Policy)
	}
	return nil
}

// FallbackPresentMode is the presentation mode every implementation has to support.
const FallbackPresentMode = vk.PresentModeFifo

// PresentModeStrategy selects the first mode of Preferred (most preferred first) the surface supports,
// falling back to FIFO.
type PresentModeStrategy struct {
	Preferred []vk.PresentMode
}

func (s PresentModeStrategy) Configure(b *Builder, p *Properties) error {
	for _, mode := range s.Preferred {
		if p.SupportsPresentMode(mode) {
			b.PresentMode(mode)
			return nil
		}
	}
	if len(s.Preferred) > 0 {
		log.Printf("Did not find preferred PresentMode, selecting %s", PresentModeName(FallbackPresentMode))
	}
	b.PresentMode(FallbackPresentMode)
	return nil
}

// SharingModeStrategy shares images exclusively when a single queue family touches them and
// concurrently between all families otherwise.
type SharingModeStrategy struct {
	Families []uint32
}

func (s SharingModeStrategy) Configure(b *Builder, _ *Properties) error {
	families := distinct(s.Families)
	switch len(families) {
	case 0:
		return errors.Wrap(ErrInvalidConfig, "sharing mode needs at least one queue family")
	case 1:
		b.Sharing(vk.SharingModeExclusive, families...)
	default:
		b.Sharing(vk.SharingModeConcurrent, families...)
	}
	return nil
}

func distinct(families []uint32) []uint32 {
	var out []uint32
	for _, f := range families {
		if !inList(f, out) {
			out = append(out, f)
		}
	}
	return out
}

func inList(e uint32, l []uint32) bool {
	for i := range l {
		if l[i] == e {
			return true
		}
	}
	return false
}

// SurfaceFormatStrategy selects Preferred if the surface supports that exact format and colour space
// pair, otherwise the first format the surface reported.
type SurfaceFormatStrategy struct {
	Preferred vk.SurfaceFormat
}

func (s SurfaceFormatStrategy) Configure(b *Builder, p *Properties) error {
	if len(p.Formats) == 0 {
		return errors.Wrap(ErrInvalidConfig, "surface reports no formats")
	}
	if p.SupportsFormat(s.Preferred) {
		b.Format(s.Preferred)
		return nil
	}
	fallback := p.Formats[0]
	log.Printf("Did not find preferred SurfaceFormat, selecting first one available. (%s)", FormatName(fallback))
	b.Format(fallback)
	return nil
}

// CompositeAlphaStrategy selects the first supported mode of Preferred. Without a match the builder's
// default applies.
type CompositeAlphaStrategy struct {
	Preferred []vk.CompositeAlphaFlagBits
}

func (s CompositeAlphaStrategy) Configure(b *Builder, p *Properties) error {
	for _, alpha := range s.Preferred {
		if p.SupportsCompositeAlpha(alpha) {
			b.CompositeAlpha(alpha)
			return nil
		}
	}
	return nil
}
