package swapchain

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd"
)

// undefinedExtent is the CurrentExtent component value a surface reports when the swap chain decides
// the extent.
const undefinedExtent = ^uint32(0)

// Properties is an immutable snapshot of what a surface supports on one physical device.
type Properties struct {
	Capabilities vk.SurfaceCapabilities
	// Formats in the order the driver reported them.
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// PropertiesFunc queries the surface properties anew on every call.
type PropertiesFunc func() (*Properties, error)

// QueryProperties issues the capabilities, formats and present mode queries for surface on pd.
func QueryProperties(d vkd.Dispatch, pd vk.PhysicalDevice, surface vk.Surface) (*Properties, error) {
	caps, res := d.GetPhysicalDeviceSurfaceCapabilities(pd, surface)
	if err := vkd.Check(res, "vkGetPhysicalDeviceSurfaceCapabilitiesKHR"); err != nil {
		return nil, errors.Wrap(err, "query surface capabilities")
	}
	formats, res := d.GetPhysicalDeviceSurfaceFormats(pd, surface)
	if err := vkd.Check(res, "vkGetPhysicalDeviceSurfaceFormatsKHR"); err != nil {
		return nil, errors.Wrap(err, "query surface formats")
	}
	modes, res := d.GetPhysicalDeviceSurfacePresentModes(pd, surface)
	if err := vkd.Check(res, "vkGetPhysicalDeviceSurfacePresentModesKHR"); err != nil {
		return nil, errors.Wrap(err, "query surface present modes")
	}
	return &Properties{
		Capabilities: caps,
		Formats:      formats,
		PresentModes: modes,
	}, nil
}

// CurrentExtentDefined reports whether the surface dictates the swap chain extent.
func (p *Properties) CurrentExtentDefined() bool {
	e := p.Capabilities.CurrentExtent
	return e.Width != undefinedExtent && e.Height != undefinedExtent
}

// ImageCountBounded reports whether the surface limits the number of swap chain images.
func (p *Properties) ImageCountBounded() bool {
	return p.Capabilities.MaxImageCount != 0
}

func (p *Properties) SupportsPresentMode(mode vk.PresentMode) bool {
	for _, m := range p.PresentModes {
		if m == mode {
			return true
		}
	}
	return false
}

func (p *Properties) SupportsFormat(format vk.SurfaceFormat) bool {
	for _, f := range p.Formats {
		if sameFormat(f, format) {
			return true
		}
	}
	return false
}

func (p *Properties) SupportsCompositeAlpha(alpha vk.CompositeAlphaFlagBits) bool {
	return p.Capabilities.SupportedCompositeAlpha&vk.CompositeAlphaFlags(alpha) != 0
}

func (p *Properties) SupportsUsage(usage vk.ImageUsageFlagBits) bool {
	return p.Capabilities.SupportedUsageFlags&vk.ImageUsageFlags(usage) != 0
}

// The binding structs carry unexported C references, so values are compared field by field.

func sameFormat(a, b vk.SurfaceFormat) bool {
	return a.Format == b.Format && a.ColorSpace == b.ColorSpace
}

func sameExtent(a, b vk.Extent2D) bool {
	return a.Width == b.Width && a.Height == b.Height
}
