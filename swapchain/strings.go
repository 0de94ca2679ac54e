package swapchain

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

var presentModeNames = map[vk.PresentMode]string{
	vk.PresentModeImmediate:   "immediate",
	vk.PresentModeMailbox:     "mailbox",
	vk.PresentModeFifo:        "fifo",
	vk.PresentModeFifoRelaxed: "fifo-relaxed",
}

// PresentModeName returns the short lower case name used in logs and on the command line.
func PresentModeName(m vk.PresentMode) string {
	if name, ok := presentModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("present-mode(%d)", m)
}

// ParsePresentMode is the inverse of PresentModeName.
func ParsePresentMode(s string) (vk.PresentMode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for mode, name := range presentModeNames {
		if name == want {
			return mode, nil
		}
	}
	return 0, errors.Newf("unknown present mode %q", s)
}

// ParseCountPolicy accepts "min", "max" and "min+1".
func ParseCountPolicy(s string) (CountPolicy, error) {
	for _, p := range []CountPolicy{CountMin, CountMax, CountMinPlusOne} {
		if p.String() == strings.ToLower(strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return 0, errors.Newf("unknown image count policy %q", s)
}

func FormatName(f vk.SurfaceFormat) string {
	return fmt.Sprintf("%s/%s", formatName(f.Format), colorSpaceName(f.ColorSpace))
}

func formatName(f vk.Format) string {
	switch f {
	case vk.FormatB8g8r8a8Unorm:
		return "B8G8R8A8_UNORM"
	case vk.FormatB8g8r8a8Srgb:
		return "B8G8R8A8_SRGB"
	case vk.FormatR8g8b8a8Unorm:
		return "R8G8B8A8_UNORM"
	case vk.FormatR8g8b8a8Srgb:
		return "R8G8B8A8_SRGB"
	case vk.FormatA2b10g10r10UnormPack32:
		return "A2B10G10R10_UNORM_PACK32"
	case vk.FormatR16g16b16a16Sfloat:
		return "R16G16B16A16_SFLOAT"
	default:
		return fmt.Sprintf("format(%d)", f)
	}
}

func colorSpaceName(c vk.ColorSpace) string {
	if c == vk.ColorSpaceSrgbNonlinear {
		return "SRGB_NONLINEAR"
	}
	return fmt.Sprintf("colorspace(%d)", c)
}
