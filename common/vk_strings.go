package common

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/mattn/go-runewidth"

	"GPU_present_chain/swapchain"
)

// TableStringSurfaceProperties renders the capabilities, formats and present modes of a surface as aligned
// two column rows.
func TableStringSurfaceProperties(p *swapchain.Properties) string {
	caps := p.Capabilities
	maxCount := fmt.Sprint(caps.MaxImageCount)
	if !p.ImageCountBounded() {
		maxCount = "unbounded"
	}
	current := fmt.Sprintf("%dx%d", caps.CurrentExtent.Width, caps.CurrentExtent.Height)
	if !p.CurrentExtentDefined() {
		current = "decided by swap chain"
	}
	rows := [][2]string{
		{"Image count", fmt.Sprintf("%d .. %s", caps.MinImageCount, maxCount)},
		{"Current extent", current},
		{"Extent range", fmt.Sprintf("%dx%d .. %dx%d",
			caps.MinImageExtent.Width, caps.MinImageExtent.Height, caps.MaxImageExtent.Width, caps.MaxImageExtent.Height)},
		{"Array layers", fmt.Sprint(caps.MaxImageArrayLayers)},
		{"Current transform", fmt.Sprintf("%#x", caps.CurrentTransform)},
		{"Composite alpha", fmt.Sprintf("%04b", caps.SupportedCompositeAlpha)},
		{"Usage", fmt.Sprintf("%08b", caps.SupportedUsageFlags)},
	}
	for i, f := range p.Formats {
		rows = append(rows, [2]string{fmt.Sprintf("Format[%d]", i), swapchain.FormatName(f)})
	}
	for i, m := range p.PresentModes {
		rows = append(rows, [2]string{fmt.Sprintf("PresentMode[%d]", i), swapchain.PresentModeName(m)})
	}
	return tableString(rows)
}

func tableString(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]); w > width {
			width = w
		}
	}
	strBuilder := strings.Builder{}
	for _, r := range rows {
		strBuilder.WriteString(fmt.Sprintf(" %s : %s\n", runewidth.FillRight(r[0], width), r[1]))
	}
	return strBuilder.String()
}

// Physical device
func ToStringPhysicalDeviceTable(pdProps vk.PhysicalDeviceProperties, qFamilies []vk.QueueFamilyProperties) string {
	strBuilder := strings.Builder{}
	for i := range qFamilies {
		if i == len(qFamilies)-1 {
			strBuilder.WriteString(fmt.Sprintf("|_Qfamily[%d] %s\n", i, toStringQueueFamilyPropsTable(qFamilies[i])))
		} else {
			strBuilder.WriteString(fmt.Sprintf("| Qfamily[%d] %s\n", i, toStringQueueFamilyPropsTable(qFamilies[i])))
		}
	}
	return fmt.Sprintf(
		"%s:\n|_api: %s, driver: %s, vendor: %s, deviceType: %s\n%s",
		vk.ToString(pdProps.DeviceName[:]),
		vk.Version(pdProps.ApiVersion).String(),
		asDriverVersion(vk.VendorId(pdProps.VendorID), pdProps.DriverVersion),
		asVendorName(vk.VendorId(pdProps.VendorID)),
		toStringDeviceType(pdProps.DeviceType),
		strBuilder.String(),
	)
}

func asVendorName(v vk.VendorId) string {
	switch v {
	case 0x1002:
		return "AMD"
	case 0x1010:
		return "ImgTec"
	case 0x10DE:
		return "NVIDIA"
	case 0x13B5:
		return "ARM"
	case 0x5143:
		return "Qualcomm"
	case 0x8086:
		return "INTEL"
	case 0x10005:
		return "Mesa"
	default:
		return "unknown"
	}
}

func asDriverVersion(vendor vk.VendorId, raw uint32) string {
	// Only nvidia packs the version differently
	if vendor == 0x10DE {
		return fmt.Sprintf("%d.%d.%d.%d", (raw>>22)&0x3ff, (raw>>14)&0x0ff, (raw>>6)&0x0ff, raw&0x003f)
	}
	return vk.Version(raw).String()
}

func toStringDeviceType(dt vk.PhysicalDeviceType) string {
	switch dt {
	case vk.PhysicalDeviceTypeOther:
		return "other"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated Gpu"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete Gpu"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual Gpu"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "unknown"
	}
}

func toStringQueueFamilyPropsTable(q vk.QueueFamilyProperties) string {
	return fmt.Sprintf("Count: %2d, Flags: %v", q.QueueCount, toStringQueueFlags(q.QueueFlags))
}

func toStringQueueFlags(bits vk.QueueFlags) []string {
	var properties []string
	flags := vk.QueueFlagBits(bits)
	if flags&vk.QueueGraphicsBit > 0 {
		properties = append(properties, "VK_QUEUE_GRAPHICS_BIT")
	}
	if flags&vk.QueueComputeBit > 0 {
		properties = append(properties, "VK_QUEUE_COMPUTE_BIT")
	}
	if flags&vk.QueueTransferBit > 0 {
		properties = append(properties, "VK_QUEUE_TRANSFER_BIT")
	}
	if flags&vk.QueueSparseBindingBit > 0 {
		properties = append(properties, "VK_QUEUE_SPARSE_BINDING_BIT")
	}
	return properties
}
