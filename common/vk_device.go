package common

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/frame"
	"GPU_present_chain/swapchain"
	"GPU_present_chain/vkd"
)

var DEVICE_EXTENSIONS = []string{
	"VK_KHR_swapchain",
}

// Device represents the interfacing objects between the surface, the hardware running Vulkan and the rest of
// the rendering engine. It selects a GPU able to present to the surface and owns the logical device and the
// queue frames are rendered and presented on.
type Device struct {
	PhysicalDevice vk.PhysicalDevice
	PdProps        vk.PhysicalDeviceProperties
	QFamilies      QueueFamilyIndices

	D     vk.Device
	Queue *frame.DispatchQueue

	dispatch vkd.Dispatch
}

// NewDevice picks the first suitable physical device, preferring discrete GPUs, and creates the logical
// device on it. validationLayers are enabled on the device as well for older loaders.
func NewDevice(instance vk.Instance, surface *swapchain.Surface, dispatch vkd.Dispatch, validationLayers []string) (*Device, error) {
	dc := &Device{dispatch: dispatch}
	if err := dc.selectPhysicalDevice(instance, surface); err != nil {
		return nil, err
	}
	if err := dc.createLogicalDevice(validationLayers); err != nil {
		return nil, err
	}
	return dc, nil
}

// Dispatch bundles the device handles for the swapchain and frame packages.
func (dc *Device) Dispatch() vkd.Device {
	return vkd.Device{Physical: dc.PhysicalDevice, Logical: dc.D, Dispatch: dc.dispatch}
}

// WaitIdle blocks until the device finished all submitted work.
func (dc *Device) WaitIdle() error {
	return errors.Wrap(vkd.Check(vk.DeviceWaitIdle(dc.D), "vkDeviceWaitIdle"), "wait for device idle")
}

// Destroy all objects created by itself. It does not destroy the surface or instance provided for instantiation.
func (dc *Device) Destroy() {
	vk.DestroyDevice(dc.D, nil)
}

func (dc *Device) selectPhysicalDevice(in vk.Instance, su *swapchain.Surface) error {
	availableDevices, err := ReadPhysicalDevices(in)
	if err != nil {
		return err
	}
	var fallback vk.PhysicalDevice
	var fallbackFamilies *QueueFamilyIndices
	for i := range availableDevices {
		qf, ok := isDeviceSuitable(availableDevices[i], su)
		if !ok {
			continue
		}
		props := ReadPhysicalDeviceProperties(availableDevices[i])
		if props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			dc.use(availableDevices[i], qf, props)
			return nil
		}
		if fallback == nil {
			fallback, fallbackFamilies = availableDevices[i], qf
		}
	}
	if fallback == nil {
		return errors.New("no suitable physical device (GPU) found")
	}
	dc.use(fallback, fallbackFamilies, ReadPhysicalDeviceProperties(fallback))
	return nil
}

func (dc *Device) use(pd vk.PhysicalDevice, qf *QueueFamilyIndices, props vk.PhysicalDeviceProperties) {
	dc.PhysicalDevice = pd
	dc.QFamilies = *qf
	dc.PdProps = props
	log.Printf("Found suitable device: %s", vk.ToString(props.DeviceName[:]))
}

func isDeviceSuitable(pd vk.PhysicalDevice, su *swapchain.Surface) (*QueueFamilyIndices, bool) {
	pdProps := ReadPhysicalDeviceProperties(pd)
	pdQueueFams := ReadQueueFamilies(pd)
	log.Printf("Physical device\n%s", ToStringPhysicalDeviceTable(pdProps, pdQueueFams))

	indices, err := findQueueFamilies(pdQueueFams, func(family uint32) (bool, error) {
		return su.PresentationSupported(pd, family)
	})
	if err != nil {
		log.Printf("Failed to get required queue families: %v", err)
		return nil, false
	}
	// Frames are presented on the queue they were rendered on
	if !indices.isShared() {
		log.Printf("No queue family supports both graphics and presentation")
		return nil, false
	}
	if !checkDeviceExtensionSupport(pd, DEVICE_EXTENSIONS) {
		return nil, false
	}
	return indices, checkSwapChainAdequacy(pd, su)
}

func checkDeviceExtensionSupport(pd vk.PhysicalDevice, requiredDeviceExt []string) bool {
	supportedExtNames, err := ReadDeviceExtensionPropertyNames(pd)
	if err != nil {
		log.Printf("Failed to read device extensions: %v", err)
		return false
	}
	log.Printf("Required device extensions: %v", requiredDeviceExt)
	log.Printf("Available device extensions (%d) [...]\n", len(supportedExtNames))
	return AllOfAinB(requiredDeviceExt, supportedExtNames)
}

func checkSwapChainAdequacy(pd vk.PhysicalDevice, su *swapchain.Surface) bool {
	p, err := su.Properties(pd)()
	if err != nil {
		log.Printf("Failed to read surface properties: %v", err)
		return false
	}
	log.Printf("Surface properties:\n%s", TableStringSurfaceProperties(p))
	return len(p.Formats) > 0 && len(p.PresentModes) > 0
}

func (dc *Device) createLogicalDevice(validationLayers []string) error {
	queueInfos := dc.QFamilies.toQueueCreateInfos()
	deviceCreatInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(DEVICE_EXTENSIONS)),
		PpEnabledExtensionNames: TerminatedStrs(DEVICE_EXTENSIONS),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}
	if len(validationLayers) > 0 {
		deviceCreatInfo.EnabledLayerCount = uint32(len(validationLayers))
		deviceCreatInfo.PpEnabledLayerNames = TerminatedStrs(validationLayers)
	}

	var err error
	dc.D, err = VkCreateDevice(dc.PhysicalDevice, deviceCreatInfo, nil)
	if err != nil {
		return errors.Wrap(err, "create logical device")
	}
	q, err := VkGetDeviceQueue(dc.D, dc.QFamilies.GraphicsFamily, 0)
	if err != nil {
		vk.DestroyDevice(dc.D, nil)
		return errors.Wrap(err, "get 'graphics' device queue")
	}
	dc.Queue = frame.NewDispatchQueue(dc.dispatch, q, *dc.QFamilies.GraphicsFamily)
	log.Println("Successfully created logical device")
	return nil
}
