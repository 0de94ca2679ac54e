package common

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd"
)

// Read operations that require duplicated function calls, allocations and dereferencing. It is pulled out to
// provide a more go-lang feel and tidy the core code.

// ReadInstanceExtensionPropertyNames is a convenience method obfuscating the API defined []vk.ExtensionProperties
// type in favor of their respective names in order to simplify support checks to a point of string comparisons.
func ReadInstanceExtensionPropertyNames() ([]string, error) {
	var count uint32
	if err := vkd.Check(vk.EnumerateInstanceExtensionProperties("", &count, nil), "vkEnumerateInstanceExtensionProperties"); err != nil {
		return nil, errors.Wrap(err, "read number of instance extension properties")
	}
	props := make([]vk.ExtensionProperties, count)
	if err := vkd.Check(vk.EnumerateInstanceExtensionProperties("", &count, props), "vkEnumerateInstanceExtensionProperties"); err != nil {
		return nil, errors.Wrapf(err, "read %d instance extension properties", count)
	}
	return extensionNames(props[:count]), nil
}

// ReadInstanceLayerPropertyNames does the same as ReadInstanceExtensionPropertyNames for (validation) layers.
func ReadInstanceLayerPropertyNames() ([]string, error) {
	var count uint32
	if err := vkd.Check(vk.EnumerateInstanceLayerProperties(&count, nil), "vkEnumerateInstanceLayerProperties"); err != nil {
		return nil, errors.Wrap(err, "read number of instance layer properties")
	}
	layers := make([]vk.LayerProperties, count)
	if err := vkd.Check(vk.EnumerateInstanceLayerProperties(&count, layers), "vkEnumerateInstanceLayerProperties"); err != nil {
		return nil, errors.Wrapf(err, "read %d instance layer properties", count)
	}
	names := make([]string, count)
	for i := range layers[:count] {
		layers[i].Deref()
		names[i] = vk.ToString(layers[i].LayerName[:])
	}
	return names, nil
}

func ReadDeviceExtensionPropertyNames(pd vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := vkd.Check(vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil), "vkEnumerateDeviceExtensionProperties"); err != nil {
		return nil, errors.Wrap(err, "read number of device extension properties")
	}
	props := make([]vk.ExtensionProperties, count)
	if err := vkd.Check(vk.EnumerateDeviceExtensionProperties(pd, "", &count, props), "vkEnumerateDeviceExtensionProperties"); err != nil {
		return nil, errors.Wrapf(err, "read %d device extension properties", count)
	}
	return extensionNames(props[:count]), nil
}

func extensionNames(props []vk.ExtensionProperties) []string {
	names := make([]string, len(props))
	for i := range props {
		props[i].Deref()
		names[i] = vk.ToString(props[i].ExtensionName[:])
	}
	return names
}

func ReadPhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var gpuCount uint32
	if err := vkd.Check(vk.EnumeratePhysicalDevices(instance, &gpuCount, nil), "vkEnumeratePhysicalDevices"); err != nil {
		return nil, errors.Wrap(err, "read number of physical devices")
	}
	if gpuCount == 0 {
		return nil, errors.New("there are 0 physical devices available")
	}
	physDevices := make([]vk.PhysicalDevice, gpuCount)
	if err := vkd.Check(vk.EnumeratePhysicalDevices(instance, &gpuCount, physDevices), "vkEnumeratePhysicalDevices"); err != nil {
		return nil, errors.Wrapf(err, "read %d physical devices", gpuCount)
	}
	return physDevices[:gpuCount], nil
}

func ReadPhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var pdProps vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &pdProps)
	pdProps.Deref()
	return pdProps
}

func ReadQueueFamilies(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	qFamilyCount := uint32(0)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &qFamilyCount, nil)
	qFamilyProps := make([]vk.QueueFamilyProperties, qFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &qFamilyCount, qFamilyProps)
	for i := range qFamilyProps {
		qFamilyProps[i].Deref()
		qFamilyProps[i].MinImageTransferGranularity.Deref()
	}
	return qFamilyProps
}
