package common

import (
	"log"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

var VALIDATION_LAYERS = []string{
	"VK_LAYER_KHRONOS_validation",
}

// InitVulkan finds and loads the Vulkan addresses through the loader entry point a windowing library
// provides, so driver level functions can be called.
func InitVulkan(getInstanceProcAddr unsafe.Pointer) error {
	if getInstanceProcAddr == nil {
		return errors.New("no vkGetInstanceProcAddr available, is a Vulkan loader installed?")
	}
	vk.SetGetInstanceProcAddr(getInstanceProcAddr)
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "initialize Vulkan API")
	}
	return nil
}

// InitDefaultVulkan loads the Vulkan addresses from the system loader, for windowing libraries without a
// loader entry point of their own.
func InitDefaultVulkan() error {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return errors.Wrap(err, "locate Vulkan loader")
	}
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "initialize Vulkan API")
	}
	return nil
}

// NewInstance creates a Vulkan instance enabling the extensions the platform needs to present.
// Validation layers are only enabled when validationLayers is not empty, and only if all of them are
// supported.
func NewInstance(p Platform, validationLayers []string) (vk.Instance, error) {
	requiredExtensions := p.RequiredInstanceExtensions()
	if err := checkInstanceExtensionSupport(requiredExtensions); err != nil {
		return nil, err
	}
	enableValidation := len(validationLayers) > 0
	if enableValidation {
		log.Printf("Validation enabled, checking layer support")
		if err := checkValidationLayerSupport(validationLayers); err != nil {
			return nil, err
		}
	}
	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PNext:              nil,
		PApplicationName:   TerminatedStr(APPLICATION_NAME),
		ApplicationVersion: vk.MakeVersion(APP_MAJOR, APP_MINOR, APP_PATCH),
		PEngineName:        TerminatedStr(ENGINE_NAME),
		EngineVersion:      vk.MakeVersion(ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH),
		ApiVersion:         vk.MakeVersion(VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH),
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		PApplicationInfo:        applicationInfo,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: TerminatedStrs(requiredExtensions),
	}
	if enableValidation {
		createInfo.EnabledLayerCount = uint32(len(validationLayers))
		createInfo.PpEnabledLayerNames = TerminatedStrs(validationLayers)
	}
	ins, err := VkCreateInstance(createInfo, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create vk instance")
	}
	log.Println("Successfully created vk instance")
	return ins, nil
}

func checkInstanceExtensionSupport(requiredInstanceExt []string) error {
	supportedExtNames, err := ReadInstanceExtensionPropertyNames()
	if err != nil {
		return err
	}
	log.Printf("Required instance extensions: %v", requiredInstanceExt)
	log.Printf("Available extensions (%d): %v", len(supportedExtNames), supportedExtNames)

	if missing := Missing(requiredInstanceExt, supportedExtNames); len(missing) > 0 {
		return errors.Newf("required instance extensions not supported: %v", missing)
	}
	log.Println("Success - All required instance extensions are supported")
	return nil
}

func checkValidationLayerSupport(requiredLayers []string) error {
	supportedLayerNames, err := ReadInstanceLayerPropertyNames()
	if err != nil {
		return err
	}
	log.Printf("Desired validation layers: %v", requiredLayers)
	log.Printf("Supported layers (%d): %v", len(supportedLayerNames), supportedLayerNames)

	if missing := Missing(requiredLayers, supportedLayerNames); len(missing) > 0 {
		return errors.Newf("validation layers not supported: %v", missing)
	}
	log.Println("Success - All desired validation layers are supported")
	return nil
}
