// Package vkr implements the frame backend on Vulkan through vkngwrapper.
package vkr

import (
	"time"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/vkframe/vkframe/frame"
)

const ValidationLayer = "VK_LAYER_KHRONOS_validation"

type InstanceOptions struct {
	ApplicationName string
	// Extensions must all be available; instance creation fails otherwise.
	Extensions []string
	Validation bool
	// FenceTimeout bounds each fence wait call. Waits are retried until the
	// fence signals or the context is done.
	FenceTimeout time.Duration
}

type Instance struct {
	global core1_0.GlobalDriver
	driver core1_0.CoreInstanceDriver

	debug     ext_debug_utils.ExtensionDriver
	messenger ext_debug_utils.DebugUtilsMessenger

	surfaceExt khr_surface.ExtensionDriver

	fenceTimeout time.Duration
}

// SystemDriver loads the Vulkan loader installed on the system. Windowed
// programs use the loader SDL opened instead, see Window.GlobalDriver.
func SystemDriver() (core1_0.GlobalDriver, error) {
	driver, err := core.CreateSystemDriver()
	return driver, errors.Wrap(err, "load vulkan")
}

func NewInstance(global core1_0.GlobalDriver, opts InstanceOptions) (*Instance, error) {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    opts.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	extensions, _, err := global.AvailableExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "query instance extensions")
	}

	for _, ext := range opts.Extensions {
		_, hasExt := extensions[ext]
		if !hasExt {
			return nil, errors.Errorf("create instance: missing extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if opts.Validation {
		layers, _, err := global.AvailableLayers()
		if err != nil {
			return nil, errors.Wrap(err, "query layers")
		}
		_, hasValidation := layers[ValidationLayer]
		if !hasValidation {
			return nil, errors.Errorf("create instance: validation layer %s not available, install the LunarG Vulkan SDK", ValidationLayer)
		}
		_, hasDebugUtils := extensions[ext_debug_utils.ExtensionName]
		if !hasDebugUtils {
			return nil, errors.Errorf("create instance: missing extension %s", ext_debug_utils.ExtensionName)
		}

		instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, ValidationLayer)
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)
		instanceOptions.Next = debugMessengerOptions()
	}

	driver, _, err := global.CreateInstance(nil, instanceOptions)
	if err != nil {
		return nil, errors.Wrap(err, "create instance")
	}

	instance := &Instance{
		global:       global,
		driver:       driver,
		fenceTimeout: opts.FenceTimeout,
	}
	if instance.fenceTimeout <= 0 {
		instance.fenceTimeout = frame.FenceTimeout
	}

	if opts.Validation {
		instance.debug = ext_debug_utils.CreateExtensionDriverFromCoreDriver(driver)
		instance.messenger, _, err = instance.debug.CreateDebugUtilsMessenger(nil, debugMessengerOptions())
		if err != nil {
			instance.Destroy()
			return nil, errors.Wrap(err, "create debug messenger")
		}
	}

	log.WithFields(log.Fields{
		"extensions": instanceOptions.EnabledExtensionNames,
		"layers":     instanceOptions.EnabledLayerNames,
	}).Debug("instance created")

	return instance, nil
}

// PhysicalDevices lists the physical devices in enumeration order.
func (i *Instance) PhysicalDevices() ([]frame.PhysicalDevice, error) {
	handles, _, err := i.driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, err
	}

	devices := make([]frame.PhysicalDevice, 0, len(handles))
	for _, handle := range handles {
		properties, err := i.driver.GetPhysicalDeviceProperties(handle)
		if err != nil {
			return nil, errors.Wrap(err, "query physical device properties")
		}
		devices = append(devices, &PhysicalDevice{
			instance: i,
			handle:   handle,
			name:     properties.DriverName,
		})
	}
	return devices, nil
}

func (i *Instance) Destroy() {
	if i.messenger.Initialized() {
		i.debug.DestroyDebugUtilsMessenger(i.messenger, nil)
		i.messenger = ext_debug_utils.DebugUtilsMessenger{}
	}

	if i.driver != nil {
		i.driver.DestroyInstance(nil)
		i.driver = nil
	}
}
