package vkr

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"

	"github.com/vkframe/vkframe/frame"
)

type PhysicalDevice struct {
	instance *Instance
	handle   core1_0.PhysicalDevice
	name     string
}

func physicalDeviceFrom(p frame.PhysicalDevice) (*PhysicalDevice, error) {
	physical, ok := p.(*PhysicalDevice)
	if !ok {
		return nil, errors.Errorf("physical device %q does not belong to a vulkan instance", p.Name())
	}
	return physical, nil
}

func (p *PhysicalDevice) Name() string {
	return p.name
}

func (p *PhysicalDevice) QueueFamilies() []frame.QueueFamily {
	props := p.instance.driver.GetPhysicalDeviceQueueFamilyProperties(p.handle)

	families := make([]frame.QueueFamily, 0, len(props))
	for idx, family := range props {
		families = append(families, frame.QueueFamily{
			Index: idx,
			Count: family.QueueCount,
			Flags: queueFlags(family.QueueFlags),
		})
	}
	return families
}

func queueFlags(flags core1_0.QueueFlags) frame.QueueFlags {
	var result frame.QueueFlags
	if flags&core1_0.QueueGraphics != 0 {
		result |= frame.QueueGraphics
	}
	if flags&core1_0.QueueCompute != 0 {
		result |= frame.QueueCompute
	}
	if flags&core1_0.QueueTransfer != 0 {
		result |= frame.QueueTransfer
	}
	if flags&core1_0.QueueSparseBinding != 0 {
		result |= frame.QueueSparseBinding
	}
	return result
}

// CreateDevice creates a logical device with a single queue and no optional
// features. The portability subset extension is added when the device
// advertises it, as the API requires on portability implementations.
func (p *PhysicalDevice) CreateDevice(queueFamily int, priority float32, extensions []string) (frame.Device, error) {
	available, _, err := p.instance.driver.EnumerateDeviceExtensionProperties(p.handle)
	if err != nil {
		return nil, errors.Wrap(err, "query device extensions")
	}

	extensionNames := append([]string(nil), extensions...)
	for _, ext := range extensions {
		_, supported := available[ext]
		if !supported {
			return nil, errors.Errorf("device %q does not support %s", p.name, ext)
		}
	}

	_, supported := available[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	driver, _, err := p.instance.driver.CreateDevice(p.handle, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos: []core1_0.DeviceQueueCreateInfo{
			{
				QueueFamilyIndex: queueFamily,
				QueuePriorities:  []float32{priority},
			},
		},
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, err
	}

	device := &Device{
		physical:     p,
		driver:       driver,
		queue:        driver.GetQueue(queueFamily, 0),
		queueFamily:  queueFamily,
		fenceTimeout: p.instance.fenceTimeout,
	}

	device.commandPool, _, err = driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: queueFamily,
	})
	if err != nil {
		device.Destroy()
		return nil, errors.Wrap(err, "create command pool")
	}

	return device, nil
}
