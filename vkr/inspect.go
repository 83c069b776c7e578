package vkr

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkframe/vkframe/frame"
)

func (i *Instance) InstanceExtensions() ([]string, error) {
	extensions, _, err := i.global.AvailableExtensions()
	if err != nil {
		return nil, err
	}
	return sortedKeys(extensions), nil
}

func (i *Instance) Layers() ([]frame.LayerInfo, error) {
	layers, _, err := i.global.AvailableLayers()
	if err != nil {
		return nil, err
	}

	infos := make([]frame.LayerInfo, 0, len(layers))
	for _, name := range sortedKeys(layers) {
		infos = append(infos, frame.LayerInfo{
			Name:        name,
			Description: layers[name].Description,
		})
	}
	return infos, nil
}

func (i *Instance) PhysicalDeviceInfo() ([]frame.PhysicalDeviceInfo, error) {
	handles, _, err := i.driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, err
	}

	infos := make([]frame.PhysicalDeviceInfo, 0, len(handles))
	for _, handle := range handles {
		info, err := i.describe(handle)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (i *Instance) describe(handle core1_0.PhysicalDevice) (frame.PhysicalDeviceInfo, error) {
	properties, err := i.driver.GetPhysicalDeviceProperties(handle)
	if err != nil {
		return frame.PhysicalDeviceInfo{}, errors.Wrap(err, "query physical device properties")
	}

	extensions, _, err := i.driver.EnumerateDeviceExtensionProperties(handle)
	if err != nil {
		return frame.PhysicalDeviceInfo{}, errors.Wrapf(err, "query extensions of %q", properties.DriverName)
	}

	physical := &PhysicalDevice{instance: i, handle: handle, name: properties.DriverName}
	info := frame.PhysicalDeviceInfo{
		Name:              properties.DriverName,
		Type:              fmt.Sprint(properties.DriverType),
		APIVersion:        fmt.Sprint(properties.APIVersion),
		DriverVersion:     fmt.Sprint(properties.DriverVersion),
		VendorID:          properties.VendorID,
		DeviceID:          properties.DeviceID,
		PipelineCacheUUID: properties.PipelineCacheUUID,
		Features:          enabledFeatures(i.driver.GetPhysicalDeviceFeatures(handle)),
		QueueFamilies:     physical.QueueFamilies(),
		Limits: frame.ImageLimits{
			MaxImageDimension1D:   properties.Limits.MaxImageDimension1D,
			MaxImageDimension2D:   properties.Limits.MaxImageDimension2D,
			MaxImageDimension3D:   properties.Limits.MaxImageDimension3D,
			MaxImageDimensionCube: properties.Limits.MaxImageDimensionCube,
		},
		Extensions: sortedKeys(extensions),
	}

	memory := i.driver.GetPhysicalDeviceMemoryProperties(handle)
	for idx, memoryType := range memory.MemoryTypes {
		info.MemoryTypes = append(info.MemoryTypes, frame.MemoryType{
			Index:     idx,
			HeapIndex: memoryType.HeapIndex,
			Flags:     memoryFlags(memoryType.PropertyFlags),
		})
	}
	for idx, heap := range memory.MemoryHeaps {
		info.MemoryHeaps = append(info.MemoryHeaps, frame.MemoryHeap{
			Index:       idx,
			Size:        heap.Size,
			DeviceLocal: heap.Flags&core1_0.MemoryHeapDeviceLocal != 0,
		})
	}

	return info, nil
}

func memoryFlags(flags core1_0.MemoryPropertyFlags) frame.MemoryPropertyFlags {
	var result frame.MemoryPropertyFlags
	if flags&core1_0.MemoryPropertyDeviceLocal != 0 {
		result |= frame.MemoryDeviceLocal
	}
	if flags&core1_0.MemoryPropertyHostVisible != 0 {
		result |= frame.MemoryHostVisible
	}
	if flags&core1_0.MemoryPropertyHostCoherent != 0 {
		result |= frame.MemoryHostCoherent
	}
	if flags&core1_0.MemoryPropertyHostCached != 0 {
		result |= frame.MemoryHostCached
	}
	if flags&core1_0.MemoryPropertyLazilyAllocated != 0 {
		result |= frame.MemoryLazilyAllocated
	}
	return result
}

// enabledFeatures lists the names of the boolean feature fields that are set.
func enabledFeatures(features any) []string {
	value := reflect.Indirect(reflect.ValueOf(features))
	if value.Kind() != reflect.Struct {
		return nil
	}

	var names []string
	for idx := 0; idx < value.NumField(); idx++ {
		field := value.Field(idx)
		if field.Kind() == reflect.Bool && field.Bool() {
			names = append(names, value.Type().Field(idx).Name)
		}
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
