package frame

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// KnownInstanceExtensions are reported by DumpInfo whether or not the
// implementation supports them.
var KnownInstanceExtensions = []string{
	"VK_KHR_surface",
	"VK_KHR_display",
	"VK_KHR_xlib_surface",
	"VK_KHR_xcb_surface",
	"VK_KHR_wayland_surface",
	"VK_KHR_android_surface",
	"VK_KHR_win32_surface",
	"VK_EXT_debug_report",
	"VK_EXT_debug_utils",
	"VK_MVK_ios_surface",
	"VK_MVK_macos_surface",
	"VK_EXT_metal_surface",
	"VK_NN_vi_surface",
	"VK_EXT_swapchain_colorspace",
	"VK_KHR_get_physical_device_properties2",
	"VK_KHR_portability_enumeration",
}

var KnownDeviceExtensions = []string{
	"VK_KHR_swapchain",
	"VK_KHR_display_swapchain",
	"VK_KHR_sampler_mirror_clamp_to_edge",
	"VK_KHR_maintenance1",
	"VK_KHR_get_memory_requirements2",
	"VK_KHR_dedicated_allocation",
	"VK_KHR_incremental_present",
	"VK_EXT_debug_marker",
	"VK_KHR_portability_subset",
}

type LayerInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PhysicalDeviceInfo struct {
	Name              string        `json:"name"`
	Type              string        `json:"type"`
	APIVersion        string        `json:"apiVersion"`
	DriverVersion     string        `json:"driverVersion"`
	VendorID          uint32        `json:"vendorID"`
	DeviceID          uint32        `json:"deviceID"`
	PipelineCacheUUID uuid.UUID     `json:"pipelineCacheUUID"`
	Features          []string      `json:"features"`
	QueueFamilies     []QueueFamily `json:"queueFamilies"`
	MemoryTypes       []MemoryType  `json:"memoryTypes"`
	MemoryHeaps       []MemoryHeap  `json:"memoryHeaps"`
	Limits            ImageLimits   `json:"limits"`
	Extensions        []string      `json:"extensions"`
}

// Inspector answers read-only capability queries about an instance and its
// physical devices.
type Inspector interface {
	InstanceExtensions() ([]string, error)
	Layers() ([]LayerInfo, error)
	PhysicalDeviceInfo() ([]PhysicalDeviceInfo, error)
}

// Info is a snapshot of everything DumpInfo reports.
type Info struct {
	InstanceExtensions map[string]bool      `json:"instanceExtensions"`
	Layers             []LayerInfo          `json:"layers"`
	Devices            []PhysicalDeviceInfo `json:"devices"`
}

func CollectInfo(inspector Inspector) (*Info, error) {
	extensions, err := inspector.InstanceExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "query instance extensions")
	}

	layers, err := inspector.Layers()
	if err != nil {
		return nil, errors.Wrap(err, "query layers")
	}

	devices, err := inspector.PhysicalDeviceInfo()
	if err != nil {
		return nil, errors.Wrap(err, "query physical devices")
	}

	return &Info{
		InstanceExtensions: supported(KnownInstanceExtensions, extensions),
		Layers:             layers,
		Devices:            devices,
	}, nil
}

func supported(known, available []string) map[string]bool {
	set := make(map[string]bool, len(available))
	for _, name := range available {
		set[name] = true
	}

	result := make(map[string]bool, len(known))
	for _, name := range known {
		result[name] = set[name]
	}
	return result
}

// DumpInfo writes a human-readable report of instance extensions, layers and
// every physical device to w.
func DumpInfo(w io.Writer, inspector Inspector) error {
	info, err := CollectInfo(inspector)
	if err != nil {
		return err
	}

	p := &printer{w: w}
	p.printf("Instance extensions:\n")
	p.printf("%s\n\n", flagList(KnownInstanceExtensions, info.InstanceExtensions))

	p.printf("Available layers:\n")
	for _, layer := range info.Layers {
		p.printf("%s : %s\n", layer.Name, layer.Description)
	}
	p.printf("\n")

	for _, device := range info.Devices {
		printDevice(p, device)
	}
	return p.err
}

// DumpInfoJSON writes the same report as DumpInfo as indented JSON.
func DumpInfoJSON(w io.Writer, inspector Inspector) error {
	info, err := CollectInfo(inspector)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(info), "encode device info")
}

func printDevice(p *printer, device PhysicalDeviceInfo) {
	p.printf("Device Info: Name:%s Type:%s\n", device.Name, device.Type)
	p.printf("Api: %s Driver: %s\n", device.APIVersion, device.DriverVersion)
	p.printf("Vendor: %#04x Device: %#04x Pipeline cache: %s\n", device.VendorID, device.DeviceID, device.PipelineCacheUUID)

	p.printf("Supported Features:\n")
	p.printf("%s\n", strings.Join(device.Features, " "))

	p.printf("Queue families:\n")
	for _, family := range device.QueueFamilies {
		p.printf("queue %d: count: %d graphics:%t compute:%t transfers:%t sparse_bind:%t\n",
			family.Index, family.Count, family.Graphics(), family.Compute(), family.Transfer(), family.SparseBinding())
	}

	for _, memType := range device.MemoryTypes {
		p.printf("memtype %d: local:%t, host_visible: %t, host_coherent: %t, host_cached: %t, lazily_allocated: %t\n",
			memType.Index,
			memType.Flags&MemoryDeviceLocal != 0,
			memType.Flags&MemoryHostVisible != 0,
			memType.Flags&MemoryHostCoherent != 0,
			memType.Flags&MemoryHostCached != 0,
			memType.Flags&MemoryLazilyAllocated != 0)
	}

	for _, heap := range device.MemoryHeaps {
		p.printf("memheap %d: size: %d, local: %t\n", heap.Index, heap.Size, heap.DeviceLocal)
	}

	p.printf("Limits:\n")
	p.printf("max_image_dimension_1d: %d\n", device.Limits.MaxImageDimension1D)
	p.printf("max_image_dimension_2d: %d\n", device.Limits.MaxImageDimension2D)
	p.printf("max_image_dimension_3d: %d\n", device.Limits.MaxImageDimension3D)
	p.printf("max_image_dimension_cube: %d\n", device.Limits.MaxImageDimensionCube)

	p.printf("Device extensions:\n")
	p.printf("%s\n\n", flagList(KnownDeviceExtensions, supported(KnownDeviceExtensions, device.Extensions)))
}

func flagList(known []string, flags map[string]bool) string {
	names := append([]string(nil), known...)
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %t", name, flags[name]))
	}
	return strings.Join(parts, " ")
}

// printer remembers the first write error so the dump can be written
// without checking every line.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
