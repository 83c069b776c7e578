package vkr

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/vkframe/vkframe/frame"
)

type Surface struct {
	instance *Instance
	handle   khr_surface.Surface
}

func (i *Instance) CreateSurface(window *Window) (*Surface, error) {
	if i.surfaceExt == nil {
		i.surfaceExt = khr_surface.CreateExtensionDriverFromCoreDriver(i.driver)
	}

	handle, err := vkng_sdl2.CreateSurface(i.driver.Instance(), i.surfaceExt, window.handle)
	if err != nil {
		return nil, errors.Wrap(err, "create surface")
	}
	return &Surface{instance: i, handle: handle}, nil
}

// SupportsPresent reports whether queueFamily of the physical device can
// present to the surface.
func (s *Surface) SupportsPresent(device frame.PhysicalDevice, queueFamily int) (bool, error) {
	physical, err := physicalDeviceFrom(device)
	if err != nil {
		return false, err
	}

	supported, _, err := s.instance.surfaceExt.GetPhysicalDeviceSurfaceSupport(s.handle, physical.handle, queueFamily)
	return supported, errors.Wrap(err, "query present support")
}

func (s *Surface) Capabilities(device frame.PhysicalDevice) (frame.SurfaceCapabilities, error) {
	physical, err := physicalDeviceFrom(device)
	if err != nil {
		return frame.SurfaceCapabilities{}, err
	}
	ext := s.instance.surfaceExt

	capabilities, _, err := ext.GetPhysicalDeviceSurfaceCapabilities(s.handle, physical.handle)
	if err != nil {
		return frame.SurfaceCapabilities{}, errors.Wrap(err, "query surface capabilities")
	}

	formats, _, err := ext.GetPhysicalDeviceSurfaceFormats(s.handle, physical.handle)
	if err != nil {
		return frame.SurfaceCapabilities{}, errors.Wrap(err, "query surface formats")
	}

	presentModes, _, err := ext.GetPhysicalDeviceSurfacePresentModes(s.handle, physical.handle)
	if err != nil {
		return frame.SurfaceCapabilities{}, errors.Wrap(err, "query present modes")
	}

	caps := frame.SurfaceCapabilities{
		MinImageCount: capabilities.MinImageCount,
		MaxImageCount: capabilities.MaxImageCount,
		CurrentExtent: frame.Extent{
			Width:  capabilities.CurrentExtent.Width,
			Height: capabilities.CurrentExtent.Height,
		},
		MinImageExtent: frame.Extent{
			Width:  capabilities.MinImageExtent.Width,
			Height: capabilities.MinImageExtent.Height,
		},
		MaxImageExtent: frame.Extent{
			Width:  capabilities.MaxImageExtent.Width,
			Height: capabilities.MaxImageExtent.Height,
		},
		SupportedCompositeAlpha: frame.CompositeAlpha(capabilities.SupportedCompositeAlpha),
		SupportedUsage:          uint32(capabilities.SupportedUsageFlags),
		CurrentTransform:        uint32(capabilities.CurrentTransform),
	}
	for _, format := range formats {
		caps.Formats = append(caps.Formats, frame.SurfaceFormat{
			Format:     int32(format.Format),
			ColorSpace: int32(format.ColorSpace),
		})
	}
	for _, mode := range presentModes {
		caps.PresentModes = append(caps.PresentModes, frame.PresentMode(mode))
	}
	return caps, nil
}

func (s *Surface) Destroy() {
	if !s.handle.Initialized() {
		return
	}
	s.instance.surfaceExt.DestroySurface(s.handle, nil)
	s.handle = khr_surface.Surface{}
}
