package vkr

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkframe/vkframe/frame"
)

type Swapchain struct {
	device *Device
	ext    khr_swapchain.ExtensionDriver
	handle khr_swapchain.Swapchain

	format core1_0.Format
	extent frame.Extent

	images []core1_0.Image
	views  []core1_0.ImageView
}

// CreateSwapchain creates a swapchain for surface from a configuration
// chosen by frame.ChooseSwapchain, along with a view of every image.
func (d *Device) CreateSwapchain(surface *Surface, config frame.SwapchainConfig) (*Swapchain, error) {
	ext := khr_swapchain.CreateExtensionDriverFromCoreDriver(d.driver)

	handle, _, err := ext.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: surface.handle,

		MinImageCount:    config.ImageCount,
		ImageFormat:      core1_0.Format(config.Format.Format),
		ImageColorSpace:  khr_surface.ColorSpace(config.Format.ColorSpace),
		ImageExtent:      core1_0.Extent2D{Width: config.Extent.Width, Height: config.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageFlags(config.Usage),

		ImageSharingMode: core1_0.SharingModeExclusive,

		PreTransform:   khr_surface.SurfaceTransformFlags(config.PreTransform),
		CompositeAlpha: khr_surface.CompositeAlphaFlags(config.CompositeAlpha),
		PresentMode:    khr_surface.PresentMode(config.PresentMode),
		Clipped:        true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create swapchain")
	}

	swapchain := &Swapchain{
		device: d,
		ext:    ext,
		handle: handle,
		format: core1_0.Format(config.Format.Format),
		extent: config.Extent,
	}

	swapchain.images, _, err = ext.GetSwapchainImages(handle)
	if err != nil {
		swapchain.Destroy()
		return nil, errors.Wrap(err, "get swapchain images")
	}

	for _, image := range swapchain.images {
		view, err := d.createImageView(image, swapchain.format)
		if err != nil {
			swapchain.Destroy()
			return nil, err
		}
		swapchain.views = append(swapchain.views, view)
	}

	log.WithFields(log.Fields{
		"images":  len(swapchain.images),
		"extent":  config.Extent,
		"format":  config.Format.Format,
		"present": config.PresentMode,
	}).Debug("swapchain created")

	return swapchain, nil
}

func (s *Swapchain) Extent() frame.Extent {
	return s.extent
}

func (s *Swapchain) Destroy() {
	for _, view := range s.views {
		s.device.driver.DestroyImageView(view, nil)
	}
	s.views = nil
	s.images = nil

	if s.handle.Initialized() {
		s.ext.DestroySwapchain(s.handle, nil)
		s.handle = khr_swapchain.Swapchain{}
	}
}
