package frame

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

const (
	formatB8G8R8A8UNorm = 44
	formatB8G8R8A8SRGB  = 50
	colorSpaceSRGB      = 0

	alphaOpaque        CompositeAlpha = 0x1
	alphaPreMultiplied CompositeAlpha = 0x2
	alphaInherit       CompositeAlpha = 0x8

	usageColorAttachment = 0x10
	usageTransferDst     = 0x2

	transformIdentity = 0x1
)

func baseCapabilities() SurfaceCapabilities {
	return SurfaceCapabilities{
		MinImageCount:           2,
		MaxImageCount:           8,
		CurrentExtent:           Extent{Width: 800, Height: 600},
		MinImageExtent:          Extent{Width: 1, Height: 1},
		MaxImageExtent:          Extent{Width: 4096, Height: 4096},
		SupportedCompositeAlpha: alphaOpaque | alphaInherit,
		SupportedUsage:          usageColorAttachment | usageTransferDst,
		CurrentTransform:        transformIdentity,
		Formats: []SurfaceFormat{
			{Format: formatB8G8R8A8UNorm, ColorSpace: colorSpaceSRGB},
			{Format: formatB8G8R8A8SRGB, ColorSpace: colorSpaceSRGB},
		},
		PresentModes: []PresentMode{PresentModeMailbox, PresentModeFIFO},
	}
}

func TestChooseSwapchainUsesAdvertisedValues(t *testing.T) {
	c := qt.New(t)

	caps := baseCapabilities()
	config, err := ChooseSwapchain(caps, Extent{Width: 1280, Height: 1024})
	c.Assert(err, qt.IsNil)
	c.Assert(config, qt.DeepEquals, SwapchainConfig{
		ImageCount:     2,
		Format:         caps.Formats[0],
		Extent:         Extent{Width: 800, Height: 600},
		CompositeAlpha: alphaOpaque,
		Usage:          usageColorAttachment | usageTransferDst,
		PreTransform:   transformIdentity,
		PresentMode:    PresentModeFIFO,
	})
}

func TestChooseSwapchainLowestCompositeAlpha(t *testing.T) {
	c := qt.New(t)

	caps := baseCapabilities()
	caps.SupportedCompositeAlpha = alphaInherit | alphaPreMultiplied
	config, err := ChooseSwapchain(caps, Extent{})
	c.Assert(err, qt.IsNil)
	c.Assert(config.CompositeAlpha, qt.Equals, alphaPreMultiplied)
}

func TestChooseSwapchainExtentWithinBounds(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name     string
		fallback Extent
		want     Extent
	}{
		{"fits", Extent{Width: 1280, Height: 1024}, Extent{Width: 1280, Height: 1024}},
		{"too large", Extent{Width: 8000, Height: 1024}, Extent{Width: 2048, Height: 1024}},
		{"too small", Extent{Width: 0, Height: 10}, Extent{Width: 64, Height: 64}},
	}

	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			caps := baseCapabilities()
			caps.CurrentExtent = Extent{Width: -1, Height: -1}
			caps.MinImageExtent = Extent{Width: 64, Height: 64}
			caps.MaxImageExtent = Extent{Width: 2048, Height: 2048}

			config, err := ChooseSwapchain(caps, test.fallback)
			c.Assert(err, qt.IsNil)
			c.Assert(config.Extent, qt.Equals, test.want)
			c.Assert(config.Extent.Width >= caps.MinImageExtent.Width && config.Extent.Width <= caps.MaxImageExtent.Width, qt.IsTrue)
			c.Assert(config.Extent.Height >= caps.MinImageExtent.Height && config.Extent.Height <= caps.MaxImageExtent.Height, qt.IsTrue)
		})
	}
}

func TestChooseSwapchainFormatIsAdvertised(t *testing.T) {
	c := qt.New(t)

	caps := baseCapabilities()
	caps.Formats = []SurfaceFormat{{Format: formatB8G8R8A8SRGB, ColorSpace: colorSpaceSRGB}}
	config, err := ChooseSwapchain(caps, Extent{})
	c.Assert(err, qt.IsNil)
	c.Assert(config.Format, qt.Equals, caps.Formats[0])
}

func TestChooseSwapchainErrors(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name   string
		modify func(*SurfaceCapabilities)
		err    error
	}{{
		name:   "no formats",
		modify: func(caps *SurfaceCapabilities) { caps.Formats = nil },
		err:    ErrNoSurfaceFormat,
	}, {
		name:   "no composite alpha",
		modify: func(caps *SurfaceCapabilities) { caps.SupportedCompositeAlpha = 0 },
		err:    ErrNoCompositeAlpha,
	}, {
		name:   "no fifo",
		modify: func(caps *SurfaceCapabilities) { caps.PresentModes = []PresentMode{PresentModeImmediate} },
		err:    ErrNoFIFOPresentMode,
	}}

	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			caps := baseCapabilities()
			test.modify(&caps)
			_, err := ChooseSwapchain(caps, Extent{Width: 1280, Height: 1024})
			c.Assert(err, qt.ErrorIs, test.err)
		})
	}
}

func TestPresentModeString(t *testing.T) {
	c := qt.New(t)

	c.Assert(PresentModeFIFO.String(), qt.Equals, "fifo")
	c.Assert(PresentMode(42).String(), qt.Equals, "unknown")
}
