package frame

import (
	"math/bits"

	"github.com/cockroachdb/errors"
)

// PresentMode values match the Vulkan enumeration.
type PresentMode int

const (
	PresentModeImmediate PresentMode = iota
	PresentModeMailbox
	PresentModeFIFO
	PresentModeFIFORelaxed
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFIFO:
		return "fifo"
	case PresentModeFIFORelaxed:
		return "fifo-relaxed"
	}
	return "unknown"
}

// CompositeAlpha is a bitmask of composite alpha modes, bit-compatible with
// VkCompositeAlphaFlagsKHR.
type CompositeAlpha uint32

type SurfaceFormat struct {
	Format     int32
	ColorSpace int32
}

// SurfaceCapabilities is what a surface advertises for one physical device.
// A CurrentExtent with negative width means the surface size is decided by
// the swapchain.
type SurfaceCapabilities struct {
	MinImageCount           int
	MaxImageCount           int
	CurrentExtent           Extent
	MinImageExtent          Extent
	MaxImageExtent          Extent
	SupportedCompositeAlpha CompositeAlpha
	SupportedUsage          uint32
	CurrentTransform        uint32

	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

type SwapchainConfig struct {
	ImageCount     int
	Format         SurfaceFormat
	Extent         Extent
	CompositeAlpha CompositeAlpha
	Usage          uint32
	PreTransform   uint32
	PresentMode    PresentMode
}

// ChooseSwapchain derives a swapchain configuration from surface
// capabilities. Every field is taken from what the surface advertises; the
// fallback extent is only used, clamped, when the surface has no fixed size.
func ChooseSwapchain(caps SurfaceCapabilities, fallback Extent) (SwapchainConfig, error) {
	if len(caps.Formats) == 0 {
		return SwapchainConfig{}, ErrNoSurfaceFormat
	}
	if caps.SupportedCompositeAlpha == 0 {
		return SwapchainConfig{}, ErrNoCompositeAlpha
	}

	presentMode := PresentModeFIFO
	if len(caps.PresentModes) > 0 && !hasPresentMode(caps.PresentModes, PresentModeFIFO) {
		return SwapchainConfig{}, errors.Wrapf(ErrNoFIFOPresentMode, "advertised %v", caps.PresentModes)
	}

	return SwapchainConfig{
		ImageCount:     caps.MinImageCount,
		Format:         caps.Formats[0],
		Extent:         chooseExtent(caps, fallback),
		CompositeAlpha: lowestAlpha(caps.SupportedCompositeAlpha),
		Usage:          caps.SupportedUsage,
		PreTransform:   caps.CurrentTransform,
		PresentMode:    presentMode,
	}, nil
}

func hasPresentMode(modes []PresentMode, want PresentMode) bool {
	for _, mode := range modes {
		if mode == want {
			return true
		}
	}
	return false
}

func lowestAlpha(supported CompositeAlpha) CompositeAlpha {
	return CompositeAlpha(1) << bits.TrailingZeros32(uint32(supported))
}

func chooseExtent(caps SurfaceCapabilities, fallback Extent) Extent {
	if caps.CurrentExtent.Width >= 0 {
		return caps.CurrentExtent
	}

	return Extent{
		Width:  clamp(fallback.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(fallback.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
