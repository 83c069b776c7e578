package frame

import "github.com/cockroachdb/errors"

var (
	ErrNoPhysicalDevice   = errors.New("no physical device available")
	ErrNoGraphicsQueue    = errors.New("no queue family supports graphics")
	ErrPresentUnsupported = errors.New("queue family cannot present to surface")
	ErrNoSurfaceFormat    = errors.New("surface advertises no formats")
	ErrNoCompositeAlpha   = errors.New("surface advertises no composite alpha modes")
	ErrNoFIFOPresentMode  = errors.New("surface does not advertise FIFO presentation")

	// ErrUnsynchronizedRead is returned when a readback buffer is read before
	// the fence guarding the copy into it has signalled.
	ErrUnsynchronizedRead = errors.New("buffer read before its fence signalled")

	// ErrSwapchainOutOfDate marks a present that the surface rejected as out of
	// date or suboptimal. It is recoverable by recreating the swapchain.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")

	ErrBufferSize             = errors.New("readback buffer size mismatch")
	ErrUnsupportedImageFormat = errors.New("unsupported output image format")
)
