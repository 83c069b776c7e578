package frame

import "context"

// Backend is the instance-level entry point of a graphics implementation.
type Backend interface {
	PhysicalDevices() ([]PhysicalDevice, error)
}

type PhysicalDevice interface {
	Name() string
	QueueFamilies() []QueueFamily
	// CreateDevice creates a logical device with one queue from queueFamily
	// and only the named device extensions enabled.
	CreateDevice(queueFamily int, priority float32, extensions []string) (Device, error)
}

// Device is a logical device together with the single queue it was created with.
type Device interface {
	// CreateImage allocates a device-local RGBA8 image usable as a transfer
	// source and destination.
	CreateImage(extent Extent) (Image, error)
	// CreateReadbackBuffer allocates a zero-filled host-visible buffer of
	// exactly size bytes usable as a transfer destination.
	CreateReadbackBuffer(size int) (Buffer, error)
	// RecordClearAndCopy records a command buffer that clears img to clear and
	// copies it into buf.
	RecordClearAndCopy(img Image, buf Buffer, clear Color) (CommandBuffer, error)
	// Submit submits cmd to the device queue and returns a fence that signals
	// once it has executed.
	Submit(cmd CommandBuffer) (Fence, error)
	// WaitIdle blocks until every submission on the queue has executed.
	WaitIdle() error
	Destroy()
}

type Image interface {
	Extent() Extent
	Destroy()
}

type Buffer interface {
	Size() int
	// Read returns a copy of the buffer contents. It must only be called after
	// the fence of the submission writing the buffer has been waited on.
	Read() ([]byte, error)
	Destroy()
}

type CommandBuffer interface {
	Destroy()
}

type Fence interface {
	// Wait blocks until the fence signals or ctx is done.
	Wait(ctx context.Context) error
	Destroy()
}
