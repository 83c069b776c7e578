package frame

import (
	"fmt"
	"time"
)

const (
	// QueuePriority is the priority of the single queue requested from the chosen family.
	QueuePriority float32 = 0.5

	// FenceTimeout bounds a single fence wait call. Waits are retried until
	// the fence signals.
	FenceTimeout = 100 * time.Millisecond
)

// OffscreenExtent is the fixed size of the offscreen render target.
var OffscreenExtent = Extent{Width: 1024, Height: 1024}

// ClearBlue is the opaque blue every frame is cleared to.
var ClearBlue = Color{0, 0, 1, 1}

type Extent struct {
	Width  int
	Height int
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Pixels is the number of texels covered by e.
func (e Extent) Pixels() int {
	return e.Width * e.Height
}

// Color is an RGBA clear color with components in [0, 1].
type Color [4]float32

type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 1 << iota
	QueueCompute
	QueueTransfer
	QueueSparseBinding
)

type QueueFamily struct {
	Index int        `json:"index"`
	Count int        `json:"count"`
	Flags QueueFlags `json:"flags"`
}

func (f QueueFamily) Graphics() bool      { return f.Flags&QueueGraphics != 0 }
func (f QueueFamily) Compute() bool       { return f.Flags&QueueCompute != 0 }
func (f QueueFamily) Transfer() bool      { return f.Flags&QueueTransfer != 0 }
func (f QueueFamily) SparseBinding() bool { return f.Flags&QueueSparseBinding != 0 }

type MemoryPropertyFlags uint32

const (
	MemoryDeviceLocal MemoryPropertyFlags = 1 << iota
	MemoryHostVisible
	MemoryHostCoherent
	MemoryHostCached
	MemoryLazilyAllocated
)

type MemoryType struct {
	Index     int                 `json:"index"`
	HeapIndex int                 `json:"heapIndex"`
	Flags     MemoryPropertyFlags `json:"flags"`
}

type MemoryHeap struct {
	Index       int  `json:"index"`
	Size        int  `json:"size"`
	DeviceLocal bool `json:"deviceLocal"`
}

// ImageLimits holds the maximum image dimensions a device reports.
type ImageLimits struct {
	MaxImageDimension1D   int `json:"maxImageDimension1D"`
	MaxImageDimension2D   int `json:"maxImageDimension2D"`
	MaxImageDimension3D   int `json:"maxImageDimension3D"`
	MaxImageDimensionCube int `json:"maxImageDimensionCube"`
}
