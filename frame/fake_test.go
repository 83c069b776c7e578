package frame

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// The fake backend executes recorded commands in memory, but only when the
// submission fence is waited on or the device is drained, so reads that skip
// the wait observe an unwritten buffer and are reported. Objects released
// while a submission is still pending are counted.

type fakeBackend struct {
	devices []PhysicalDevice
	err     error
}

func (b *fakeBackend) PhysicalDevices() ([]PhysicalDevice, error) {
	return b.devices, b.err
}

type fakePhysicalDevice struct {
	name      string
	families  []QueueFamily
	createErr error

	familyQueries int
	gotFamily     int
	gotPriority   float32
	gotExtensions []string
	device        *fakeDevice
}

func (p *fakePhysicalDevice) Name() string { return p.name }

func (p *fakePhysicalDevice) QueueFamilies() []QueueFamily {
	p.familyQueries++
	return p.families
}

func (p *fakePhysicalDevice) CreateDevice(queueFamily int, priority float32, extensions []string) (Device, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.gotFamily = queueFamily
	p.gotPriority = priority
	p.gotExtensions = extensions
	p.device = &fakeDevice{}
	return p.device, nil
}

type fakeDevice struct {
	mu        sync.Mutex
	live      int
	pending   []*fakeFence
	idleWaits int
	destroyed bool

	releasedWhilePending int
}

func (d *fakeDevice) track(delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live += delta
}

// release drops one live object, noting whether the queue was still busy.
func (d *fakeDevice) release() {
	busy := d.busy()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.live--
	if busy {
		d.releasedWhilePending++
	}
}

func (d *fakeDevice) busy() bool {
	d.mu.Lock()
	pending := append([]*fakeFence(nil), d.pending...)
	d.mu.Unlock()

	for _, fence := range pending {
		if !fence.signalled() {
			return true
		}
	}
	return false
}

func (d *fakeDevice) WaitIdle() error {
	d.mu.Lock()
	d.idleWaits++
	pending := append([]*fakeFence(nil), d.pending...)
	d.mu.Unlock()

	for _, fence := range pending {
		fence.run()
	}
	return nil
}

func (d *fakeDevice) liveObjects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

func (d *fakeDevice) CreateImage(extent Extent) (Image, error) {
	d.track(1)
	return &fakeImage{device: d, extent: extent, pixels: make([]byte, extent.Pixels()*4)}, nil
}

func (d *fakeDevice) CreateReadbackBuffer(size int) (Buffer, error) {
	d.track(1)
	return &fakeBuffer{device: d, data: make([]byte, size)}, nil
}

func (d *fakeDevice) RecordClearAndCopy(img Image, buf Buffer, clear Color) (CommandBuffer, error) {
	target := img.(*fakeImage)
	readback := buf.(*fakeBuffer)
	if len(readback.data) != len(target.pixels) {
		return nil, errors.Newf("copy of %d bytes into %d byte buffer", len(target.pixels), len(readback.data))
	}

	d.track(1)
	return &fakeCommandBuffer{
		device: d,
		dst:    readback,
		ops: []func(){
			func() {
				texel := [4]byte{unorm(clear[0]), unorm(clear[1]), unorm(clear[2]), unorm(clear[3])}
				for i := 0; i < len(target.pixels); i += 4 {
					copy(target.pixels[i:i+4], texel[:])
				}
			},
			func() {
				copy(readback.data, target.pixels)
			},
		},
	}, nil
}

func (d *fakeDevice) Submit(cmd CommandBuffer) (Fence, error) {
	commands := cmd.(*fakeCommandBuffer)
	fence := &fakeFence{device: d, ops: commands.ops}
	commands.dst.pending = fence

	d.mu.Lock()
	d.pending = append(d.pending, fence)
	d.live++
	d.mu.Unlock()
	return fence, nil
}

func (d *fakeDevice) Destroy() {
	d.destroyed = true
}

func unorm(v float32) byte {
	return byte(v*255 + 0.5)
}

type fakeImage struct {
	device *fakeDevice
	extent Extent
	pixels []byte
}

func (i *fakeImage) Extent() Extent { return i.extent }
func (i *fakeImage) Destroy()       { i.device.release() }

type fakeBuffer struct {
	device  *fakeDevice
	data    []byte
	pending *fakeFence
}

func (b *fakeBuffer) Size() int { return len(b.data) }

func (b *fakeBuffer) Read() ([]byte, error) {
	if b.pending != nil && !b.pending.signalled() {
		return nil, ErrUnsynchronizedRead
	}
	return append([]byte(nil), b.data...), nil
}

func (b *fakeBuffer) Destroy() { b.device.release() }

type fakeCommandBuffer struct {
	device *fakeDevice
	dst    *fakeBuffer
	ops    []func()
}

func (c *fakeCommandBuffer) Destroy() { c.device.release() }

type fakeFence struct {
	device *fakeDevice

	mu   sync.Mutex
	ops  []func()
	done bool
	err  error
	// hang keeps Wait from executing the ops; only a drain completes the fence.
	hang bool

	releasedEarly bool
}

func (f *fakeFence) Wait(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	if f.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f.run()
	return nil
}

func (f *fakeFence) run() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.done {
		for _, op := range f.ops {
			op()
		}
		f.done = true
	}
}

func (f *fakeFence) signalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

func (f *fakeFence) Destroy() {
	f.mu.Lock()
	if !f.done {
		f.releasedEarly = true
	}
	f.mu.Unlock()

	if f.device != nil {
		f.device.release()
	}
}
