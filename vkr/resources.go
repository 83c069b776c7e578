package vkr

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkframe/vkframe/frame"
)

type Image struct {
	device *Device
	handle core1_0.Image
	memory core1_0.DeviceMemory
	extent frame.Extent
}

func (i *Image) Extent() frame.Extent {
	return i.extent
}

func (i *Image) Destroy() {
	if !i.handle.Initialized() {
		return
	}
	i.device.driver.DestroyImage(i.handle, nil)
	i.device.driver.FreeMemory(i.memory, nil)
	i.handle = core1_0.Image{}
}

type Buffer struct {
	device *Device
	handle core1_0.Buffer
	memory core1_0.DeviceMemory
	size   int
}

func (b *Buffer) Size() int {
	return b.size
}

func (b *Buffer) Read() ([]byte, error) {
	data, err := readData(b.device.driver, b.memory, b.size)
	return data, errors.Wrap(err, "map readback buffer")
}

func (b *Buffer) Destroy() {
	if !b.handle.Initialized() {
		return
	}
	b.device.driver.DestroyBuffer(b.handle, nil)
	b.device.driver.FreeMemory(b.memory, nil)
	b.handle = core1_0.Buffer{}
}

type CommandBuffer struct {
	device *Device
	handle core1_0.CommandBuffer
}

func (c *CommandBuffer) Destroy() {
	if !c.handle.Initialized() {
		return
	}
	c.device.driver.FreeCommandBuffers(c.handle)
	c.handle = core1_0.CommandBuffer{}
}

type Fence struct {
	device *Device
	handle core1_0.Fence
}

// Wait polls the fence in fenceTimeout slices so a cancelled context is
// noticed between slices.
func (f *Fence) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := f.device.driver.WaitForFences(true, f.device.fenceTimeout, f.handle)
		if err != nil {
			return errors.Wrap(err, "wait for fence")
		}
		if res != core1_0.VKTimeout {
			return nil
		}
	}
}

func (f *Fence) Destroy() {
	if f == nil || !f.handle.Initialized() {
		return
	}
	f.device.driver.DestroyFence(f.handle, nil)
	f.handle = core1_0.Fence{}
}
