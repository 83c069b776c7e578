package vkr

import (
	"bytes"
	"encoding/binary"
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkframe/vkframe/frame"
)

// OffscreenFormat is the format of offscreen render targets: 8-bit RGBA,
// laid out in memory as the image.RGBA pixel buffer expects.
const OffscreenFormat = core1_0.FormatR8G8B8A8UnsignedNormalized

type Device struct {
	physical *PhysicalDevice
	driver   core1_0.CoreDeviceDriver

	queue       core1_0.Queue
	queueFamily int
	commandPool core1_0.CommandPool

	fenceTimeout time.Duration
}

// DeviceFrom returns the Vulkan device behind a device context.
func DeviceFrom(ctx *frame.DeviceContext) (*Device, error) {
	device, ok := ctx.Device.(*Device)
	if !ok {
		return nil, errors.New("device context does not hold a vulkan device")
	}
	return device, nil
}

func (d *Device) CreateImage(extent frame.Extent) (frame.Image, error) {
	image, memory, err := d.createImage(extent, OffscreenFormat,
		core1_0.ImageUsageTransferSrc|core1_0.ImageUsageTransferDst,
		core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}

	return &Image{device: d, handle: image, memory: memory, extent: extent}, nil
}

func (d *Device) CreateReadbackBuffer(size int) (frame.Buffer, error) {
	buffer, memory, err := d.createBuffer(size,
		core1_0.BufferUsageTransferSrc|core1_0.BufferUsageTransferDst,
		core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, err
	}

	err = writeData(d.driver, memory, 0, make([]byte, size))
	if err != nil {
		d.driver.DestroyBuffer(buffer, nil)
		d.driver.FreeMemory(memory, nil)
		return nil, errors.Wrap(err, "zero readback buffer")
	}

	return &Buffer{device: d, handle: buffer, memory: memory, size: size}, nil
}

func (d *Device) RecordClearAndCopy(img frame.Image, buf frame.Buffer, clear frame.Color) (frame.CommandBuffer, error) {
	target, ok := img.(*Image)
	if !ok {
		return nil, errors.New("record clear: image does not belong to a vulkan device")
	}
	readback, ok := buf.(*Buffer)
	if !ok {
		return nil, errors.New("record copy: buffer does not belong to a vulkan device")
	}

	cmd, err := d.beginCommands()
	if err != nil {
		return nil, err
	}

	err = d.recordClearAndCopy(cmd, target, readback, clear)
	if err == nil {
		_, err = d.driver.EndCommandBuffer(cmd)
	}
	if err != nil {
		d.driver.FreeCommandBuffers(cmd)
		return nil, err
	}

	return &CommandBuffer{device: d, handle: cmd}, nil
}

func (d *Device) recordClearAndCopy(cmd core1_0.CommandBuffer, target *Image, readback *Buffer, clear frame.Color) error {
	colorRange := core1_0.ImageSubresourceRange{
		AspectMask:     core1_0.ImageAspectColor,
		BaseMipLevel:   0,
		LevelCount:     1,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}

	err := d.driver.CmdPipelineBarrier(cmd, core1_0.PipelineStageTopOfPipe, core1_0.PipelineStageTransfer, 0, nil, nil, []core1_0.ImageMemoryBarrier{
		{
			OldLayout:           core1_0.ImageLayoutUndefined,
			NewLayout:           core1_0.ImageLayoutTransferDstOptimal,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Image:               target.handle,
			SubresourceRange:    colorRange,
			DstAccessMask:       core1_0.AccessTransferWrite,
		},
	})
	if err != nil {
		return errors.Wrap(err, "record layout transition")
	}

	d.driver.CmdClearColorImage(cmd, target.handle, core1_0.ImageLayoutTransferDstOptimal,
		core1_0.ClearValueFloat{clear[0], clear[1], clear[2], clear[3]}, colorRange)

	err = d.driver.CmdPipelineBarrier(cmd, core1_0.PipelineStageTransfer, core1_0.PipelineStageTransfer, 0, nil, nil, []core1_0.ImageMemoryBarrier{
		{
			OldLayout:           core1_0.ImageLayoutTransferDstOptimal,
			NewLayout:           core1_0.ImageLayoutTransferSrcOptimal,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Image:               target.handle,
			SubresourceRange:    colorRange,
			SrcAccessMask:       core1_0.AccessTransferWrite,
			DstAccessMask:       core1_0.AccessTransferRead,
		},
	})
	if err != nil {
		return errors.Wrap(err, "record layout transition")
	}

	err = d.driver.CmdCopyImageToBuffer(cmd, target.handle, core1_0.ImageLayoutTransferSrcOptimal, readback.handle,
		core1_0.BufferImageCopy{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,

			ImageSubresource: core1_0.ImageSubresourceLayers{
				AspectMask:     core1_0.ImageAspectColor,
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: core1_0.Offset3D{X: 0, Y: 0, Z: 0},
			ImageExtent: core1_0.Extent3D{Width: target.extent.Width, Height: target.extent.Height, Depth: 1},
		},
	)
	if err != nil {
		return errors.Wrap(err, "record copy")
	}

	err = d.driver.CmdPipelineBarrier(cmd, core1_0.PipelineStageTransfer, core1_0.PipelineStageHost, 0, nil, []core1_0.BufferMemoryBarrier{
		{
			SrcAccessMask:       core1_0.AccessTransferWrite,
			DstAccessMask:       core1_0.AccessHostRead,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Buffer:              readback.handle,
			Offset:              0,
			Size:                readback.size,
		},
	}, nil)
	return errors.Wrap(err, "record host barrier")
}

func (d *Device) Submit(cmd frame.CommandBuffer) (frame.Fence, error) {
	commands, ok := cmd.(*CommandBuffer)
	if !ok {
		return nil, errors.New("submit: command buffer does not belong to a vulkan device")
	}

	return d.submit(core1_0.SubmitInfo{
		CommandBuffers: []core1_0.CommandBuffer{commands.handle},
	})
}

func (d *Device) submit(info core1_0.SubmitInfo) (*Fence, error) {
	fence, _, err := d.driver.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err != nil {
		return nil, errors.Wrap(err, "create fence")
	}

	_, err = d.driver.QueueSubmit(d.queue, &fence, info)
	if err != nil {
		d.driver.DestroyFence(fence, nil)
		return nil, errors.Wrap(err, "queue submit")
	}

	return &Fence{device: d, handle: fence}, nil
}

// WaitIdle blocks until the device queue has drained.
func (d *Device) WaitIdle() error {
	_, err := d.driver.DeviceWaitIdle()
	return errors.Wrap(err, "wait for device idle")
}

func (d *Device) Destroy() {
	if d.driver == nil {
		return
	}

	if d.commandPool.Initialized() {
		d.driver.DestroyCommandPool(d.commandPool, nil)
		d.commandPool = core1_0.CommandPool{}
	}

	d.driver.DestroyDevice(nil)
	d.driver = nil
}

func (d *Device) beginCommands() (core1_0.CommandBuffer, error) {
	buffers, _, err := d.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        d.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return core1_0.CommandBuffer{}, errors.Wrap(err, "allocate command buffer")
	}

	buffer := buffers[0]
	_, err = d.driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		d.driver.FreeCommandBuffers(buffer)
		return core1_0.CommandBuffer{}, errors.Wrap(err, "begin command buffer")
	}
	return buffer, nil
}

func (d *Device) findMemoryType(typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	memProperties := d.physical.instance.driver.GetPhysicalDeviceMemoryProperties(d.physical.handle)
	for i, memoryType := range memProperties.MemoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Errorf("no memory type with properties %v", properties)
}

func (d *Device) createImage(extent frame.Extent, format core1_0.Format, usage core1_0.ImageUsageFlags, memoryProperties core1_0.MemoryPropertyFlags) (core1_0.Image, core1_0.DeviceMemory, error) {
	image, _, err := d.driver.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:          1,
		ArrayLayers:        1,
		Format:             format,
		Tiling:             core1_0.ImageTilingOptimal,
		InitialLayout:      core1_0.ImageLayoutUndefined,
		Usage:              usage,
		SharingMode:        core1_0.SharingModeExclusive,
		QueueFamilyIndices: []int{d.queueFamily},
		Samples:            core1_0.Samples1,
	})
	if err != nil {
		return core1_0.Image{}, core1_0.DeviceMemory{}, errors.Wrap(err, "create image")
	}

	memReqs := d.driver.GetImageMemoryRequirements(image)
	memoryIndex, err := d.findMemoryType(memReqs.MemoryTypeBits, memoryProperties)
	if err != nil {
		d.driver.DestroyImage(image, nil)
		return core1_0.Image{}, core1_0.DeviceMemory{}, errors.Wrap(err, "image memory")
	}

	imageMemory, _, err := d.driver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memoryIndex,
	})
	if err != nil {
		d.driver.DestroyImage(image, nil)
		return core1_0.Image{}, core1_0.DeviceMemory{}, errors.Wrap(err, "allocate image memory")
	}

	_, err = d.driver.BindImageMemory(image, imageMemory, 0)
	if err != nil {
		d.driver.DestroyImage(image, nil)
		d.driver.FreeMemory(imageMemory, nil)
		return core1_0.Image{}, core1_0.DeviceMemory{}, errors.Wrap(err, "bind image memory")
	}

	return image, imageMemory, nil
}

func (d *Device) createImageView(image core1_0.Image, format core1_0.Format) (core1_0.ImageView, error) {
	imageView, _, err := d.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectColor,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	return imageView, errors.Wrap(err, "create image view")
}

func (d *Device) createBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (core1_0.Buffer, core1_0.DeviceMemory, error) {
	buffer, _, err := d.driver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, errors.Wrap(err, "create buffer")
	}

	memRequirements := d.driver.GetBufferMemoryRequirements(buffer)
	memoryTypeIndex, err := d.findMemoryType(memRequirements.MemoryTypeBits, properties)
	if err != nil {
		d.driver.DestroyBuffer(buffer, nil)
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, errors.Wrap(err, "buffer memory")
	}

	memory, _, err := d.driver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		d.driver.DestroyBuffer(buffer, nil)
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, errors.Wrap(err, "allocate buffer memory")
	}

	_, err = d.driver.BindBufferMemory(buffer, memory, 0)
	if err != nil {
		d.driver.DestroyBuffer(buffer, nil)
		d.driver.FreeMemory(memory, nil)
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, errors.Wrap(err, "bind buffer memory")
	}

	return buffer, memory, nil
}

func writeData(driver core1_0.DeviceDriver, memory core1_0.DeviceMemory, offset int, data any) error {
	bufferSize := binary.Size(data)

	memoryPtr, _, err := driver.MapMemory(memory, offset, bufferSize, 0)
	if err != nil {
		return err
	}
	defer driver.UnmapMemory(memory)

	dataBuffer := unsafe.Slice((*byte)(memoryPtr), bufferSize)

	buf := &bytes.Buffer{}
	err = binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return err
	}

	copy(dataBuffer, buf.Bytes())
	return nil
}

func readData(driver core1_0.DeviceDriver, memory core1_0.DeviceMemory, size int) ([]byte, error) {
	memoryPtr, _, err := driver.MapMemory(memory, 0, size, 0)
	if err != nil {
		return nil, err
	}
	defer driver.UnmapMemory(memory)

	data := make([]byte, size)
	copy(data, unsafe.Slice((*byte)(memoryPtr), size))
	return data, nil
}
