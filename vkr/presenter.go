package vkr

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkframe/vkframe/frame"
)

// TrianglePresenter renders the triangle into one swapchain image and
// presents it.
type TrianglePresenter struct {
	device    *Device
	swapchain *Swapchain
	pipeline  *TrianglePipeline
	clear     frame.Color

	imageAvailable core1_0.Semaphore
	renderFinished core1_0.Semaphore

	imageIndex  int
	framebuffer core1_0.Framebuffer
	commands    core1_0.CommandBuffer
}

func NewTrianglePresenter(swapchain *Swapchain, pipeline *TrianglePipeline, clear frame.Color) (*TrianglePresenter, error) {
	d := swapchain.device
	p := &TrianglePresenter{
		device:     d,
		swapchain:  swapchain,
		pipeline:   pipeline,
		clear:      clear,
		imageIndex: -1,
	}

	var err error
	p.imageAvailable, _, err = d.driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return nil, errors.Wrap(err, "create semaphore")
	}

	p.renderFinished, _, err = d.driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		p.Destroy()
		return nil, errors.Wrap(err, "create semaphore")
	}

	return p, nil
}

func (p *TrianglePresenter) Submit() (frame.Fence, error) {
	d := p.device

	imageIndex, res, err := p.swapchain.ext.AcquireNextImage(p.swapchain.handle, common.NoTimeout, &p.imageAvailable, nil)
	if res == khr_swapchain.VKErrorOutOfDate {
		return nil, errors.Wrap(frame.ErrSwapchainOutOfDate, "acquire image")
	} else if err != nil {
		return nil, errors.Wrap(err, "acquire image")
	}
	p.imageIndex = imageIndex

	extent := p.swapchain.extent
	p.framebuffer, _, err = d.driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass: p.pipeline.renderPass,
		Layers:     1,
		Attachments: []core1_0.ImageView{
			p.swapchain.views[imageIndex],
		},
		Width:  extent.Width,
		Height: extent.Height,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create framebuffer")
	}

	p.commands, err = d.beginCommands()
	if err != nil {
		return nil, err
	}

	err = p.pipeline.record(p.commands, p.framebuffer, extent, p.clear)
	if err != nil {
		return nil, err
	}

	_, err = d.driver.EndCommandBuffer(p.commands)
	if err != nil {
		return nil, errors.Wrap(err, "end command buffer")
	}

	return d.submit(core1_0.SubmitInfo{
		WaitSemaphores:   []core1_0.Semaphore{p.imageAvailable},
		WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []core1_0.CommandBuffer{p.commands},
		SignalSemaphores: []core1_0.Semaphore{p.renderFinished},
	})
}

func (p *TrianglePresenter) Present() error {
	if p.imageIndex < 0 {
		return errors.New("present: no image submitted")
	}

	res, err := p.swapchain.ext.QueuePresent(p.device.queue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{p.renderFinished},
		Swapchains:     []khr_swapchain.Swapchain{p.swapchain.handle},
		ImageIndices:   []int{p.imageIndex},
	})
	if res == khr_swapchain.VKErrorOutOfDate || res == khr_swapchain.VKSuboptimal {
		return errors.Wrapf(frame.ErrSwapchainOutOfDate, "present: %v", res)
	} else if err != nil {
		return errors.Wrap(err, "present")
	}
	return nil
}

func (p *TrianglePresenter) WaitIdle() error {
	return p.device.WaitIdle()
}

// Destroy waits for the device to go idle before releasing the frame's objects.
func (p *TrianglePresenter) Destroy() {
	d := p.device
	if d.driver == nil {
		return
	}
	_ = d.WaitIdle()

	if p.commands.Initialized() {
		d.driver.FreeCommandBuffers(p.commands)
		p.commands = core1_0.CommandBuffer{}
	}
	if p.framebuffer.Initialized() {
		d.driver.DestroyFramebuffer(p.framebuffer, nil)
		p.framebuffer = core1_0.Framebuffer{}
	}
	if p.renderFinished.Initialized() {
		d.driver.DestroySemaphore(p.renderFinished, nil)
		p.renderFinished = core1_0.Semaphore{}
	}
	if p.imageAvailable.Initialized() {
		d.driver.DestroySemaphore(p.imageAvailable, nil)
		p.imageAvailable = core1_0.Semaphore{}
	}
}
