package vkr

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkframe/vkframe/frame"
	"github.com/vkframe/vkframe/mesh"
	"github.com/vkframe/vkframe/shaders"
)

// ViewportExtent is the region the triangle is drawn into, regardless of the
// window size.
var ViewportExtent = frame.Extent{Width: 1024, Height: 1024}

// TrianglePipeline is the render pass, pipeline and vertex data needed to
// draw the triangle into a swapchain image.
type TrianglePipeline struct {
	device *Device

	renderPass core1_0.RenderPass
	layout     core1_0.PipelineLayout
	pipeline   core1_0.Pipeline

	vertexBuffer core1_0.Buffer
	vertexMemory core1_0.DeviceMemory
	vertexCount  int
}

func (d *Device) CreateTrianglePipeline(swapchain *Swapchain, vertices []mesh.Vertex) (*TrianglePipeline, error) {
	start := hrtime.Now()
	p := &TrianglePipeline{device: d, vertexCount: len(vertices)}

	err := p.createRenderPass(swapchain.format)
	if err == nil {
		err = p.createPipeline()
	}
	if err == nil {
		err = p.createVertexBuffer(vertices)
	}
	if err != nil {
		p.Destroy()
		return nil, err
	}

	log.WithField("elapsed", hrtime.Since(start)).Debug("pipeline created")
	return p, nil
}

func (p *TrianglePipeline) createRenderPass(format core1_0.Format) error {
	renderPass, _, err := p.device.driver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "create render pass")
	}

	p.renderPass = renderPass
	return nil
}

func (p *TrianglePipeline) createPipeline() error {
	driver := p.device.driver

	code, err := shaders.Compile()
	if err != nil {
		return err
	}

	module, _, err := driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return errors.Wrap(err, "create shader module")
	}
	defer driver.DestroyShaderModule(module, nil)

	p.layout, _, err = driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return errors.Wrap(err, "create pipeline layout")
	}

	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{
		VertexBindingDescriptions: []core1_0.VertexInputBindingDescription{
			{
				Binding:   0,
				Stride:    mesh.Stride,
				InputRate: core1_0.VertexInputRateVertex,
			},
		},
		VertexAttributeDescriptions: []core1_0.VertexInputAttributeDescription{
			{
				Binding:  0,
				Location: 0,
				Format:   core1_0.FormatR32G32SignedFloat,
				Offset:   0,
			},
		},
	}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: module,
		Name:   shaders.VertexEntryPoint,
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: module,
		Name:   shaders.FragmentEntryPoint,
	}

	// The viewport is set when recording; only its count is fixed here.
	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			viewportFor(ViewportExtent),
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: core1_0.Extent2D{Width: ViewportExtent.Width, Height: ViewportExtent.Height},
			},
		},
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeNone,
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	dynamic := &core1_0.PipelineDynamicStateCreateInfo{
		DynamicStates: []core1_0.DynamicState{core1_0.DynamicStateViewport},
	}

	pipelines, _, err := driver.CreateGraphicsPipelines(nil, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			ColorBlendState:    colorBlend,
			DynamicState:       dynamic,
			Layout:             p.layout,
			RenderPass:         p.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	)
	if err != nil {
		return errors.Wrap(err, "create graphics pipeline")
	}

	p.pipeline = pipelines[0]
	return nil
}

func (p *TrianglePipeline) createVertexBuffer(vertices []mesh.Vertex) error {
	var err error
	p.vertexBuffer, p.vertexMemory, err = p.device.createBuffer(binary.Size(vertices),
		core1_0.BufferUsageVertexBuffer,
		core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return errors.Wrap(err, "vertex buffer")
	}

	err = writeData(p.device.driver, p.vertexMemory, 0, vertices)
	return errors.Wrap(err, "upload vertices")
}

func viewportFor(extent frame.Extent) core1_0.Viewport {
	return core1_0.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// record draws the triangle into framebuffer, cleared to clear.
func (p *TrianglePipeline) record(cmd core1_0.CommandBuffer, framebuffer core1_0.Framebuffer, extent frame.Extent, clear frame.Color) error {
	driver := p.device.driver

	err := driver.CmdBeginRenderPass(cmd, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  p.renderPass,
			Framebuffer: framebuffer,
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: core1_0.Extent2D{Width: extent.Width, Height: extent.Height},
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{clear[0], clear[1], clear[2], clear[3]},
			},
		})
	if err != nil {
		return errors.Wrap(err, "begin render pass")
	}

	driver.CmdBindPipeline(cmd, core1_0.PipelineBindPointGraphics, p.pipeline)
	driver.CmdBindVertexBuffers(cmd, 0, []core1_0.Buffer{p.vertexBuffer}, []int{0})
	driver.CmdSetViewport(cmd, viewportFor(ViewportExtent))
	driver.CmdDraw(cmd, p.vertexCount, 1, 0, 0)
	driver.CmdEndRenderPass(cmd)
	return nil
}

func (p *TrianglePipeline) Destroy() {
	driver := p.device.driver

	if p.vertexBuffer.Initialized() {
		driver.DestroyBuffer(p.vertexBuffer, nil)
		driver.FreeMemory(p.vertexMemory, nil)
		p.vertexBuffer = core1_0.Buffer{}
	}
	if p.pipeline.Initialized() {
		driver.DestroyPipeline(p.pipeline, nil)
		p.pipeline = core1_0.Pipeline{}
	}
	if p.layout.Initialized() {
		driver.DestroyPipelineLayout(p.layout, nil)
		p.layout = core1_0.PipelineLayout{}
	}
	if p.renderPass.Initialized() {
		driver.DestroyRenderPass(p.renderPass, nil)
		p.renderPass = core1_0.RenderPass{}
	}
}
