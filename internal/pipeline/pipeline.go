// Package pipeline builds the single graphics pipeline the renderer draws
// with.
package pipeline

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

type Config struct {
	VertexShader   []byte
	FragmentShader []byte

	RenderPass core1_0.RenderPass
	SetLayouts []core1_0.DescriptorSetLayout

	VertexBindings   []core1_0.VertexInputBindingDescription
	VertexAttributes []core1_0.VertexInputAttributeDescription

	// CacheData seeds the driver's pipeline cache. It is dropped if it was
	// written by another driver.
	CacheData []byte
	Identity  Identity

	Logger *slog.Logger
}

// Pipeline is immutable once built. Viewport and scissor are dynamic, so it
// survives swapchain rebuilds.
type Pipeline struct {
	driver core1_0.DeviceDriver

	Handle core1_0.Pipeline
	Layout core1_0.PipelineLayout
	cache  core1_0.PipelineCache
}

func Build(driver core1_0.DeviceDriver, cfg Config) (*Pipeline, error) {
	if n := len(cfg.SetLayouts); n < 1 || n > 3 {
		return nil, errors.Newf("pipeline: %d descriptor set layouts, want 1 to 3", n)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	vertCode, err := Bytecode(cfg.VertexShader)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: vertex shader")
	}
	fragCode, err := Bytecode(cfg.FragmentShader)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: fragment shader")
	}

	p := &Pipeline{driver: driver}

	initial := cfg.CacheData
	if len(initial) > 0 {
		if err := ValidateCacheHeader(initial, cfg.Identity); err != nil {
			logger.Warn("discarding pipeline cache", slog.String("reason", err.Error()))
			initial = nil
		}
	}
	p.cache, _, err = driver.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: initial,
	})
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: create cache")
	}

	vertShader, _, err := driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{Code: vertCode})
	if err != nil {
		p.Destroy()
		return nil, errors.Wrap(err, "pipeline: vertex shader module")
	}
	defer driver.DestroyShaderModule(vertShader, nil)

	fragShader, _, err := driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{Code: fragCode})
	if err != nil {
		p.Destroy()
		return nil, errors.Wrap(err, "pipeline: fragment shader module")
	}
	defer driver.DestroyShaderModule(fragShader, nil)

	p.Layout, _, err = driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: cfg.SetLayouts,
	})
	if err != nil {
		p.Destroy()
		return nil, errors.Wrap(err, "pipeline: layout")
	}

	pipelines, _, err := driver.CreateGraphicsPipelines(&p.cache, nil, core1_0.GraphicsPipelineCreateInfo{
		Stages: []core1_0.PipelineShaderStageCreateInfo{
			{
				Stage:  core1_0.StageVertex,
				Module: vertShader,
				Name:   "main",
			},
			{
				Stage:  core1_0.StageFragment,
				Module: fragShader,
				Name:   "main",
			},
		},
		VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{
			VertexBindingDescriptions:   cfg.VertexBindings,
			VertexAttributeDescriptions: cfg.VertexAttributes,
		},
		InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
			Topology: core1_0.PrimitiveTopologyTriangleList,
		},
		// Counts only; the rectangles are set per frame.
		ViewportState: &core1_0.PipelineViewportStateCreateInfo{
			Viewports: []core1_0.Viewport{{}},
			Scissors:  []core1_0.Rect2D{{}},
		},
		RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
			PolygonMode: core1_0.PolygonModeFill,
			CullMode:    core1_0.CullModeBack,
			FrontFace:   core1_0.FrontFaceCounterClockwise,
			LineWidth:   1.0,
		},
		MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
			RasterizationSamples: core1_0.Samples1,
			MinSampleShading:     1.0,
		},
		ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
			LogicOp: core1_0.LogicOpCopy,
			Attachments: []core1_0.PipelineColorBlendAttachmentState{
				{
					BlendEnabled:   false,
					ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
				},
			},
		},
		DynamicState: &core1_0.PipelineDynamicStateCreateInfo{
			DynamicStates: []core1_0.DynamicState{core1_0.DynamicStateViewport, core1_0.DynamicStateScissor},
		},
		Layout:            p.Layout,
		RenderPass:        cfg.RenderPass,
		Subpass:           0,
		BasePipelineIndex: -1,
	})
	if err != nil {
		p.Destroy()
		return nil, errors.Wrap(err, "pipeline: create graphics pipeline")
	}
	p.Handle = pipelines[0]

	return p, nil
}

// CacheData returns the driver's current cache blob for the host to store.
func (p *Pipeline) CacheData() ([]byte, error) {
	data, _, err := p.driver.GetPipelineCacheData(p.cache)
	return data, errors.Wrap(err, "pipeline: cache data")
}

func (p *Pipeline) Destroy() {
	if p.Handle.Initialized() {
		p.driver.DestroyPipeline(p.Handle, nil)
		p.Handle = core1_0.Pipeline{}
	}
	if p.Layout.Initialized() {
		p.driver.DestroyPipelineLayout(p.Layout, nil)
		p.Layout = core1_0.PipelineLayout{}
	}
	if p.cache.Initialized() {
		p.driver.DestroyPipelineCache(p.cache, nil)
		p.cache = core1_0.PipelineCache{}
	}
}
