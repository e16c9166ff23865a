package swapchain

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/hellovk/internal/device"
)

// VulkanBuilder creates real swapchains. It also owns the render pass, which
// is made on the first Build and kept across rebuilds.
type VulkanBuilder struct {
	dev           *device.Device
	surfaceDriver khr_surface.ExtensionDriver
	surface       khr_surface.Surface
	Driver        khr_swapchain.ExtensionDriver
	windowExtent  func() core1_0.Extent2D

	renderPass   core1_0.RenderPass
	chain        khr_swapchain.Swapchain
	images       []core1_0.Image
	views        []core1_0.ImageView
	framebuffers []core1_0.Framebuffer
}

func NewVulkanBuilder(dev *device.Device, surfaceDriver khr_surface.ExtensionDriver, swapchainDriver khr_swapchain.ExtensionDriver, surface khr_surface.Surface, windowExtent func() core1_0.Extent2D) *VulkanBuilder {
	return &VulkanBuilder{
		dev:           dev,
		surfaceDriver: surfaceDriver,
		surface:       surface,
		Driver:        swapchainDriver,
		windowExtent:  windowExtent,
	}
}

func (b *VulkanBuilder) Support() (Support, error) {
	var s Support
	var err error

	s.Capabilities, _, err = b.surfaceDriver.GetPhysicalDeviceSurfaceCapabilities(b.surface, b.dev.Physical)
	if err != nil {
		return s, errors.Wrap(err, "swapchain: surface capabilities")
	}

	s.Formats, _, err = b.surfaceDriver.GetPhysicalDeviceSurfaceFormats(b.surface, b.dev.Physical)
	if err != nil {
		return s, errors.Wrap(err, "swapchain: surface formats")
	}
	if len(s.Formats) == 0 {
		return s, errors.New("swapchain: surface reports no formats")
	}

	if b.windowExtent != nil {
		s.Window = b.windowExtent()
	}
	return s, nil
}

func (b *VulkanBuilder) WaitIdle() error {
	return b.dev.WaitIdle()
}

func (b *VulkanBuilder) SetSurface(surface khr_surface.Surface) {
	b.surface = surface
}

func (b *VulkanBuilder) Build(info Info) error {
	var err error
	b.chain, _, err = b.Driver.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: b.surface,

		MinImageCount:    info.ImageCount,
		ImageFormat:      info.Format,
		ImageColorSpace:  info.ColorSpace,
		ImageExtent:      info.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode(b.dev),
		QueueFamilyIndices: b.dev.SharedFamilies(),

		PreTransform:   info.PreTransform,
		CompositeAlpha: info.CompositeAlpha,
		PresentMode:    info.PresentMode,
		Clipped:        false,
	})
	if err != nil {
		return errors.Wrap(err, "create swapchain")
	}

	b.images, _, err = b.Driver.GetSwapchainImages(b.chain)
	if err != nil {
		return errors.Wrap(err, "swapchain images")
	}

	if !b.renderPass.Initialized() {
		if err = b.createRenderPass(info.Format); err != nil {
			return err
		}
	}

	for _, image := range b.images {
		view, _, err := b.dev.Driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   info.Format,
			Components: core1_0.ComponentMapping{
				R: core1_0.ComponentSwizzleIdentity,
				G: core1_0.ComponentSwizzleIdentity,
				B: core1_0.ComponentSwizzleIdentity,
				A: core1_0.ComponentSwizzleIdentity,
			},
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask: core1_0.ImageAspectColor,
				LevelCount: 1,
				LayerCount: 1,
			},
		})
		if err != nil {
			return errors.Wrap(err, "swapchain image view")
		}
		b.views = append(b.views, view)
	}

	for _, view := range b.views {
		framebuffer, _, err := b.dev.Driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass:  b.renderPass,
			Attachments: []core1_0.ImageView{view},
			Width:       info.Extent.Width,
			Height:      info.Extent.Height,
			Layers:      1,
		})
		if err != nil {
			return errors.Wrap(err, "framebuffer")
		}
		b.framebuffers = append(b.framebuffers, framebuffer)
	}

	return nil
}

func sharingMode(dev *device.Device) core1_0.SharingMode {
	if dev.SharedFamilies() != nil {
		return core1_0.SharingModeConcurrent
	}
	return core1_0.SharingModeExclusive
}

func (b *VulkanBuilder) createRenderPass(format core1_0.Format) error {
	var err error
	b.renderPass, _, err = b.dev.Driver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
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
				SrcSubpass:    core1_0.SubpassExternal,
				DstSubpass:    0,
				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	return errors.Wrap(err, "render pass")
}

func (b *VulkanBuilder) Teardown() {
	for _, framebuffer := range b.framebuffers {
		b.dev.Driver.DestroyFramebuffer(framebuffer, nil)
	}
	b.framebuffers = nil

	for _, view := range b.views {
		b.dev.Driver.DestroyImageView(view, nil)
	}
	b.views = nil
	b.images = nil

	if b.chain.Initialized() {
		b.Driver.DestroySwapchain(b.chain, nil)
		b.chain = khr_swapchain.Swapchain{}
	}
}

// DestroyRenderPass is the last thing to go, after the final Teardown.
func (b *VulkanBuilder) DestroyRenderPass() {
	if b.renderPass.Initialized() {
		b.dev.Driver.DestroyRenderPass(b.renderPass, nil)
		b.renderPass = core1_0.RenderPass{}
	}
}

func (b *VulkanBuilder) RenderPass() core1_0.RenderPass { return b.renderPass }

func (b *VulkanBuilder) Swapchain() khr_swapchain.Swapchain { return b.chain }

func (b *VulkanBuilder) Surface() khr_surface.Surface { return b.surface }

func (b *VulkanBuilder) Framebuffer(image int) core1_0.Framebuffer { return b.framebuffers[image] }
