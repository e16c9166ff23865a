package alloc

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/hellovk/internal/assets"
)

// TextureFormat is the format every uploaded texture uses.
const TextureFormat = core1_0.FormatR8G8B8A8UnsignedNormalized

// Texture is a sampled 2D image with its view and sampler.
type Texture struct {
	Image   core1_0.Image
	Memory  core1_0.DeviceMemory
	View    core1_0.ImageView
	Sampler core1_0.Sampler
}

func (a *Allocator) CreateImage(width, height int, format core1_0.Format, usage core1_0.ImageUsageFlags, props core1_0.MemoryPropertyFlags) (core1_0.Image, core1_0.DeviceMemory, error) {
	image, _, err := a.driver.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType:     core1_0.ImageType2D,
		Extent:        core1_0.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        core1_0.ImageTilingOptimal,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         usage,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	})
	if err != nil {
		return core1_0.Image{}, core1_0.DeviceMemory{}, errors.Wrapf(err, "alloc: create %dx%d image", width, height)
	}

	memory, err := a.allocate(a.driver.GetImageMemoryRequirements(image), props)
	if err != nil {
		a.driver.DestroyImage(image, nil)
		return core1_0.Image{}, core1_0.DeviceMemory{}, err
	}

	if _, err = a.driver.BindImageMemory(image, memory, 0); err != nil {
		a.driver.DestroyImage(image, nil)
		a.driver.FreeMemory(memory, nil)
		return core1_0.Image{}, core1_0.DeviceMemory{}, errors.Wrap(err, "alloc: bind image memory")
	}

	return image, memory, nil
}

// Transition describes a layout change and the stages and access masks on
// either side of it.
type Transition struct {
	Old, New             core1_0.ImageLayout
	SrcAccess, DstAccess core1_0.AccessFlags
	SrcStage, DstStage   core1_0.PipelineStageFlags
}

// TransitionFor returns the barrier parameters for the two layout changes a
// texture upload needs.
func TransitionFor(oldLayout, newLayout core1_0.ImageLayout) (Transition, error) {
	t := Transition{Old: oldLayout, New: newLayout}
	switch {
	case oldLayout == core1_0.ImageLayoutUndefined && newLayout == core1_0.ImageLayoutTransferDstOptimal:
		t.DstAccess = core1_0.AccessTransferWrite
		t.SrcStage = core1_0.PipelineStageTopOfPipe
		t.DstStage = core1_0.PipelineStageTransfer
	case oldLayout == core1_0.ImageLayoutTransferDstOptimal && newLayout == core1_0.ImageLayoutShaderReadOnlyOptimal:
		t.SrcAccess = core1_0.AccessTransferWrite
		t.DstAccess = core1_0.AccessShaderRead
		t.SrcStage = core1_0.PipelineStageTransfer
		t.DstStage = core1_0.PipelineStageFragmentShader
	default:
		return t, errors.Newf("alloc: unsupported layout transition %s -> %s", oldLayout, newLayout)
	}
	return t, nil
}

func (a *Allocator) barrier(cmd core1_0.CommandBuffer, image core1_0.Image, t Transition) error {
	return a.driver.CmdPipelineBarrier(cmd, t.SrcStage, t.DstStage, 0, nil, nil, []core1_0.ImageMemoryBarrier{
		{
			OldLayout:           t.Old,
			NewLayout:           t.New,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Image:               image,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask: core1_0.ImageAspectColor,
				LevelCount: 1,
				LayerCount: 1,
			},
			SrcAccessMask: t.SrcAccess,
			DstAccessMask: t.DstAccess,
		},
	})
}

// UploadTexture stages img into a device-local image, leaves it in the
// shader-read layout, and creates its view and a linear repeating sampler.
func (a *Allocator) UploadTexture(img *assets.Image) (*Texture, error) {
	if img.Channels != 4 || len(img.Pixels) != img.Width*img.Height*4 {
		return nil, errors.Newf("alloc: texture needs %dx%d RGBA8 pixels, got %d bytes", img.Width, img.Height, len(img.Pixels))
	}

	staging, err := a.CreateBuffer(len(img.Pixels), core1_0.BufferUsageTransferSrc, HostVisible)
	if err != nil {
		return nil, err
	}
	defer a.DestroyBuffer(staging)

	if err = a.Write(staging, 0, img.Pixels); err != nil {
		return nil, err
	}

	tex := &Texture{}
	tex.Image, tex.Memory, err = a.CreateImage(img.Width, img.Height, TextureFormat,
		core1_0.ImageUsageTransferDst|core1_0.ImageUsageSampled, DeviceLocal)
	if err != nil {
		return nil, err
	}

	toTransfer, _ := TransitionFor(core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
	toShader, _ := TransitionFor(core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)

	err = a.OneShot(func(cmd core1_0.CommandBuffer) error {
		if err := a.barrier(cmd, tex.Image, toTransfer); err != nil {
			return err
		}
		err := a.driver.CmdCopyBufferToImage(cmd, staging.Handle, tex.Image, core1_0.ImageLayoutTransferDstOptimal,
			core1_0.BufferImageCopy{
				ImageSubresource: core1_0.ImageSubresourceLayers{
					AspectMask: core1_0.ImageAspectColor,
					LayerCount: 1,
				},
				ImageExtent: core1_0.Extent3D{Width: img.Width, Height: img.Height, Depth: 1},
			})
		if err != nil {
			return err
		}
		return a.barrier(cmd, tex.Image, toShader)
	})
	if err != nil {
		a.DestroyTexture(tex)
		return nil, errors.Wrap(err, "alloc: texture upload")
	}

	tex.View, _, err = a.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    tex.Image,
		ViewType: core1_0.ImageViewType2D,
		Format:   TextureFormat,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask: core1_0.ImageAspectColor,
			LevelCount: 1,
			LayerCount: 1,
		},
	})
	if err != nil {
		a.DestroyTexture(tex)
		return nil, errors.Wrap(err, "alloc: texture view")
	}

	tex.Sampler, _, err = a.driver.CreateSampler(nil, core1_0.SamplerCreateInfo{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		AddressModeU: core1_0.SamplerAddressModeRepeat,
		AddressModeV: core1_0.SamplerAddressModeRepeat,
		AddressModeW: core1_0.SamplerAddressModeRepeat,
		BorderColor:  core1_0.BorderColorIntOpaqueBlack,
		MipmapMode:   core1_0.SamplerMipmapModeLinear,
		CompareOp:    core1_0.CompareOpAlways,
	})
	if err != nil {
		a.DestroyTexture(tex)
		return nil, errors.Wrap(err, "alloc: texture sampler")
	}

	return tex, nil
}

func (a *Allocator) DestroyTexture(t *Texture) {
	if t == nil {
		return
	}
	if t.Sampler.Initialized() {
		a.driver.DestroySampler(t.Sampler, nil)
	}
	if t.View.Initialized() {
		a.driver.DestroyImageView(t.View, nil)
	}
	if t.Image.Initialized() {
		a.driver.DestroyImage(t.Image, nil)
	}
	if t.Memory.Initialized() {
		a.driver.FreeMemory(t.Memory, nil)
	}
}
