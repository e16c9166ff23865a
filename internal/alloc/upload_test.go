package alloc

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/mocks"
	"github.com/vkngwrapper/core/v3/mocks/mocks1_0"
	"github.com/vkngwrapper/hellovk/internal/assets"
	"go.uber.org/mock/gomock"
)

const (
	deviceLocalType = 0
	hostVisibleType = 1
)

type uploadFixture struct {
	device    core1_0.Device
	driver    *mocks1_0.MockCoreDeviceDriver
	pool      core1_0.CommandPool
	queue     core1_0.Queue
	cmd       core1_0.CommandBuffer
	allocator *Allocator
}

func newUploadFixture(t *testing.T) *uploadFixture {
	ctrl := gomock.NewController(t)
	f := &uploadFixture{
		device: mocks.NewDummyDevice(common.Vulkan1_0, []string{}),
		driver: mocks1_0.NewMockCoreDeviceDriver(ctrl),
	}
	f.pool = mocks.NewDummyCommandPool(f.device)
	f.queue = mocks.NewDummyQueue(f.device)
	f.cmd = mocks.NewDummyCommandBuffer(f.pool, f.device)
	f.allocator = New(f.driver, &core1_0.PhysicalDeviceMemoryProperties{
		MemoryTypes: []core1_0.MemoryType{
			{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
			{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
		},
	}, f.pool, f.queue)
	return f
}

// expectBuffer expects a buffer to be created, backed and bound.
func (f *uploadFixture) expectBuffer(info core1_0.BufferCreateInfo, memoryType int, buffer core1_0.Buffer, memory core1_0.DeviceMemory) []any {
	return []any{
		f.driver.EXPECT().CreateBuffer(nil, info).Return(buffer, core1_0.VKSuccess, nil),
		f.driver.EXPECT().GetBufferMemoryRequirements(buffer).Return(&core1_0.MemoryRequirements{Size: info.Size, MemoryTypeBits: 0b11}),
		f.driver.EXPECT().AllocateMemory(nil, core1_0.MemoryAllocateInfo{
			AllocationSize:  info.Size,
			MemoryTypeIndex: memoryType,
		}).Return(memory, core1_0.VKSuccess, nil),
		f.driver.EXPECT().BindBufferMemory(buffer, memory, 0).Return(core1_0.VKSuccess, nil),
	}
}

// expectMap expects memory to be mapped once and returns what gets written.
func (f *uploadFixture) expectMap(memory core1_0.DeviceMemory, size int) ([]byte, []any) {
	backing := make([]byte, size)
	return backing, []any{
		f.driver.EXPECT().MapMemory(memory, 0, size, core1_0.MemoryMapFlags(0)).Return(unsafe.Pointer(&backing[0]), core1_0.VKSuccess, nil),
		f.driver.EXPECT().UnmapMemory(memory),
	}
}

// expectOneShot wraps record in the begin, submit and wait of a one-shot
// command buffer.
func (f *uploadFixture) expectOneShot(record ...any) []any {
	calls := []any{
		f.driver.EXPECT().AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
			CommandPool:        f.pool,
			Level:              core1_0.CommandBufferLevelPrimary,
			CommandBufferCount: 1,
		}).Return([]core1_0.CommandBuffer{f.cmd}, core1_0.VKSuccess, nil),
		f.driver.EXPECT().BeginCommandBuffer(f.cmd, core1_0.CommandBufferBeginInfo{
			Flags: core1_0.CommandBufferUsageOneTimeSubmit,
		}).Return(core1_0.VKSuccess, nil),
	}
	calls = append(calls, record...)
	return append(calls,
		f.driver.EXPECT().EndCommandBuffer(f.cmd).Return(core1_0.VKSuccess, nil),
		f.driver.EXPECT().QueueSubmit(f.queue, nil, core1_0.SubmitInfo{
			CommandBuffers: []core1_0.CommandBuffer{f.cmd},
		}).Return(core1_0.VKSuccess, nil),
		f.driver.EXPECT().QueueWaitIdle(f.queue).Return(core1_0.VKSuccess, nil),
		f.driver.EXPECT().FreeCommandBuffers(f.cmd),
	)
}

func TestUploadStagesThroughHostVisibleBuffer(t *testing.T) {
	f := newUploadFixture(t)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	staging, stagingMemory := mocks.NewDummyBuffer(f.device), mocks.NewDummyDeviceMemory(f.device, len(data))
	dst, dstMemory := mocks.NewDummyBuffer(f.device), mocks.NewDummyDeviceMemory(f.device, len(data))

	var calls []any
	calls = append(calls, f.expectBuffer(core1_0.BufferCreateInfo{
		Size:        len(data),
		Usage:       core1_0.BufferUsageTransferSrc,
		SharingMode: core1_0.SharingModeExclusive,
	}, hostVisibleType, staging, stagingMemory)...)
	written, mapCalls := f.expectMap(stagingMemory, len(data))
	calls = append(calls, mapCalls...)
	calls = append(calls, f.expectBuffer(core1_0.BufferCreateInfo{
		Size:        len(data),
		Usage:       core1_0.BufferUsageVertexBuffer | core1_0.BufferUsageTransferDst,
		SharingMode: core1_0.SharingModeExclusive,
	}, deviceLocalType, dst, dstMemory)...)
	calls = append(calls, f.expectOneShot(
		f.driver.EXPECT().CmdCopyBuffer(f.cmd, staging, dst, core1_0.BufferCopy{Size: len(data)}).Return(nil),
	)...)
	// staging goes only after the queue is idle
	calls = append(calls,
		f.driver.EXPECT().DestroyBuffer(staging, nil),
		f.driver.EXPECT().FreeMemory(stagingMemory, nil),
	)
	gomock.InOrder(calls...)

	buffer, err := f.allocator.Upload(data, core1_0.BufferUsageVertexBuffer)
	require.NoError(t, err)
	require.Equal(t, &Buffer{Handle: dst, Memory: dstMemory, Size: len(data)}, buffer)
	require.Equal(t, data, written)
}

func TestUploadFreesEverythingWhenCopyFails(t *testing.T) {
	f := newUploadFixture(t)
	data := []byte{1, 2, 3, 4}

	staging, stagingMemory := mocks.NewDummyBuffer(f.device), mocks.NewDummyDeviceMemory(f.device, len(data))
	dst, dstMemory := mocks.NewDummyBuffer(f.device), mocks.NewDummyDeviceMemory(f.device, len(data))

	var calls []any
	calls = append(calls, f.expectBuffer(core1_0.BufferCreateInfo{
		Size:        len(data),
		Usage:       core1_0.BufferUsageTransferSrc,
		SharingMode: core1_0.SharingModeExclusive,
	}, hostVisibleType, staging, stagingMemory)...)
	_, mapCalls := f.expectMap(stagingMemory, len(data))
	calls = append(calls, mapCalls...)
	calls = append(calls, f.expectBuffer(core1_0.BufferCreateInfo{
		Size:        len(data),
		Usage:       core1_0.BufferUsageIndexBuffer | core1_0.BufferUsageTransferDst,
		SharingMode: core1_0.SharingModeExclusive,
	}, deviceLocalType, dst, dstMemory)...)
	calls = append(calls,
		f.driver.EXPECT().AllocateCommandBuffers(gomock.Any()).Return(nil, core1_0.VKErrorOutOfDeviceMemory, errors.New("no memory")),
		f.driver.EXPECT().DestroyBuffer(dst, nil),
		f.driver.EXPECT().FreeMemory(dstMemory, nil),
		f.driver.EXPECT().DestroyBuffer(staging, nil),
		f.driver.EXPECT().FreeMemory(stagingMemory, nil),
	)
	gomock.InOrder(calls...)

	_, err := f.allocator.Upload(data, core1_0.BufferUsageIndexBuffer)
	require.Error(t, err)
}

func TestUploadTextureTransitionsAroundCopy(t *testing.T) {
	f := newUploadFixture(t)
	img := &assets.Image{
		Width:    2,
		Height:   1,
		Channels: 4,
		Pixels:   []byte{200, 100, 50, 128, 1, 2, 3, 255},
	}
	size := len(img.Pixels)

	staging, stagingMemory := mocks.NewDummyBuffer(f.device), mocks.NewDummyDeviceMemory(f.device, size)
	image, imageMemory := mocks.NewDummyImage(f.device), mocks.NewDummyDeviceMemory(f.device, size)
	view := mocks.NewDummyImageView(f.device)
	sampler := mocks.NewDummySampler(f.device)

	colorRange := core1_0.ImageSubresourceRange{
		AspectMask: core1_0.ImageAspectColor,
		LevelCount: 1,
		LayerCount: 1,
	}

	var calls []any
	calls = append(calls, f.expectBuffer(core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       core1_0.BufferUsageTransferSrc,
		SharingMode: core1_0.SharingModeExclusive,
	}, hostVisibleType, staging, stagingMemory)...)
	written, mapCalls := f.expectMap(stagingMemory, size)
	calls = append(calls, mapCalls...)
	calls = append(calls,
		f.driver.EXPECT().CreateImage(nil, gomock.Any()).Return(image, core1_0.VKSuccess, nil),
		f.driver.EXPECT().GetImageMemoryRequirements(image).Return(&core1_0.MemoryRequirements{Size: size, MemoryTypeBits: 0b11}),
		f.driver.EXPECT().AllocateMemory(nil, core1_0.MemoryAllocateInfo{
			AllocationSize:  size,
			MemoryTypeIndex: deviceLocalType,
		}).Return(imageMemory, core1_0.VKSuccess, nil),
		f.driver.EXPECT().BindImageMemory(image, imageMemory, 0).Return(core1_0.VKSuccess, nil),
	)
	calls = append(calls, f.expectOneShot(
		f.driver.EXPECT().CmdPipelineBarrier(f.cmd,
			core1_0.PipelineStageTopOfPipe, core1_0.PipelineStageTransfer, core1_0.DependencyFlags(0), nil, nil,
			[]core1_0.ImageMemoryBarrier{{
				OldLayout:           core1_0.ImageLayoutUndefined,
				NewLayout:           core1_0.ImageLayoutTransferDstOptimal,
				SrcQueueFamilyIndex: -1,
				DstQueueFamilyIndex: -1,
				Image:               image,
				SubresourceRange:    colorRange,
				DstAccessMask:       core1_0.AccessTransferWrite,
			}}).Return(nil),
		f.driver.EXPECT().CmdCopyBufferToImage(f.cmd, staging, image, core1_0.ImageLayoutTransferDstOptimal,
			core1_0.BufferImageCopy{
				ImageSubresource: core1_0.ImageSubresourceLayers{
					AspectMask: core1_0.ImageAspectColor,
					LayerCount: 1,
				},
				ImageExtent: core1_0.Extent3D{Width: 2, Height: 1, Depth: 1},
			}).Return(nil),
		f.driver.EXPECT().CmdPipelineBarrier(f.cmd,
			core1_0.PipelineStageTransfer, core1_0.PipelineStageFragmentShader, core1_0.DependencyFlags(0), nil, nil,
			[]core1_0.ImageMemoryBarrier{{
				OldLayout:           core1_0.ImageLayoutTransferDstOptimal,
				NewLayout:           core1_0.ImageLayoutShaderReadOnlyOptimal,
				SrcQueueFamilyIndex: -1,
				DstQueueFamilyIndex: -1,
				Image:               image,
				SubresourceRange:    colorRange,
				SrcAccessMask:       core1_0.AccessTransferWrite,
				DstAccessMask:       core1_0.AccessShaderRead,
			}}).Return(nil),
	)...)
	calls = append(calls,
		f.driver.EXPECT().CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:            image,
			ViewType:         core1_0.ImageViewType2D,
			Format:           TextureFormat,
			SubresourceRange: colorRange,
		}).Return(view, core1_0.VKSuccess, nil),
		f.driver.EXPECT().CreateSampler(nil, gomock.Any()).Return(sampler, core1_0.VKSuccess, nil),
		f.driver.EXPECT().DestroyBuffer(staging, nil),
		f.driver.EXPECT().FreeMemory(stagingMemory, nil),
	)
	gomock.InOrder(calls...)

	tex, err := f.allocator.UploadTexture(img)
	require.NoError(t, err)
	require.Equal(t, &Texture{Image: image, Memory: imageMemory, View: view, Sampler: sampler}, tex)
	require.Equal(t, img.Pixels, written)
}

func TestUploadTextureRejectsShortPixels(t *testing.T) {
	f := newUploadFixture(t)
	_, err := f.allocator.UploadTexture(&assets.Image{Width: 2, Height: 2, Channels: 4, Pixels: make([]byte, 4)})
	require.Error(t, err)
}
