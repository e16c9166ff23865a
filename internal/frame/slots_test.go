package frame

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/loader"
	"github.com/vkngwrapper/core/v3/mocks"
	"github.com/vkngwrapper/core/v3/mocks/mocks1_0"
	"go.uber.org/mock/gomock"
)

func TestNewSlotsCreatesSignaledFences(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewDummyDevice(common.Vulkan1_0, []string{})
	driver := mocks1_0.NewMockCoreDeviceDriver(ctrl)
	pool := mocks.NewDummyCommandPool(device)

	buffers := []core1_0.CommandBuffer{
		mocks.NewDummyCommandBuffer(pool, device),
		mocks.NewDummyCommandBuffer(pool, device),
	}
	semaphores := []core1_0.Semaphore{
		mocks.NewDummySemaphore(device), mocks.NewDummySemaphore(device),
		mocks.NewDummySemaphore(device), mocks.NewDummySemaphore(device),
	}
	fences := []core1_0.Fence{mocks.NewDummyFence(device), mocks.NewDummyFence(device)}

	signaled := core1_0.FenceCreateInfo{Flags: core1_0.FenceCreateSignaled}
	gomock.InOrder(
		driver.EXPECT().AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
			CommandPool:        pool,
			Level:              core1_0.CommandBufferLevelPrimary,
			CommandBufferCount: 2,
		}).Return(buffers, core1_0.VKSuccess, nil),
		driver.EXPECT().CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{}).Return(semaphores[0], core1_0.VKSuccess, nil),
		driver.EXPECT().CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{}).Return(semaphores[1], core1_0.VKSuccess, nil),
		driver.EXPECT().CreateFence(nil, signaled).Return(fences[0], core1_0.VKSuccess, nil),
		driver.EXPECT().CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{}).Return(semaphores[2], core1_0.VKSuccess, nil),
		driver.EXPECT().CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{}).Return(semaphores[3], core1_0.VKSuccess, nil),
		driver.EXPECT().CreateFence(nil, signaled).Return(fences[1], core1_0.VKSuccess, nil),
	)

	s, err := NewSlots(driver, pool, 2)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	require.Equal(t, buffers, s.CommandBuffers)
	require.Equal(t, []core1_0.Semaphore{semaphores[0], semaphores[2]}, s.ImageAvailable)
	require.Equal(t, []core1_0.Semaphore{semaphores[1], semaphores[3]}, s.RenderFinished)
	require.Equal(t, fences, s.InFlight)
}

func TestNewSlotsCleansUpOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewDummyDevice(common.Vulkan1_0, []string{})
	driver := mocks1_0.NewMockCoreDeviceDriver(ctrl)
	pool := mocks.NewDummyCommandPool(device)

	buffer := mocks.NewDummyCommandBuffer(pool, device)
	imageAvailable := mocks.NewDummySemaphore(device)

	gomock.InOrder(
		driver.EXPECT().AllocateCommandBuffers(gomock.Any()).Return([]core1_0.CommandBuffer{buffer}, core1_0.VKSuccess, nil),
		driver.EXPECT().CreateSemaphore(nil, gomock.Any()).Return(imageAvailable, core1_0.VKSuccess, nil),
		driver.EXPECT().CreateSemaphore(nil, gomock.Any()).Return(core1_0.Semaphore{}, core1_0.VKErrorOutOfHostMemory, errors.New("out of memory")),
		driver.EXPECT().DestroySemaphore(imageAvailable, nil),
		driver.EXPECT().FreeCommandBuffers(buffer),
	)

	_, err := NewSlots(driver, pool, 1)
	require.Error(t, err)
}

// newSlots builds slots over dummy handles without going through the driver.
func newSlots(driver core1_0.DeviceDriver, device core1_0.Device, frames int) *Slots {
	pool := mocks.NewDummyCommandPool(device)
	s := &Slots{driver: driver, pool: pool}
	for i := 0; i < frames; i++ {
		s.CommandBuffers = append(s.CommandBuffers, mocks.NewDummyCommandBuffer(pool, device))
		s.ImageAvailable = append(s.ImageAvailable, mocks.NewDummySemaphore(device))
		s.RenderFinished = append(s.RenderFinished, mocks.NewDummySemaphore(device))
		s.InFlight = append(s.InFlight, mocks.NewDummyFence(device))
	}
	return s
}

func TestSlotsWaitOnOwnFence(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewDummyDevice(common.Vulkan1_0, []string{})
	driver := mocks1_0.NewMockCoreDeviceDriver(ctrl)
	s := newSlots(driver, device, 2)

	gomock.InOrder(
		driver.EXPECT().WaitForFences(true, common.NoTimeout, s.InFlight[1]).Return(core1_0.VKSuccess, nil),
		driver.EXPECT().WaitForFences(true, common.NoTimeout, s.InFlight[0]).Return(core1_0.VKSuccess, nil),
	)

	require.NoError(t, s.Wait(1))
	require.NoError(t, s.Wait(0))
}

func TestSlotsResetFenceBeforeCommandBuffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewDummyDevice(common.Vulkan1_0, []string{})
	driver := mocks1_0.NewMockCoreDeviceDriver(ctrl)
	s := newSlots(driver, device, 2)

	gomock.InOrder(
		driver.EXPECT().ResetFences(s.InFlight[1]).Return(core1_0.VKSuccess, nil),
		driver.EXPECT().ResetCommandBuffer(s.CommandBuffers[1], core1_0.CommandBufferResetFlags(0)).Return(core1_0.VKSuccess, nil),
	)

	require.NoError(t, s.Reset(1))
}

func TestSlotsResetStopsWhenFenceFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewDummyDevice(common.Vulkan1_0, []string{})
	driver := mocks1_0.NewMockCoreDeviceDriver(ctrl)
	s := newSlots(driver, device, 1)

	lost := errors.New("device lost")
	driver.EXPECT().ResetFences(s.InFlight[0]).Return(core1_0.VKErrorDeviceLost, lost)

	err := s.Reset(0)
	require.ErrorIs(t, err, lost)
}

func TestSlotsDestroy(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewDummyDevice(common.Vulkan1_0, []string{})
	driver := mocks1_0.NewMockCoreDeviceDriver(ctrl)
	s := newSlots(driver, device, 1)

	gomock.InOrder(
		driver.EXPECT().DestroyFence(s.InFlight[0], nil),
		driver.EXPECT().DestroySemaphore(s.RenderFinished[0], nil),
		driver.EXPECT().DestroySemaphore(s.ImageAvailable[0], nil),
		driver.EXPECT().FreeCommandBuffers(s.CommandBuffers[0]),
	)

	s.Destroy()
	require.Zero(t, s.Len())
}

func TestNewCommandPoolResetsBuffers(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewDummyDevice(common.Vulkan1_0, []string{})
	driver := mocks1_0.NewMockCoreDeviceDriver(ctrl)
	pool := mocks.NewDummyCommandPool(device)

	driver.EXPECT().CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: 3,
	}).DoAndReturn(func(_ *loader.AllocationCallbacks, _ core1_0.CommandPoolCreateInfo) (core1_0.CommandPool, common.VkResult, error) {
		return pool, core1_0.VKSuccess, nil
	})

	got, err := NewCommandPool(driver, 3)
	require.NoError(t, err)
	require.Equal(t, pool, got)
}
