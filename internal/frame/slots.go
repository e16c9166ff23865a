package frame

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// NewCommandPool creates a pool whose buffers may be reset one at a time.
func NewCommandPool(driver core1_0.DeviceDriver, family int) (core1_0.CommandPool, error) {
	pool, _, err := driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: family,
	})
	return pool, errors.Wrap(err, "frame: create command pool")
}

// Slots holds the synchronization objects and command buffer of each frame
// slot. A slot's fence is created signaled so the first wait returns at once.
type Slots struct {
	driver core1_0.DeviceDriver
	pool   core1_0.CommandPool

	CommandBuffers []core1_0.CommandBuffer
	ImageAvailable []core1_0.Semaphore
	RenderFinished []core1_0.Semaphore
	InFlight       []core1_0.Fence
}

func NewSlots(driver core1_0.DeviceDriver, pool core1_0.CommandPool, frames int) (*Slots, error) {
	s := &Slots{driver: driver, pool: pool}

	var err error
	s.CommandBuffers, _, err = driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: frames,
	})
	if err != nil {
		return nil, errors.Wrap(err, "frame: allocate command buffers")
	}

	for i := 0; i < frames; i++ {
		imageAvailable, _, err := driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "frame: image semaphore %d", i)
		}
		s.ImageAvailable = append(s.ImageAvailable, imageAvailable)

		renderFinished, _, err := driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "frame: render semaphore %d", i)
		}
		s.RenderFinished = append(s.RenderFinished, renderFinished)

		fence, _, err := driver.CreateFence(nil, core1_0.FenceCreateInfo{
			Flags: core1_0.FenceCreateSignaled,
		})
		if err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "frame: fence %d", i)
		}
		s.InFlight = append(s.InFlight, fence)
	}

	return s, nil
}

func (s *Slots) Len() int { return len(s.InFlight) }

// Wait blocks until the GPU has finished with slot.
func (s *Slots) Wait(slot int) error {
	_, err := s.driver.WaitForFences(true, common.NoTimeout, s.InFlight[slot])
	return errors.Wrapf(err, "frame: wait fence %d", slot)
}

// Reset unsignals the slot's fence and clears its command buffer. Call it
// only once the frame is certain to be submitted.
func (s *Slots) Reset(slot int) error {
	if _, err := s.driver.ResetFences(s.InFlight[slot]); err != nil {
		return errors.Wrapf(err, "frame: reset fence %d", slot)
	}
	_, err := s.driver.ResetCommandBuffer(s.CommandBuffers[slot], 0)
	return errors.Wrapf(err, "frame: reset command buffer %d", slot)
}

func (s *Slots) Destroy() {
	for _, fence := range s.InFlight {
		s.driver.DestroyFence(fence, nil)
	}
	for _, semaphore := range s.RenderFinished {
		s.driver.DestroySemaphore(semaphore, nil)
	}
	for _, semaphore := range s.ImageAvailable {
		s.driver.DestroySemaphore(semaphore, nil)
	}
	if len(s.CommandBuffers) > 0 {
		s.driver.FreeCommandBuffers(s.CommandBuffers...)
	}
	s.InFlight, s.RenderFinished, s.ImageAvailable, s.CommandBuffers = nil, nil, nil, nil
}
