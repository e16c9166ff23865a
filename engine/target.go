package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/hellovk/internal/alloc"
	"github.com/vkngwrapper/hellovk/internal/descriptor"
	"github.com/vkngwrapper/hellovk/internal/device"
	"github.com/vkngwrapper/hellovk/internal/frame"
	"github.com/vkngwrapper/hellovk/internal/pipeline"
	"github.com/vkngwrapper/hellovk/internal/scene"
	"github.com/vkngwrapper/hellovk/internal/swapchain"
)

// statusOf sorts an acquire or present result into the statuses the
// scheduler reacts to. Out of date arrives as an error code, so the result
// is checked before err.
func statusOf(res common.VkResult, err error) (frame.Status, error) {
	switch res {
	case khr_swapchain.VKErrorOutOfDate:
		return frame.StatusOutOfDate, nil
	case khr_swapchain.VKSuboptimal:
		return frame.StatusSuboptimal, nil
	}
	if err != nil {
		return frame.StatusOK, err
	}
	return frame.StatusOK, nil
}

// frameTarget issues the Vulkan work for each step of a frame.
type frameTarget struct {
	dev         *device.Device
	chain       *swapchain.Manager
	builder     *swapchain.VulkanBuilder
	slots       *frame.Slots
	pipeline    *pipeline.Pipeline
	geometry    *alloc.Buffer
	scene       *scene.Scene
	descriptors *descriptor.Manager
	animator    *scene.Animator
	clearColor  [4]float32
}

func (t *frameTarget) WaitSlot(slot int) error {
	return t.slots.Wait(slot)
}

func (t *frameTarget) Acquire(slot int) (int, frame.Status, error) {
	image, res, err := t.builder.Driver.AcquireNextImage(t.builder.Swapchain(), common.NoTimeout, &t.slots.ImageAvailable[slot], nil)
	status, err := statusOf(res, err)
	return image, status, err
}

func (t *frameTarget) UpdateUniforms(slot int) error {
	for id, value := range t.scene.Uniforms(t.animator.Seconds(), t.chain.Info().Extent) {
		if err := t.descriptors.Write(slot, id, value); err != nil {
			return err
		}
	}
	return nil
}

func (t *frameTarget) ResetSlot(slot int) error {
	return t.slots.Reset(slot)
}

func (t *frameTarget) Record(slot, image int) error {
	driver := t.dev.Driver
	cmd := t.slots.CommandBuffers[slot]
	extent := t.chain.Info().Extent

	if _, err := driver.BeginCommandBuffer(cmd, core1_0.CommandBufferBeginInfo{}); err != nil {
		return errors.Wrap(err, "begin command buffer")
	}

	err := driver.CmdBeginRenderPass(cmd, core1_0.SubpassContentsInline, core1_0.RenderPassBeginInfo{
		RenderPass:  t.builder.RenderPass(),
		Framebuffer: t.builder.Framebuffer(image),
		RenderArea: core1_0.Rect2D{
			Offset: core1_0.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValues: []core1_0.ClearValue{
			core1_0.ClearValueFloat(t.clearColor),
		},
	})
	if err != nil {
		return errors.Wrap(err, "begin render pass")
	}

	driver.CmdBindPipeline(cmd, core1_0.PipelineBindPointGraphics, t.pipeline.Handle)
	driver.CmdSetViewport(cmd, core1_0.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	driver.CmdSetScissor(cmd, core1_0.Rect2D{Extent: extent})

	light := t.descriptors.Set(slot, scene.ObjectLight)
	for _, d := range t.scene.Drawables {
		r := t.scene.Geometry.Ranges[d.Mesh]

		driver.CmdBindVertexBuffers(cmd, 0, []core1_0.Buffer{t.geometry.Handle}, []int{r.VertexOffset})
		driver.CmdBindIndexBuffer(cmd, t.geometry.Handle, r.IndexOffset, core1_0.IndexTypeUInt16)

		// Textured drawables come first, so set 2 stays bound for the rest.
		sets := []core1_0.DescriptorSet{t.descriptors.Set(slot, d.ID), light}
		if _, ok := d.Material.(scene.Textured); ok {
			sets = append(sets, t.descriptors.TextureSet(slot))
		}
		driver.CmdBindDescriptorSets(cmd, core1_0.PipelineBindPointGraphics, t.pipeline.Layout, 0, sets, nil)

		driver.CmdDrawIndexed(cmd, r.IndexCount, 1, 0, 0, 0)
	}

	driver.CmdEndRenderPass(cmd)

	_, err = driver.EndCommandBuffer(cmd)
	return errors.Wrap(err, "end command buffer")
}

func (t *frameTarget) Submit(slot int) error {
	_, err := t.dev.Driver.QueueSubmit(t.dev.Graphics, &t.slots.InFlight[slot], core1_0.SubmitInfo{
		WaitSemaphores:   []core1_0.Semaphore{t.slots.ImageAvailable[slot]},
		WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []core1_0.CommandBuffer{t.slots.CommandBuffers[slot]},
		SignalSemaphores: []core1_0.Semaphore{t.slots.RenderFinished[slot]},
	})
	return errors.Wrap(err, "queue submit")
}

func (t *frameTarget) Present(slot, image int) (frame.Status, error) {
	res, err := t.builder.Driver.QueuePresent(t.dev.Present, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{t.slots.RenderFinished[slot]},
		Swapchains:     []khr_swapchain.Swapchain{t.builder.Swapchain()},
		ImageIndices:   []int{image},
	})
	return statusOf(res, err)
}
