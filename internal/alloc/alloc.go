// Package alloc creates buffers and images backed by device memory and
// moves data into them.
package alloc

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

var ErrNoMemoryType = errors.New("no memory type satisfies the request")

const (
	HostVisible = core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
	DeviceLocal = core1_0.MemoryPropertyDeviceLocal
)

// FindMemoryType returns the first memory type index allowed by filter whose
// property flags contain every bit of required.
func FindMemoryType(types []core1_0.MemoryType, filter uint32, required core1_0.MemoryPropertyFlags) (int, error) {
	for i, memoryType := range types {
		typeBit := uint32(1 << i)
		if filter&typeBit != 0 && memoryType.PropertyFlags&required == required {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "alloc: filter %#x, properties %s", filter, required)
}

type Buffer struct {
	Handle core1_0.Buffer
	Memory core1_0.DeviceMemory
	Size   int
}

type Allocator struct {
	driver      core1_0.DeviceDriver
	memoryTypes []core1_0.MemoryType
	pool        core1_0.CommandPool
	queue       core1_0.Queue
}

// New creates an allocator that records one-shot transfers into pool and
// submits them to queue.
func New(driver core1_0.DeviceDriver, memory *core1_0.PhysicalDeviceMemoryProperties, pool core1_0.CommandPool, queue core1_0.Queue) *Allocator {
	return &Allocator{
		driver:      driver,
		memoryTypes: memory.MemoryTypes,
		pool:        pool,
		queue:       queue,
	}
}

func (a *Allocator) allocate(reqs *core1_0.MemoryRequirements, props core1_0.MemoryPropertyFlags) (core1_0.DeviceMemory, error) {
	index, err := FindMemoryType(a.memoryTypes, reqs.MemoryTypeBits, props)
	if err != nil {
		return core1_0.DeviceMemory{}, err
	}

	memory, _, err := a.driver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: index,
	})
	if err != nil {
		return core1_0.DeviceMemory{}, errors.Wrapf(err, "alloc: allocate %d bytes", reqs.Size)
	}
	return memory, nil
}

func (a *Allocator) CreateBuffer(size int, usage core1_0.BufferUsageFlags, props core1_0.MemoryPropertyFlags) (*Buffer, error) {
	handle, _, err := a.driver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "alloc: create buffer of %d bytes", size)
	}

	memory, err := a.allocate(a.driver.GetBufferMemoryRequirements(handle), props)
	if err != nil {
		a.driver.DestroyBuffer(handle, nil)
		return nil, err
	}

	if _, err = a.driver.BindBufferMemory(handle, memory, 0); err != nil {
		a.driver.DestroyBuffer(handle, nil)
		a.driver.FreeMemory(memory, nil)
		return nil, errors.Wrap(err, "alloc: bind buffer memory")
	}

	return &Buffer{Handle: handle, Memory: memory, Size: size}, nil
}

// Write maps the buffer, copies data in little-endian layout at offset and
// unmaps. Buffers written this way must be host-coherent.
func (a *Allocator) Write(b *Buffer, offset int, data any) error {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, common.ByteOrder, data); err != nil {
		return errors.Wrap(err, "alloc: encode")
	}
	if offset+buf.Len() > b.Size {
		return errors.Newf("alloc: write of %d bytes at %d overflows %d byte buffer", buf.Len(), offset, b.Size)
	}

	ptr, _, err := a.driver.MapMemory(b.Memory, offset, buf.Len(), 0)
	if err != nil {
		return errors.Wrap(err, "alloc: map memory")
	}
	defer a.driver.UnmapMemory(b.Memory)

	copy(unsafe.Slice((*byte)(ptr), buf.Len()), buf.Bytes())
	return nil
}

// Upload copies data into a new device-local buffer through a staging
// buffer. It blocks until the copy has finished and the staging buffer is
// gone.
func (a *Allocator) Upload(data []byte, usage core1_0.BufferUsageFlags) (*Buffer, error) {
	staging, err := a.CreateBuffer(len(data), core1_0.BufferUsageTransferSrc, HostVisible)
	if err != nil {
		return nil, err
	}
	defer a.DestroyBuffer(staging)

	if err = a.Write(staging, 0, data); err != nil {
		return nil, err
	}

	dst, err := a.CreateBuffer(len(data), usage|core1_0.BufferUsageTransferDst, DeviceLocal)
	if err != nil {
		return nil, err
	}

	err = a.OneShot(func(cmd core1_0.CommandBuffer) error {
		return a.driver.CmdCopyBuffer(cmd, staging.Handle, dst.Handle, core1_0.BufferCopy{Size: len(data)})
	})
	if err != nil {
		a.DestroyBuffer(dst)
		return nil, errors.Wrap(err, "alloc: staged copy")
	}

	return dst, nil
}

// OneShot records commands into a temporary command buffer, submits it and
// waits for the queue to go idle.
func (a *Allocator) OneShot(record func(cmd core1_0.CommandBuffer) error) error {
	buffers, _, err := a.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        a.pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return errors.Wrap(err, "alloc: allocate command buffer")
	}
	cmd := buffers[0]
	defer a.driver.FreeCommandBuffers(cmd)

	if _, err = a.driver.BeginCommandBuffer(cmd, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	}); err != nil {
		return errors.Wrap(err, "alloc: begin command buffer")
	}

	if err = record(cmd); err != nil {
		return err
	}

	if _, err = a.driver.EndCommandBuffer(cmd); err != nil {
		return errors.Wrap(err, "alloc: end command buffer")
	}

	if _, err = a.driver.QueueSubmit(a.queue, nil, core1_0.SubmitInfo{
		CommandBuffers: []core1_0.CommandBuffer{cmd},
	}); err != nil {
		return errors.Wrap(err, "alloc: submit")
	}

	_, err = a.driver.QueueWaitIdle(a.queue)
	return errors.Wrap(err, "alloc: wait queue idle")
}

func (a *Allocator) DestroyBuffer(b *Buffer) {
	if b == nil {
		return
	}
	if b.Handle.Initialized() {
		a.driver.DestroyBuffer(b.Handle, nil)
	}
	if b.Memory.Initialized() {
		a.driver.FreeMemory(b.Memory, nil)
	}
}
