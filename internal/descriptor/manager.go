package descriptor

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/hellovk/internal/alloc"
	"github.com/vkngwrapper/hellovk/internal/scene"
)

// PoolPlan is how big the descriptor pool has to be.
type PoolPlan struct {
	MaxSets int
	Sizes   []core1_0.DescriptorPoolSize
}

// PlanPool sizes a pool for one set per uniform object and per texture, for
// every frame slot.
func PlanPool(frames, uniformObjects, textures int) PoolPlan {
	plan := PoolPlan{MaxSets: frames * (uniformObjects + textures)}
	if uniformObjects > 0 {
		plan.Sizes = append(plan.Sizes, core1_0.DescriptorPoolSize{
			Type:            core1_0.DescriptorTypeUniformBuffer,
			DescriptorCount: frames * uniformObjects,
		})
	}
	if textures > 0 {
		plan.Sizes = append(plan.Sizes, core1_0.DescriptorPoolSize{
			Type:            core1_0.DescriptorTypeCombinedImageSampler,
			DescriptorCount: frames * textures,
		})
	}
	return plan
}

// Uniform describes one object that gets its own uniform buffer per frame.
type Uniform struct {
	ID     scene.ObjectID
	Size   int
	Layout core1_0.DescriptorSetLayout
}

type Options struct {
	Frames        int
	Uniforms      []Uniform
	Texture       *alloc.Texture
	TextureLayout core1_0.DescriptorSetLayout
}

type uniform struct {
	buffers []*alloc.Buffer
	sets    []core1_0.DescriptorSet
}

// Manager maps each object to its per-slot uniform buffers and sets. Sets
// are written once at creation; per frame only buffer contents change.
type Manager struct {
	driver    core1_0.DeviceDriver
	allocator *alloc.Allocator

	pool        core1_0.DescriptorPool
	uniforms    map[scene.ObjectID]*uniform
	textureSets []core1_0.DescriptorSet
}

func New(driver core1_0.DeviceDriver, allocator *alloc.Allocator, opts Options) (*Manager, error) {
	if opts.Frames < 1 {
		return nil, errors.Newf("descriptor: %d frames", opts.Frames)
	}

	m := &Manager{
		driver:    driver,
		allocator: allocator,
		uniforms:  make(map[scene.ObjectID]*uniform, len(opts.Uniforms)),
	}

	textures := 0
	if opts.Texture != nil {
		textures = 1
	}
	plan := PlanPool(opts.Frames, len(opts.Uniforms), textures)

	var err error
	m.pool, _, err = driver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets:   plan.MaxSets,
		PoolSizes: plan.Sizes,
	})
	if err != nil {
		return nil, errors.Wrap(err, "descriptor: create pool")
	}

	for _, u := range opts.Uniforms {
		if err := m.addUniform(opts.Frames, u); err != nil {
			m.Destroy()
			return nil, err
		}
	}

	if opts.Texture != nil {
		if err := m.addTexture(opts.Frames, opts.Texture, opts.TextureLayout); err != nil {
			m.Destroy()
			return nil, err
		}
	}

	return m, nil
}

func (m *Manager) allocateSets(frames int, layout core1_0.DescriptorSetLayout) ([]core1_0.DescriptorSet, error) {
	layouts := make([]core1_0.DescriptorSetLayout, frames)
	for i := range layouts {
		layouts[i] = layout
	}
	sets, _, err := m.driver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: m.pool,
		SetLayouts:     layouts,
	})
	return sets, err
}

func (m *Manager) addUniform(frames int, u Uniform) error {
	entry := &uniform{}
	m.uniforms[u.ID] = entry

	for i := 0; i < frames; i++ {
		buffer, err := m.allocator.CreateBuffer(u.Size, core1_0.BufferUsageUniformBuffer, alloc.HostVisible)
		if err != nil {
			return errors.Wrapf(err, "descriptor: %s uniform buffer", u.ID)
		}
		entry.buffers = append(entry.buffers, buffer)
	}

	sets, err := m.allocateSets(frames, u.Layout)
	if err != nil {
		return errors.Wrapf(err, "descriptor: %s sets", u.ID)
	}
	entry.sets = sets

	for i, set := range sets {
		err = m.driver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
			{
				DstSet:         set,
				DstBinding:     0,
				DescriptorType: core1_0.DescriptorTypeUniformBuffer,
				BufferInfo: []core1_0.DescriptorBufferInfo{
					{
						Buffer: entry.buffers[i].Handle,
						Offset: 0,
						Range:  u.Size,
					},
				},
			},
		}, nil)
		if err != nil {
			return errors.Wrapf(err, "descriptor: write %s set", u.ID)
		}
	}
	return nil
}

func (m *Manager) addTexture(frames int, tex *alloc.Texture, layout core1_0.DescriptorSetLayout) error {
	sets, err := m.allocateSets(frames, layout)
	if err != nil {
		return errors.Wrap(err, "descriptor: texture sets")
	}
	m.textureSets = sets

	for _, set := range sets {
		err = m.driver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
			{
				DstSet:         set,
				DstBinding:     0,
				DescriptorType: core1_0.DescriptorTypeCombinedImageSampler,
				ImageInfo: []core1_0.DescriptorImageInfo{
					{
						ImageView:   tex.View,
						Sampler:     tex.Sampler,
						ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
					},
				},
			},
		}, nil)
		if err != nil {
			return errors.Wrap(err, "descriptor: write texture set")
		}
	}
	return nil
}

// Write overwrites id's uniform buffer for slot. The slot must not be in
// flight.
func (m *Manager) Write(slot int, id scene.ObjectID, value any) error {
	entry, ok := m.uniforms[id]
	if !ok {
		return errors.Newf("descriptor: unknown object %s", id)
	}
	return m.allocator.Write(entry.buffers[slot], 0, value)
}

func (m *Manager) Set(slot int, id scene.ObjectID) core1_0.DescriptorSet {
	return m.uniforms[id].sets[slot]
}

func (m *Manager) TextureSet(slot int) core1_0.DescriptorSet {
	return m.textureSets[slot]
}

// Destroy releases the pool, which frees every set, then the buffers.
func (m *Manager) Destroy() {
	if m.pool.Initialized() {
		m.driver.DestroyDescriptorPool(m.pool, nil)
		m.pool = core1_0.DescriptorPool{}
	}
	for _, entry := range m.uniforms {
		for _, buffer := range entry.buffers {
			m.allocator.DestroyBuffer(buffer)
		}
	}
	m.uniforms = nil
	m.textureSets = nil
}
