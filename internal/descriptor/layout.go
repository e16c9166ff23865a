// Package descriptor owns descriptor set layouts, the descriptor pool, the
// per-frame uniform buffers and the sets that point at them.
package descriptor

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Layouts are the three binding groups the pipeline is laid out with: set 0
// holds an object's transforms, set 1 the light, set 2 the texture.
type Layouts struct {
	driver core1_0.DeviceDriver

	Object  core1_0.DescriptorSetLayout
	Light   core1_0.DescriptorSetLayout
	Texture core1_0.DescriptorSetLayout
}

func single(descriptorType core1_0.DescriptorType, stages core1_0.ShaderStageFlags) core1_0.DescriptorSetLayoutCreateInfo {
	return core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  descriptorType,
				DescriptorCount: 1,
				StageFlags:      stages,
			},
		},
	}
}

func NewLayouts(driver core1_0.DeviceDriver) (*Layouts, error) {
	l := &Layouts{driver: driver}
	var err error

	l.Object, _, err = driver.CreateDescriptorSetLayout(nil, single(core1_0.DescriptorTypeUniformBuffer, core1_0.StageVertex))
	if err != nil {
		return nil, errors.Wrap(err, "descriptor: object layout")
	}

	l.Light, _, err = driver.CreateDescriptorSetLayout(nil, single(core1_0.DescriptorTypeUniformBuffer, core1_0.StageVertex|core1_0.StageFragment))
	if err != nil {
		l.Destroy()
		return nil, errors.Wrap(err, "descriptor: light layout")
	}

	l.Texture, _, err = driver.CreateDescriptorSetLayout(nil, single(core1_0.DescriptorTypeCombinedImageSampler, core1_0.StageFragment))
	if err != nil {
		l.Destroy()
		return nil, errors.Wrap(err, "descriptor: texture layout")
	}

	return l, nil
}

// All returns the layouts in set-number order.
func (l *Layouts) All() []core1_0.DescriptorSetLayout {
	return []core1_0.DescriptorSetLayout{l.Object, l.Light, l.Texture}
}

func (l *Layouts) Destroy() {
	for _, layout := range []*core1_0.DescriptorSetLayout{&l.Texture, &l.Light, &l.Object} {
		if layout.Initialized() {
			l.driver.DestroyDescriptorSetLayout(*layout, nil)
			*layout = core1_0.DescriptorSetLayout{}
		}
	}
}
