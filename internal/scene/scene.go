package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v3/core1_0"
)

type Scene struct {
	Geometry  *Geometry
	Drawables []Drawable
	Light     Light
}

// Default is a textured floor with the animated cube above it.
func Default(texture string) (*Scene, error) {
	cube, err := Cube()
	if err != nil {
		return nil, err
	}

	geometry, err := Pack(Plane(3, 4), cube)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		Geometry: geometry,
		Drawables: []Drawable{
			{ID: ObjectCube, Mesh: 1, Material: Untextured{}},
			{ID: ObjectPlane, Mesh: 0, Material: Textured{Texture: texture}},
		},
		Light: DefaultLight(),
	}
	SortDrawables(s.Drawables)
	return s, nil
}

// Objects lists every uniform owner: each drawable, then the light.
func (s *Scene) Objects() []ObjectID {
	ids := make([]ObjectID, 0, len(s.Drawables)+1)
	for _, d := range s.Drawables {
		ids = append(ids, d.ID)
	}
	return append(ids, ObjectLight)
}

// Uniforms computes every uniform block for one frame.
func (s *Scene) Uniforms(seconds float64, extent core1_0.Extent2D) map[ObjectID]any {
	view := View()
	proj := Projection(extent)

	out := make(map[ObjectID]any, len(s.Drawables)+1)
	for _, d := range s.Drawables {
		out[d.ID] = &ObjectUniform{
			Model:  ModelFor(d.ID, seconds),
			View:   view,
			Proj:   proj,
			Params: mgl32.Vec4{d.Material.TextureWeight(), 0, 0, 0},
		}
	}
	light := s.Light.Uniform()
	out[ObjectLight] = &light
	return out
}
