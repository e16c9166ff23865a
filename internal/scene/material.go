package scene

import "sort"

// Material is either Untextured or Textured.
type Material interface {
	// TextureWeight is how much the sampled texel contributes to the final
	// color, from 0 to 1.
	TextureWeight() float32
	isMaterial()
}

type Untextured struct{}

func (Untextured) TextureWeight() float32 { return 0 }
func (Untextured) isMaterial()            {}

type Textured struct {
	Texture string
}

func (Textured) TextureWeight() float32 { return 1 }
func (Textured) isMaterial()            {}

type ObjectID string

const (
	ObjectPlane ObjectID = "plane"
	ObjectCube  ObjectID = "cube"
	ObjectLight ObjectID = "light"
)

// Drawable is one indexed draw of a packed mesh.
type Drawable struct {
	ID       ObjectID
	Mesh     int
	Material Material
}

// SortDrawables puts textured drawables first, keeping relative order
// otherwise.
func SortDrawables(drawables []Drawable) {
	sort.SliceStable(drawables, func(i, j int) bool {
		_, ti := drawables[i].Material.(Textured)
		_, tj := drawables[j].Material.(Textured)
		return ti && !tj
	})
}
