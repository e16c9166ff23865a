package scene

import (
	"embed"
	"io"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed meshes
var meshes embed.FS

type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// LoadOBJ decodes a Wavefront mesh, splitting polygons into triangle fans.
// Vertex color is derived from position so each corner is distinguishable
// without a texture.
func LoadOBJ(meshFile, materialFile io.Reader) (*Mesh, error) {
	decoder, err := obj.DecodeReader(meshFile, materialFile)
	if err != nil {
		return nil, errors.Wrap(err, "scene: decode obj")
	}

	mesh := &Mesh{}
	unique := map[int]uint16{}

	add := func(face obj.Face, i int) error {
		vertInd := face.Vertices[i]
		index, ok := unique[vertInd]
		if !ok {
			if len(mesh.Vertices) > math.MaxUint16 {
				return errors.Newf("scene: mesh exceeds %d vertices", math.MaxUint16+1)
			}
			pos := mgl32.Vec3{
				decoder.Vertices[vertInd*3],
				decoder.Vertices[vertInd*3+1],
				decoder.Vertices[vertInd*3+2],
			}
			vert := Vertex{Position: pos, Color: colorFor(pos)}
			if len(face.Uvs) > i {
				uvInd := face.Uvs[i]
				vert.TexCoord = mgl32.Vec2{decoder.Uvs[uvInd*2], 1.0 - decoder.Uvs[uvInd*2+1]}
			}

			index = uint16(len(mesh.Vertices))
			mesh.Vertices = append(mesh.Vertices, vert)
			unique[vertInd] = index
		}
		mesh.Indices = append(mesh.Indices, index)
		return nil
	}

	for _, object := range decoder.Objects {
		for _, face := range object.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range []int{0, i - 1, i} {
					if err := add(face, corner); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	if len(mesh.Indices) == 0 {
		return nil, errors.New("scene: obj has no faces")
	}
	return mesh, nil
}

func colorFor(pos mgl32.Vec3) mgl32.Vec3 {
	c := pos.Normalize().Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
	return mgl32.Vec3{
		mgl32.Clamp(c.X(), 0, 1),
		mgl32.Clamp(c.Y(), 0, 1),
		mgl32.Clamp(c.Z(), 0, 1),
	}
}

// Cube is the unit cube shipped with the package.
func Cube() (*Mesh, error) {
	meshFile, err := meshes.Open("meshes/cube.obj")
	if err != nil {
		return nil, err
	}
	defer meshFile.Close()

	matFile, err := meshes.Open("meshes/cube.mtl")
	if err != nil {
		return nil, err
	}
	defer matFile.Close()

	return LoadOBJ(meshFile, matFile)
}

// Plane is a square floor of the given half size. Texture coordinates run
// past 1 so a repeating sampler tiles it.
func Plane(halfSize, tiles float32) *Mesh {
	gray := mgl32.Vec3{0.8, 0.8, 0.8}
	return &Mesh{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-halfSize, 0, halfSize}, Color: gray, TexCoord: mgl32.Vec2{0, tiles}},
			{Position: mgl32.Vec3{halfSize, 0, halfSize}, Color: gray, TexCoord: mgl32.Vec2{tiles, tiles}},
			{Position: mgl32.Vec3{halfSize, 0, -halfSize}, Color: gray, TexCoord: mgl32.Vec2{tiles, 0}},
			{Position: mgl32.Vec3{-halfSize, 0, -halfSize}, Color: gray, TexCoord: mgl32.Vec2{0, 0}},
		},
		Indices: []uint16{0, 1, 2, 2, 3, 0},
	}
}
