package scene

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func TestVertexLayout(t *testing.T) {
	require.Equal(t, 32, int(unsafe.Sizeof(Vertex{})))
	require.Equal(t, 32, binary.Size(Vertex{}))

	attrs := VertexAttributes()
	require.Len(t, attrs, 3)
	assert.Equal(t, 0, attrs[0].Offset)
	assert.Equal(t, 12, attrs[1].Offset)
	assert.Equal(t, 24, attrs[2].Offset)
	assert.Equal(t, 32, VertexBindings()[0].Stride)
}

func TestCubeMesh(t *testing.T) {
	cube, err := Cube()
	require.NoError(t, err)
	require.Len(t, cube.Vertices, 8)
	require.Len(t, cube.Indices, 36)
	for _, idx := range cube.Indices {
		require.Less(t, int(idx), len(cube.Vertices))
	}
	for _, v := range cube.Vertices {
		for i := 0; i < 3; i++ {
			require.InDelta(t, 0.5, math.Abs(float64(v.Position[i])), 1e-6)
			require.GreaterOrEqual(t, v.Color[i], float32(0))
			require.LessOrEqual(t, v.Color[i], float32(1))
		}
	}
}

func TestPack(t *testing.T) {
	a := &Mesh{
		Vertices: []Vertex{{}, {}, {}},
		Indices:  []uint16{0, 1, 2},
	}
	b := Plane(1, 1)

	g, err := Pack(a, b)
	require.NoError(t, err)
	require.Len(t, g.Ranges, 2)

	vertexBytes := (3 + 4) * 32
	require.Equal(t, Range{VertexOffset: 0, IndexOffset: vertexBytes, IndexCount: 3}, g.Ranges[0])
	// 3 uint16 indices pad to 8 bytes
	require.Equal(t, Range{VertexOffset: 3 * 32, IndexOffset: vertexBytes + 8, IndexCount: 6}, g.Ranges[1])
	require.Equal(t, vertexBytes+8+12, len(g.Bytes))

	for _, r := range g.Ranges {
		require.Zero(t, r.IndexOffset%4)
	}

	second := g.Bytes[g.Ranges[1].IndexOffset:]
	require.Equal(t, uint16(1), common.ByteOrder.Uint16(second[2:]))
	require.Equal(t, uint16(3), common.ByteOrder.Uint16(second[8:]))
}

func TestSortDrawablesTexturedFirst(t *testing.T) {
	drawables := []Drawable{
		{ID: "a", Material: Untextured{}},
		{ID: "b", Material: Textured{}},
		{ID: "c", Material: Untextured{}},
		{ID: "d", Material: Textured{}},
	}
	SortDrawables(drawables)

	var order []ObjectID
	for _, d := range drawables {
		order = append(order, d.ID)
	}
	require.Equal(t, []ObjectID{"b", "d", "a", "c"}, order)
}

func TestDefaultScene(t *testing.T) {
	s, err := Default("textures/texture.png")
	require.NoError(t, err)
	require.Equal(t, ObjectPlane, s.Drawables[0].ID)
	require.Equal(t, ObjectCube, s.Drawables[1].ID)
	require.Equal(t, []ObjectID{ObjectPlane, ObjectCube, ObjectLight}, s.Objects())

	uniforms := s.Uniforms(0, core1_0.Extent2D{Width: 1080, Height: 2340})
	require.Len(t, uniforms, 3)

	plane := uniforms[ObjectPlane].(*ObjectUniform)
	cube := uniforms[ObjectCube].(*ObjectUniform)
	require.Equal(t, float32(1), plane.Params.X())
	require.Equal(t, float32(0), cube.Params.X())

	// plane sits 0.3 - 1.1 below the origin
	origin := plane.Model.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	require.InDelta(t, -0.8, origin.Y(), 1e-5)

	light := uniforms[ObjectLight].(*LightUniform)
	require.Equal(t, mgl32.Vec4{0, 5, 0, 1}, light.Position)
	require.Equal(t, float32(0.032), light.Quadratic)
}

func TestUniformSizes(t *testing.T) {
	require.Equal(t, 3*64+16, binary.Size(ObjectUniform{}))
	require.Equal(t, 64, binary.Size(LightUniform{}))
}

func TestCubeRotation(t *testing.T) {
	require.True(t, CubeRotation(0).ApproxEqual(mgl32.Ident4()))
	require.True(t, CubeRotation(2).ApproxEqualThreshold(mgl32.Ident4(), 1e-5))

	// half a swing in, a quarter turn about Y
	require.True(t, CubeRotation(0.5).ApproxEqualThreshold(mgl32.HomogRotate3DY(math.Pi/2), 1e-5))
	// same point of the second half, about X
	require.True(t, CubeRotation(2.5).ApproxEqualThreshold(mgl32.HomogRotate3DX(math.Pi/2), 1e-5))
	// the cycle repeats
	require.True(t, CubeRotation(4.5).ApproxEqualThreshold(CubeRotation(0.5), 1e-5))
}

func TestProjectionFlipsY(t *testing.T) {
	proj := Projection(core1_0.Extent2D{Width: 800, Height: 800})
	require.Less(t, proj[5], float32(0))
}

func TestProjectionFollowsChainExtent(t *testing.T) {
	// a quarter-turned surface hands back the swapped extent, nothing else
	for _, extent := range []core1_0.Extent2D{{Width: 1080, Height: 2340}, {Width: 2340, Height: 1080}} {
		expected := mgl32.Perspective(mgl32.DegToRad(fieldOfView), float32(extent.Width)/float32(extent.Height), nearPlane, farPlane)
		require.True(t, Projection(extent).ApproxEqualThreshold(flipY(expected), 1e-5))
	}
}

func TestProjectionEmptyExtent(t *testing.T) {
	expected := mgl32.Perspective(mgl32.DegToRad(fieldOfView), 1, nearPlane, farPlane)
	require.True(t, Projection(core1_0.Extent2D{}).ApproxEqualThreshold(flipY(expected), 1e-5))
}

func flipY(m mgl32.Mat4) mgl32.Mat4 {
	m[5] *= -1
	return m
}

func TestAnimator(t *testing.T) {
	now := 10 * time.Second
	a := NewAnimator(func() time.Duration { return now })
	require.Zero(t, a.Seconds())

	now += 1500 * time.Millisecond
	require.InDelta(t, 1.5, a.Seconds(), 1e-9)
}
