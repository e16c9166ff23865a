package scene

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// ObjectUniform is the per-object uniform block. Params.X is the texture
// weight, the rest is reserved.
type ObjectUniform struct {
	Model  mgl32.Mat4
	View   mgl32.Mat4
	Proj   mgl32.Mat4
	Params mgl32.Vec4
}

// LightUniform matches the std140 layout of the shader's light block.
type LightUniform struct {
	Position  mgl32.Vec4
	Direction mgl32.Vec4
	Color     mgl32.Vec4
	Intensity float32
	Constant  float32
	Linear    float32
	Quadratic float32
}

type Light struct {
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Constant  float32
	Linear    float32
	Quadratic float32
}

func DefaultLight() Light {
	return Light{
		Position:  mgl32.Vec3{0, 5, 0},
		Direction: mgl32.Vec3{0, 1, 0},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1,
		Constant:  1,
		Linear:    0.09,
		Quadratic: 0.032,
	}
}

func (l Light) Uniform() LightUniform {
	return LightUniform{
		Position:  l.Position.Vec4(1),
		Direction: l.Direction.Vec4(0),
		Color:     l.Color.Vec4(1),
		Intensity: l.Intensity,
		Constant:  l.Constant,
		Linear:    l.Linear,
		Quadratic: l.Quadratic,
	}
}

var (
	cameraEye    = mgl32.Vec3{2, 1.5, 6}
	cameraTarget = mgl32.Vec3{0, 0, 0}
	cameraUp     = mgl32.Vec3{0, 1, 0}

	sceneOffset = mgl32.Translate3D(0, 0.3, 0)
	planeOffset = mgl32.Translate3D(0, -1.1, 0)
)

const (
	fieldOfView = 65.0
	nearPlane   = 0.1
	farPlane    = 100.0
)

func View() mgl32.Mat4 {
	return mgl32.LookAtV(cameraEye, cameraTarget, cameraUp)
}

// Projection is a perspective projection at the chain extent's aspect
// ratio. The compositor applies the surface transform.
func Projection(extent core1_0.Extent2D) mgl32.Mat4 {
	aspect := float32(1)
	if extent.Height > 0 {
		aspect = float32(extent.Width) / float32(extent.Height)
	}

	proj := mgl32.Perspective(mgl32.DegToRad(fieldOfView), aspect, nearPlane, farPlane)
	// Vulkan clip space has Y pointing down.
	proj[5] *= -1
	return proj
}

// CubeRotation swings the cube 90 degrees either way at 0.5 Hz, about Y for
// the first half of each 4 second cycle and about X for the second.
func CubeRotation(seconds float64) mgl32.Mat4 {
	phase := math.Mod(seconds, 4)
	angle := float32(math.Pi / 2 * math.Sin(2*math.Pi*0.5*phase))
	if phase < 2 {
		return mgl32.HomogRotate3DY(angle)
	}
	return mgl32.HomogRotate3DX(angle)
}

// ModelFor returns the model matrix of a drawable at the given time.
func ModelFor(id ObjectID, seconds float64) mgl32.Mat4 {
	switch id {
	case ObjectCube:
		return sceneOffset.Mul4(CubeRotation(seconds))
	case ObjectPlane:
		return sceneOffset.Mul4(planeOffset)
	}
	return sceneOffset
}

// Clock returns the time elapsed since an arbitrary fixed point.
type Clock func() time.Duration

// Animator measures scene time from its creation.
type Animator struct {
	now   Clock
	start time.Duration
}

func NewAnimator(now Clock) *Animator {
	if now == nil {
		now = hrtime.Now
	}
	return &Animator{now: now, start: now()}
}

func (a *Animator) Seconds() float64 {
	return (a.now() - a.start).Seconds()
}
