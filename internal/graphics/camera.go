package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minPitch    = -89.0 * math.Pi / 180
	maxPitch    = 89.0 * math.Pi / 180
	minDistance = 0.5
)

// Camera is an orbit camera around Target. Yaw 0 and pitch 0 put the eye on
// +Z of the target looking toward -Z.
type Camera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32 // radians, around +Y
	Pitch    float32 // radians, positive looks down from above

	AspectRatio float32
	FOV         float32 // degrees, vertical
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		Distance:  10,
		FOV:       60.0,
		NearPlane: 0.1,
		FarPlane:  1000.0,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio. Degenerate sizes are ignored.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Eye returns the camera position in world space.
func (c *Camera) Eye() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(c.Yaw))
	sp, cp := math.Sincos(float64(c.Pitch))
	dir := mgl32.Vec3{float32(cp * sy), float32(sp), float32(cp * cy)}
	return c.Target.Add(dir.Mul(c.Distance))
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Orbit rotates the eye around the target. Pitch is kept short of the poles.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 2*math.Pi))
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, minPitch, maxPitch)
}

// Zoom scales the orbit distance by factor.
func (c *Camera) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.Distance = max(c.Distance*factor, minDistance)
}

// Frame points the camera at the centre of the box and backs off until the
// bounding sphere fits the vertical field of view.
func (c *Camera) Frame(lo, hi mgl32.Vec3) {
	c.Target = lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Len() / 2
	half := float64(mgl32.DegToRad(c.FOV)) / 2
	c.Distance = max(float32(float64(radius)/math.Sin(half))*1.05, minDistance)
	if c.FarPlane < c.Distance+radius {
		c.FarPlane = (c.Distance + radius) * 2
	}
}

// Ray returns the world-space ray through window pixel (x, y), with y
// measured from the top edge as glfw reports cursor positions.
func (c *Camera) Ray(x, y float64, width, height int) (origin, dir mgl32.Vec3, err error) {
	winY := float32(float64(height) - y)
	view, proj := c.View(), c.Projection()
	near, err := mgl32.UnProject(mgl32.Vec3{float32(x), winY, 0}, view, proj, 0, 0, width, height)
	if err != nil {
		return origin, dir, err
	}
	far, err := mgl32.UnProject(mgl32.Vec3{float32(x), winY, 1}, view, proj, 0, 0, width, height)
	if err != nil {
		return origin, dir, err
	}
	return near, far.Sub(near).Normalize(), nil
}
