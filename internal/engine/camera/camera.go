// Package camera provides the free-look camera used by the rendering core.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/helioscene/helios/internal/engine/frustum"
)

// Camera is a yaw/pitch free-look camera. It is plain data: gameplay mutates
// it between frames, the rendering core only reads it and owns no GPU state.
type Camera struct {
	Position mgl32.Vec3

	Yaw   float32 // radians, 0 looks down -Z
	Pitch float32 // radians, clamped to avoid gimbal flip

	FOV  float32 // vertical field of view, radians
	Near float32
	Far  float32

	MoveSpeed       float32
	LookSensitivity float32
}

// New creates a camera at the given position with default optics.
func New(position mgl32.Vec3) *Camera {
	return &Camera{
		Position:        position,
		Yaw:             0,
		Pitch:           0,
		FOV:             mgl32.DegToRad(60),
		Near:            0.1,
		Far:             500,
		MoveSpeed:       10,
		LookSensitivity: 0.0025,
	}
}

// Front returns the normalized view direction.
func (c *Camera) Front() mgl32.Vec3 {
	cy, sy := cos32(c.Yaw), sin32(c.Yaw)
	cp, sp := cos32(c.Pitch), sin32(c.Pitch)
	return mgl32.Vec3{-sy * cp, sp, -cy * cp}.Normalize()
}

// Right returns the normalized right vector.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Up returns the camera's up basis vector.
func (c *Camera) Up() mgl32.Vec3 {
	return c.Right().Cross(c.Front())
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns the perspective projection for the given aspect ratio.
func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view for the given aspect ratio.
func (c *Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}

// Frustum builds the camera's view frustum for culling.
func (c *Camera) Frustum(aspect float32) frustum.Frustum {
	return frustum.FromMatrix(c.ViewProjection(aspect))
}

// HandleLook applies a mouse delta to yaw/pitch.
func (c *Camera) HandleLook(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.LookSensitivity
	c.Pitch -= deltaY * c.LookSensitivity

	limit := float32(gomath.Pi/2 - 0.01)
	if c.Pitch > limit {
		c.Pitch = limit
	}
	if c.Pitch < -limit {
		c.Pitch = -limit
	}
}

// HandleMovement moves the camera along its basis vectors. forward/right/up
// are -1..1 input intents, dt is the frame delta in seconds.
func (c *Camera) HandleMovement(forward, right, up, dt float32) {
	step := c.MoveSpeed * dt
	c.Position = c.Position.
		Add(c.Front().Mul(forward * step)).
		Add(c.Right().Mul(right * step)).
		Add(mgl32.Vec3{0, up * step, 0})
}

func sin32(x float32) float32 { return float32(gomath.Sin(float64(x))) }
func cos32(x float32) float32 { return float32(gomath.Cos(float64(x))) }
