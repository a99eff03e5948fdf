// Package light defines light sources and their per-light shadow bookkeeping.
package light

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrShadowUnimplemented is returned when a shadow matrix is requested for a
// light kind that has no shadow path yet (point and spot).
var ErrShadowUnimplemented = errors.New("shadow rendering not implemented for this light kind")

// moveEpsilon is the per-axis position/target change below which a light is
// still considered shadow-clean.
const moveEpsilon = 1e-5

// Kind is the tagged light variant.
type Kind int

const (
	Directional Kind = iota
	Point
	Spot
)

// String returns the kind name for logs and debug output.
func (k Kind) String() string {
	switch k {
	case Directional:
		return "directional"
	case Point:
		return "point"
	case Spot:
		return "spot"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Data holds the business fields of a light, mutated by the scene/editor
// layer. Rendering-cache state lives in ShadowCache, not here.
type Data struct {
	Kind      Kind
	Position  mgl32.Vec3
	Target    mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32

	CastShadows bool

	// Point/spot payload.
	Range      float32
	InnerAngle float32 // spot inner cone, radians
	OuterAngle float32 // spot outer cone, radians
}

// ShadowMap is the GPU resource a shadow-casting light owns. The concrete
// type lives in the shadow package; keeping an interface here avoids an
// import cycle through the shadow renderer.
type ShadowMap interface {
	Resolution() int32
	Destroy()
}

// ShadowCache is the per-light mutable shadow bookkeeping: the dirty flag,
// last rendered position/target snapshot, and the render throttle counter.
// It is only mutated by the shadow renderer.
type ShadowCache struct {
	dirty             bool
	lastPosition      mgl32.Vec3
	lastTarget        mgl32.Vec3
	framesSinceUpdate int

	resolution int32 // 0 until the first initialization pass
	shadowMap  ShadowMap

	// viewProj from the last depth render; reused while re-renders are
	// throttled so sampling always matches the stored depth.
	viewProj mgl32.Mat4
}

// Light pairs the business data with its rendering cache.
type Light struct {
	Data  Data
	cache ShadowCache
}

// New creates a light from the given data. The shadow cache starts dirty so
// the first frame always renders.
func New(data Data) *Light {
	return &Light{
		Data:  data,
		cache: ShadowCache{dirty: true},
	}
}

// NewDirectional creates a directional light shining from position toward target.
func NewDirectional(position, target, color mgl32.Vec3, intensity float32) *Light {
	return New(Data{
		Kind:        Directional,
		Position:    position,
		Target:      target,
		Color:       color,
		Intensity:   intensity,
		CastShadows: true,
	})
}

// NewPoint creates a point light with the given falloff range.
func NewPoint(position, color mgl32.Vec3, intensity, lightRange float32) *Light {
	return New(Data{
		Kind:      Point,
		Position:  position,
		Target:    position.Sub(mgl32.Vec3{0, 1, 0}),
		Color:     color,
		Intensity: intensity,
		Range:     lightRange,
	})
}

// NewSpot creates a spot light aimed at target with the given cone angles in radians.
func NewSpot(position, target, color mgl32.Vec3, intensity, lightRange, inner, outer float32) *Light {
	return New(Data{
		Kind:       Spot,
		Position:   position,
		Target:     target,
		Color:      color,
		Intensity:  intensity,
		Range:      lightRange,
		InnerAngle: inner,
		OuterAngle: outer,
	})
}

// SetPosition moves the light. Shadow state dirties automatically through
// the snapshot comparison in IsShadowDirty.
func (l *Light) SetPosition(p mgl32.Vec3) { l.Data.Position = p }

// SetTarget re-aims the light.
func (l *Light) SetTarget(t mgl32.Vec3) { l.Data.Target = t }

// Direction returns the normalized direction the light shines in,
// derived as normalize(target - position). Co-located position and target
// fall back to straight down rather than dividing by a near-zero length.
func (l *Light) Direction() mgl32.Vec3 {
	d := l.Data.Target.Sub(l.Data.Position)
	if d.Len() < 1e-6 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

// Importance scores the light for shadow-resolution and budget decisions:
// intensity over squared camera distance, with the distance floored to avoid
// infinities for lights at the camera.
func (l *Light) Importance(cameraPos mgl32.Vec3) float32 {
	d := l.Data.Position.Sub(cameraPos).Len()
	if d < 0.1 {
		d = 0.1
	}
	return l.Data.Intensity / (d * d)
}

// ShadowMatrix returns the light-space view-projection matrix used for the
// depth pass. extent is the orthographic half-size for directional lights;
// near/far bound the depth range. Point and spot shadows are not implemented
// and fail loudly instead of returning a wrong matrix.
func (l *Light) ShadowMatrix(extent, near, far float32) (mgl32.Mat4, error) {
	switch l.Data.Kind {
	case Directional:
		dir := l.Direction()
		up := mgl32.Vec3{0, 1, 0}
		if abs32(dir.Y()) > 0.99 {
			// Light is nearly vertical; pick a non-parallel up vector.
			up = mgl32.Vec3{0, 0, 1}
		}
		view := mgl32.LookAtV(l.Data.Position, l.Data.Position.Add(dir), up)
		proj := mgl32.Ortho(-extent, extent, -extent, extent, near, far)
		return proj.Mul4(view), nil
	case Point:
		return mgl32.Mat4{}, fmt.Errorf("point light: %w", ErrShadowUnimplemented)
	case Spot:
		return mgl32.Mat4{}, fmt.Errorf("spot light: %w", ErrShadowUnimplemented)
	default:
		return mgl32.Mat4{}, fmt.Errorf("light kind %v: %w", l.Data.Kind, ErrShadowUnimplemented)
	}
}

// IsShadowDirty reports whether the shadow map no longer matches the light:
// either it was never rendered, or position/target drifted more than the
// epsilon since the last clean mark.
func (l *Light) IsShadowDirty() bool {
	if l.cache.dirty {
		return true
	}
	return exceedsEpsilon(l.Data.Position, l.cache.lastPosition) ||
		exceedsEpsilon(l.Data.Target, l.cache.lastTarget)
}

// MarkShadowClean snapshots the current position/target and resets the
// throttle counter. Called by the shadow renderer after a depth pass.
func (l *Light) MarkShadowClean() {
	l.cache.dirty = false
	l.cache.lastPosition = l.Data.Position
	l.cache.lastTarget = l.Data.Target
	l.cache.framesSinceUpdate = 0
}

// MarkShadowDirty forces a re-render on the next frame.
func (l *Light) MarkShadowDirty() { l.cache.dirty = true }

// FramesSinceUpdate returns the number of frames the shadow map has been
// reused without a re-render.
func (l *Light) FramesSinceUpdate() int { return l.cache.framesSinceUpdate }

// SkipShadowFrame counts a frame where the shadow render was skipped.
func (l *Light) SkipShadowFrame() { l.cache.framesSinceUpdate++ }

// ShadowResolution returns the resolved adaptive resolution, or 0 before the
// first initialization pass.
func (l *Light) ShadowResolution() int32 { return l.cache.resolution }

// Shadow returns the light's shadow map resource, or nil if it has none.
func (l *Light) Shadow() ShadowMap { return l.cache.shadowMap }

// StoreShadowMatrix records the view-projection used for the last depth
// render so lighting can sample the stored depth consistently.
func (l *Light) StoreShadowMatrix(m mgl32.Mat4) { l.cache.viewProj = m }

// ShadowViewProj returns the view-projection of the stored shadow depth.
func (l *Light) ShadowViewProj() mgl32.Mat4 { return l.cache.viewProj }

// AttachShadow hands the light its shadow map resource. Any previous
// resource is destroyed first.
func (l *Light) AttachShadow(m ShadowMap, resolution int32) {
	if l.cache.shadowMap != nil && l.cache.shadowMap != m {
		l.cache.shadowMap.Destroy()
	}
	l.cache.shadowMap = m
	l.cache.resolution = resolution
	l.cache.dirty = true
}

// ReleaseShadow destroys and detaches the shadow resource. Used when the
// light is destroyed or stops casting shadows.
func (l *Light) ReleaseShadow() {
	if l.cache.shadowMap != nil {
		l.cache.shadowMap.Destroy()
		l.cache.shadowMap = nil
	}
	l.cache.resolution = 0
	l.cache.dirty = true
}

func exceedsEpsilon(a, b mgl32.Vec3) bool {
	return abs32(a.X()-b.X()) > moveEpsilon ||
		abs32(a.Y()-b.Y()) > moveEpsilon ||
		abs32(a.Z()-b.Z()) > moveEpsilon
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
