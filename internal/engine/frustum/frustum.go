// Package frustum provides view-frustum plane extraction and visibility tests.
package frustum

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a half-space: Ax + By + Cz + D = 0.
// The normal (A, B, C) points into the inside of the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means on the inside (same side as the normal).
func (p Plane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FromMatrix extracts the six frustum planes from a view-projection matrix
// using the Gribb/Hartmann method. Planes are normalized so DistanceTo
// returns true world-unit distances.
func FromMatrix(vp mgl32.Mat4) Frustum {
	// Rows of the clip matrix (mgl32 stores column-major).
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{vp[i], vp[4+i], vp[8+i], vp[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	f.Planes[0] = normalizePlane(r3.Add(r0)) // Left:   r3 + r0
	f.Planes[1] = normalizePlane(r3.Sub(r0)) // Right:  r3 - r0
	f.Planes[2] = normalizePlane(r3.Add(r1)) // Bottom: r3 + r1
	f.Planes[3] = normalizePlane(r3.Sub(r1)) // Top:    r3 - r1
	f.Planes[4] = normalizePlane(r3.Add(r2)) // Near:   r3 + r2
	f.Planes[5] = normalizePlane(r3.Sub(r2)) // Far:    r3 - r2
	return f
}

// normalizePlane scales the plane equation so |(A,B,C)| == 1.
// Degenerate planes (zero-length normal) are left as-is to avoid a
// divide by zero; they never reject anything.
func normalizePlane(v mgl32.Vec4) Plane {
	n := mgl32.Vec3{v.X(), v.Y(), v.Z()}
	l := n.Len()
	if l < 1e-8 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W() / l}
}

// ContainsSphere reports whether a sphere is at least partially inside the
// frustum. The test is conservative: spheres intersecting a plane count as
// visible, so partially-visible geometry is never culled.
func (f *Frustum) ContainsSphere(center mgl32.Vec3, radius float32) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceTo(center) < -radius {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether a point is inside the frustum.
func (f *Frustum) ContainsPoint(pt mgl32.Vec3) bool {
	return f.ContainsSphere(pt, 0)
}
