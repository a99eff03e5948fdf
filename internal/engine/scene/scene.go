// Package scene defines the drawable contract the rendering core consumes
// and a simple scene container with transparency bookkeeping.
package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/helioscene/helios/internal/engine/shader"
)

// Drawable is anything the pipeline can render. Implementations bind their
// model matrix and material onto the given program and issue the draw call.
type Drawable interface {
	WorldPosition() mgl32.Vec3
	BoundingRadius() float32
	Render(program *shader.Program)
	Transparent() bool
}

// Scene is an ordered list of drawables. The scene/editor layer owns it;
// the rendering core only reads it.
type Scene struct {
	drawables []Drawable
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add appends a drawable to the scene.
func (s *Scene) Add(d Drawable) {
	s.drawables = append(s.drawables, d)
}

// Drawables returns the scene's draw list in insertion order.
func (s *Scene) Drawables() []Drawable {
	return s.drawables
}

// HasTransparentObjects reports whether any drawable needs the forward
// transparency sub-pass.
func (s *Scene) HasTransparentObjects() bool {
	for _, d := range s.drawables {
		if d.Transparent() {
			return true
		}
	}
	return false
}

// TransparentMeshes returns the transparent drawables only.
func (s *Scene) TransparentMeshes() []Drawable {
	var out []Drawable
	for _, d := range s.drawables {
		if d.Transparent() {
			out = append(out, d)
		}
	}
	return out
}

// OpaqueMeshes returns the opaque drawables only.
func (s *Scene) OpaqueMeshes() []Drawable {
	var out []Drawable
	for _, d := range s.drawables {
		if !d.Transparent() {
			out = append(out, d)
		}
	}
	return out
}

// SortBackToFront orders drawables by descending distance from the camera,
// the order blending needs. Sorting is stable so equidistant objects keep
// their scene order.
func SortBackToFront(ds []Drawable, cameraPos mgl32.Vec3) {
	sort.SliceStable(ds, func(i, j int) bool {
		di := ds[i].WorldPosition().Sub(cameraPos).Len()
		dj := ds[j].WorldPosition().Sub(cameraPos).Len()
		return di > dj
	})
}
