// Package deferred implements the G-buffer geometry pass and the
// screen-space lighting passes of the deferred pipeline.
package deferred

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/helioscene/helios/internal/engine/camera"
	"github.com/helioscene/helios/internal/engine/frustum"
	"github.com/helioscene/helios/internal/engine/gbuffer"
	"github.com/helioscene/helios/internal/engine/scene"
	"github.com/helioscene/helios/internal/engine/shader"
	"github.com/helioscene/helios/internal/engine/shaders"
)

// GeometryStats counts the draw outcome of one geometry pass.
type GeometryStats struct {
	Drawn  int
	Culled int
}

// GeometryRenderer fills the G-buffer with the scene's opaque geometry.
type GeometryRenderer struct {
	program *shader.Program
	gbuf    *gbuffer.GBuffer

	// Culling can be toggled at runtime, e.g. from a debug key.
	Culling bool

	stats GeometryStats
}

// NewGeometryRenderer allocates a G-buffer of the given size and
// compiles the geometry-pass shader.
func NewGeometryRenderer(width, height int32, culling bool) (*GeometryRenderer, error) {
	gbuf, err := gbuffer.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("creating G-buffer: %w", err)
	}
	program, err := shader.Load(shaders.GeometryVertexShader, shaders.GeometryFragmentShader)
	if err != nil {
		gbuf.Destroy()
		return nil, fmt.Errorf("compiling geometry shader: %w", err)
	}
	return &GeometryRenderer{program: program, gbuf: gbuf, Culling: culling}, nil
}

// GBuffer exposes the target so downstream passes can sample it.
func (r *GeometryRenderer) GBuffer() *gbuffer.GBuffer { return r.gbuf }

// Stats returns the counters from the most recent geometry pass.
func (r *GeometryRenderer) Stats() GeometryStats { return r.stats }

// Resize resizes the G-buffer attachments.
func (r *GeometryRenderer) Resize(width, height int32) {
	r.gbuf.Resize(width, height)
}

// Render clears the G-buffer and draws all visible opaque geometry into
// it. Transparent objects are deferred to the forward blend pass.
func (r *GeometryRenderer) Render(sc *scene.Scene, cam *camera.Camera, aspect float32) {
	r.stats = GeometryStats{}

	r.gbuf.Bind()
	defer r.gbuf.Unbind()

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.BLEND)

	r.program.Use()
	r.program.SetMat4("uViewProj", cam.ViewProjection(aspect))

	var visible frustum.Frustum
	if r.Culling {
		visible = cam.Frustum(aspect)
	}

	for _, d := range sc.OpaqueMeshes() {
		if r.Culling && !visible.ContainsSphere(d.WorldPosition(), d.BoundingRadius()) {
			r.stats.Culled++
			continue
		}
		d.Render(r.program)
		r.stats.Drawn++
	}
}

// CullDrawables partitions drawables against a frustum and returns the
// visible subset. Shared by the geometry and depth passes.
func CullDrawables(drawables []scene.Drawable, f frustum.Frustum) (visible []scene.Drawable, culled int) {
	visible = make([]scene.Drawable, 0, len(drawables))
	for _, d := range drawables {
		if !f.ContainsSphere(d.WorldPosition(), d.BoundingRadius()) {
			culled++
			continue
		}
		visible = append(visible, d)
	}
	return visible, culled
}

// InvViewProj returns the inverse view-projection used by screen passes
// that reconstruct world rays, e.g. the background sky.
func InvViewProj(cam *camera.Camera, aspect float32) mgl32.Mat4 {
	return cam.ViewProjection(aspect).Inv()
}

// Destroy releases the G-buffer and shader.
func (r *GeometryRenderer) Destroy() {
	if r.program != nil {
		r.program.Destroy()
		r.program = nil
	}
	if r.gbuf != nil {
		r.gbuf.Destroy()
		r.gbuf = nil
	}
}
