package pipeline

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/helioscene/helios/internal/engine/camera"
	"github.com/helioscene/helios/internal/engine/deferred"
	"github.com/helioscene/helios/internal/engine/light"
	"github.com/helioscene/helios/internal/engine/scene"
	"github.com/helioscene/helios/internal/engine/shader"
	"github.com/helioscene/helios/internal/engine/shaders"
	"github.com/helioscene/helios/internal/engine/shadow"
)

// maxForwardLights matches the uniform array size in the forward shader.
const maxForwardLights = 32

// forwardRenderer shades geometry in a single pass with uniform light
// arrays. It serves as the whole pipeline in forward mode and as the
// transparency pass in deferred mode.
type forwardRenderer struct {
	program      *shader.Program
	ambientColor mgl32.Vec3

	// Bound when no budgeted light has a shadow map so the
	// sampler2DShadow always reads fully lit.
	dummyShadow uint32
}

func newForwardRenderer(ambientColor mgl32.Vec3) (*forwardRenderer, error) {
	program, err := shader.Load(shaders.ForwardVertexShader, shaders.ForwardFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("compiling forward shader: %w", err)
	}
	return &forwardRenderer{
		program:      program,
		ambientColor: ambientColor,
		dummyShadow:  shadow.NewDummyTexture(),
	}, nil
}

// shadowedLightIndex returns the index of the first budgeted directional
// light that casts shadows and owns a map, or -1. The single-pass shader
// carries one shadow sampler, so one map is sampled per frame; with
// importance sorting on, the first match is the strongest caster.
func shadowedLightIndex(budgeted []*light.Light) int32 {
	for i, l := range budgeted {
		if l.Data.Kind == light.Directional && l.Data.CastShadows && l.Shadow() != nil {
			return int32(i)
		}
	}
	return -1
}

// bindLights uploads the budgeted light set as uniform arrays and binds
// the shadow map of the strongest shadow-casting directional light.
func (f *forwardRenderer) bindLights(lights []*light.Light, cam *camera.Camera, maxLights int, sortByImportance bool) {
	budgeted := deferred.BudgetLights(lights, cam.Position, maxLights, sortByImportance)
	if len(budgeted) > maxForwardLights {
		budgeted = budgeted[:maxForwardLights]
	}

	kinds := make([]int32, len(budgeted))
	positions := make([]mgl32.Vec3, len(budgeted))
	directions := make([]mgl32.Vec3, len(budgeted))
	colors := make([]mgl32.Vec3, len(budgeted))
	intensities := make([]float32, len(budgeted))
	ranges := make([]float32, len(budgeted))
	innerCos := make([]float32, len(budgeted))
	outerCos := make([]float32, len(budgeted))
	for i, l := range budgeted {
		kinds[i] = int32(l.Data.Kind)
		positions[i] = l.Data.Position
		directions[i] = l.Direction()
		colors[i] = l.Data.Color
		intensities[i] = l.Data.Intensity
		ranges[i] = l.Data.Range
		innerCos[i] = cos32(l.Data.InnerAngle)
		outerCos[i] = cos32(l.Data.OuterAngle)
	}

	f.program.SetInt("uLightCount", int32(len(budgeted)))
	f.program.SetIntSlice("uLightKinds", kinds)
	f.program.SetVec3Slice("uLightPositions", positions)
	f.program.SetVec3Slice("uLightDirections", directions)
	f.program.SetVec3Slice("uLightColors", colors)
	f.program.SetFloatSlice("uLightIntensities", intensities)
	f.program.SetFloatSlice("uLightRanges", ranges)
	f.program.SetFloatSlice("uLightInnerCos", innerCos)
	f.program.SetFloatSlice("uLightOuterCos", outerCos)
	f.program.SetVec3("uAmbientColor", f.ambientColor)
	f.program.SetVec3("uViewPos", cam.Position)

	idx := shadowedLightIndex(budgeted)
	if idx >= 0 {
		if sm, ok := budgeted[idx].Shadow().(*shadow.Map); ok {
			// A throttled light samples the depth it last rendered,
			// using the matrix stored alongside it.
			sm.BindTexture(gl.TEXTURE0)
			f.program.SetMat4("uLightViewProj", budgeted[idx].ShadowViewProj())
		} else {
			idx = -1
		}
	}
	if idx < 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, f.dummyShadow)
		f.program.SetMat4("uLightViewProj", mgl32.Ident4())
	}
	f.program.SetInt("uShadowMap", 0)
	f.program.SetInt("uShadowLightIndex", idx)
}

// renderOpaque draws the opaque set with depth writes, optionally
// frustum-culled.
func (f *forwardRenderer) renderOpaque(sc *scene.Scene, cam *camera.Camera, aspect float32, culling bool) (drawn, culled int) {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	f.program.Use()
	f.program.SetMat4("uViewProj", cam.ViewProjection(aspect))

	visible := sc.OpaqueMeshes()
	if culling {
		visible, culled = deferred.CullDrawables(visible, cam.Frustum(aspect))
	}
	for _, d := range visible {
		d.Render(f.program)
	}
	return len(visible), culled
}

// renderTransparent draws the transparent set back to front, testing
// depth against the opaque geometry without writing it.
func (f *forwardRenderer) renderTransparent(sc *scene.Scene, cam *camera.Camera, aspect float32) {
	transparent := sc.TransparentMeshes()
	if len(transparent) == 0 {
		return
	}
	scene.SortBackToFront(transparent, cam.Position)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(false)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	f.program.Use()
	f.program.SetMat4("uViewProj", cam.ViewProjection(aspect))

	for _, d := range transparent {
		d.Render(f.program)
	}

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

func (f *forwardRenderer) destroy() {
	if f.program != nil {
		f.program.Destroy()
		f.program = nil
	}
	if f.dummyShadow != 0 {
		gl.DeleteTextures(1, &f.dummyShadow)
		f.dummyShadow = 0
	}
}

func cos32(x float32) float32 { return float32(gomath.Cos(float64(x))) }
