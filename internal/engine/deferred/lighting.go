package deferred

import (
	"fmt"
	gomath "math"
	"sort"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/helioscene/helios/internal/engine/camera"
	"github.com/helioscene/helios/internal/engine/gbuffer"
	"github.com/helioscene/helios/internal/engine/light"
	"github.com/helioscene/helios/internal/engine/quad"
	"github.com/helioscene/helios/internal/engine/shader"
	"github.com/helioscene/helios/internal/engine/shaders"
	"github.com/helioscene/helios/internal/engine/shadow"
)

// LightingConfig tunes the screen-space lighting passes.
type LightingConfig struct {
	AmbientColor mgl32.Vec3
	ZenithColor  mgl32.Vec3
	HorizonColor mgl32.Vec3

	// MaxLights caps how many lights get a shading pass per frame.
	// Zero or negative means no cap.
	MaxLights int

	// SortByImportance ranks lights by Importance before applying the
	// cap. When false the cap keeps input order.
	SortByImportance bool

	EmissiveStrength float32
}

// BudgetLights returns the lights that receive a shading pass this
// frame. The ranking considers every light, including those whose
// shadow refresh was throttled. Ties keep their input order.
func BudgetLights(lights []*light.Light, cameraPos mgl32.Vec3, maxLights int, sortByImportance bool) []*light.Light {
	if !sortByImportance {
		if maxLights > 0 && len(lights) > maxLights {
			return lights[:maxLights]
		}
		return lights
	}

	ranked := make([]*light.Light, len(lights))
	copy(ranked, lights)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance(cameraPos) > ranked[j].Importance(cameraPos)
	})
	if maxLights > 0 && len(ranked) > maxLights {
		ranked = ranked[:maxLights]
	}
	return ranked
}

// LightingRenderer shades the G-buffer: one ambient pass, one additive
// pass per budgeted light, then an emissive pass.
type LightingRenderer struct {
	cfg LightingConfig

	ambient  *shader.Program
	perLight *shader.Program
	emissive *shader.Program

	screen *quad.Quad

	// Bound when a light has no shadow map so the sampler2DShadow
	// always reads fully lit.
	dummyShadow uint32
}

// NewLightingRenderer compiles the lighting shaders and allocates the
// fallback shadow texture.
func NewLightingRenderer(cfg LightingConfig, screen *quad.Quad) (*LightingRenderer, error) {
	r := &LightingRenderer{cfg: cfg, screen: screen}

	var err error
	if r.ambient, err = shader.Load(shaders.FullscreenVertexShader, shaders.AmbientFragmentShader); err != nil {
		return nil, fmt.Errorf("compiling ambient shader: %w", err)
	}
	if r.perLight, err = shader.Load(shaders.FullscreenVertexShader, shaders.LightFragmentShader); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("compiling light shader: %w", err)
	}
	if r.emissive, err = shader.Load(shaders.FullscreenVertexShader, shaders.EmissiveFragmentShader); err != nil {
		r.Destroy()
		return nil, fmt.Errorf("compiling emissive shader: %w", err)
	}

	r.dummyShadow = shadow.NewDummyTexture()
	return r, nil
}

// Render shades the already-filled G-buffer into the currently bound
// framebuffer. ssaoTexture is sampled by the ambient pass when
// ssaoEnabled is set.
func (r *LightingRenderer) Render(
	gbuf *gbuffer.GBuffer,
	lights []*light.Light,
	cam *camera.Camera,
	aspect float32,
	ssaoTexture uint32,
	ssaoEnabled bool,
) {
	gl.Disable(gl.DEPTH_TEST)

	gbuf.BindTextures(0)

	// Ambient plus background sky, no blending.
	gl.Disable(gl.BLEND)
	r.ambient.Use()
	r.ambient.SetInt("uPosition", 0)
	r.ambient.SetInt("uNormal", 1)
	r.ambient.SetInt("uAlbedo", 2)
	r.ambient.SetInt("uSSAO", 3)
	r.ambient.SetBool("uSSAOEnabled", ssaoEnabled)
	r.ambient.SetVec3("uAmbientColor", r.cfg.AmbientColor)
	r.ambient.SetVec3("uZenithColor", r.cfg.ZenithColor)
	r.ambient.SetVec3("uHorizonColor", r.cfg.HorizonColor)
	r.ambient.SetMat4("uInvViewProj", InvViewProj(cam, aspect))
	gl.ActiveTexture(gl.TEXTURE3)
	gl.BindTexture(gl.TEXTURE_2D, ssaoTexture)
	r.screen.Draw()

	// One additive pass per budgeted light.
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)

	budgeted := BudgetLights(lights, cam.Position, r.cfg.MaxLights, r.cfg.SortByImportance)
	r.perLight.Use()
	r.perLight.SetInt("uPosition", 0)
	r.perLight.SetInt("uNormal", 1)
	r.perLight.SetInt("uAlbedo", 2)
	r.perLight.SetInt("uShadowMap", 3)
	r.perLight.SetVec3("uViewPos", cam.Position)

	for _, l := range budgeted {
		r.renderLight(l)
	}

	// Emissive surfaces glow on top.
	r.emissive.Use()
	r.emissive.SetInt("uAlbedo", 2)
	r.emissive.SetFloat("uStrength", r.cfg.EmissiveStrength)
	r.screen.Draw()

	gl.Disable(gl.BLEND)
}

func (r *LightingRenderer) renderLight(l *light.Light) {
	r.perLight.SetInt("uLightKind", int32(l.Data.Kind))
	r.perLight.SetVec3("uLightPos", l.Data.Position)
	r.perLight.SetVec3("uLightDir", l.Direction())
	r.perLight.SetVec3("uLightColor", l.Data.Color)
	r.perLight.SetFloat("uIntensity", l.Data.Intensity)
	r.perLight.SetFloat("uRange", l.Data.Range)
	r.perLight.SetFloat("uInnerCos", cos32(l.Data.InnerAngle))
	r.perLight.SetFloat("uOuterCos", cos32(l.Data.OuterAngle))

	gl.ActiveTexture(gl.TEXTURE3)
	if sm, ok := l.Shadow().(*shadow.Map); ok && l.Data.CastShadows {
		// A throttled light samples the depth it last rendered, using
		// the matrix stored alongside it.
		sm.BindTexture(gl.TEXTURE3)
		r.perLight.SetBool("uCastShadows", true)
		r.perLight.SetMat4("uLightViewProj", l.ShadowViewProj())
	} else {
		gl.BindTexture(gl.TEXTURE_2D, r.dummyShadow)
		r.perLight.SetBool("uCastShadows", false)
		r.perLight.SetMat4("uLightViewProj", mgl32.Ident4())
	}

	r.screen.Draw()
}

// Destroy releases the shaders and the fallback texture. The shared
// quad is owned by the pipeline.
func (r *LightingRenderer) Destroy() {
	for _, p := range []*shader.Program{r.ambient, r.perLight, r.emissive} {
		if p != nil {
			p.Destroy()
		}
	}
	r.ambient, r.perLight, r.emissive = nil, nil, nil
	if r.dummyShadow != 0 {
		gl.DeleteTextures(1, &r.dummyShadow)
		r.dummyShadow = 0
	}
}

func cos32(x float32) float32 { return float32(gomath.Cos(float64(x))) }
