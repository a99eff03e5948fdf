// Package pipeline wires the render passes into complete frames. It
// owns the pass ordering, the intermediate targets and the per-frame
// statistics; the passes themselves live in their own packages.
package pipeline

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/helioscene/helios/internal/config"
	"github.com/helioscene/helios/internal/engine/camera"
	"github.com/helioscene/helios/internal/engine/deferred"
	"github.com/helioscene/helios/internal/engine/framebuffer"
	"github.com/helioscene/helios/internal/engine/light"
	"github.com/helioscene/helios/internal/engine/postprocess"
	"github.com/helioscene/helios/internal/engine/quad"
	"github.com/helioscene/helios/internal/engine/scene"
	"github.com/helioscene/helios/internal/engine/shadow"
	"github.com/helioscene/helios/internal/logger"
)

// Mode selects the shading path built at construction time.
type Mode int

const (
	Deferred Mode = iota
	Forward
)

func (m Mode) String() string {
	if m == Forward {
		return "forward"
	}
	return "deferred"
}

// ParseMode maps the config string onto a Mode. Unknown values fall
// back to deferred.
func ParseMode(s string) Mode {
	if s == "forward" {
		return Forward
	}
	return Deferred
}

// Scene lighting defaults. The demo viewer has no sky model of its own;
// the ambient pass paints this gradient behind the geometry.
var (
	ambientColor = mgl32.Vec3{0.22, 0.23, 0.27}
	zenithColor  = mgl32.Vec3{0.17, 0.26, 0.46}
	horizonColor = mgl32.Vec3{0.62, 0.68, 0.76}
)

// Directional shadow projection defaults.
const (
	shadowOrthoExtent = 60.0
	shadowNear        = 0.1
	shadowFar         = 250.0
)

// FrameStats aggregates the per-pass counters of the last frame.
type FrameStats struct {
	Shadows  shadow.Stats
	Geometry deferred.GeometryStats
}

// Pipeline renders complete frames. Construct it once per context; the
// shading mode and enabled passes are fixed at construction.
type Pipeline struct {
	cfg    config.RenderConfig
	mode   Mode
	width  int32
	height int32

	screen *quad.Quad

	shadows  *shadow.Renderer
	geometry *deferred.GeometryRenderer
	lighting *deferred.LightingRenderer
	ssao     *postprocess.SSAO
	bloom    *postprocess.Bloom
	tonemap  *postprocess.Tonemap
	fxaa     *postprocess.FXAA
	forward  *forwardRenderer

	// hdr receives the shaded scene, ldr the tonemapped image when an
	// AA resolve still has to run.
	hdr *framebuffer.Framebuffer
	ldr *framebuffer.Framebuffer

	lights []*light.Light

	// overlay, when set, runs after the resolve with the default
	// framebuffer bound. Debug HUDs hook in here.
	overlay func()

	stats FrameStats
}

// New builds a pipeline for the given render config and output size.
func New(cfg config.RenderConfig, width, height int32) (*Pipeline, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pipeline size must be positive, got %dx%d", width, height)
	}

	p := &Pipeline{
		cfg:    cfg,
		mode:   ParseMode(cfg.Mode),
		width:  width,
		height: height,
		screen: quad.New(),
	}

	var err error
	if p.hdr, err = framebuffer.NewWithFormat(width, height, framebuffer.RGBA16F, true); err != nil {
		return nil, fmt.Errorf("creating scene target: %w", err)
	}
	if p.ldr, err = framebuffer.NewWithFormat(width, height, framebuffer.RGBA8, false); err != nil {
		p.Destroy()
		return nil, fmt.Errorf("creating resolve target: %w", err)
	}

	if p.forward, err = newForwardRenderer(ambientColor); err != nil {
		p.Destroy()
		return nil, err
	}

	// Both modes run the shadow pass; the forward shader samples the
	// strongest directional caster, deferred samples per light.
	if cfg.Shadows.Enabled {
		p.shadows, err = shadow.NewRenderer(shadow.Config{
			ThrottleFrames:  cfg.Shadows.ThrottleFrames,
			MinIntensity:    cfg.Shadows.MinIntensity,
			HighThreshold:   cfg.Shadows.HighThreshold,
			MediumThreshold: cfg.Shadows.MediumThreshold,
			HighResolution:  cfg.Shadows.HighResolution,
			MedResolution:   cfg.Shadows.MedResolution,
			LowResolution:   cfg.Shadows.LowResolution,
			OrthoExtent:     shadowOrthoExtent,
			Near:            shadowNear,
			Far:             shadowFar,
			CullCasters:     cfg.FrustumCulling,
		})
		if err != nil {
			p.Destroy()
			return nil, err
		}
	}

	if p.mode == Deferred {
		if p.geometry, err = deferred.NewGeometryRenderer(width, height, cfg.FrustumCulling); err != nil {
			p.Destroy()
			return nil, err
		}
		p.lighting, err = deferred.NewLightingRenderer(deferred.LightingConfig{
			AmbientColor:     ambientColor,
			ZenithColor:      zenithColor,
			HorizonColor:     horizonColor,
			MaxLights:        cfg.Lighting.MaxLights,
			SortByImportance: cfg.Lighting.SortByImportance,
			EmissiveStrength: 1.0,
		}, p.screen)
		if err != nil {
			p.Destroy()
			return nil, err
		}

		if cfg.SSAO.Enabled {
			p.ssao, err = postprocess.NewSSAO(postprocess.SSAOConfig{
				KernelSize: cfg.SSAO.KernelSize,
				NoiseSize:  cfg.SSAO.NoiseSize,
				Radius:     cfg.SSAO.Radius,
				Bias:       cfg.SSAO.Bias,
				Strength:   cfg.SSAO.Strength,
			}, width, height, p.screen)
			if err != nil {
				p.Destroy()
				return nil, err
			}
		}
	}

	if cfg.Bloom.Enabled {
		p.bloom, err = postprocess.NewBloom(postprocess.BloomConfig{
			Threshold:  cfg.Bloom.Threshold,
			Strength:   cfg.Bloom.Strength,
			BlurPasses: cfg.Bloom.BlurPasses,
		}, width, height, p.screen)
		if err != nil {
			p.Destroy()
			return nil, err
		}
	}
	if cfg.Tonemap.Enabled {
		if p.tonemap, err = postprocess.NewTonemap(cfg.Tonemap.Exposure, p.screen); err != nil {
			p.Destroy()
			return nil, err
		}
	}
	if cfg.AA == "fxaa" {
		if p.fxaa, err = postprocess.NewFXAA(p.screen); err != nil {
			p.Destroy()
			return nil, err
		}
	}

	logger.Info("render pipeline ready",
		zap.String("mode", p.mode.String()),
		zap.Bool("shadows", p.shadows != nil),
		zap.Bool("ssao", p.ssao != nil),
		zap.Bool("bloom", p.bloom != nil),
		zap.String("aa", p.AAModeName()),
		zap.Int32("width", width),
		zap.Int32("height", height))
	return p, nil
}

// Mode returns the shading path the pipeline was built with.
func (p *Pipeline) Mode() Mode { return p.mode }

// AAModeName reports the active antialiasing resolve.
func (p *Pipeline) AAModeName() string {
	if p.fxaa != nil {
		return "fxaa"
	}
	return "none"
}

// SSAOEnabled reports whether the occlusion pass runs.
func (p *Pipeline) SSAOEnabled() bool { return p.ssao != nil }

// Stats returns last frame's counters.
func (p *Pipeline) Stats() FrameStats { return p.stats }

// SetOverlay installs a callback drawn over the finished frame.
func (p *Pipeline) SetOverlay(fn func()) { p.overlay = fn }

// Lights returns the light set the pipeline shades with.
func (p *Pipeline) Lights() []*light.Light { return p.lights }

// InitializeLights installs the light set and assigns shadow map
// resolutions by importance. Call it whenever lights are added, removed
// or repurposed; per-frame movement does not need it.
func (p *Pipeline) InitializeLights(lights []*light.Light, cameraPos *mgl32.Vec3) error {
	p.lights = lights
	if p.shadows == nil {
		return nil
	}
	return p.shadows.InitializeLights(lights, cameraPos)
}

// Resize resizes every intermediate target. Same-size and degenerate
// requests are ignored.
func (p *Pipeline) Resize(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == p.width && height == p.height {
		return
	}
	p.width, p.height = width, height

	p.hdr.Resize(width, height)
	p.ldr.Resize(width, height)
	if p.geometry != nil {
		p.geometry.Resize(width, height)
	}
	if p.ssao != nil {
		p.ssao.Resize(width, height)
	}
	if p.bloom != nil {
		p.bloom.Resize(width, height)
	}
	logger.Debug("pipeline resized", zap.Int32("width", width), zap.Int32("height", height))
}

// RenderFrame draws one complete frame into the default framebuffer.
func (p *Pipeline) RenderFrame(sc *scene.Scene, cam *camera.Camera) error {
	aspect := float32(p.width) / float32(p.height)

	var err error
	if p.mode == Deferred {
		err = p.renderDeferred(sc, cam, aspect)
	} else {
		err = p.renderForward(sc, cam, aspect)
	}
	if err != nil {
		return err
	}

	if p.bloom != nil {
		p.bloom.Render(p.hdr.ColorTexture(), p.hdr)
	}

	p.resolve()

	if p.overlay != nil {
		p.overlay()
	}
	return nil
}

func (p *Pipeline) renderDeferred(sc *scene.Scene, cam *camera.Camera, aspect float32) error {
	if p.shadows != nil {
		if err := p.shadows.RenderAll(p.lights, sc); err != nil {
			return fmt.Errorf("shadow pass: %w", err)
		}
		p.stats.Shadows = p.shadows.Stats()
	}

	p.geometry.Render(sc, cam, aspect)
	p.stats.Geometry = p.geometry.Stats()

	var ssaoTex uint32
	if p.ssao != nil {
		p.ssao.Render(p.geometry.GBuffer(), cam, aspect)
		ssaoTex = p.ssao.Texture()
	}

	restore := p.hdr.BindWithViewport()
	p.hdr.Clear(0, 0, 0, 1)
	p.lighting.Render(p.geometry.GBuffer(), p.lights, cam, aspect, ssaoTex, p.ssao != nil)
	restore()

	// Transparency needs the opaque depth for testing.
	if sc.HasTransparentObjects() {
		p.blitDepthToScene()
		restore = p.hdr.BindWithViewport()
		p.forward.program.Use()
		p.forward.bindLights(p.lights, cam, p.cfg.Lighting.MaxLights, p.cfg.Lighting.SortByImportance)
		p.forward.renderTransparent(sc, cam, aspect)
		restore()
	}
	return nil
}

func (p *Pipeline) renderForward(sc *scene.Scene, cam *camera.Camera, aspect float32) error {
	if p.shadows != nil {
		if err := p.shadows.RenderAll(p.lights, sc); err != nil {
			return fmt.Errorf("shadow pass: %w", err)
		}
		p.stats.Shadows = p.shadows.Stats()
	}

	restore := p.hdr.BindWithViewport()
	defer restore()

	p.hdr.Clear(horizonColor.X(), horizonColor.Y(), horizonColor.Z(), 1)

	p.forward.program.Use()
	p.forward.bindLights(p.lights, cam, p.cfg.Lighting.MaxLights, p.cfg.Lighting.SortByImportance)

	drawn, culled := p.forward.renderOpaque(sc, cam, aspect, p.cfg.FrustumCulling)
	p.stats.Geometry = deferred.GeometryStats{Drawn: drawn, Culled: culled}

	p.forward.renderTransparent(sc, cam, aspect)
	return nil
}

// blitDepthToScene copies the G-buffer depth into the scene target so
// forward-blended geometry tests against the opaque pass.
func (p *Pipeline) blitDepthToScene() {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, p.geometry.GBuffer().FBO())
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, p.hdr.FBO())
	gl.BlitFramebuffer(0, 0, p.width, p.height, 0, 0, p.width, p.height,
		gl.DEPTH_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// resolve maps the HDR scene to the default framebuffer, running the
// tonemap and AA passes that are enabled.
func (p *Pipeline) resolve() {
	switch {
	case p.tonemap != nil && p.fxaa != nil:
		restore := p.ldr.BindWithViewport()
		p.tonemap.Render(p.hdr.ColorTexture())
		restore()

		p.bindDefault()
		p.fxaa.Render(p.ldr.ColorTexture())

	case p.tonemap != nil:
		p.bindDefault()
		p.tonemap.Render(p.hdr.ColorTexture())

	case p.fxaa != nil:
		// Without a tonemap pass the AA resolve sees linear HDR; its
		// luma clamps, so edges above 1.0 smooth less accurately.
		p.bindDefault()
		p.fxaa.Render(p.hdr.ColorTexture())

	default:
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, p.hdr.FBO())
		gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
		gl.BlitFramebuffer(0, 0, p.width, p.height, 0, 0, p.width, p.height,
			gl.COLOR_BUFFER_BIT, gl.NEAREST)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
}

func (p *Pipeline) bindDefault() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, p.width, p.height)
}

// Destroy releases every pass and target. Lights keep their shadow
// maps; release those through the lights themselves.
func (p *Pipeline) Destroy() {
	if p.shadows != nil {
		p.shadows.Destroy()
		p.shadows = nil
	}
	if p.geometry != nil {
		p.geometry.Destroy()
		p.geometry = nil
	}
	if p.lighting != nil {
		p.lighting.Destroy()
		p.lighting = nil
	}
	if p.ssao != nil {
		p.ssao.Destroy()
		p.ssao = nil
	}
	if p.bloom != nil {
		p.bloom.Destroy()
		p.bloom = nil
	}
	if p.tonemap != nil {
		p.tonemap.Destroy()
		p.tonemap = nil
	}
	if p.fxaa != nil {
		p.fxaa.Destroy()
		p.fxaa = nil
	}

	if p.forward != nil {
		p.forward.destroy()
		p.forward = nil
	}
	if p.hdr != nil {
		p.hdr.Destroy()
		p.hdr = nil
	}
	if p.ldr != nil {
		p.ldr.Destroy()
		p.ldr = nil
	}
	if p.screen != nil {
		p.screen.Destroy()
		p.screen = nil
	}
}
