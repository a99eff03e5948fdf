package shadow

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/helioscene/helios/internal/engine/frustum"
	"github.com/helioscene/helios/internal/engine/light"
	"github.com/helioscene/helios/internal/engine/scene"
	"github.com/helioscene/helios/internal/engine/shader"
	"github.com/helioscene/helios/internal/engine/shaders"
	"github.com/helioscene/helios/internal/logger"
)

// Config controls the per-light shadow update policy and the
// importance-based resolution tiers.
type Config struct {
	// ThrottleFrames is how many frames a clean shadow map may be reused
	// before a refresh. Zero re-renders every frame, which covers
	// animated casters the dirty flag cannot see.
	ThrottleFrames int

	// MinIntensity is the intensity below which a light's shadow pass is
	// skipped outright.
	MinIntensity float32

	// Importance thresholds selecting the resolution tier.
	HighThreshold   float32
	MediumThreshold float32

	HighResolution int32
	MedResolution  int32
	LowResolution  int32

	// Orthographic projection parameters for directional lights.
	OrthoExtent float32
	Near        float32
	Far         float32

	// CullCasters enables frustum culling of casters against the light's
	// own view volume during the depth pass.
	CullCasters bool
}

// Stats counts the outcome of every light considered in one RenderAll
// call, broken down by skip reason.
type Stats struct {
	Rendered  int
	Disabled  int // shadow casting off, or no map attached
	Dim       int // intensity below the minimum
	Throttled int // clean map reused, refresh not due yet
}

type skipReason int

const (
	renderNow skipReason = iota
	skipDisabled
	skipDim
	skipThrottled
)

// Renderer owns the depth-pass shader and drives the shadow map
// lifecycle for all lights in the scene.
type Renderer struct {
	cfg   Config
	depth *shader.Program
	stats Stats

	// newMap allocates a shadow map for a given resolution.
	newMap func(resolution int32) (light.ShadowMap, error)
}

// NewRenderer compiles the depth-pass shader and returns a shadow
// renderer with the given policy.
func NewRenderer(cfg Config) (*Renderer, error) {
	depth, err := shader.Load(shaders.DepthVertexShader, shaders.DepthFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("compiling depth shader: %w", err)
	}
	return &Renderer{
		cfg:   cfg,
		depth: depth,
		newMap: func(resolution int32) (light.ShadowMap, error) {
			return NewMap(resolution)
		},
	}, nil
}

// Stats returns the counters from the most recent RenderAll call.
func (r *Renderer) Stats() Stats { return r.stats }

// resolutionFor maps a light's importance onto a shadow map resolution.
func (r *Renderer) resolutionFor(importance float32) int32 {
	switch {
	case importance > r.cfg.HighThreshold:
		return r.cfg.HighResolution
	case importance > r.cfg.MediumThreshold:
		return r.cfg.MedResolution
	default:
		return r.cfg.LowResolution
	}
}

// shouldRender decides whether a light's shadow map needs a depth pass
// this frame. It assumes the light already has a map attached.
func (r *Renderer) shouldRender(l *light.Light) skipReason {
	if !l.Data.CastShadows {
		return skipDisabled
	}
	if l.Data.Intensity < r.cfg.MinIntensity {
		return skipDim
	}
	if l.IsShadowDirty() {
		return renderNow
	}
	// Zero throttle means a clean map still refreshes every frame.
	if r.cfg.ThrottleFrames <= 0 {
		return renderNow
	}
	if l.FramesSinceUpdate() >= r.cfg.ThrottleFrames {
		return renderNow
	}
	return skipThrottled
}

// InitializeLights assigns each shadow-casting light a map sized by its
// importance. Resolutions are sticky: a light keeps its tier until the
// next call, even if it moves in the meantime. Pass a nil camera
// position to rank by raw intensity.
func (r *Renderer) InitializeLights(lights []*light.Light, cameraPos *mgl32.Vec3) error {
	for i, l := range lights {
		if !l.Data.CastShadows {
			l.ReleaseShadow()
			continue
		}
		if l.Data.Kind != light.Directional {
			logger.Warn("shadow casting not supported for light kind, disabling",
				zap.Int("light", i),
				zap.String("kind", l.Data.Kind.String()))
			l.ReleaseShadow()
			continue
		}

		importance := l.Data.Intensity
		if cameraPos != nil {
			importance = l.Importance(*cameraPos)
		}
		res := r.resolutionFor(importance)

		if l.Shadow() != nil && l.ShadowResolution() == res {
			continue
		}

		sm, err := r.newMap(res)
		if err != nil {
			return fmt.Errorf("allocating %dx%d shadow map for light %d: %w", res, res, i, err)
		}
		l.AttachShadow(sm, res)
		l.MarkShadowDirty()

		logger.Debug("shadow map assigned",
			zap.Int("light", i),
			zap.Int32("resolution", res),
			zap.Float32("importance", importance))
	}
	return nil
}

// RenderAll runs the depth pass for every light whose shadow map is due
// for an update, and refreshes the per-light stats.
func (r *Renderer) RenderAll(lights []*light.Light, sc *scene.Scene) error {
	r.stats = Stats{}

	for _, l := range lights {
		if l.Shadow() == nil {
			r.stats.Disabled++
			continue
		}

		switch r.shouldRender(l) {
		case skipDisabled:
			r.stats.Disabled++
			continue
		case skipDim:
			r.stats.Dim++
			continue
		case skipThrottled:
			l.SkipShadowFrame()
			r.stats.Throttled++
			continue
		}

		viewProj, err := l.ShadowMatrix(r.cfg.OrthoExtent, r.cfg.Near, r.cfg.Far)
		if err != nil {
			return fmt.Errorf("shadow matrix: %w", err)
		}

		sm, ok := l.Shadow().(*Map)
		if !ok {
			r.stats.Disabled++
			continue
		}

		r.renderDepthPass(sm, viewProj, sc)

		l.MarkShadowClean()
		l.StoreShadowMatrix(viewProj)
		r.stats.Rendered++
	}
	return nil
}

// renderDepthPass draws the scene's opaque geometry into a single
// shadow map. Transparent objects do not cast shadows.
func (r *Renderer) renderDepthPass(sm *Map, viewProj mgl32.Mat4, sc *scene.Scene) {
	sm.Bind()
	defer sm.Unbind()

	r.depth.Use()
	r.depth.SetMat4("uLightViewProj", viewProj)

	var cullVolume frustum.Frustum
	if r.cfg.CullCasters {
		cullVolume = frustum.FromMatrix(viewProj)
	}

	for _, d := range sc.OpaqueMeshes() {
		if r.cfg.CullCasters && !cullVolume.ContainsSphere(d.WorldPosition(), d.BoundingRadius()) {
			continue
		}
		d.Render(r.depth)
	}
}

// Destroy releases the depth shader. Shadow maps themselves belong to
// their lights and are released through Light.ReleaseShadow.
func (r *Renderer) Destroy() {
	if r.depth != nil {
		r.depth.Destroy()
		r.depth = nil
	}
}
