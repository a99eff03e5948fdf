// Package viewer runs the interactive demo: a generated scene, a
// free-look camera and the render pipeline, driven by an SDL2 loop.
package viewer

import (
	"fmt"
	gomath "math"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/helioscene/helios/internal/config"
	"github.com/helioscene/helios/internal/engine/camera"
	"github.com/helioscene/helios/internal/engine/debug"
	"github.com/helioscene/helios/internal/engine/input"
	"github.com/helioscene/helios/internal/engine/light"
	"github.com/helioscene/helios/internal/engine/pipeline"
	"github.com/helioscene/helios/internal/engine/scene"
	"github.com/helioscene/helios/internal/engine/window"
	"github.com/helioscene/helios/internal/logger"
)

// Viewer owns the window, the pipeline and the demo scene.
type Viewer struct {
	cfg *config.Config

	window   *window.Window
	input    *input.Input
	pipeline *pipeline.Pipeline
	scene    *scene.Scene
	camera   *camera.Camera
	capture  *debug.ScreenshotCapture

	lights []*light.Light

	running   bool
	mouseLook bool
}

// New creates the window, the GL context and the pipeline, then builds
// the demo scene.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:     cfg,
		input:   input.New(),
		capture: debug.NewScreenshotCapture("screenshots", "helios"),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "Helios Viewer",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	if err := gl.Init(); err != nil {
		v.window.Close()
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	width, height := v.window.DrawableSize()
	v.pipeline, err = pipeline.New(cfg.Render, width, height)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}

	v.camera = camera.New(mgl32.Vec3{0, 6, 18})
	v.camera.Pitch = -0.25

	v.scene, v.lights = buildDemoScene()
	camPos := v.camera.Position
	if err := v.pipeline.InitializeLights(v.lights, &camPos); err != nil {
		v.Close()
		return nil, fmt.Errorf("initializing lights: %w", err)
	}

	return v, nil
}

// buildDemoScene assembles geometry and lights that exercise every
// pipeline feature: shadowed sunlight, colored point lights, emissive
// surfaces and transparency.
func buildDemoScene() (*scene.Scene, []*light.Light) {
	sc := scene.New()

	ground := scene.NewPlane(40)
	ground.Material.Albedo = mgl32.Vec3{0.45, 0.45, 0.48}
	sc.Add(ground)

	// A grid of cubes for shadows and occlusion to play against.
	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			if x == 0 && z == 0 {
				continue
			}
			cube := scene.NewCube()
			cube.Position = mgl32.Vec3{float32(x) * 6, 1, float32(z) * 6}
			cube.Scale = 2
			cube.Yaw = float32(x*5+z) * 0.3
			cube.Material.Albedo = mgl32.Vec3{
				0.4 + 0.1*float32(x+2),
				0.5,
				0.4 + 0.1*float32(z+2),
			}
			sc.Add(cube)
		}
	}

	// Emissive spheres feed the bloom pass.
	for i := 0; i < 3; i++ {
		angle := float64(i) * 2 * gomath.Pi / 3
		sphere := scene.NewSphere(16, 24)
		sphere.Position = mgl32.Vec3{
			float32(gomath.Cos(angle)) * 10,
			3,
			float32(gomath.Sin(angle)) * 10,
		}
		sphere.Scale = 1.5
		sphere.Material.Albedo = mgl32.Vec3{1, 0.85, 0.6}
		sphere.Material.Emissive = 4
		sc.Add(sphere)
	}

	// A transparent slab in front of the center.
	glass := scene.NewCube()
	glass.Position = mgl32.Vec3{0, 2.5, 6}
	glass.Scale = 2.5
	glass.Material.Albedo = mgl32.Vec3{0.5, 0.7, 0.9}
	glass.Material.Alpha = 0.35
	glass.Material.Transparent = true
	sc.Add(glass)

	lights := []*light.Light{
		light.NewDirectional(mgl32.Vec3{30, 50, 20}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0.96, 0.9}, 1.2),
		light.NewPoint(mgl32.Vec3{-8, 4, -8}, mgl32.Vec3{1, 0.3, 0.2}, 3, 18),
		light.NewPoint(mgl32.Vec3{8, 4, 8}, mgl32.Vec3{0.2, 0.4, 1}, 3, 18),
		light.NewSpot(mgl32.Vec3{0, 12, 0}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.9, 0.9, 1}, 4, 30,
			float32(12*gomath.Pi/180), float32(20*gomath.Pi/180)),
	}
	return sc, lights
}

// Run drives the main loop until quit.
func (v *Viewer) Run() error {
	v.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.update(dt)

		if err := v.pipeline.RenderFrame(v.scene, v.camera); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := v.pipeline.Stats()
			logger.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.Int("drawn", stats.Geometry.Drawn),
				zap.Int("culled", stats.Geometry.Culled),
				zap.Int("shadowsRendered", stats.Shadows.Rendered),
				zap.Int("shadowsThrottled", stats.Shadows.Throttled))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *Viewer) handleEvents() {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			w, h := v.window.DrawableSize()
			v.pipeline.Resize(w, h)

		case input.EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_F12:
				w, h := v.window.DrawableSize()
				if path, err := v.capture.CaptureBackbuffer(w, h); err != nil {
					logger.Error("screenshot failed", zap.Error(err))
				} else {
					logger.Info("screenshot saved", zap.String("path", path))
				}
			}

		case input.EventMouseDown:
			if e.Button == sdl.BUTTON_RIGHT {
				v.mouseLook = true
				v.window.SetRelativeMouseMode(true)
			}

		case input.EventMouseUp:
			if e.Button == sdl.BUTTON_RIGHT {
				v.mouseLook = false
				v.window.SetRelativeMouseMode(false)
			}

		case input.EventMouseLook:
			if v.mouseLook {
				v.camera.HandleLook(float32(e.XRel), float32(e.YRel))
			}
		}
	}
}

func (v *Viewer) update(dt float32) {
	var forward, right, up float32
	if v.input.IsKeyHeld(sdl.SCANCODE_W) {
		forward++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_S) {
		forward--
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_D) {
		right++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_A) {
		right--
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_SPACE) {
		up++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_LSHIFT) {
		up--
	}
	v.camera.HandleMovement(forward, right, up, dt)

	// Orbit the spot light so throttled shadow refreshes are visible.
	t := float32(time.Since(startTime).Seconds())
	if len(v.lights) >= 4 {
		spot := v.lights[3]
		spot.SetPosition(mgl32.Vec3{
			8 * cos32(t*0.4),
			12,
			8 * sin32(t*0.4),
		})
	}
}

var startTime = time.Now()

// Close tears down the pipeline and window.
func (v *Viewer) Close() {
	for _, l := range v.lights {
		l.ReleaseShadow()
	}
	if v.pipeline != nil {
		v.pipeline.Destroy()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func cos32(x float32) float32 { return float32(gomath.Cos(float64(x))) }
func sin32(x float32) float32 { return float32(gomath.Sin(float64(x))) }
