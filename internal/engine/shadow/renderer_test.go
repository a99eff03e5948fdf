package shadow

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/helioscene/helios/internal/engine/light"
)

type fakeMap struct {
	res       int32
	destroyed bool
}

func (f *fakeMap) Resolution() int32 { return f.res }
func (f *fakeMap) Destroy()          { f.destroyed = true }

func testConfig() Config {
	return Config{
		ThrottleFrames:  3,
		MinIntensity:    0.01,
		HighThreshold:   0.01,
		MediumThreshold: 0.001,
		HighResolution:  2048,
		MedResolution:   1024,
		LowResolution:   512,
		OrthoExtent:     50,
		Near:            0.1,
		Far:             200,
	}
}

func testRenderer(cfg Config) *Renderer {
	r := &Renderer{cfg: cfg}
	r.newMap = func(resolution int32) (light.ShadowMap, error) {
		return &fakeMap{res: resolution}, nil
	}
	return r
}

func TestResolutionTiers(t *testing.T) {
	r := testRenderer(testConfig())

	tests := []struct {
		name       string
		importance float32
		want       int32
	}{
		{"well above high", 0.5, 2048},
		{"just above high", 0.011, 2048},
		{"exactly high goes medium", 0.01, 1024},
		{"medium band", 0.005, 1024},
		{"exactly medium goes low", 0.001, 512},
		{"distant light", 0.0001, 512},
		{"zero importance", 0, 512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.resolutionFor(tt.importance); got != tt.want {
				t.Errorf("resolutionFor(%v) = %d, want %d", tt.importance, got, tt.want)
			}
		})
	}
}

func TestShouldRenderPolicy(t *testing.T) {
	cfg := testConfig()
	r := testRenderer(cfg)

	newCleanLight := func() *light.Light {
		l := light.NewDirectional(mgl32.Vec3{10, 20, 10}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1.0)
		l.MarkShadowClean()
		return l
	}

	t.Run("casting disabled", func(t *testing.T) {
		l := newCleanLight()
		l.Data.CastShadows = false
		if got := r.shouldRender(l); got != skipDisabled {
			t.Errorf("got %v, want skipDisabled", got)
		}
	})

	t.Run("dim light skipped even when dirty", func(t *testing.T) {
		l := light.NewDirectional(mgl32.Vec3{10, 20, 10}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 0.001)
		if got := r.shouldRender(l); got != skipDim {
			t.Errorf("got %v, want skipDim", got)
		}
	})

	t.Run("dirty light renders", func(t *testing.T) {
		l := newCleanLight()
		l.SetPosition(mgl32.Vec3{11, 20, 10})
		if got := r.shouldRender(l); got != renderNow {
			t.Errorf("got %v, want renderNow", got)
		}
	})

	t.Run("clean light throttled under the refresh interval", func(t *testing.T) {
		l := newCleanLight()
		l.SkipShadowFrame()
		if got := r.shouldRender(l); got != skipThrottled {
			t.Errorf("got %v, want skipThrottled", got)
		}
	})

	t.Run("clean light refreshes once the interval elapses", func(t *testing.T) {
		l := newCleanLight()
		for i := 0; i < cfg.ThrottleFrames; i++ {
			l.SkipShadowFrame()
		}
		if got := r.shouldRender(l); got != renderNow {
			t.Errorf("got %v, want renderNow", got)
		}
	})

	t.Run("zero throttle renders every frame", func(t *testing.T) {
		cfg := testConfig()
		cfg.ThrottleFrames = 0
		r := testRenderer(cfg)
		l := newCleanLight()
		if got := r.shouldRender(l); got != renderNow {
			t.Errorf("got %v, want renderNow", got)
		}
	})
}

func TestInitializeLightsAssignsTierByIntensity(t *testing.T) {
	r := testRenderer(testConfig())

	bright := light.NewDirectional(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1.0)
	faint := light.NewDirectional(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 0.005)

	if err := r.InitializeLights([]*light.Light{bright, faint}, nil); err != nil {
		t.Fatalf("InitializeLights: %v", err)
	}
	if got := bright.ShadowResolution(); got != 2048 {
		t.Errorf("bright light resolution = %d, want 2048", got)
	}
	if got := faint.ShadowResolution(); got != 1024 {
		t.Errorf("faint light resolution = %d, want 1024", got)
	}
}

func TestInitializeLightsUsesCameraDistance(t *testing.T) {
	r := testRenderer(testConfig())

	// Intensity 1.0 at distance 100: importance 1e-4, the low tier.
	l := light.NewDirectional(mgl32.Vec3{100, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1.0)
	camera := mgl32.Vec3{0, 0, 0}

	if err := r.InitializeLights([]*light.Light{l}, &camera); err != nil {
		t.Fatalf("InitializeLights: %v", err)
	}
	if got := l.ShadowResolution(); got != 512 {
		t.Errorf("distant light resolution = %d, want 512", got)
	}
}

func TestInitializeLightsReleasesUnsupported(t *testing.T) {
	r := testRenderer(testConfig())

	point := light.NewPoint(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 1, 1}, 1.0, 10)
	point.Data.CastShadows = true
	off := light.NewDirectional(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1.0)
	off.Data.CastShadows = false

	if err := r.InitializeLights([]*light.Light{point, off}, nil); err != nil {
		t.Fatalf("InitializeLights: %v", err)
	}
	if point.Shadow() != nil {
		t.Error("point light should not hold a shadow map")
	}
	if off.Shadow() != nil {
		t.Error("non-casting light should not hold a shadow map")
	}
}

func TestInitializeLightsAllocatesAfterEnablingShadows(t *testing.T) {
	allocations := 0
	r := testRenderer(testConfig())
	r.newMap = func(resolution int32) (light.ShadowMap, error) {
		allocations++
		return &fakeMap{res: resolution}, nil
	}

	l := light.NewDirectional(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1.0)
	l.Data.CastShadows = false
	if err := r.InitializeLights([]*light.Light{l}, nil); err != nil {
		t.Fatalf("InitializeLights: %v", err)
	}
	if allocations != 0 {
		t.Fatalf("allocations = %d for a non-casting light, want 0", allocations)
	}

	l.Data.CastShadows = true
	if err := r.InitializeLights([]*light.Light{l}, nil); err != nil {
		t.Fatalf("InitializeLights: %v", err)
	}
	if allocations != 1 {
		t.Errorf("allocations = %d after enabling shadows, want 1", allocations)
	}
}

func TestInitializeLightsResolutionIsSticky(t *testing.T) {
	allocations := 0
	r := testRenderer(testConfig())
	r.newMap = func(resolution int32) (light.ShadowMap, error) {
		allocations++
		return &fakeMap{res: resolution}, nil
	}

	l := light.NewDirectional(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1.0)
	if err := r.InitializeLights([]*light.Light{l}, nil); err != nil {
		t.Fatalf("InitializeLights: %v", err)
	}
	if allocations != 1 {
		t.Fatalf("allocations = %d, want 1", allocations)
	}

	// Same tier on re-init keeps the existing map.
	if err := r.InitializeLights([]*light.Light{l}, nil); err != nil {
		t.Fatalf("InitializeLights: %v", err)
	}
	if allocations != 1 {
		t.Errorf("allocations after same-tier re-init = %d, want 1", allocations)
	}

	first := l.Shadow().(*fakeMap)

	// Dropping intensity changes the tier: old map destroyed, new allocated.
	l.Data.Intensity = 0.005
	if err := r.InitializeLights([]*light.Light{l}, nil); err != nil {
		t.Fatalf("InitializeLights: %v", err)
	}
	if allocations != 2 {
		t.Errorf("allocations after tier change = %d, want 2", allocations)
	}
	if !first.destroyed {
		t.Error("previous shadow map not destroyed on tier change")
	}
	if got := l.ShadowResolution(); got != 1024 {
		t.Errorf("resolution after tier change = %d, want 1024", got)
	}
}

func TestRenderAllCountsSkips(t *testing.T) {
	r := testRenderer(testConfig())

	noMap := light.NewDirectional(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1.0)

	dim := light.NewDirectional(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 0.001)
	dim.AttachShadow(&fakeMap{res: 512}, 512)

	throttled := light.NewDirectional(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1.0)
	throttled.AttachShadow(&fakeMap{res: 512}, 512)
	throttled.MarkShadowClean()

	if err := r.RenderAll([]*light.Light{noMap, dim, throttled}, nil); err != nil {
		t.Fatalf("RenderAll: %v", err)
	}

	stats := r.Stats()
	if stats.Disabled != 1 || stats.Dim != 1 || stats.Throttled != 1 || stats.Rendered != 0 {
		t.Errorf("stats = %+v, want one disabled, one dim, one throttled", stats)
	}
	if throttled.FramesSinceUpdate() != 1 {
		t.Errorf("throttled light counter = %d, want 1", throttled.FramesSinceUpdate())
	}
}

func TestInitializeLightsPropagatesAllocError(t *testing.T) {
	wantErr := errors.New("out of memory")
	r := testRenderer(testConfig())
	r.newMap = func(resolution int32) (light.ShadowMap, error) {
		return nil, wantErr
	}

	l := light.NewDirectional(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1.0)
	err := r.InitializeLights([]*light.Light{l}, nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("InitializeLights error = %v, want wrapped %v", err, wantErr)
	}
}
