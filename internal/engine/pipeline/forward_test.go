package pipeline

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/helioscene/helios/internal/engine/light"
)

type stubShadowMap struct{ res int32 }

func (s *stubShadowMap) Resolution() int32 { return s.res }
func (s *stubShadowMap) Destroy()          {}

func shadowedDirectional() *light.Light {
	l := light.NewDirectional(mgl32.Vec3{0, 30, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1)
	l.AttachShadow(&stubShadowMap{res: 1024}, 1024)
	return l
}

func TestShadowedLightIndexPicksDirectionalCaster(t *testing.T) {
	point := light.NewPoint(mgl32.Vec3{2, 3, 0}, mgl32.Vec3{1, 0, 0}, 1, 20)
	sun := shadowedDirectional()

	if got := shadowedLightIndex([]*light.Light{point, sun}); got != 1 {
		t.Errorf("shadowedLightIndex = %d, want 1", got)
	}
}

func TestShadowedLightIndexSkipsNonCasters(t *testing.T) {
	noCast := light.NewDirectional(mgl32.Vec3{0, 30, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1)
	noCast.Data.CastShadows = false
	noCast.AttachShadow(&stubShadowMap{res: 512}, 512)

	noMap := light.NewDirectional(mgl32.Vec3{0, 20, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1)

	if got := shadowedLightIndex([]*light.Light{noCast, noMap}); got != -1 {
		t.Errorf("shadowedLightIndex = %d, want -1", got)
	}
}

func TestShadowedLightIndexIgnoresPointAndSpot(t *testing.T) {
	point := light.NewPoint(mgl32.Vec3{2, 3, 0}, mgl32.Vec3{1, 0, 0}, 1, 20)
	point.AttachShadow(&stubShadowMap{res: 512}, 512)
	spot := light.NewSpot(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1, 20, 0.2, 0.4)
	spot.AttachShadow(&stubShadowMap{res: 512}, 512)

	if got := shadowedLightIndex([]*light.Light{point, spot}); got != -1 {
		t.Errorf("shadowedLightIndex = %d, want -1", got)
	}
}

func TestShadowedLightIndexEmpty(t *testing.T) {
	if got := shadowedLightIndex(nil); got != -1 {
		t.Errorf("shadowedLightIndex(nil) = %d, want -1", got)
	}
}
