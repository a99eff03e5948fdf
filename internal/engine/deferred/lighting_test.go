package deferred

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/helioscene/helios/internal/engine/light"
)

func pointAt(x float32, intensity float32) *light.Light {
	return light.NewPoint(mgl32.Vec3{x, 0, 0}, mgl32.Vec3{1, 1, 1}, intensity, 20)
}

func TestBudgetLightsKeepsTopByImportance(t *testing.T) {
	camera := mgl32.Vec3{0, 0, 0}
	near := pointAt(2, 1.0)   // importance 0.25
	mid := pointAt(10, 1.0)   // importance 0.01
	far := pointAt(100, 1.0)  // importance 0.0001
	bright := pointAt(10, 50) // importance 0.5

	got := BudgetLights([]*light.Light{far, mid, near, bright}, camera, 2, true)

	if len(got) != 2 {
		t.Fatalf("budget returned %d lights, want 2", len(got))
	}
	if got[0] != bright || got[1] != near {
		t.Error("budget did not keep the two most important lights in rank order")
	}
}

func TestBudgetLightsStableTies(t *testing.T) {
	camera := mgl32.Vec3{0, 0, 0}
	a := pointAt(5, 1.0)
	b := pointAt(5, 1.0)
	c := pointAt(5, 1.0)

	got := BudgetLights([]*light.Light{a, b, c}, camera, 2, true)
	if got[0] != a || got[1] != b {
		t.Error("equal-importance lights lost their input order")
	}
}

func TestBudgetLightsNoCap(t *testing.T) {
	camera := mgl32.Vec3{0, 0, 0}
	lights := []*light.Light{pointAt(1, 1), pointAt(2, 1), pointAt(3, 1)}

	if got := BudgetLights(lights, camera, 0, true); len(got) != 3 {
		t.Errorf("uncapped budget returned %d lights, want 3", len(got))
	}
}

func TestBudgetLightsUnsortedKeepsOrder(t *testing.T) {
	camera := mgl32.Vec3{0, 0, 0}
	first := pointAt(100, 0.1) // least important, but first in input
	second := pointAt(1, 10)

	got := BudgetLights([]*light.Light{first, second}, camera, 1, false)
	if len(got) != 1 || got[0] != first {
		t.Error("unsorted budget should truncate in input order")
	}
}

func TestBudgetLightsDoesNotMutateInput(t *testing.T) {
	camera := mgl32.Vec3{0, 0, 0}
	weak := pointAt(100, 0.1)
	strong := pointAt(1, 10)
	lights := []*light.Light{weak, strong}

	BudgetLights(lights, camera, 1, true)

	if lights[0] != weak || lights[1] != strong {
		t.Error("input slice was reordered")
	}
}
