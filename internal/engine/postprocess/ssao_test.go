package postprocess

import (
	"math/rand"
	"testing"
)

func TestGenerateKernelSize(t *testing.T) {
	kernel := GenerateKernel(64, rand.New(rand.NewSource(1)))
	if len(kernel) != 64 {
		t.Fatalf("kernel size = %d, want 64", len(kernel))
	}
}

func TestGenerateKernelHemisphere(t *testing.T) {
	kernel := GenerateKernel(64, rand.New(rand.NewSource(1)))
	for i, s := range kernel {
		if s.Z() < 0 {
			t.Errorf("sample %d has z = %v, want >= 0", i, s.Z())
		}
		if s.Len() > 1.0001 {
			t.Errorf("sample %d has length %v, want <= 1", i, s.Len())
		}
	}
}

func TestGenerateKernelBiasedTowardCenter(t *testing.T) {
	kernel := GenerateKernel(64, rand.New(rand.NewSource(1)))

	// The scale factor caps early samples at 0.1 of the unit sphere and
	// late samples near 1.0, so average length must grow front to back.
	var front, back float32
	for i := 0; i < 16; i++ {
		front += kernel[i].Len()
	}
	for i := 48; i < 64; i++ {
		back += kernel[i].Len()
	}
	if front >= back {
		t.Errorf("front quarter total %v not smaller than back quarter %v", front, back)
	}

	for i := 0; i < 16; i++ {
		if l := kernel[i].Len(); l > 0.2 {
			t.Errorf("early sample %d length %v exceeds the near-origin bias cap", i, l)
		}
	}
}

func TestGenerateKernelDeterministic(t *testing.T) {
	a := GenerateKernel(8, rand.New(rand.NewSource(7)))
	b := GenerateKernel(8, rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed produced different kernels")
		}
	}
}
