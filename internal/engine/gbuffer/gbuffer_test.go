package gbuffer

import "testing"

// Resize must early-return before touching GL when nothing changes or the
// requested size is degenerate. These paths are exercised without a context.

func TestResizeSameSizeIsNoOp(t *testing.T) {
	g := &GBuffer{width: 800, height: 600}
	g.Resize(800, 600)
	if w, h := g.Size(); w != 800 || h != 600 {
		t.Errorf("Size() = %dx%d, want 800x600", w, h)
	}
}

func TestResizeRejectsDegenerateDimensions(t *testing.T) {
	g := &GBuffer{width: 800, height: 600}

	for _, dims := range [][2]int32{{0, 600}, {800, 0}, {-1, 600}, {0, 0}} {
		g.Resize(dims[0], dims[1])
		if w, h := g.Size(); w != 800 || h != 600 {
			t.Errorf("Resize(%d, %d) changed size to %dx%d, want 800x600 kept",
				dims[0], dims[1], w, h)
		}
	}
}
