package postprocess

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/helioscene/helios/internal/engine/quad"
	"github.com/helioscene/helios/internal/engine/shader"
	"github.com/helioscene/helios/internal/engine/shaders"
)

// Tonemap maps the HDR scene to display range with Reinhard plus
// exposure, then applies gamma correction.
type Tonemap struct {
	Exposure float32

	program *shader.Program
	screen  *quad.Quad
}

// NewTonemap compiles the tonemapping shader.
func NewTonemap(exposure float32, screen *quad.Quad) (*Tonemap, error) {
	program, err := shader.Load(shaders.FullscreenVertexShader, shaders.TonemapFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("compiling tonemap shader: %w", err)
	}
	return &Tonemap{Exposure: exposure, program: program, screen: screen}, nil
}

// Render tonemaps sceneTexture into the currently bound framebuffer.
func (t *Tonemap) Render(sceneTexture uint32) {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	t.program.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, sceneTexture)
	t.program.SetInt("uScene", 0)
	t.program.SetFloat("uExposure", t.Exposure)
	t.screen.Draw()
}

// Destroy releases the shader.
func (t *Tonemap) Destroy() {
	if t.program != nil {
		t.program.Destroy()
		t.program = nil
	}
}
