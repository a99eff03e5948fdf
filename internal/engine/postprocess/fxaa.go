package postprocess

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/helioscene/helios/internal/engine/quad"
	"github.com/helioscene/helios/internal/engine/shader"
	"github.com/helioscene/helios/internal/engine/shaders"
)

// FXAA applies fast approximate antialiasing as a resolve pass over the
// tonemapped image.
type FXAA struct {
	program *shader.Program
	screen  *quad.Quad
}

// NewFXAA compiles the FXAA shader.
func NewFXAA(screen *quad.Quad) (*FXAA, error) {
	program, err := shader.Load(shaders.FullscreenVertexShader, shaders.FXAAFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("compiling fxaa shader: %w", err)
	}
	return &FXAA{program: program, screen: screen}, nil
}

// Render filters sceneTexture into the currently bound framebuffer.
// The input must already be in display range, FXAA estimates edges from
// perceptual luma.
func (f *FXAA) Render(sceneTexture uint32) {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	f.program.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, sceneTexture)
	f.program.SetInt("uScene", 0)
	f.screen.Draw()
}

// Destroy releases the shader.
func (f *FXAA) Destroy() {
	if f.program != nil {
		f.program.Destroy()
		f.program = nil
	}
}
