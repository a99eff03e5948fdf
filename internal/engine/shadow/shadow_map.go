// Package shadow manages shadow map resources and the per-light depth pass.
package shadow

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Map is a depth-only framebuffer a light renders its shadow casters into.
// The depth texture is set up for hardware comparison sampling
// (sampler2DShadow), so a single texture fetch returns a filtered
// shadow factor.
type Map struct {
	fbo          uint32
	depthTexture uint32
	resolution   int32
	prevViewport [4]int32
}

// NewMap creates a shadow map with the specified resolution.
// Resolution should be a power of 2 (e.g. 512, 1024, 2048).
func NewMap(resolution int32) (*Map, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("shadow map resolution must be positive, got %d", resolution)
	}

	sm := &Map{resolution: resolution}

	gl.GenFramebuffers(1, &sm.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.fbo)

	gl.GenTextures(1, &sm.depthTexture)
	gl.BindTexture(gl.TEXTURE_2D, sm.depthTexture)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.DEPTH_COMPONENT24,
		resolution,
		resolution,
		0,
		gl.DEPTH_COMPONENT,
		gl.FLOAT,
		nil,
	)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	// Clamp to a white border so geometry outside the light frustum
	// samples as fully lit instead of shadowed.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	borderColor := []float32{1.0, 1.0, 1.0, 1.0}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &borderColor[0])

	// Comparison mode for sampler2DShadow
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, sm.depthTexture, 0)

	// No color buffer for the depth pass
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &sm.fbo)
		gl.DeleteTextures(1, &sm.depthTexture)
		return nil, fmt.Errorf("shadow map framebuffer incomplete: status 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return sm, nil
}

// Resolution returns the shadow map width (width = height).
func (sm *Map) Resolution() int32 { return sm.resolution }

// Bind binds the shadow map framebuffer for the depth pass, saving the
// current viewport so Unbind can restore it. Front-face culling reduces
// shadow acne on closed geometry.
func (sm *Map) Bind() {
	gl.GetIntegerv(gl.VIEWPORT, &sm.prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.fbo)
	gl.Viewport(0, 0, sm.resolution, sm.resolution)
	gl.Clear(gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.FRONT)
}

// Unbind restores the default framebuffer, the saved viewport and
// back-face culling.
func (sm *Map) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(sm.prevViewport[0], sm.prevViewport[1], sm.prevViewport[2], sm.prevViewport[3])
	gl.CullFace(gl.BACK)
}

// BindTexture binds the depth texture to the given texture unit for
// sampling in the lighting pass.
func (sm *Map) BindTexture(textureUnit uint32) {
	gl.ActiveTexture(textureUnit)
	gl.BindTexture(gl.TEXTURE_2D, sm.depthTexture)
}

// NewDummyTexture builds a 1x1 depth texture at maximum depth with
// comparison mode enabled, so sampler2DShadow fetches return 1.0
// everywhere. Lighting passes bind it for lights without a shadow map
// to keep the sampler in a defined state.
func NewDummyTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	depth := []float32{1.0}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, 1, 1, 0,
		gl.DEPTH_COMPONENT, gl.FLOAT, unsafe.Pointer(&depth[0]))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// Destroy releases the framebuffer and depth texture.
func (sm *Map) Destroy() {
	if sm.fbo != 0 {
		gl.DeleteFramebuffers(1, &sm.fbo)
		sm.fbo = 0
	}
	if sm.depthTexture != 0 {
		gl.DeleteTextures(1, &sm.depthTexture)
		sm.depthTexture = 0
	}
}
