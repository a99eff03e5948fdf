// Package gbuffer owns the multi-target G-buffer for deferred rendering.
package gbuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GBuffer bundles the geometry-pass render targets: world position
// (high-precision float), world normal (half float), albedo+emissive
// (8-bit), and a shared depth attachment. All attachments always have
// identical dimensions.
type GBuffer struct {
	fbo uint32

	positionTex uint32 // RGBA32F, w flags written geometry
	normalTex   uint32 // RGBA16F
	albedoTex   uint32 // RGBA8, alpha = emissive factor
	depthRBO    uint32

	width  int32
	height int32
}

// New creates a G-buffer sized to the viewport.
func New(width, height int32) (*GBuffer, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	g := &GBuffer{width: width, height: height}
	if err := g.create(); err != nil {
		g.Destroy()
		return nil, fmt.Errorf("creating g-buffer: %w", err)
	}
	return g, nil
}

func (g *GBuffer) create() error {
	gl.GenFramebuffers(1, &g.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.fbo)

	g.positionTex = g.createColorTexture(gl.RGBA32F, gl.FLOAT, gl.COLOR_ATTACHMENT0)
	g.normalTex = g.createColorTexture(gl.RGBA16F, gl.FLOAT, gl.COLOR_ATTACHMENT1)
	g.albedoTex = g.createColorTexture(gl.RGBA8, gl.UNSIGNED_BYTE, gl.COLOR_ATTACHMENT2)

	attachments := []uint32{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1, gl.COLOR_ATTACHMENT2}
	gl.DrawBuffers(int32(len(attachments)), &attachments[0])

	gl.GenRenderbuffers(1, &g.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, g.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, g.width, g.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, g.depthRBO)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("g-buffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

func (g *GBuffer) createColorTexture(internalFormat int32, pixType uint32, attachment uint32) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, g.width, g.height, 0, gl.RGBA, pixType, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, tex, 0)
	return tex
}

// Bind makes the G-buffer the render target and clears all attachments.
// Position alpha clears to 0 so unwritten pixels read as background.
func (g *GBuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.fbo)
	gl.Viewport(0, 0, g.width, g.height)
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Unbind restores the default framebuffer.
func (g *GBuffer) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// BindTextures binds position/normal/albedo to texture units base, base+1, base+2.
func (g *GBuffer) BindTextures(base uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + base)
	gl.BindTexture(gl.TEXTURE_2D, g.positionTex)
	gl.ActiveTexture(gl.TEXTURE0 + base + 1)
	gl.BindTexture(gl.TEXTURE_2D, g.normalTex)
	gl.ActiveTexture(gl.TEXTURE0 + base + 2)
	gl.BindTexture(gl.TEXTURE_2D, g.albedoTex)
}

// PositionTexture returns the world-position attachment.
func (g *GBuffer) PositionTexture() uint32 { return g.positionTex }

// NormalTexture returns the world-normal attachment.
func (g *GBuffer) NormalTexture() uint32 { return g.normalTex }

// FBO returns the underlying framebuffer object.
func (g *GBuffer) FBO() uint32 { return g.fbo }

// Size returns the current attachment dimensions.
func (g *GBuffer) Size() (width, height int32) {
	return g.width, g.height
}

// Resize reallocates every attachment at the new dimensions. Calling with
// the current size is a no-op so redundant resize events cost nothing.
func (g *GBuffer) Resize(width, height int32) {
	if width == g.width && height == g.height {
		return
	}
	if width < 1 || height < 1 {
		return
	}

	g.width = width
	g.height = height

	gl.BindTexture(gl.TEXTURE_2D, g.positionTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, width, height, 0, gl.RGBA, gl.FLOAT, nil)
	gl.BindTexture(gl.TEXTURE_2D, g.normalTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, width, height, 0, gl.RGBA, gl.FLOAT, nil)
	gl.BindTexture(gl.TEXTURE_2D, g.albedoTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.BindRenderbuffer(gl.RENDERBUFFER, g.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
}

// Destroy releases all GPU resources.
func (g *GBuffer) Destroy() {
	if g.fbo != 0 {
		gl.DeleteFramebuffers(1, &g.fbo)
		g.fbo = 0
	}
	for _, tex := range []*uint32{&g.positionTex, &g.normalTex, &g.albedoTex} {
		if *tex != 0 {
			gl.DeleteTextures(1, tex)
			*tex = 0
		}
	}
	if g.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &g.depthRBO)
		g.depthRBO = 0
	}
}
