// Package framebuffer provides OpenGL framebuffer utilities for offscreen rendering.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Format selects the color attachment's pixel format.
type Format int

const (
	// RGBA8 is the standard 8-bit displayable format.
	RGBA8 Format = iota
	// RGBA16F is a half-float HDR format for lighting and bloom targets.
	RGBA16F
	// R16F is a single-channel half-float format for AO textures.
	R16F
)

func (f Format) internal() int32 {
	switch f {
	case RGBA16F:
		return gl.RGBA16F
	case R16F:
		return gl.R16F
	default:
		return gl.RGBA8
	}
}

func (f Format) pixel() (format, xtype uint32) {
	switch f {
	case RGBA16F:
		return gl.RGBA, gl.FLOAT
	case R16F:
		return gl.RED, gl.FLOAT
	default:
		return gl.RGBA, gl.UNSIGNED_BYTE
	}
}

// Framebuffer manages an offscreen render target with a color attachment and
// an optional depth attachment.
type Framebuffer struct {
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	width        int32
	height       int32
	format       Format
	withDepth    bool
}

// New creates a new LDR framebuffer with a depth attachment.
func New(width, height int32) (*Framebuffer, error) {
	return NewWithFormat(width, height, RGBA8, true)
}

// NewWithFormat creates a framebuffer with the given color format.
// Screen-space passes that never depth-test can skip the depth attachment.
func NewWithFormat(width, height int32, format Format, withDepth bool) (*Framebuffer, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	fb := &Framebuffer{
		width:     width,
		height:    height,
		format:    format,
		withDepth: withDepth,
	}

	if err := fb.create(); err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}

	return fb, nil
}

func (fb *Framebuffer) create() error {
	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)

	// Color texture attachment
	pixFormat, pixType := fb.format.pixel()
	gl.GenTextures(1, &fb.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, fb.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, fb.format.internal(), fb.width, fb.height, 0, pixFormat, pixType, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.colorTexture, 0)

	// Depth renderbuffer attachment
	if fb.withDepth {
		gl.GenRenderbuffers(1, &fb.depthRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depthRBO)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// Bind makes this framebuffer the current render target.
func (fb *Framebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)
}

// Unbind restores the default framebuffer.
func (fb *Framebuffer) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// BindWithViewport binds and sets viewport, saving previous state.
// Returns a restore function to restore the previous framebuffer and viewport.
func (fb *Framebuffer) BindWithViewport() func() {
	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)

	return func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}
}

// Clear clears color (and depth, if attached) with the specified color.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	mask := uint32(gl.COLOR_BUFFER_BIT)
	if fb.withDepth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(mask)
}

// ColorTexture returns the color attachment texture ID.
func (fb *Framebuffer) ColorTexture() uint32 {
	return fb.colorTexture
}

// FBO returns the underlying framebuffer object ID.
func (fb *Framebuffer) FBO() uint32 {
	return fb.fbo
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize updates the framebuffer dimensions if they have changed.
func (fb *Framebuffer) Resize(width, height int32) {
	if width == fb.width && height == fb.height {
		return
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	fb.width = width
	fb.height = height

	pixFormat, pixType := fb.format.pixel()
	gl.BindTexture(gl.TEXTURE_2D, fb.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, fb.format.internal(), fb.width, fb.height, 0, pixFormat, pixType, nil)

	if fb.withDepth {
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	}
}

// ReadPixels reads the framebuffer color attachment into a byte slice.
// Returns RGBA data with the image flipped vertically (OpenGL has origin at bottom-left).
func (fb *Framebuffer) ReadPixels() []byte {
	pixels := make([]byte, fb.width*fb.height*4)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)

	gl.ReadPixels(0, 0, fb.width, fb.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))

	return pixels
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
	if fb.colorTexture != 0 {
		gl.DeleteTextures(1, &fb.colorTexture)
		fb.colorTexture = 0
	}
	if fb.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &fb.depthRBO)
		fb.depthRBO = 0
	}
}
