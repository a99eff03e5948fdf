package postprocess

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/helioscene/helios/internal/engine/framebuffer"
	"github.com/helioscene/helios/internal/engine/quad"
	"github.com/helioscene/helios/internal/engine/shader"
	"github.com/helioscene/helios/internal/engine/shaders"
)

// BloomConfig tunes the highlight bleed.
type BloomConfig struct {
	Threshold  float32
	Strength   float32
	BlurPasses int // total separable passes, alternating direction
}

// Bloom extracts bright fragments, Gaussian-blurs them with ping-pong
// passes at half resolution, and composites the result additively onto
// the scene.
type Bloom struct {
	cfg BloomConfig

	extract   *shader.Program
	blur      *shader.Program
	composite *shader.Program

	ping *framebuffer.Framebuffer
	pong *framebuffer.Framebuffer

	screen *quad.Quad
}

// NewBloom compiles the bloom shaders and allocates the half-resolution
// blur targets.
func NewBloom(cfg BloomConfig, width, height int32, screen *quad.Quad) (*Bloom, error) {
	if cfg.BlurPasses < 2 {
		cfg.BlurPasses = 2
	}

	b := &Bloom{cfg: cfg, screen: screen}

	var err error
	if b.extract, err = shader.Load(shaders.FullscreenVertexShader, shaders.BloomExtractFragmentShader); err != nil {
		return nil, fmt.Errorf("compiling bloom extract shader: %w", err)
	}
	if b.blur, err = shader.Load(shaders.FullscreenVertexShader, shaders.BloomBlurFragmentShader); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("compiling bloom blur shader: %w", err)
	}
	if b.composite, err = shader.Load(shaders.FullscreenVertexShader, shaders.BloomCompositeFragmentShader); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("compiling bloom composite shader: %w", err)
	}

	bw, bh := blurSize(width, height)
	if b.ping, err = framebuffer.NewWithFormat(bw, bh, framebuffer.RGBA16F, false); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("creating bloom target: %w", err)
	}
	if b.pong, err = framebuffer.NewWithFormat(bw, bh, framebuffer.RGBA16F, false); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("creating bloom target: %w", err)
	}
	return b, nil
}

// blurSize halves each dimension, clamped to at least 1.
func blurSize(width, height int32) (int32, int32) {
	bw, bh := width/2, height/2
	if bw < 1 {
		bw = 1
	}
	if bh < 1 {
		bh = 1
	}
	return bw, bh
}

// Render blooms sceneTexture onto the target framebuffer. The target
// must already contain the shaded scene; the composite blends on top.
func (b *Bloom) Render(sceneTexture uint32, target *framebuffer.Framebuffer) {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	// Bright-pass extract into ping.
	restore := b.ping.BindWithViewport()
	b.extract.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, sceneTexture)
	b.extract.SetInt("uScene", 0)
	b.extract.SetFloat("uThreshold", b.cfg.Threshold)
	b.screen.Draw()
	restore()

	// Ping-pong separable blur.
	src, dst := b.ping, b.pong
	b.blur.Use()
	b.blur.SetInt("uInput", 0)
	for i := 0; i < b.cfg.BlurPasses; i++ {
		restore = dst.BindWithViewport()
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, src.ColorTexture())
		b.blur.SetBool("uHorizontal", i%2 == 0)
		b.screen.Draw()
		restore()
		src, dst = dst, src
	}

	// Additive composite onto the scene.
	restore = target.BindWithViewport()
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)
	b.composite.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, src.ColorTexture())
	b.composite.SetInt("uBloom", 0)
	b.composite.SetFloat("uStrength", b.cfg.Strength)
	b.screen.Draw()
	gl.Disable(gl.BLEND)
	restore()
}

// Resize resizes the blur targets to half the new output size.
func (b *Bloom) Resize(width, height int32) {
	bw, bh := blurSize(width, height)
	b.ping.Resize(bw, bh)
	b.pong.Resize(bw, bh)
}

// Destroy releases the shaders and targets.
func (b *Bloom) Destroy() {
	for _, p := range []*shader.Program{b.extract, b.blur, b.composite} {
		if p != nil {
			p.Destroy()
		}
	}
	b.extract, b.blur, b.composite = nil, nil, nil
	if b.ping != nil {
		b.ping.Destroy()
		b.ping = nil
	}
	if b.pong != nil {
		b.pong.Destroy()
		b.pong = nil
	}
}
