// Package postprocess implements the screen-space effect chain: SSAO,
// bloom, FXAA and tonemapping.
package postprocess

import (
	"fmt"
	"math/rand"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/helioscene/helios/internal/engine/camera"
	"github.com/helioscene/helios/internal/engine/framebuffer"
	"github.com/helioscene/helios/internal/engine/gbuffer"
	"github.com/helioscene/helios/internal/engine/quad"
	"github.com/helioscene/helios/internal/engine/shader"
	"github.com/helioscene/helios/internal/engine/shaders"
)

// SSAOConfig tunes the ambient occlusion pass.
type SSAOConfig struct {
	KernelSize int
	NoiseSize  int
	Radius     float32
	Bias       float32
	Strength   float32
}

// GenerateKernel builds hemisphere sample vectors biased toward the
// origin, so close-range occluders weigh more than distant ones.
func GenerateKernel(size int, rng *rand.Rand) []mgl32.Vec3 {
	kernel := make([]mgl32.Vec3, size)
	for i := range kernel {
		sample := mgl32.Vec3{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			rng.Float32(), // hemisphere: z >= 0
		}
		if sample.Len() > 0 {
			sample = sample.Normalize()
		} else {
			sample = mgl32.Vec3{0, 0, 1}
		}
		sample = sample.Mul(rng.Float32())

		// Scale samples toward the center of the kernel.
		scale := float32(i) / float32(size)
		scale = lerp(0.1, 1.0, scale*scale)
		kernel[i] = sample.Mul(scale)
	}
	return kernel
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// SSAO renders ambient occlusion from the G-buffer into a single-channel
// texture, then box-blurs it to hide the noise pattern.
type SSAO struct {
	cfg SSAOConfig

	occlusion *shader.Program
	blur      *shader.Program

	kernel   []mgl32.Vec3
	noiseTex uint32

	raw      *framebuffer.Framebuffer
	filtered *framebuffer.Framebuffer

	screen *quad.Quad
}

// NewSSAO compiles the SSAO shaders and builds the kernel and rotation
// noise texture.
func NewSSAO(cfg SSAOConfig, width, height int32, screen *quad.Quad) (*SSAO, error) {
	if cfg.KernelSize <= 0 || cfg.KernelSize > 64 {
		return nil, fmt.Errorf("ssao kernel size must be in 1..64, got %d", cfg.KernelSize)
	}
	if cfg.NoiseSize <= 0 {
		cfg.NoiseSize = 4
	}

	s := &SSAO{cfg: cfg, screen: screen}

	var err error
	if s.occlusion, err = shader.Load(shaders.FullscreenVertexShader, shaders.SSAOFragmentShader); err != nil {
		return nil, fmt.Errorf("compiling ssao shader: %w", err)
	}
	if s.blur, err = shader.Load(shaders.FullscreenVertexShader, shaders.SSAOBlurFragmentShader); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("compiling ssao blur shader: %w", err)
	}

	if s.raw, err = framebuffer.NewWithFormat(width, height, framebuffer.R16F, false); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("creating ssao target: %w", err)
	}
	if s.filtered, err = framebuffer.NewWithFormat(width, height, framebuffer.R16F, false); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("creating ssao blur target: %w", err)
	}

	rng := rand.New(rand.NewSource(1))
	s.kernel = GenerateKernel(cfg.KernelSize, rng)
	s.noiseTex = newNoiseTexture(cfg.NoiseSize, rng)
	return s, nil
}

// newNoiseTexture builds a small tiling texture of random rotations
// around the Z axis.
func newNoiseTexture(size int, rng *rand.Rand) uint32 {
	data := make([]float32, size*size*3)
	for i := 0; i < size*size; i++ {
		data[i*3+0] = rng.Float32()*2 - 1
		data[i*3+1] = rng.Float32()*2 - 1
		data[i*3+2] = 0
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB16F, int32(size), int32(size), 0,
		gl.RGB, gl.FLOAT, unsafe.Pointer(&data[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// Render computes blurred ambient occlusion from the filled G-buffer.
// The result is available from Texture.
func (s *SSAO) Render(gbuf *gbuffer.GBuffer, cam *camera.Camera, aspect float32) {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	w, h := s.raw.Size()

	// Occlusion pass
	restore := s.raw.BindWithViewport()
	s.occlusion.Use()
	// Occlusion only reads position and normal; albedo stays unbound.
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, gbuf.PositionTexture())
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, gbuf.NormalTexture())
	gl.ActiveTexture(gl.TEXTURE2)
	gl.BindTexture(gl.TEXTURE_2D, s.noiseTex)
	s.occlusion.SetInt("uPosition", 0)
	s.occlusion.SetInt("uNormal", 1)
	s.occlusion.SetInt("uNoise", 2)
	s.occlusion.SetVec3Slice("uKernel", s.kernel)
	s.occlusion.SetInt("uKernelSize", int32(len(s.kernel)))
	s.occlusion.SetFloat("uRadius", s.cfg.Radius)
	s.occlusion.SetFloat("uBias", s.cfg.Bias)
	s.occlusion.SetFloat("uStrength", s.cfg.Strength)
	s.occlusion.SetMat4("uView", cam.ViewMatrix())
	s.occlusion.SetMat4("uProj", cam.ProjectionMatrix(aspect))
	s.occlusion.SetVec2("uNoiseScale", mgl32.Vec2{
		float32(w) / float32(s.cfg.NoiseSize),
		float32(h) / float32(s.cfg.NoiseSize),
	})
	s.screen.Draw()
	restore()

	// Blur pass
	restore = s.filtered.BindWithViewport()
	s.blur.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.raw.ColorTexture())
	s.blur.SetInt("uInput", 0)
	s.screen.Draw()
	restore()
}

// Texture returns the blurred occlusion texture.
func (s *SSAO) Texture() uint32 { return s.filtered.ColorTexture() }

// Resize resizes both SSAO targets.
func (s *SSAO) Resize(width, height int32) {
	s.raw.Resize(width, height)
	s.filtered.Resize(width, height)
}

// Destroy releases shaders, targets and the noise texture.
func (s *SSAO) Destroy() {
	if s.occlusion != nil {
		s.occlusion.Destroy()
		s.occlusion = nil
	}
	if s.blur != nil {
		s.blur.Destroy()
		s.blur = nil
	}
	if s.raw != nil {
		s.raw.Destroy()
		s.raw = nil
	}
	if s.filtered != nil {
		s.filtered.Destroy()
		s.filtered = nil
	}
	if s.noiseTex != 0 {
		gl.DeleteTextures(1, &s.noiseTex)
		s.noiseTex = 0
	}
}
