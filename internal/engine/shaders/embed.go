// Package shaders provides embedded GLSL shader sources for every pipeline pass.
package shaders

import _ "embed"

// DepthVertexShader is the vertex shader for the shadow depth pass.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader is the fragment shader for the shadow depth pass.
//
//go:embed depth.frag
var DepthFragmentShader string

// GeometryVertexShader is the vertex shader for the deferred geometry pass.
//
//go:embed geometry.vert
var GeometryVertexShader string

// GeometryFragmentShader writes position/normal/albedo into the G-buffer.
//
//go:embed geometry.frag
var GeometryFragmentShader string

// FullscreenVertexShader is the shared vertex shader for screen-space passes.
//
//go:embed fullscreen.vert
var FullscreenVertexShader string

// AmbientFragmentShader is the deferred ambient + sky pass.
//
//go:embed ambient.frag
var AmbientFragmentShader string

// LightFragmentShader is the additive per-light deferred pass.
//
//go:embed light.frag
var LightFragmentShader string

// EmissiveFragmentShader adds the G-buffer's emissive channel.
//
//go:embed emissive.frag
var EmissiveFragmentShader string

// SSAOFragmentShader computes raw screen-space ambient occlusion.
//
//go:embed ssao.frag
var SSAOFragmentShader string

// SSAOBlurFragmentShader is the 4x4 box blur over the raw AO texture.
//
//go:embed ssao_blur.frag
var SSAOBlurFragmentShader string

// BloomExtractFragmentShader extracts bright pixels above a threshold.
//
//go:embed bloom_extract.frag
var BloomExtractFragmentShader string

// BloomBlurFragmentShader is the separable Gaussian blur for bloom.
//
//go:embed bloom_blur.frag
var BloomBlurFragmentShader string

// BloomCompositeFragmentShader additively composites blurred bloom.
//
//go:embed bloom_composite.frag
var BloomCompositeFragmentShader string

// FXAAFragmentShader is the anti-aliasing resolve pass.
//
//go:embed fxaa.frag
var FXAAFragmentShader string

// TonemapFragmentShader is the final HDR to displayable conversion.
//
//go:embed tonemap.frag
var TonemapFragmentShader string

// ForwardVertexShader is the vertex shader for forward-mode rendering.
//
//go:embed forward.vert
var ForwardVertexShader string

// ForwardFragmentShader shades with all lights in a single forward pass.
//
//go:embed forward.frag
var ForwardFragmentShader string
