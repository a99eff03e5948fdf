// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Render   RenderConfig   `yaml:"render"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// RenderConfig holds rendering pipeline settings. It is passed into the
// pipeline and its sub-renderers at construction time; nothing reads it
// through global state afterwards.
type RenderConfig struct {
	Mode           string         `yaml:"mode"` // "deferred" or "forward"
	FrustumCulling bool           `yaml:"frustum_culling"`
	AA             string         `yaml:"aa"` // "none" or "fxaa"
	Shadows        ShadowConfig   `yaml:"shadows"`
	SSAO           SSAOConfig     `yaml:"ssao"`
	Bloom          BloomConfig    `yaml:"bloom"`
	Lighting       LightingConfig `yaml:"lighting"`
	Tonemap        TonemapConfig  `yaml:"tonemap"`
}

// ShadowConfig holds shadow mapping settings.
type ShadowConfig struct {
	Enabled bool `yaml:"enabled"`

	// ThrottleFrames re-renders a clean shadow map every N frames.
	// 0 disables throttling (re-render every frame).
	ThrottleFrames int `yaml:"throttle_frames"`

	// MinIntensity skips shadow rendering for lights dimmer than this.
	MinIntensity float32 `yaml:"min_intensity"`

	// Adaptive resolution tiers, keyed by importance score cutoffs.
	HighThreshold   float32 `yaml:"high_threshold"`
	MediumThreshold float32 `yaml:"medium_threshold"`
	HighResolution  int32   `yaml:"high_resolution"`
	MedResolution   int32   `yaml:"med_resolution"`
	LowResolution   int32   `yaml:"low_resolution"`
}

// SSAOConfig holds screen-space ambient occlusion settings.
type SSAOConfig struct {
	Enabled    bool    `yaml:"enabled"`
	KernelSize int     `yaml:"kernel_size"`
	NoiseSize  int     `yaml:"noise_size"`
	Radius     float32 `yaml:"radius"`
	Bias       float32 `yaml:"bias"`
	Strength   float32 `yaml:"strength"`
}

// BloomConfig holds bloom settings.
type BloomConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Threshold  float32 `yaml:"threshold"`
	Strength   float32 `yaml:"strength"`
	BlurPasses int     `yaml:"blur_passes"`
}

// LightingConfig holds light budgeting settings.
type LightingConfig struct {
	// MaxLights caps the number of per-light passes per frame.
	// 0 means no cap.
	MaxLights int `yaml:"max_lights"`

	// SortByImportance orders lights by intensity/distance² before
	// applying the MaxLights cap.
	SortByImportance bool `yaml:"sort_by_importance"`
}

// TonemapConfig holds HDR tone mapping settings.
type TonemapConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Exposure float32 `yaml:"exposure"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Render: RenderConfig{
			Mode:           "deferred",
			FrustumCulling: true,
			AA:             "fxaa",
			Shadows: ShadowConfig{
				Enabled:         true,
				ThrottleFrames:  3,
				MinIntensity:    0.01,
				HighThreshold:   0.01,
				MediumThreshold: 0.001,
				HighResolution:  2048,
				MedResolution:   1024,
				LowResolution:   512,
			},
			SSAO: SSAOConfig{
				Enabled:    true,
				KernelSize: 64,
				NoiseSize:  4,
				Radius:     0.5,
				Bias:       0.025,
				Strength:   1.0,
			},
			Bloom: BloomConfig{
				Enabled:    true,
				Threshold:  1.0,
				Strength:   0.6,
				BlurPasses: 10,
			},
			Lighting: LightingConfig{
				MaxLights:        32,
				SortByImportance: true,
			},
			Tonemap: TonemapConfig{
				Enabled:  true,
				Exposure: 1.0,
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
