package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Render defaults
	if cfg.Render.Mode != "deferred" {
		t.Errorf("expected mode 'deferred', got %s", cfg.Render.Mode)
	}
	if !cfg.Render.FrustumCulling {
		t.Error("expected frustum culling to be enabled by default")
	}
	if cfg.Render.AA != "fxaa" {
		t.Errorf("expected aa 'fxaa', got %s", cfg.Render.AA)
	}

	// Shadow tier thresholds must be strictly ordered
	sh := cfg.Render.Shadows
	if sh.HighThreshold <= sh.MediumThreshold {
		t.Errorf("high threshold %f must exceed medium threshold %f",
			sh.HighThreshold, sh.MediumThreshold)
	}
	if sh.HighResolution <= sh.MedResolution || sh.MedResolution <= sh.LowResolution {
		t.Errorf("tier resolutions must be strictly decreasing: %d/%d/%d",
			sh.HighResolution, sh.MedResolution, sh.LowResolution)
	}

	if cfg.Render.SSAO.KernelSize != 64 {
		t.Errorf("expected SSAO kernel size 64, got %d", cfg.Render.SSAO.KernelSize)
	}
	if cfg.Render.SSAO.NoiseSize != 4 {
		t.Errorf("expected SSAO noise size 4, got %d", cfg.Render.SSAO.NoiseSize)
	}

	if cfg.Render.Lighting.MaxLights != 32 {
		t.Errorf("expected max lights 32, got %d", cfg.Render.Lighting.MaxLights)
	}
	if !cfg.Render.Lighting.SortByImportance {
		t.Error("expected light sorting to be enabled by default")
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fps_limit: 144

render:
  mode: "forward"
  frustum_culling: false
  aa: "none"
  shadows:
    enabled: false
    throttle_frames: 10
    min_intensity: 0.05
  ssao:
    enabled: false
    kernel_size: 32
    radius: 1.5
  bloom:
    threshold: 1.5
    strength: 0.3
  lighting:
    max_lights: 8
    sort_by_importance: false
  tonemap:
    exposure: 2.0

logging:
  level: "debug"
  log_file: "render.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.FPSLimit != 144 {
		t.Errorf("expected fps limit 144, got %d", cfg.Graphics.FPSLimit)
	}

	if cfg.Render.Mode != "forward" {
		t.Errorf("expected mode 'forward', got %s", cfg.Render.Mode)
	}
	if cfg.Render.FrustumCulling {
		t.Error("expected frustum culling to be false")
	}
	if cfg.Render.Shadows.Enabled {
		t.Error("expected shadows to be disabled")
	}
	if cfg.Render.Shadows.ThrottleFrames != 10 {
		t.Errorf("expected throttle 10, got %d", cfg.Render.Shadows.ThrottleFrames)
	}
	if cfg.Render.Shadows.MinIntensity != 0.05 {
		t.Errorf("expected min intensity 0.05, got %f", cfg.Render.Shadows.MinIntensity)
	}
	if cfg.Render.SSAO.KernelSize != 32 {
		t.Errorf("expected kernel size 32, got %d", cfg.Render.SSAO.KernelSize)
	}
	if cfg.Render.SSAO.Radius != 1.5 {
		t.Errorf("expected radius 1.5, got %f", cfg.Render.SSAO.Radius)
	}
	if cfg.Render.Bloom.Threshold != 1.5 {
		t.Errorf("expected bloom threshold 1.5, got %f", cfg.Render.Bloom.Threshold)
	}
	if cfg.Render.Lighting.MaxLights != 8 {
		t.Errorf("expected max lights 8, got %d", cfg.Render.Lighting.MaxLights)
	}
	if cfg.Render.Lighting.SortByImportance {
		t.Error("expected sorting to be disabled")
	}
	if cfg.Render.Tonemap.Exposure != 2.0 {
		t.Errorf("expected exposure 2.0, got %f", cfg.Render.Tonemap.Exposure)
	}

	// Fields missing from the file keep their defaults
	if cfg.Render.Shadows.HighResolution != 2048 {
		t.Errorf("expected default high resolution 2048, got %d", cfg.Render.Shadows.HighResolution)
	}
	if cfg.Render.Bloom.BlurPasses != 10 {
		t.Errorf("expected default blur passes 10, got %d", cfg.Render.Bloom.BlurPasses)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "render.log" {
		t.Errorf("expected log file 'render.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "windowed flag",
			setup: func() {
				*flagWindowed = true
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() {
				*flagWindowed = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "render mode flag",
			setup: func() {
				*flagMode = "forward"
			},
			verify: func(cfg *Config) {
				if cfg.Render.Mode != "forward" {
					t.Errorf("expected mode 'forward', got %s", cfg.Render.Mode)
				}
			},
			teardown: func() {
				*flagMode = ""
			},
		},
		{
			name: "disable flags",
			setup: func() {
				*flagNoShadows = true
				*flagNoSSAO = true
				*flagAA = "none"
			},
			verify: func(cfg *Config) {
				if cfg.Render.Shadows.Enabled {
					t.Error("expected shadows disabled by flag")
				}
				if cfg.Render.SSAO.Enabled {
					t.Error("expected SSAO disabled by flag")
				}
				if cfg.Render.AA != "none" {
					t.Errorf("expected aa 'none', got %s", cfg.Render.AA)
				}
			},
			teardown: func() {
				*flagNoShadows = false
				*flagNoSSAO = false
				*flagAA = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	// Nested path: SaveTo must create the parent directory.
	configPath := filepath.Join(tmpDir, "helios", "config.yaml")

	saved := Default()
	saved.Graphics.Width = 2560
	saved.Graphics.Height = 1440
	saved.Render.Mode = "forward"
	saved.Render.Shadows.ThrottleFrames = 7
	saved.Render.Tonemap.Exposure = 1.5

	if err := saved.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, configPath); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}

	if loaded.Graphics.Width != 2560 || loaded.Graphics.Height != 1440 {
		t.Errorf("graphics size = %dx%d, want 2560x1440",
			loaded.Graphics.Width, loaded.Graphics.Height)
	}
	if loaded.Render.Mode != "forward" {
		t.Errorf("mode = %q, want forward", loaded.Render.Mode)
	}
	if loaded.Render.Shadows.ThrottleFrames != 7 {
		t.Errorf("throttle = %d, want 7", loaded.Render.Shadows.ThrottleFrames)
	}
	if loaded.Render.Tonemap.Exposure != 1.5 {
		t.Errorf("exposure = %f, want 1.5", loaded.Render.Tonemap.Exposure)
	}
}
