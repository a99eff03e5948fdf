package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagMode       = flag.String("mode", "", "Render mode: deferred or forward")
	flagNoShadows  = flag.Bool("no-shadows", false, "Disable shadow mapping")
	flagNoSSAO     = flag.Bool("no-ssao", false, "Disable ambient occlusion")
	flagAA         = flag.String("aa", "", "Anti-aliasing mode: none or fxaa")

	flagWriteConfig = flag.Bool("write-config", false, "Write the resolved config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigRequested reports whether --write-config was passed.
func WriteConfigRequested() bool {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagMode != "" {
		cfg.Render.Mode = *flagMode
	}
	if *flagNoShadows {
		cfg.Render.Shadows.Enabled = false
	}
	if *flagNoSSAO {
		cfg.Render.SSAO.Enabled = false
	}
	if *flagAA != "" {
		cfg.Render.AA = *flagAA
	}
}
