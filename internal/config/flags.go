package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWorkers    = flag.Int("workers", -1, "Concurrent text geometry workers (0 = GOMAXPROCS)")
	flagTexture    = flag.String("texture", "", "Image file for textured billboards")
	flagKind       = flag.String("kind", "", "Stress billboards: text, texture or both")
	flagRadius     = flag.Int("radius", -1, "Stress grid radius")
	flagFrames     = flag.Int("frames", -1, "Stress frames to run")
	flagRecompute  = flag.Bool("recompute", false, "Mark every billboard changed each stress frame")
	flagExample    = flag.String("example", "", "Viewer example: text, lock_y, lock_rotation, depth, texture, transform_propagation or stress")
	flagFullscreen = flag.Bool("fullscreen", false, "Run the viewer fullscreen")
	flagWidth      = flag.Int("width", 0, "Viewer width")
	flagHeight     = flag.Int("height", 0, "Viewer height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWorkers >= 0 {
		cfg.Pipeline.Workers = *flagWorkers
	}
	if *flagTexture != "" {
		cfg.Texture.Path = *flagTexture
	}
	if *flagKind != "" {
		cfg.Stress.Kind = *flagKind
	}
	if *flagRadius >= 0 {
		cfg.Stress.Radius = *flagRadius
	}
	if *flagFrames >= 0 {
		cfg.Stress.Frames = *flagFrames
	}
	if *flagRecompute {
		cfg.Stress.RecomputeText = true
		cfg.Stress.RecomputeTexture = true
	}
	if *flagExample != "" {
		cfg.Viewer.Example = *flagExample
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
}
