// Package config handles billboard pipeline configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all settings for the pipeline and the bundled programs.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Text     TextConfig     `yaml:"text"`
	Texture  TextureConfig  `yaml:"texture"`
	Stress   StressConfig   `yaml:"stress"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PipelineConfig holds frame pipeline settings.
type PipelineConfig struct {
	Workers                 int  `yaml:"workers"`                   // Concurrent text geometry builds; 0 = GOMAXPROCS
	BatchCapacity           int  `yaml:"batch_capacity"`            // Initial render batch capacity
	DistinctGroupIdentities bool `yaml:"distinct_group_identities"` // One render identity per text mesh-group
}

// TextConfig holds font and glyph atlas settings.
type TextConfig struct {
	FontPath     string  `yaml:"font_path"` // Empty = embedded Go Regular
	FontSize     float32 `yaml:"font_size"`
	AtlasSize    int     `yaml:"atlas_size"` // Square atlas page size in pixels
	GlyphPadding int     `yaml:"glyph_padding"`
}

// TextureConfig selects the image shown by textured billboards.
type TextureConfig struct {
	Path string `yaml:"path"` // PNG, JPEG, BMP, TIFF, WebP or TGA; empty = generated checker
}

// StressConfig holds settings for the stress program.
type StressConfig struct {
	Kind             string  `yaml:"kind"`   // "text", "texture" or "both"
	Radius           int     `yaml:"radius"` // Grid spans -radius..radius on each axis
	RecomputeText    bool    `yaml:"recompute_text"`
	RecomputeTexture bool    `yaml:"recompute_texture"`
	Frames           int     `yaml:"frames"`
	TextScale        float32 `yaml:"text_scale"`
}

// ViewerConfig holds display settings for the viewer program.
type ViewerConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Fullscreen    bool   `yaml:"fullscreen"`
	VSync         bool   `yaml:"vsync"`
	Samples       int    `yaml:"samples"` // MSAA samples, 0 disables multisampling
	Example       string `yaml:"example"` // Example scene name, or "stress" for the stress grid
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Validation errors.
var (
	ErrInvalidFontSize  = errors.New("font size must be positive")
	ErrInvalidAtlasSize = errors.New("atlas size must be positive")
	ErrInvalidStress    = errors.New("invalid stress settings")
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Workers:       0,
			BatchCapacity: 256,
		},
		Text: TextConfig{
			FontSize:     60,
			AtlasSize:    512,
			GlyphPadding: 1,
		},
		Stress: StressConfig{
			Kind:      "text",
			Radius:    10,
			Frames:    600,
			TextScale: 0.0085,
		},
		Viewer: ViewerConfig{
			Width:         1280,
			Height:        720,
			VSync:         true,
			Samples:       4,
			Example:       "text",
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would make the pipeline misbehave.
func (c *Config) Validate() error {
	if c.Text.FontSize <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFontSize, c.Text.FontSize)
	}
	if c.Text.AtlasSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAtlasSize, c.Text.AtlasSize)
	}
	switch c.Stress.Kind {
	case "text", "texture", "both":
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidStress, c.Stress.Kind)
	}
	if c.Stress.Radius < 0 || c.Stress.Frames < 0 {
		return fmt.Errorf("%w: radius %d, frames %d", ErrInvalidStress, c.Stress.Radius, c.Stress.Frames)
	}
	return nil
}
