package config

import (
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/pointplay/internal/cloud"
	"github.com/banshee-data/pointplay/internal/playback"
)

// PlaybackConfig holds playback and point-building tuning. Every field is
// optional; the Get* methods fall back to defaults for unset fields.
type PlaybackConfig struct {
	Interval          *string  `json:"interval,omitempty" yaml:"interval,omitempty"` // duration string like "20ms"
	ScrubAcceleration *float64 `json:"scrub_acceleration,omitempty" yaml:"scrub_acceleration,omitempty"`
	ColorThreshold    *float64 `json:"color_threshold,omitempty" yaml:"color_threshold,omitempty"`
	DefaultSize       *float64 `json:"default_size,omitempty" yaml:"default_size,omitempty"`
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

// DefaultPlaybackConfig returns a PlaybackConfig with every field set to
// its default.
func DefaultPlaybackConfig() *PlaybackConfig {
	return &PlaybackConfig{
		Interval:          ptrString(playback.DefaultInterval.String()),
		ScrubAcceleration: ptrFloat64(playback.DefaultScrubAcceleration),
		ColorThreshold:    ptrFloat64(cloud.DefaultColorThreshold),
		DefaultSize:       ptrFloat64(cloud.DefaultPointSize),
	}
}

// Validate checks that the configuration values are valid.
func (c *PlaybackConfig) Validate() error {
	if c == nil {
		return nil
	}

	if c.Interval != nil && *c.Interval != "" {
		d, err := time.ParseDuration(*c.Interval)
		if err != nil {
			return fmt.Errorf("invalid interval '%s': %w", *c.Interval, err)
		}
		if d <= 0 {
			return fmt.Errorf("interval must be positive, got %s", d)
		}
	}

	if c.ScrubAcceleration != nil && !(finite(*c.ScrubAcceleration) && *c.ScrubAcceleration > 0) {
		return fmt.Errorf("scrub_acceleration must be positive and finite, got %f", *c.ScrubAcceleration)
	}

	if c.ColorThreshold != nil && !(finite(*c.ColorThreshold) && *c.ColorThreshold >= 0) {
		return fmt.Errorf("color_threshold must be non-negative and finite, got %f", *c.ColorThreshold)
	}

	if c.DefaultSize != nil && !(finite(*c.DefaultSize) && *c.DefaultSize > 0) {
		return fmt.Errorf("default_size must be positive and finite, got %f", *c.DefaultSize)
	}

	return nil
}

// GetInterval parses and returns the Interval as a time.Duration.
func (c *PlaybackConfig) GetInterval() time.Duration {
	if c == nil || c.Interval == nil || *c.Interval == "" {
		return playback.DefaultInterval
	}
	d, err := time.ParseDuration(*c.Interval)
	if err != nil || d <= 0 {
		return playback.DefaultInterval // default on parse error
	}
	return d
}

// GetScrubAcceleration returns the scrub_acceleration value or the default.
func (c *PlaybackConfig) GetScrubAcceleration() float64 {
	if c == nil || c.ScrubAcceleration == nil {
		return playback.DefaultScrubAcceleration
	}
	return *c.ScrubAcceleration
}

// GetColorThreshold returns the color_threshold value or the default.
func (c *PlaybackConfig) GetColorThreshold() float64 {
	if c == nil || c.ColorThreshold == nil {
		return cloud.DefaultColorThreshold
	}
	return *c.ColorThreshold
}

// GetDefaultSize returns the default_size value or the default.
func (c *PlaybackConfig) GetDefaultSize() float64 {
	if c == nil || c.DefaultSize == nil {
		return cloud.DefaultPointSize
	}
	return *c.DefaultSize
}

// ControllerConfig returns the playback controller tuning.
func (c *PlaybackConfig) ControllerConfig() playback.Config {
	return playback.Config{ScrubAcceleration: c.GetScrubAcceleration()}
}

// ColorPolicy returns the colour policy for point building.
func (c *PlaybackConfig) ColorPolicy() *cloud.ColorPolicy {
	return &cloud.ColorPolicy{Threshold: c.GetColorThreshold()}
}
