// Package config loads pipeline tuning from JSON. All fields are optional
// pointers so a partial file overrides only what it names; everything else
// falls back to the package defaults of the component it tunes.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/playback"
	"github.com/courtside-data/spacing.report/internal/spacing"
	"github.com/courtside-data/spacing.report/internal/track"
)

// TuningConfig is the root tuning document.
type TuningConfig struct {
	// Tracker params
	ConfirmationStreak *int     `json:"confirmation_streak,omitempty"`
	MaxLostAge         *int     `json:"max_lost_age,omitempty"`
	GatingDistance     *float64 `json:"gating_distance,omitempty"`
	AppearanceWeight   *float64 `json:"appearance_weight,omitempty"`
	AppearanceBlend    *float64 `json:"appearance_blend,omitempty"`
	ColorWindow        *int     `json:"color_window,omitempty"`

	// Normalizer params
	MinConfidence *float64 `json:"min_confidence,omitempty"`
	MinTracks     *int     `json:"min_tracks,omitempty"`

	// Spacing metric params
	OpenThreshold *float64 `json:"open_threshold,omitempty"`
	HullWeight    *float64 `json:"hull_weight,omitempty"`
	SpreadWeight  *float64 `json:"spread_weight,omitempty"`
	OpenWeight    *float64 `json:"open_weight,omitempty"`
	HullNorm      *float64 `json:"hull_norm,omitempty"`
	SpreadNorm    *float64 `json:"spread_norm,omitempty"`
	OpenNorm      *float64 `json:"open_norm,omitempty"`

	// Playback params
	FrameRate     *float64 `json:"frame_rate,omitempty"`
	PlaybackSpeed *float64 `json:"playback_speed,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The path must end
// in .json and the file must stay under the size cap; omitted fields keep
// the component defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that set values are usable.
func (c *TuningConfig) Validate() error {
	if c.ConfirmationStreak != nil && *c.ConfirmationStreak < 1 {
		return fmt.Errorf("confirmation_streak must be at least 1, got %d", *c.ConfirmationStreak)
	}
	if c.MaxLostAge != nil && *c.MaxLostAge < 0 {
		return fmt.Errorf("max_lost_age must be non-negative, got %d", *c.MaxLostAge)
	}
	if c.GatingDistance != nil && *c.GatingDistance <= 0 {
		return fmt.Errorf("gating_distance must be positive, got %f", *c.GatingDistance)
	}
	if c.AppearanceBlend != nil && (*c.AppearanceBlend < 0 || *c.AppearanceBlend > 1) {
		return fmt.Errorf("appearance_blend must be between 0 and 1, got %f", *c.AppearanceBlend)
	}
	if c.MinConfidence != nil && (*c.MinConfidence < 0 || *c.MinConfidence > 1) {
		return fmt.Errorf("min_confidence must be between 0 and 1, got %f", *c.MinConfidence)
	}
	if c.OpenThreshold != nil && *c.OpenThreshold < 0 {
		return fmt.Errorf("open_threshold must be non-negative, got %f", *c.OpenThreshold)
	}
	if c.FrameRate != nil && *c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %f", *c.FrameRate)
	}
	if c.PlaybackSpeed != nil && *c.PlaybackSpeed <= 0 {
		return fmt.Errorf("playback_speed must be positive, got %f", *c.PlaybackSpeed)
	}

	weights := []*float64{c.HullWeight, c.SpreadWeight, c.OpenWeight}
	for _, w := range weights {
		if w != nil && *w < 0 {
			return fmt.Errorf("score weights must be non-negative, got %f", *w)
		}
	}
	return nil
}

// TrackerConfig materializes the tracker settings over its defaults.
func (c *TuningConfig) TrackerConfig() track.Config {
	out := track.DefaultConfig()
	if c.ConfirmationStreak != nil {
		out.ConfirmationStreak = *c.ConfirmationStreak
	}
	if c.MaxLostAge != nil {
		out.MaxLostAge = *c.MaxLostAge
	}
	if c.GatingDistance != nil {
		out.GatingDistance = *c.GatingDistance
	}
	if c.AppearanceWeight != nil {
		out.AppearanceWeight = *c.AppearanceWeight
	}
	if c.AppearanceBlend != nil {
		out.AppearanceBlend = *c.AppearanceBlend
	}
	if c.ColorWindow != nil {
		out.ColorWindow = *c.ColorWindow
	}
	return out
}

// NormalizerConfig materializes the normalizer settings over its defaults.
func (c *TuningConfig) NormalizerConfig() game.NormalizerConfig {
	out := game.DefaultNormalizerConfig()
	if c.MinConfidence != nil {
		out.MinConfidence = *c.MinConfidence
	}
	if c.MinTracks != nil {
		out.MinTracks = *c.MinTracks
	}
	return out
}

// MetricsConfig materializes the spacing settings over its defaults.
func (c *TuningConfig) MetricsConfig() spacing.Config {
	out := spacing.DefaultConfig()
	if c.OpenThreshold != nil {
		out.OpenThreshold = *c.OpenThreshold
	}
	if c.HullWeight != nil {
		out.HullWeight = *c.HullWeight
	}
	if c.SpreadWeight != nil {
		out.SpreadWeight = *c.SpreadWeight
	}
	if c.OpenWeight != nil {
		out.OpenWeight = *c.OpenWeight
	}
	if c.HullNorm != nil {
		out.HullNorm = *c.HullNorm
	}
	if c.SpreadNorm != nil {
		out.SpreadNorm = *c.SpreadNorm
	}
	if c.OpenNorm != nil {
		out.OpenNorm = *c.OpenNorm
	}
	return out
}

// PlaybackConfig materializes the playback settings over its defaults.
func (c *TuningConfig) PlaybackConfig() playback.Config {
	out := playback.DefaultConfig()
	if c.FrameRate != nil {
		out.FrameRate = *c.FrameRate
	}
	if c.PlaybackSpeed != nil {
		out.Speed = *c.PlaybackSpeed
	}
	out.Metrics = c.MetricsConfig()
	return out
}
