// Package config loads solver settings from an optional config file layered
// under environment variables, using Viper so the search tuning knobs can
// be adjusted per deployment without a rebuild.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds every tunable that internal/search and internal/carbscale
// read at startup.
type Settings struct {
	// AttemptLimit caps how many assignment attempts search.Run makes
	// before returning FM-5.
	AttemptLimit int `mapstructure:"attempt_limit"`

	// EnableCarbDownscalingDefault seeds UserProfile.EnablePrimaryCarbDownscaling
	// for scenarios that don't set it explicitly.
	EnableCarbDownscalingDefault bool `mapstructure:"enable_carb_downscaling_default"`

	// MaxScalingSteps and ScalingStepFraction seed the corresponding
	// UserProfile fields when a scenario omits them.
	MaxScalingSteps     int     `mapstructure:"max_scaling_steps"`
	ScalingStepFraction float64 `mapstructure:"scaling_step_fraction"`

	// ULReferencePath and ScalableSourcesPath locate the reference JSON
	// tables internal/reference loads.
	ULReferencePath     string `mapstructure:"ul_reference_path"`
	ScalableSourcesPath string `mapstructure:"scalable_sources_path"`

	// LogLevel controls the verbosity of the zap logger constructed in
	// cmd/mealplansolver ("debug", "info", "warn", "error").
	LogLevel string `mapstructure:"log_level"`
}

func defaults() Settings {
	return Settings{
		AttemptLimit:                 50_000,
		EnableCarbDownscalingDefault: false,
		MaxScalingSteps:              3,
		ScalingStepFraction:          0.15,
		ULReferencePath:              "data/reference/ul_by_demographic.json",
		ScalableSourcesPath:          "data/reference/scalable_carb_sources.json",
		LogLevel:                     "info",
	}
}

// Load reads settings from configPath (if non-empty), then overlays
// environment variables prefixed MEALSOLVER_ (e.g. MEALSOLVER_ATTEMPT_LIMIT),
// falling back to hardcoded defaults for anything neither source sets.
func Load(configPath string) (Settings, error) {
	v := viper.New()
	d := defaults()
	v.SetDefault("attempt_limit", d.AttemptLimit)
	v.SetDefault("enable_carb_downscaling_default", d.EnableCarbDownscalingDefault)
	v.SetDefault("max_scaling_steps", d.MaxScalingSteps)
	v.SetDefault("scaling_step_fraction", d.ScalingStepFraction)
	v.SetDefault("ul_reference_path", d.ULReferencePath)
	v.SetDefault("scalable_sources_path", d.ScalableSourcesPath)
	v.SetDefault("log_level", d.LogLevel)

	v.SetEnvPrefix("MEALSOLVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	}

	var out Settings
	if err := v.Unmarshal(&out); err != nil {
		return Settings{}, fmt.Errorf("parsing config: %w", err)
	}
	return out, nil
}
