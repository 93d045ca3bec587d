// Package config loads dominant-colors settings from flags, environment
// variables and an optional YAML file through viper.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/ironsheep/dominant-colors/internal/histogram"
	"github.com/ironsheep/dominant-colors/internal/upload"
)

// EnvPrefix prefixes every environment variable, e.g.
// DOMINANT_COLORS_LOG_LEVEL=debug.
const EnvPrefix = "DOMINANT_COLORS"

// Keys understood by Load.
const (
	KeyStep              = "step"
	KeyTop               = "top"
	KeyWidth             = "width"
	KeyHeight            = "height"
	KeyFilter            = "filter"
	KeyParallel          = "parallel"
	KeyUploadDir         = "upload_dir"
	KeyAllowedExtensions = "allowed_extensions"
	KeyMaxUploadBytes    = "max_upload_bytes"
	KeyListen            = "listen"
	KeyMetrics           = "metrics"
	KeyLogLevel          = "log_level"
)

// Config is the validated application configuration.
type Config struct {
	Step      int
	Histogram histogram.Config
	Upload    upload.Config
	Listen    string
	Metrics   bool
	LogLevel  string
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyStep, histogram.DefaultStep)
	v.SetDefault(KeyTop, histogram.DefaultTopN)
	v.SetDefault(KeyWidth, histogram.DefaultWidth)
	v.SetDefault(KeyHeight, histogram.DefaultHeight)
	v.SetDefault(KeyFilter, histogram.DefaultFilter)
	v.SetDefault(KeyParallel, false)
	v.SetDefault(KeyUploadDir, "static/uploads")
	v.SetDefault(KeyAllowedExtensions, upload.DefaultExtensions)
	v.SetDefault(KeyMaxUploadBytes, 20<<20)
	v.SetDefault(KeyListen, ":5000")
	v.SetDefault(KeyMetrics, true)
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Step: v.GetInt(KeyStep),
		Histogram: histogram.Config{
			Width:    v.GetInt(KeyWidth),
			Height:   v.GetInt(KeyHeight),
			Filter:   v.GetString(KeyFilter),
			TopN:     v.GetInt(KeyTop),
			Parallel: v.GetBool(KeyParallel),
		},
		Upload: upload.Config{
			Dir:               v.GetString(KeyUploadDir),
			AllowedExtensions: extensions(v.GetStringSlice(KeyAllowedExtensions)),
			MaxBytes:          v.GetInt64(KeyMaxUploadBytes),
		},
		Listen:   v.GetString(KeyListen),
		Metrics:  v.GetBool(KeyMetrics),
		LogLevel: v.GetString(KeyLogLevel),
	}

	if cfg.Step <= 0 || cfg.Step > histogram.MaxStep {
		return cfg, errors.Errorf("%s must be in (0, %d], got %d", KeyStep, histogram.MaxStep, cfg.Step)
	}
	if _, err := histogram.NewAnalyzer(cfg.Histogram); err != nil {
		return cfg, errors.Wrap(err, "histogram settings")
	}
	if cfg.Upload.MaxBytes < 0 {
		return cfg, errors.Errorf("%s must not be negative", KeyMaxUploadBytes)
	}
	return cfg, nil
}

// extensions accepts both list values and a single comma separated string,
// which is how environment variables arrive.
func extensions(in []string) []string {
	var out []string
	for _, s := range in {
		for _, ext := range strings.Split(s, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				out = append(out, ext)
			}
		}
	}
	return out
}
