package histogram

import (
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Defaults used by Compute and DefaultConfig.
const (
	DefaultStep   = 32
	DefaultTopN   = 10
	DefaultWidth  = 100
	DefaultHeight = 100
	DefaultFilter = "catmullrom"
)

// Config controls the resampling and ranking stages of an Analyzer.
type Config struct {
	// Width and Height give the resolution rasters are resampled to before
	// counting. Zero for both keeps the raster's native size.
	Width  int
	Height int

	// Filter names the resampling kernel (see Filters). Empty means
	// "catmullrom", a bicubic kernel.
	Filter string

	// TopN caps the number of colors returned.
	TopN int

	// Parallel splits counting across goroutines.
	Parallel bool
}

// DefaultConfig returns the 100x100, top-10 configuration.
func DefaultConfig() Config {
	return Config{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Filter: DefaultFilter,
		TopN:   DefaultTopN,
	}
}

// Analyzer ranks the dominant colors of rasters using a fixed Config.
type Analyzer struct {
	cfg    Config
	filter imaging.ResampleFilter
}

// NewAnalyzer validates cfg and returns an Analyzer.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.Width < 0 || cfg.Height < 0 || (cfg.Width == 0) != (cfg.Height == 0) {
		return nil, errors.Wrapf(ErrInvalidInput, "resample size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.TopN <= 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "top %d must be positive", cfg.TopN)
	}
	if cfg.Filter == "" {
		cfg.Filter = DefaultFilter
	}
	filter, err := ParseFilter(cfg.Filter)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidInput, err.Error())
	}
	return &Analyzer{cfg: cfg, filter: filter}, nil
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Histogram resamples r and counts its quantized colors.
func (a *Analyzer) Histogram(r *Raster, step int) (*Histogram, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := validateStep(step); err != nil {
		return nil, err
	}

	if a.cfg.Width > 0 {
		r = Resample(r, a.cfg.Width, a.cfg.Height, a.filter)
	}
	if a.cfg.Parallel {
		return CountParallel(r, step)
	}
	return Count(r, step)
}

// Analyze returns the top-ranked quantized colors of r.
func (a *Analyzer) Analyze(r *Raster, step int) ([]DominantColor, error) {
	h, err := a.Histogram(r, step)
	if err != nil {
		return nil, err
	}
	return h.Top(a.cfg.TopN), nil
}

var defaultAnalyzer = &Analyzer{cfg: DefaultConfig(), filter: imaging.CatmullRom}

// Compute ranks the ten most dominant colors of r after resampling it to
// 100x100 and quantizing with step.
func Compute(r *Raster, step int) ([]DominantColor, error) {
	return defaultAnalyzer.Analyze(r, step)
}
