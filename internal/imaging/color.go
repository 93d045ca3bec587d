package imaging

import (
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/ironsheep/dominant-colors/internal/histogram"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorFrequency is a dominant color decorated for display.
type ColorFrequency struct {
	Hex        string          `json:"hex"`        // Quantized color "#rrggbb"
	Percentage float64         `json:"percentage"` // Share of pixels (0-100)
	RGB        histogram.Color `json:"rgb"`        // Quantized components
	HSL        HSLColor        `json:"hsl"`        // HSL of the quantized color
}

// DominantColorsResult contains the ranked colors of an image or region.
//
// Colors are sorted by percentage in descending order.
type DominantColorsResult struct {
	Step   int              `json:"step"`
	Width  int              `json:"width"`  // Width of the analyzed area before resampling
	Height int              `json:"height"` // Height of the analyzed area before resampling
	Colors []ColorFrequency `json:"colors"`
}

// Options selects how DominantColors analyzes an image.
type Options struct {
	// Step is the quantization step. Zero means histogram.DefaultStep.
	Step int

	// Count further limits the number of colors returned. Zero keeps
	// everything the analyzer returns.
	Count int

	// Analyzer carries the resampling and ranking configuration. Nil uses
	// histogram.DefaultConfig.
	Analyzer *histogram.Analyzer
}

// DominantColors ranks the most common quantized colors of an image.
//
// Parameters:
//   - img: The decoded source image. Any color model is accepted; it is
//     reduced to plain RGB before counting.
//   - opts: Quantization step, result count and analyzer.
//   - region: Optional rectangle to analyze. If nil, the whole image is used.
//
// Returns:
//   - *DominantColorsResult: Colors sorted by percentage, each with RGB and HSL.
//   - error: Wraps histogram.ErrInvalidInput for a bad region, step or count.
func DominantColors(img image.Image, opts Options, region *Region) (*DominantColorsResult, error) {
	if opts.Step == 0 {
		opts.Step = histogram.DefaultStep
	}
	if opts.Count < 0 {
		return nil, errors.Wrapf(histogram.ErrInvalidInput, "count %d must not be negative", opts.Count)
	}

	src := img
	if region != nil {
		cropped, err := cropRegion(img, *region)
		if err != nil {
			return nil, err
		}
		src = cropped
	}

	raster := histogram.FromImage(src)

	var (
		colors []histogram.DominantColor
		err    error
	)
	if opts.Analyzer != nil {
		colors, err = opts.Analyzer.Analyze(raster, opts.Step)
	} else {
		colors, err = histogram.Compute(raster, opts.Step)
	}
	if err != nil {
		return nil, err
	}

	if opts.Count > 0 && len(colors) > opts.Count {
		colors = colors[:opts.Count]
	}

	result := &DominantColorsResult{
		Step:   opts.Step,
		Width:  raster.Width,
		Height: raster.Height,
		Colors: make([]ColorFrequency, 0, len(colors)),
	}
	for _, c := range colors {
		result.Colors = append(result.Colors, ColorFrequency{
			Hex:        c.Hex,
			Percentage: c.Percentage,
			RGB:        c.RGB,
			HSL:        toHSL(c.RGB),
		})
	}
	return result, nil
}

// toHSL converts a color to rounded HSL components.
func toHSL(c histogram.Color) HSLColor {
	h, s, l := c.Colorful().Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}
