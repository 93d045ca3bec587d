package histogram

import (
	"sort"
	"sync"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/pkg/errors"
)

// MaxStep is the largest valid quantization step; it collapses every
// channel into a single bucket.
const MaxStep = 256

// ErrInvalidInput is returned for empty rasters, steps outside (0, 256]
// and unusable analyzer settings.
var ErrInvalidInput = errors.New("invalid input")

// DominantColor is one ranked histogram bucket.
type DominantColor struct {
	Hex        string  `json:"hex"`        // Quantized color "#rrggbb"
	Percentage float64 `json:"percentage"` // Share of pixels in this bucket (0-100)
	RGB        Color   `json:"rgb"`        // Quantized components
	Count      int     `json:"count"`      // Pixels in this bucket
}

// Histogram maps quantized colors to pixel counts.
type Histogram struct {
	step   int
	total  int
	counts map[Color]int
}

// Quantize floors every channel of c to a multiple of step.
// step must be in (0, 256]; Count and Analyze validate it.
func Quantize(c Color, step int) Color {
	return Color{
		R: uint8(int(c.R) / step * step),
		G: uint8(int(c.G) / step * step),
		B: uint8(int(c.B) / step * step),
	}
}

func validateStep(step int) error {
	if step <= 0 || step > MaxStep {
		return errors.Wrapf(ErrInvalidInput, "step %d outside (0, %d]", step, MaxStep)
	}
	return nil
}

// Count quantizes every pixel of r and tallies the buckets.
func Count(r *Raster, step int) (*Histogram, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := validateStep(step); err != nil {
		return nil, err
	}
	return &Histogram{
		step:   step,
		total:  len(r.Pix),
		counts: countRows(r, step, 0, r.Height),
	}, nil
}

// CountParallel is Count with rows split across goroutines.
func CountParallel(r *Raster, step int) (*Histogram, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := validateStep(step); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	counts := make(map[Color]int)
	parallel.Line(r.Height, func(start, end int) {
		partial := countRows(r, step, start, end)
		mu.Lock()
		for c, n := range partial {
			counts[c] += n
		}
		mu.Unlock()
	})

	return &Histogram{step: step, total: len(r.Pix), counts: counts}, nil
}

func countRows(r *Raster, step, start, end int) map[Color]int {
	counts := make(map[Color]int)
	for _, c := range r.Pix[start*r.Width : end*r.Width] {
		counts[Quantize(c, step)]++
	}
	return counts
}

// Step returns the quantization step the histogram was built with.
func (h *Histogram) Step() int { return h.step }

// Total returns the number of pixels counted.
func (h *Histogram) Total() int { return h.total }

// Len returns the number of distinct buckets.
func (h *Histogram) Len() int { return len(h.counts) }

// CountOf returns the number of pixels in the bucket holding c.
func (h *Histogram) CountOf(c Color) int {
	return h.counts[Quantize(c, h.step)]
}

// Ranked returns every bucket ordered by percentage descending, ties
// broken by color ascending.
func (h *Histogram) Ranked() []DominantColor {
	colors := make([]DominantColor, 0, len(h.counts))
	for c, n := range h.counts {
		colors = append(colors, DominantColor{
			Hex:        c.Hex(),
			Percentage: float64(n) / float64(h.total) * 100,
			RGB:        c,
			Count:      n,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Count != colors[j].Count {
			return colors[i].Count > colors[j].Count
		}
		return colors[i].RGB.less(colors[j].RGB)
	})
	return colors
}

// Top returns at most n buckets from the head of Ranked.
func (h *Histogram) Top(n int) []DominantColor {
	colors := h.Ranked()
	if n >= 0 && len(colors) > n {
		colors = colors[:n]
	}
	return colors
}
