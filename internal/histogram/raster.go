package histogram

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Color is an RGB triple with 8-bit channels.
type Color struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex renders the color as a lowercase "#rrggbb" string.
func (c Color) Hex() string {
	return c.Colorful().Hex()
}

// Colorful converts the color to a go-colorful value for further conversions.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// less orders colors lexicographically on (R, G, B).
func (c Color) less(o Color) bool {
	if c.R != o.R {
		return c.R < o.R
	}
	if c.G != o.G {
		return c.G < o.G
	}
	return c.B < o.B
}

// Raster is a row-major grid of RGB pixels.
//
// Pix holds Width*Height entries; the pixel at (x, y) is Pix[y*Width+x].
// Raster implements image.Image so it can be handed directly to the
// resampling filters.
type Raster struct {
	Width  int
	Height int
	Pix    []Color
}

// NewRaster allocates a black raster of the given size.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]Color, width*height),
	}
}

// RasterFromPixels builds a raster from a row-major pixel list.
func RasterFromPixels(width, height int, pix []Color) (*Raster, error) {
	r := &Raster{Width: width, Height: height, Pix: pix}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// FromImage converts any decoded image into a plain RGB raster.
//
// Alpha is discarded without compositing: the stored (non-premultiplied)
// RGB values are kept, so palette, grayscale, YCbCr and RGBA sources all
// reduce to the same 8-bit triples a straight RGB conversion would give.
func FromImage(img image.Image) *Raster {
	var nrgba *image.NRGBA
	if n, ok := img.(*image.NRGBA); ok {
		nrgba = n
	} else {
		nrgba = imaging.Clone(img)
	}

	b := nrgba.Bounds()
	r := NewRaster(b.Dx(), b.Dy())
	for y := 0; y < r.Height; y++ {
		off := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
		row := r.Pix[y*r.Width : (y+1)*r.Width]
		for x := range row {
			i := off + x*4
			row[x] = Color{R: nrgba.Pix[i], G: nrgba.Pix[i+1], B: nrgba.Pix[i+2]}
		}
	}
	return r
}

// Len returns the number of pixels in the raster.
func (r *Raster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Pix)
}

// RGBAt returns the pixel at (x, y) without bounds checks.
func (r *Raster) RGBAt(x, y int) Color {
	return r.Pix[y*r.Width+x]
}

// Set stores c at (x, y).
func (r *Raster) Set(x, y int, c Color) {
	r.Pix[y*r.Width+x] = c
}

// ColorModel implements image.Image.
func (r *Raster) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// At implements image.Image. Every pixel is fully opaque.
func (r *Raster) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return color.NRGBA{}
	}
	c := r.RGBAt(x, y)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func (r *Raster) validate() error {
	if r == nil {
		return errors.Wrap(ErrInvalidInput, "raster is nil")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return errors.Wrapf(ErrInvalidInput, "raster is empty (%dx%d)", r.Width, r.Height)
	}
	if len(r.Pix) != r.Width*r.Height {
		return errors.Wrapf(ErrInvalidInput, "raster holds %d pixels, want %dx%d", len(r.Pix), r.Width, r.Height)
	}
	return nil
}
