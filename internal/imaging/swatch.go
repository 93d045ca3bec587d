package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/dominant-colors/internal/histogram"
)

// Default swatch geometry in pixels.
const (
	DefaultSwatchWidth     = 320
	DefaultSwatchRowHeight = 32
)

// labelPad is the left margin of a swatch label.
const labelPad = 8

// Swatch renders one full-width row per color, top to bottom in the given
// order, each labelled with its hex code and percentage.
func Swatch(colors []ColorFrequency, width, rowHeight int) (*image.NRGBA, error) {
	if len(colors) == 0 {
		return nil, errors.Wrap(histogram.ErrInvalidInput, "swatch needs at least one color")
	}
	if width <= 0 || rowHeight <= 0 {
		return nil, errors.Wrapf(histogram.ErrInvalidInput, "swatch size %dx%d per row", width, rowHeight)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, rowHeight*len(colors)))
	face := basicfont.Face7x13

	for i, c := range colors {
		row := image.Rect(0, i*rowHeight, width, (i+1)*rowHeight)
		fill := color.NRGBA{c.RGB.R, c.RGB.G, c.RGB.B, 255}
		draw.Draw(img, row, image.NewUniform(fill), image.Point{}, draw.Src)

		// Vertically center the glyphs in the row
		metrics := face.Metrics()
		textHeight := (metrics.Ascent + metrics.Descent).Ceil()
		baseline := row.Min.Y + (rowHeight-textHeight)/2 + metrics.Ascent.Ceil()

		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(labelColor(c)),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.I(labelPad), Y: fixed.I(baseline)},
		}
		d.DrawString(fmt.Sprintf("%s %6.2f%%", c.Hex, c.Percentage))
	}
	return img, nil
}

// WriteSwatch encodes the swatch of colors as PNG.
func WriteSwatch(w io.Writer, colors []ColorFrequency, width, rowHeight int) error {
	img, err := Swatch(colors, width, rowHeight)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return errors.Wrap(err, "encode swatch")
	}
	return nil
}

// labelColor picks black on light colors and white on dark ones, judged by
// CIE lightness.
func labelColor(c ColorFrequency) color.Color {
	if l, _, _ := c.RGB.Colorful().Lab(); l > 0.6 {
		return color.Black
	}
	return color.White
}
