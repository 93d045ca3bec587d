package histogram

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestFromImage(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want Color
	}{
		{
			"opaque RGBA",
			fill(image.NewRGBA(image.Rect(0, 0, 4, 3)), color.RGBA{255, 128, 64, 255}),
			Color{255, 128, 64},
		},
		{
			"translucent NRGBA keeps straight color",
			fill(image.NewNRGBA(image.Rect(0, 0, 4, 3)), color.NRGBA{200, 10, 5, 128}),
			Color{200, 10, 5},
		},
		{
			"grayscale",
			fill(image.NewGray(image.Rect(0, 0, 4, 3)), color.Gray{Y: 77}),
			Color{77, 77, 77},
		},
		{
			"paletted",
			fill(image.NewPaletted(image.Rect(0, 0, 4, 3), color.Palette{color.RGBA{0, 0, 0, 255}, color.RGBA{10, 20, 30, 255}}), color.RGBA{10, 20, 30, 255}),
			Color{10, 20, 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromImage(tt.img)

			if r.Width != 4 || r.Height != 3 {
				t.Fatalf("dimensions: got %dx%d, want 4x3", r.Width, r.Height)
			}
			if r.Len() != 12 {
				t.Fatalf("Len: got %d, want 12", r.Len())
			}
			for i, c := range r.Pix {
				if c != tt.want {
					t.Fatalf("pixel %d: got %v, want %v", i, c, tt.want)
				}
			}
		})
	}
}

func TestFromImage_OffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	src.Set(5, 5, color.NRGBA{1, 2, 3, 255})
	sub := src.SubImage(image.Rect(5, 5, 7, 7))

	r := FromImage(sub)
	if r.Width != 2 || r.Height != 2 {
		t.Fatalf("dimensions: got %dx%d, want 2x2", r.Width, r.Height)
	}
	if got := r.RGBAt(0, 0); got != (Color{1, 2, 3}) {
		t.Errorf("RGBAt(0,0): got %v, want {1 2 3}", got)
	}
}

func TestRaster_ImplementsImage(t *testing.T) {
	r := NewRaster(3, 2)
	r.Set(2, 1, Color{9, 8, 7})

	var img image.Image = r
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("Bounds: got %v", img.Bounds())
	}
	if got := img.At(2, 1); got != (color.NRGBA{9, 8, 7, 255}) {
		t.Errorf("At(2,1): got %v", got)
	}
	if got := img.At(5, 5); got != (color.NRGBA{}) {
		t.Errorf("At outside bounds: got %v", got)
	}

	back := FromImage(img)
	if back.RGBAt(2, 1) != (Color{9, 8, 7}) {
		t.Errorf("round trip through FromImage lost the pixel: %v", back.RGBAt(2, 1))
	}
}

func TestResample(t *testing.T) {
	r := uniformRaster(40, 20, Color{10, 200, 30})

	same := Resample(r, 40, 20, imaging.Lanczos)
	if same != r {
		t.Error("Resample to the same size should return the input raster")
	}

	small := Resample(r, 10, 5, imaging.Lanczos)
	if small.Width != 10 || small.Height != 5 {
		t.Fatalf("dimensions: got %dx%d, want 10x5", small.Width, small.Height)
	}
	for i, c := range small.Pix {
		if c != (Color{10, 200, 30}) {
			t.Fatalf("pixel %d changed color: %v", i, c)
		}
	}
}

func TestParseFilter(t *testing.T) {
	for name := range Filters {
		if _, err := ParseFilter(name); err != nil {
			t.Errorf("ParseFilter(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseFilter(" Lanczos "); err != nil {
		t.Errorf("ParseFilter should ignore case and spaces: %v", err)
	}
	if _, err := ParseFilter("sinc"); err == nil {
		t.Error("ParseFilter should reject unknown names")
	}
}

func TestRasterFromPixels_Mismatch(t *testing.T) {
	if _, err := RasterFromPixels(2, 2, make([]Color, 3)); err == nil {
		t.Error("RasterFromPixels should reject a short pixel slice")
	}
}

func fill[T interface {
	image.Image
	Set(x, y int, c color.Color)
}](img T, c color.Color) T {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}
