package imaging

import (
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ironsheep/dominant-colors/internal/histogram"
)

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect returns r as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// NamedRegions lists the names accepted by NamedRegion.
var NamedRegions = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half",
	"center",
}

// NamedRegion resolves a named part of bounds. Halves round down, so the
// right and bottom parts of an odd-sized image are one pixel larger.
func NamedRegion(bounds image.Rectangle, name string) (Region, error) {
	w := bounds.Dx()
	h := bounds.Dy()
	midX := w / 2
	midY := h / 2

	var x1, y1, x2, y2 int

	switch name {
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, w, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, h
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, w, h
	case "top-half":
		x1, y1, x2, y2 = 0, 0, w, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, w, h
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, h
	case "right-half":
		x1, y1, x2, y2 = midX, 0, w, h
	case "center":
		// Center 50% of the image
		qW := w / 4
		qH := h / 4
		x1, y1, x2, y2 = qW, qH, w-qW, h-qH
	default:
		return Region{}, errors.Wrapf(histogram.ErrInvalidInput, "unknown region %q", name)
	}

	min := bounds.Min
	return Region{X1: min.X + x1, Y1: min.Y + y1, X2: min.X + x2, Y2: min.Y + y2}, nil
}

// ParseRegion reads either "x1,y1,x2,y2" or one of NamedRegions. An empty
// string yields nil, meaning the whole image.
func ParseRegion(s string, bounds image.Rectangle) (*Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.Contains(s, ",") {
		r, err := NamedRegion(bounds, s)
		if err != nil {
			return nil, err
		}
		return &r, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, errors.Wrapf(histogram.ErrInvalidInput, "region %q must be x1,y1,x2,y2", s)
	}
	var n [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(histogram.ErrInvalidInput, "region %q must be x1,y1,x2,y2", s)
		}
		n[i] = v
	}
	return &Region{X1: n[0], Y1: n[1], X2: n[2], Y2: n[3]}, nil
}

// cropRegion validates r against the image bounds and extracts it.
func cropRegion(img image.Image, r Region) (image.Image, error) {
	bounds := img.Bounds()
	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return nil, errors.Wrapf(histogram.ErrInvalidInput, "region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, errors.Wrap(histogram.ErrInvalidInput, "invalid region: x1 must be < x2, y1 must be < y2")
	}
	return imaging.Crop(img, r.Rect()), nil
}
