package histogram

import (
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// Filters lists the resampling filters selectable by name.
var Filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

// ParseFilter resolves a filter name such as "lanczos" (case-insensitive).
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	f, ok := Filters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter %q", name)
	}
	return f, nil
}

// Resample scales r to width x height with the given filter.
//
// The raster is returned unchanged when it already has the requested size.
// All imaging filters are deterministic, so identical input always yields
// an identical output raster.
func Resample(r *Raster, width, height int, filter imaging.ResampleFilter) *Raster {
	if r.Width == width && r.Height == height {
		return r
	}
	return FromImage(imaging.Resize(r, width, height, filter))
}
