// Package imaging decodes images and prepares them for color analysis.
//
// It sits between file or upload handling and the histogram engine: images
// are decoded (with EXIF orientation applied), optionally cropped to a
// region, reduced to plain RGB rasters and handed to a histogram.Analyzer.
// The ranked colors come back decorated with RGB and HSL for display.
//
// # Coordinate System
//
// Regions use 0-based pixel coordinates with (0,0) at the top-left corner.
// (X1,Y1) is inclusive and (X2,Y2) is exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. DominantColors keeps no state and
// may be called concurrently.
//
// # Error Handling
//
// Decoding failures wrap ErrDecode. Bad regions, steps and counts wrap
// histogram.ErrInvalidInput so callers can tell user errors from I/O errors.
package imaging
