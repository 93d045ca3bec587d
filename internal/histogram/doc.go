// Package histogram computes the dominant colors of an RGB raster.
//
// The engine is a quantized color histogram. A raster is resampled to a
// small fixed resolution, every channel is floored to a multiple of the
// quantization step, identical quantized colors are counted, and the most
// frequent buckets are reported as "#rrggbb" hex strings with the share of
// pixels they cover.
//
// # Pipeline
//
//  1. Resample the raster to Config.Width x Config.Height (100x100 by default)
//  2. Quantize each pixel: (r/step*step, g/step*step, b/step*step)
//  3. Count pixels per quantized color
//  4. Convert counts to percentages of the resampled pixel count
//  5. Rank by percentage descending and keep the first Config.TopN (10)
//
// Equal percentages are ordered by the quantized color itself, comparing
// red, then green, then blue, ascending. The result is therefore fully
// determined by the raster and the step.
//
// # Thread Safety
//
// All functions are free of shared state. An Analyzer may be used from
// several goroutines at once. With Config.Parallel set, counting fans out
// across rows and merges the partial counts before ranking.
package histogram
