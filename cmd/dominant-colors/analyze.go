package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/dominant-colors/internal/histogram"
	"github.com/ironsheep/dominant-colors/internal/imaging"
)

// fileResult is one analyzed file in --json output.
type fileResult struct {
	File string `json:"file"`
	*imaging.DominantColorsResult
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		asJSON    bool
		region    string
		swatchDir string
	)

	cmd := &cobra.Command{
		Use:   "analyze <image>...",
		Short: "Print the dominant colors of image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			analyzer, err := histogram.NewAnalyzer(cfg.Histogram)
			if err != nil {
				return err
			}

			results := make([]fileResult, 0, len(args))
			for _, path := range args {
				result, err := analyzeFile(path, cfg.Step, region, analyzer)
				if err != nil {
					return errors.Wrap(err, path)
				}
				logger.Debug("analyzed",
					zap.String("file", path),
					zap.Int("step", result.Step),
					zap.Int("colors", len(result.Colors)),
				)
				results = append(results, fileResult{File: path, DominantColorsResult: result})

				if swatchDir != "" {
					out, err := writeSwatch(swatchDir, path, result)
					if err != nil {
						return err
					}
					logger.Info("wrote swatch", zap.String("file", out))
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printTable(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().StringVar(&region, "region", "", `analyze only "x1,y1,x2,y2" or a named part such as "top-left" or "center"`)
	cmd.Flags().StringVar(&swatchDir, "swatch-dir", "", "also write a PNG swatch per image into this directory")
	return cmd
}

func analyzeFile(path string, step int, region string, analyzer *histogram.Analyzer) (*imaging.DominantColorsResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, err
	}
	r, err := imaging.ParseRegion(region, img.Bounds())
	if err != nil {
		return nil, err
	}
	return imaging.DominantColors(img, imaging.Options{Step: step, Analyzer: analyzer}, r)
}

// writeSwatch renders result into dir as <image name>.swatch.png.
func writeSwatch(dir, path string, result *imaging.DominantColorsResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create swatch directory")
	}
	base := filepath.Base(path)
	out := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".swatch.png")

	f, err := os.Create(out)
	if err != nil {
		return "", errors.Wrap(err, "create swatch")
	}
	if err := imaging.WriteSwatch(f, result.Colors, imaging.DefaultSwatchWidth, imaging.DefaultSwatchRowHeight); err != nil {
		f.Close()
		return "", err
	}
	return out, errors.Wrap(f.Close(), "close swatch")
}

func printTable(w io.Writer, results []fileResult) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%dx%d, step %d)\n", r.File, r.Width, r.Height, r.Step)
		for rank, c := range r.Colors {
			fmt.Fprintf(w, "%3d  %s  %6.2f%%\n", rank+1, c.Hex, c.Percentage)
		}
	}
}
