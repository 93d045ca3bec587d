package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyze_Table(t *testing.T) {
	path := writePNG(t, t.TempDir(), "red.png", color.NRGBA{200, 10, 5, 255})

	out, err := execute(t, "analyze", path)
	require.NoError(t, err)

	assert.Contains(t, out, path+" (8x8, step 32)")
	assert.Contains(t, out, "  1  #c00000  100.00%")
}

func TestAnalyze_JSON(t *testing.T) {
	dir := t.TempDir()
	red := writePNG(t, dir, "red.png", color.NRGBA{200, 10, 5, 255})
	blue := writePNG(t, dir, "blue.png", color.NRGBA{0, 0, 255, 255})

	out, err := execute(t, "analyze", "--json", "--step", "1", red, blue)
	require.NoError(t, err)

	var results []struct {
		File   string `json:"file"`
		Step   int    `json:"step"`
		Colors []struct {
			Hex        string  `json:"hex"`
			Percentage float64 `json:"percentage"`
		} `json:"colors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	assert.Equal(t, red, results[0].File)
	assert.Equal(t, 1, results[0].Step)
	require.Len(t, results[0].Colors, 1)
	assert.Equal(t, "#c80a05", results[0].Colors[0].Hex)
	assert.InDelta(t, 100.0, results[0].Colors[0].Percentage, 1e-9)

	assert.Equal(t, blue, results[1].File)
	assert.Equal(t, "#0000ff", results[1].Colors[0].Hex)
}

func TestAnalyze_Region(t *testing.T) {
	path := writePNG(t, t.TempDir(), "red.png", color.NRGBA{200, 10, 5, 255})

	out, err := execute(t, "analyze", "--region", "0,0,4,2", path)
	require.NoError(t, err)
	assert.Contains(t, out, path+" (4x2, step 32)")

	out, err = execute(t, "analyze", "--region", "center", path)
	require.NoError(t, err)
	assert.Contains(t, out, path+" (4x4, step 32)")
}

func TestAnalyze_SwatchDir(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "photo.jpeg.png", color.NRGBA{0, 0, 255, 255})
	swatches := filepath.Join(dir, "swatches")

	_, err := execute(t, "analyze", "--swatch-dir", swatches, path)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(swatches, "photo.jpeg.swatch.png"))
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestAnalyze_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "red.png", color.NRGBA{200, 10, 5, 255})
	cfgPath := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("step: 100\n"), 0o644))

	out, err := execute(t, "analyze", "--config", cfgPath, path)
	require.NoError(t, err)
	assert.Contains(t, out, "#c80000")

	// Flags win over the config file
	out, err = execute(t, "analyze", "--config", cfgPath, "--step", "256", path)
	require.NoError(t, err)
	assert.Contains(t, out, "#000000")
}

func TestAnalyze_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "red.png", color.NRGBA{1, 2, 3, 255})
	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))

	tests := []struct {
		name string
		args []string
	}{
		{"no files", []string{"analyze"}},
		{"missing file", []string{"analyze", filepath.Join(dir, "missing.png")}},
		{"undecodable", []string{"analyze", garbage}},
		{"step zero", []string{"analyze", "--step", "0", path}},
		{"step too large", []string{"analyze", "--step", "257", path}},
		{"unknown filter", []string{"analyze", "--filter", "blur", path}},
		{"region outside image", []string{"analyze", "--region", "0,0,9,9", path}},
		{"unknown region", []string{"analyze", "--region", "middle", path}},
		{"missing config file", []string{"analyze", "--config", filepath.Join(dir, "none.yaml"), path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

// start runs the root command in the background until ctx is canceled.
func start(ctx context.Context, t *testing.T, in io.Reader, out io.Writer, args ...string) <-chan error {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level", "error"))

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("command did not stop after cancel")
		return nil
	}
}

func TestMCP_AnswersAndStopsOnCancel(t *testing.T) {
	path := writePNG(t, t.TempDir(), "red.png", color.NRGBA{200, 10, 5, 255})

	inR, inW := io.Pipe()
	defer inW.Close()
	outR, outW := io.Pipe()
	defer outR.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := start(ctx, t, inR, outW, "mcp")

	req := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"image_dominant_colors","arguments":{"path":%q}}}`, path)
	_, err := io.WriteString(inW, req+"\n")
	require.NoError(t, err)

	line, err := bufio.NewReader(outR).ReadBytes('\n')
	require.NoError(t, err)
	assert.Contains(t, string(line), `"id":1`)
	assert.Contains(t, string(line), "#c00000")

	// stdin stays open: the client is idle when the shutdown arrives
	cancel()
	assert.NoError(t, waitDone(t, done))
}

func TestMCP_StopsAtEOF(t *testing.T) {
	var out bytes.Buffer
	done := start(context.Background(), t, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out, "mcp")

	require.NoError(t, waitDone(t, done))
	assert.Contains(t, out.String(), `"id":1`)
}

func TestServe_StopsOnCancel(t *testing.T) {
	uploads := filepath.Join(t.TempDir(), "uploads")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := start(ctx, t, nil, io.Discard, "serve", "--listen", "127.0.0.1:0", "--upload-dir", uploads)

	require.Eventually(t, func() bool {
		_, err := os.Stat(uploads)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, waitDone(t, done))
}

func TestServe_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"bad listen address", []string{"serve", "--listen", "127.0.0.1:99999", "--upload-dir", dir}},
		{"empty upload dir", []string{"serve", "--listen", "127.0.0.1:0", "--upload-dir", ""}},
		{"step too large", []string{"serve", "--listen", "127.0.0.1:0", "--upload-dir", dir, "--step", "300"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "dominant-colors dev")
	assert.Contains(t, out, "Git commit: unknown")
}
