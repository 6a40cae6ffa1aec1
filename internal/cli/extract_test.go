package cli_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/swatch/internal/cli"
	"github.com/jmylchreest/swatch/internal/colour"
)

// writeTestImage writes a 4x4 PNG whose top half is red and bottom half blue.
func writeTestImage(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			c := color.NRGBA{R: 255, A: 255}
			if y >= 2 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "test.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

// clearEnv stops SWATCH_* settings from the developer's shell leaking into tests.
func clearEnv(t *testing.T) {
	for _, name := range []string{"SWATCH_COLOURS", "SWATCH_SEED", "SWATCH_MAX_ITERATIONS", "SWATCH_WORKERS", "SWATCH_FORMAT"} {
		t.Setenv(name, "")
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestExtractCommand(t *testing.T) {
	clearEnv(t)
	imagePath := writeTestImage(t)

	t.Run("single colour is the image mean", func(t *testing.T) {
		out, _, err := run(t, "extract", "-c", "1", "-f", "css", imagePath)
		require.NoError(t, err)
		assert.Equal(t, "rgb(128,0,128)\n", out)
	})

	t.Run("hex is the default format", func(t *testing.T) {
		out, _, err := run(t, "extract", "-c", "1", imagePath)
		require.NoError(t, err)
		assert.Equal(t, "#800080\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := run(t, "extract", "-c", "1", "-f", "json", "--seed", "3", imagePath)
		require.NoError(t, err)

		var decoded colour.PaletteJSON
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, 1, decoded.Count)
		assert.Equal(t, "#800080", decoded.Colors[0].Hex)
		assert.InDelta(t, 1.0, decoded.Colors[0].Weight, 1e-9)
	})

	t.Run("same seed same palette", func(t *testing.T) {
		first, _, err := run(t, "extract", "-c", "3", "--seed", "11", imagePath)
		require.NoError(t, err)
		second, _, err := run(t, "extract", "-c", "3", "--seed", "11", imagePath)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Len(t, strings.Split(strings.TrimSpace(first), "\n"), 3)
	})

	t.Run("forced preview", func(t *testing.T) {
		out, _, err := run(t, "extract", "-c", "1", "--preview", imagePath)
		require.NoError(t, err)
		assert.Contains(t, out, "\033[48;2;128;0;128m")
		assert.Contains(t, out, "100%")
	})

	t.Run("table", func(t *testing.T) {
		out, _, err := run(t, "extract", "-c", "1", "-f", "table", imagePath)
		require.NoError(t, err)
		assert.Contains(t, out, "SHARE")
		assert.Contains(t, out, "100.0%")
	})

	t.Run("output file", func(t *testing.T) {
		outPath := filepath.Join(t.TempDir(), "palette.txt")
		out, _, err := run(t, "extract", "-c", "1", "-o", outPath, imagePath)
		require.NoError(t, err)
		assert.Empty(t, out)

		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, "#800080\n", string(data))
	})

	t.Run("environment supplies defaults", func(t *testing.T) {
		t.Setenv("SWATCH_FORMAT", "rgb")
		t.Setenv("SWATCH_COLOURS", "1")
		out, _, err := run(t, "extract", imagePath)
		require.NoError(t, err)
		assert.Equal(t, "rgb(128, 0, 128)\n", out)
	})

	t.Run("verbose logs to stderr", func(t *testing.T) {
		_, errOut, err := run(t, "extract", "-v", "-c", "1", imagePath)
		require.NoError(t, err)
		assert.Contains(t, errOut, "loading image")
	})
}

func TestExtractCommandErrors(t *testing.T) {
	clearEnv(t)
	imagePath := writeTestImage(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "more colours than pixels", args: []string{"extract", "-c", "17", imagePath}, wantErr: "invalid cluster count"},
		{name: "zero colours", args: []string{"extract", "-c", "0", imagePath}, wantErr: "colour count must be at least 1"},
		{name: "unknown format", args: []string{"extract", "-f", "yaml", imagePath}, wantErr: "unsupported format"},
		{name: "missing image", args: []string{"extract", filepath.Join(t.TempDir(), "nope.png")}, wantErr: "invalid image path"},
		{name: "bad log format", args: []string{"extract", "--log-format", "xml", imagePath}, wantErr: "unsupported log format"},
		{name: "no arguments", args: []string{"extract"}, wantErr: "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "swatch version "))
}
