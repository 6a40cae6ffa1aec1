package image

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeImageDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.png"), encodePNG(t), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o700))
	return dir
}

func TestFileLoaderLoad(t *testing.T) {
	dir := writeImageDir(t)

	d, err := NewFileLoader().Load(context.Background(), filepath.Join(dir, "one.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), d.Image.Bounds())
	assert.Equal(t, "png", d.Format)

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "missing.png")},
		{name: "directory", path: dir},
		{name: "not an image", path: filepath.Join(dir, "notes.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileLoader().Load(context.Background(), tt.path)
			assert.Error(t, err)
		})
	}
}

func TestValidateImagePath(t *testing.T) {
	dir := writeImageDir(t)

	assert.NoError(t, ValidateImagePath(filepath.Join(dir, "one.png")))
	assert.NoError(t, ValidateImagePath(dir))
	assert.NoError(t, ValidateImagePath("https://example.com/wallpaper.jpg"))
	assert.Error(t, ValidateImagePath(""))
	assert.Error(t, ValidateImagePath(filepath.Join(dir, "missing.png")))
	assert.Error(t, ValidateImagePath(filepath.Join(dir, "notes.txt")))
}

func TestResolveImagePath(t *testing.T) {
	dir := writeImageDir(t)

	got, err := ResolveImagePath(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "one.png"), got)

	file := filepath.Join(dir, "one.png")
	got, err = ResolveImagePath(file)
	require.NoError(t, err)
	assert.Equal(t, file, got)

	_, err = ResolveImagePath(t.TempDir())
	assert.ErrorContains(t, err, "no supported image files")
}

func TestSmartLoaderURL(t *testing.T) {
	data := encodePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	var loader Loader = NewSmartLoader()
	d, err := loader.Load(context.Background(), srv.URL+"/img.png")
	require.NoError(t, err)
	assert.Equal(t, "png", d.Format)
	assert.Equal(t, 3, d.Image.Bounds().Dx())

	_, err = loader.Load(context.Background(), srv.URL+"/gone.png")
	assert.Error(t, err)
}

func TestSmartLoaderFile(t *testing.T) {
	dir := writeImageDir(t)

	var loader Loader = NewSmartLoader()
	d, err := loader.Load(context.Background(), filepath.Join(dir, "one.png"))
	require.NoError(t, err)
	assert.Equal(t, 2, d.Image.Bounds().Dy())

	_, err = loader.Load(context.Background(), filepath.Join(dir, "notes.txt"))
	assert.ErrorContains(t, err, "failed to decode image")
}
