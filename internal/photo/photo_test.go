package photo

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	img := imaging.New(w, h, color.NRGBA{R: 250, G: 250, B: 240, A: 255})
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load("  ")
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_NotImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "essay.txt")
	require.NoError(t, os.WriteFile(path, []byte("Once upon a time"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestLoad_SmallImageUnchanged(t *testing.T) {
	path := writeImage(t, "page.png", 800, 600)
	orig, err := os.ReadFile(path)
	require.NoError(t, err)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", c.MIMEType)
	assert.Equal(t, path, c.URI)
	assert.False(t, c.Resized)
	assert.Equal(t, 800, c.Width)
	assert.Equal(t, base64.StdEncoding.EncodeToString(orig), c.Base64)
}

func TestLoad_LargeImageDownscaled(t *testing.T) {
	path := writeImage(t, "page.png", 3200, 2000)

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.Resized)
	assert.Equal(t, "image/jpeg", c.MIMEType)
	assert.Equal(t, 1600, c.Width)
	assert.Equal(t, 1000, c.Height)

	data, err := base64.StdEncoding.DecodeString(c.Base64)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1600, cfg.Width)
}

func TestLoad_TallImage(t *testing.T) {
	c, err := Load(writeImage(t, "tall.jpg", 1000, 4000))
	require.NoError(t, err)
	assert.Equal(t, 400, c.Width)
	assert.Equal(t, 1600, c.Height)
}
