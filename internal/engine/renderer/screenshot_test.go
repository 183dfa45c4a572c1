package renderer

import (
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

func TestFlipRows(t *testing.T) {
	// Two rows, bottom first: red then blue.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}

	img, err := flipRows(pixels, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 1))

	_, err = flipRows(pixels, 2, 2)
	assert.Error(t, err)
}

func TestSavePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(2, 1, color.RGBA{G: 255, A: 255})

	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	path, err := savePNG(src, dir, at)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "billboard_2024-05-06_07-08-09"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), img.Bounds())

	_, g, _, _ := img.At(2, 1).RGBA()
	assert.Equal(t, uint32(0xffff), g)
}
