package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tgaHeader(imageType byte, width, height int, bpp byte, descriptor byte) []byte {
	h := make([]byte, tgaHeaderSize)
	h[2] = imageType
	h[12], h[13] = byte(width), byte(width>>8)
	h[14], h[15] = byte(height), byte(height>>8)
	h[16] = bpp
	h[17] = descriptor
	return h
}

func rgbaAt(t *testing.T, img image.Image, x, y int) color.RGBA {
	t.Helper()
	rgba, ok := img.(*image.RGBA)
	require.True(t, ok)
	return rgba.RGBAAt(x, y)
}

func TestDecodeTGAUncompressedBottomUp(t *testing.T) {
	data := tgaHeader(tgaTrueColor, 2, 2, 24, 0)
	// File order is bottom row first, BGR.
	data = append(data,
		0, 0, 255, 0, 255, 0, // bottom: red, green
		255, 0, 0, 255, 255, 255, // top: blue, white
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())

	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgbaAt(t, img, 0, 1))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, rgbaAt(t, img, 1, 1))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgbaAt(t, img, 0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, rgbaAt(t, img, 1, 0))
}

func TestDecodeTGARLE(t *testing.T) {
	data := tgaHeader(tgaTrueColorRLE, 3, 1, 32, 0x20)
	data = append(data,
		0x81, 10, 20, 30, 128, // run of two
		0x00, 1, 2, 3, 4, // one raw pixel
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)

	run := color.RGBA{R: 30, G: 20, B: 10, A: 128}
	assert.Equal(t, run, rgbaAt(t, img, 0, 0))
	assert.Equal(t, run, rgbaAt(t, img, 1, 0))
	assert.Equal(t, color.RGBA{R: 3, G: 2, B: 1, A: 4}, rgbaAt(t, img, 2, 0))
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0, 0, 2}, ErrMalformed},
		{"color mapped", func() []byte { h := tgaHeader(1, 1, 1, 24, 0); h[1] = 1; return h }(), ErrUnsupported},
		{"grayscale", tgaHeader(3, 1, 1, 8, 0), ErrUnsupported},
		{"16 bit", tgaHeader(tgaTrueColor, 1, 1, 16, 0), ErrUnsupported},
		{"truncated pixels", append(tgaHeader(tgaTrueColor, 2, 1, 24, 0), 1, 2, 3), ErrMalformed},
		{"truncated rle", append(tgaHeader(tgaTrueColorRLE, 2, 1, 24, 0), 0x80, 1, 2, 3), ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeSniffsPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 2, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := Decode("logo.png", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	r, _, _, _ := img.At(1, 2).RGBA()
	assert.Equal(t, uint32(200)*0x101, r)
}

func TestDecodeByExtension(t *testing.T) {
	data := append(tgaHeader(tgaTrueColor, 1, 1, 24, 0), 0, 0, 0)

	_, err := Decode("sprite.TGA", data)
	assert.NoError(t, err)

	_, err = Decode("sprite.png", data)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDecoder(t *testing.T) {
	data := append(tgaHeader(tgaTrueColor, 1, 1, 24, 0), 9, 8, 7)

	img, err := Decoder("a.tga")(data)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 7, G: 8, B: 9, A: 255}, rgbaAt(t, img, 0, 0))
}
