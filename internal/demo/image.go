package demo

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Checker returns a size x size image of cells x cells squares. Light squares
// blend from warm to cool across the image so orientation is easy to read.
func Checker(size, cells int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if size <= 0 || cells <= 0 {
		return img
	}

	warm := colorful.Color{R: 1, G: 0.647, B: 0}
	cool := colorful.Color{R: 0.2, G: 0.45, B: 0.9}
	dark := color.RGBA{R: 40, G: 40, B: 48, A: 255}
	cell := max(size/cells, 1)

	for y := range size {
		for x := range size {
			if (x/cell+y/cell)%2 == 1 {
				img.SetRGBA(x, y, dark)
				continue
			}
			t := float64(x+y) / float64(2*(size-1)+1)
			r, g, b := warm.BlendLab(cool, t).Clamped().RGB255()
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}
