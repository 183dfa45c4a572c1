package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

const tgaHeaderSize = 18

// DecodeTGA decodes uncompressed or RLE-compressed 24/32-bit TGA data.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("%w: TGA header truncated", ErrMalformed)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	switch {
	case colorMapType != 0:
		return nil, fmt.Errorf("%w: color-mapped TGA", ErrUnsupported)
	case imageType != tgaTrueColor && imageType != tgaTrueColorRLE:
		return nil, fmt.Errorf("%w: TGA type %d", ErrUnsupported, imageType)
	case bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("%w: TGA bit depth %d", ErrUnsupported, bpp)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: TGA id field truncated", ErrMalformed)
	}

	r := &tgaReader{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		data:        data[offset:],
		stride:      bpp / 8,
		topToBottom: topToBottom,
	}
	if imageType == tgaTrueColor {
		if err := r.raw(width * height); err != nil {
			return nil, err
		}
		return r.img, nil
	}
	if err := r.rle(); err != nil {
		return nil, err
	}
	return r.img, nil
}

// tgaReader writes BGR(A) pixels into img in file order.
type tgaReader struct {
	img         *image.RGBA
	data        []byte
	pos         int // Byte offset into data
	pixel       int // Pixels written so far
	stride      int
	topToBottom bool
}

func (r *tgaReader) next() (color.RGBA, error) {
	if r.pos+r.stride > len(r.data) {
		return color.RGBA{}, fmt.Errorf("%w: TGA pixel data truncated at pixel %d", ErrMalformed, r.pixel)
	}
	p := r.data[r.pos : r.pos+r.stride]
	r.pos += r.stride

	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.stride == 4 {
		c.A = p[3]
	}
	return c, nil
}

func (r *tgaReader) put(c color.RGBA) {
	w := r.img.Rect.Dx()
	x, y := r.pixel%w, r.pixel/w
	if !r.topToBottom {
		y = r.img.Rect.Dy() - 1 - y
	}
	r.img.SetRGBA(x, y, c)
	r.pixel++
}

func (r *tgaReader) raw(count int) error {
	for range count {
		c, err := r.next()
		if err != nil {
			return err
		}
		r.put(c)
	}
	return nil
}

func (r *tgaReader) rle() error {
	total := r.img.Rect.Dx() * r.img.Rect.Dy()
	for r.pixel < total {
		if r.pos >= len(r.data) {
			return fmt.Errorf("%w: TGA RLE data truncated at pixel %d", ErrMalformed, r.pixel)
		}
		packet := r.data[r.pos]
		r.pos++
		count := min(int(packet&0x7F)+1, total-r.pixel)

		if packet&0x80 == 0 {
			if err := r.raw(count); err != nil {
				return err
			}
			continue
		}

		c, err := r.next()
		if err != nil {
			return err
		}
		for range count {
			r.put(c)
		}
	}
	return nil
}
