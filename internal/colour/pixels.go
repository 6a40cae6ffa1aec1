package colour

import (
	"fmt"
	"image"
	"image/draw"
)

// channelsPerPixel is the stride of an interleaved RGBA buffer.
const channelsPerPixel = 4

// ExtractPixels flattens an interleaved R,G,B,A buffer into one RGB sample
// per pixel, preserving row-major order. Alpha is discarded and buf is not
// modified.
func ExtractPixels(buf []uint8) ([]RGB, error) {
	if len(buf)%channelsPerPixel != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrMalformedBuffer, len(buf))
	}

	samples := make([]RGB, len(buf)/channelsPerPixel)
	for i := range samples {
		p := buf[i*channelsPerPixel : i*channelsPerPixel+3 : i*channelsPerPixel+3]
		samples[i] = RGB{R: p[0], G: p[1], B: p[2]}
	}
	return samples, nil
}

// PixelBuffer renders img into a tightly packed, non-premultiplied RGBA
// buffer in row-major order, left to right and top to bottom.
func PixelBuffer(img image.Image) []uint8 {
	bounds := img.Bounds()

	// Fast path: already NRGBA with no row padding.
	if n, ok := img.(*image.NRGBA); ok && n.Stride == bounds.Dx()*channelsPerPixel {
		out := make([]uint8, bounds.Dy()*n.Stride)
		copy(out, n.Pix)
		return out
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst.Pix
}
