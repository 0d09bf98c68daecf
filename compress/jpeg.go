package compress

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
)

// jpegQuality is fixed rather than configurable: the protocol has no field
// to negotiate it, so both sides must agree on a constant to get a
// deterministic compressed_size for any given input.
const jpegQuality = 85

// JPEGEncoder is the codec for the color channel, backed by the
// standard library's image/jpeg codec. It only ever sees one pixel layout
// on the lossy path: 8-bit sRGB RGBA.
type JPEGEncoder struct{}

// MaxBound returns a safe upper bound on the compressed size of an
// inputSize-byte RGBA buffer. JPEG has no hard worst-case bound below
// "bigger than the input" for adversarial data, so this pads generously:
// it is an allocation size, never a tight one. frame.Stream does not call
// it; Encode grows its own buffer.
func (JPEGEncoder) MaxBound(inputSize int) int {
	return inputSize + inputSize/2 + 4096
}

// Encode compresses an 8-bit sRGB RGBA buffer of the given width/height
// into a JPEG byte stream. The alpha channel is dropped — JPEG has no
// alpha plane — matching the rendering API's own documented behavior that
// the color channel's alpha is not meaningful once compressed.
func (JPEGEncoder) Encode(width, height int, rgba []byte) ([]byte, error) {
	if len(rgba) != width*height*4 {
		return nil, fmt.Errorf("compress: jpeg encode: buffer length %d does not match %dx%d RGBA", len(rgba), width, height)
	}
	img := &image.RGBA{
		Pix:    rgba,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reconstructs an 8-bit sRGB RGBA buffer from a JPEG byte stream —
// used by renderbridge-monitor to display what the server sent, never by
// the server itself.
func (JPEGEncoder) Decode(data []byte) (rgba []byte, width, height int, err error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x, y, color.RGBAModel.Convert(img.At(x, y)))
		}
	}
	return out.Pix, width, height, nil
}
