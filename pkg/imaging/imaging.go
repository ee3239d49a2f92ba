// Package imaging converts between image containers and flat raster buffers.
//
// A [Raster] is the undifferentiated byte view of an image that the cipher
// transposes: rows top to bottom, pixels left to right, channels interleaved.
// Decoding picks the narrowest channel layout that preserves the image:
//
//   - grayscale images: 1 channel (L)
//   - opaque colour images: 3 channels (RGB)
//   - images with any transparency: 4 channels (RGBA, non-premultiplied)
//
// Supported input formats are PNG, JPEG, GIF, BMP, TIFF and WebP. Output is
// always PNG so that transposed bytes survive unchanged.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/matzehuels/railfence/pkg/errors"
)

// MIMEPNG is the media type of every encoded raster.
const MIMEPNG = "image/png"

// Raster is a decoded image as a flat byte buffer.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Len returns the number of bytes in the buffer.
func (r Raster) Len() int { return len(r.Pix) }

// WithPix returns a raster of the same shape holding pix.
// It fails if pix does not fit the shape exactly.
func (r Raster) WithPix(pix []byte) (Raster, error) {
	if len(pix) != r.Width*r.Height*r.Channels {
		return Raster{}, errors.New(errors.ErrCodeInvalidImage,
			"buffer of %d bytes does not fit %dx%dx%d raster", len(pix), r.Width, r.Height, r.Channels)
	}
	r.Pix = pix
	return r, nil
}

// Decode reads an image container and flattens it into a Raster.
// The returned string is the format name reported by the decoder.
func Decode(rd io.Reader) (Raster, string, error) {
	img, format, err := image.Decode(rd)
	if err != nil {
		return Raster{}, "", errors.Wrap(errors.ErrCodeInvalidImage, err, "decode image")
	}
	return FromImage(img), format, nil
}

// DecodeBytes is [Decode] over an in-memory container.
func DecodeBytes(data []byte) (Raster, string, error) {
	return Decode(bytes.NewReader(data))
}

// FromImage flattens img using the channel layout described in the package docs.
func FromImage(img image.Image) Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch {
	case isGray(img):
		r := Raster{Width: w, Height: h, Channels: 1, Pix: make([]byte, w*h)}
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r.Pix[i] = color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
				i++
			}
		}
		return r
	case isOpaque(img):
		r := Raster{Width: w, Height: h, Channels: 3, Pix: make([]byte, w*h*3)}
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				r.Pix[i], r.Pix[i+1], r.Pix[i+2] = c.R, c.G, c.B
				i += 3
			}
		}
		return r
	default:
		r := Raster{Width: w, Height: h, Channels: 4, Pix: make([]byte, w*h*4)}
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3] = c.R, c.G, c.B, c.A
				i += 4
			}
		}
		return r
	}
}

func isGray(img image.Image) bool {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return true
	}
	return false
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// Image rebuilds an image.Image from the raster.
func (r Raster) Image() (image.Image, error) {
	if len(r.Pix) != r.Width*r.Height*r.Channels {
		return nil, errors.New(errors.ErrCodeInvalidImage,
			"buffer of %d bytes does not fit %dx%dx%d raster", len(r.Pix), r.Width, r.Height, r.Channels)
	}
	rect := image.Rect(0, 0, r.Width, r.Height)

	switch r.Channels {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, r.Pix)
		return img, nil
	case 3:
		img := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(r.Pix); i, j = i+3, j+4 {
			img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = r.Pix[i], r.Pix[i+1], r.Pix[i+2], 0xff
		}
		return img, nil
	case 4:
		img := image.NewNRGBA(rect)
		copy(img.Pix, r.Pix)
		return img, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported channel count: %d", r.Channels)
	}
}

// EncodePNG writes the raster as a PNG.
func EncodePNG(w io.Writer, r Raster) error {
	img, err := r.Image()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return nil
}

// PNG returns the raster encoded as PNG bytes.
func (r Raster) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseDataURL returns the decoded payload of a base64 data URL.
func ParseDataURL(s string) ([]byte, error) {
	if err := errors.ValidateDataURL(s); err != nil {
		return nil, err
	}
	_, payload, _ := strings.Cut(s, ",")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode base64 payload")
	}
	return data, nil
}

// DataURL encodes data as a base64 data URL with the given media type.
func DataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
