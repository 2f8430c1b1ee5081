package biometric

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"

	"facegate.io/infrastructure/biometric/types"
	"github.com/nfnt/resize"
)

// DecodeImage parses JPEG or PNG bytes into the pipeline's RGB buffer.
func DecodeImage(data []byte) (*types.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, types.ErrDecodeFailure
	}
	decoded := fromStdImage(src)
	if decoded.Width == 0 || decoded.Height == 0 {
		return nil, types.ErrDecodeFailure
	}
	return decoded, nil
}

// EncodeJPEG renders an image back to JPEG bytes, used for denied-frame
// snapshots.
func EncodeJPEG(img *types.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, toNRGBA(img), &jpeg.Options{Quality: quality})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResizeImage scales an image to width x height with bilinear interpolation.
func ResizeImage(img *types.Image, width int, height int) *types.Image {
	if img.Width == width && img.Height == height {
		return img
	}
	scaled := resize.Resize(uint(width), uint(height), toNRGBA(img), resize.Bilinear)
	return fromStdImage(scaled)
}

func fromStdImage(src image.Image) *types.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := &types.Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
	offset := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			out.Pix[offset] = uint8(r >> 8)
			out.Pix[offset+1] = uint8(g >> 8)
			out.Pix[offset+2] = uint8(b >> 8)
			offset += 3
		}
	}
	return out
}

func toNRGBA(img *types.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			src := (y*img.Width + x) * 3
			dst := y*out.Stride + x*4
			out.Pix[dst] = img.Pix[src]
			out.Pix[dst+1] = img.Pix[src+1]
			out.Pix[dst+2] = img.Pix[src+2]
			out.Pix[dst+3] = 0xff
		}
	}
	return out
}

// luminance is the ITU-R BT.601 weighting used across the pipeline, rounded
// to the nearest integer and clamped to [0,255].
func luminance(r uint8, g uint8, b uint8) int {
	lum := int(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b) + 0.5)
	if lum < 0 {
		return 0
	}
	if lum > 255 {
		return 255
	}
	return lum
}

func clampU8(value float64) uint8 {
	if value < 0 {
		return 0
	}
	if value > 255 {
		return 255
	}
	return uint8(value)
}
