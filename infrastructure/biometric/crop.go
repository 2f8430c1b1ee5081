package biometric

import (
	"facegate.io/infrastructure/biometric/types"
)

// Crop scale factors. Recognition crops tight to the detector's box; the
// anti-spoof classifier was calibrated on context-inclusive crops and needs
// the surrounding background to score replay artifacts.
const (
	RecognitionCropScale = 1.0
	LivenessCropScale    = 2.7
)

// Crop cuts a square region centered on the bounding box, with side
// max(w, h) * scale, clamped to the image bounds. It returns nil when the
// clamped region degenerates below 2 pixels in either dimension.
func Crop(img *types.Image, bbox *types.BoundingBox, scale float64) *types.Image {
	cx := float64(bbox.X) + float64(bbox.Width)/2
	cy := float64(bbox.Y) + float64(bbox.Height)/2
	side := float64(bbox.Width)
	if bbox.Height > bbox.Width {
		side = float64(bbox.Height)
	}
	side *= scale

	x1 := int(cx - side/2)
	y1 := int(cy - side/2)
	x2 := int(cx + side/2)
	y2 := int(cy + side/2)

	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > img.Width {
		x2 = img.Width
	}
	if y2 > img.Height {
		y2 = img.Height
	}

	if x2-x1 < 2 || y2-y1 < 2 {
		return nil
	}

	out := &types.Image{
		Width:  x2 - x1,
		Height: y2 - y1,
		Pix:    make([]uint8, (x2-x1)*(y2-y1)*3),
	}
	for y := y1; y < y2; y++ {
		srcStart := (y*img.Width + x1) * 3
		dstStart := (y - y1) * out.Width * 3
		copy(out.Pix[dstStart:dstStart+out.Width*3], img.Pix[srcStart:srcStart+out.Width*3])
	}
	return out
}
