package biometric

import (
	"testing"

	"facegate.io/infrastructure/biometric/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(width, height int, r, g, b uint8) *types.Image {
	img := &types.Image{Width: width, Height: height, Pix: make([]uint8, width*height*3)}
	for i := 0; i < width*height; i++ {
		img.Pix[i*3] = r
		img.Pix[i*3+1] = g
		img.Pix[i*3+2] = b
	}
	return img
}

func TestCropContextScale(t *testing.T) {
	img := solidImage(1000, 1000, 10, 20, 30)
	bbox := &types.BoundingBox{X: 100, Y: 150, Width: 200, Height: 250}

	out := Crop(img, bbox, LivenessCropScale)
	require.NotNil(t, out)
	// side = max(200, 250) * 2.7 = 675 centered on (200, 275); the left and
	// top edges clamp at 0.
	assert.Equal(t, 537, out.Width)
	assert.Equal(t, 612, out.Height)
}

func TestCropTightScaleMatchesBox(t *testing.T) {
	img := solidImage(640, 480, 0, 0, 0)
	bbox := &types.BoundingBox{X: 200, Y: 100, Width: 120, Height: 120}

	out := Crop(img, bbox, RecognitionCropScale)
	require.NotNil(t, out)
	assert.Equal(t, 120, out.Width)
	assert.Equal(t, 120, out.Height)
}

func TestCropClampsToImageBounds(t *testing.T) {
	img := solidImage(100, 100, 0, 0, 0)
	bbox := &types.BoundingBox{X: 80, Y: 80, Width: 40, Height: 40}

	out := Crop(img, bbox, 1.0)
	require.NotNil(t, out)
	assert.LessOrEqual(t, out.Width, 40)
	assert.LessOrEqual(t, out.Height, 40)
}

func TestCropDegenerateRegionReturnsNil(t *testing.T) {
	img := solidImage(100, 100, 0, 0, 0)

	// Box entirely off-canvas clamps to an empty region.
	assert.Nil(t, Crop(img, &types.BoundingBox{X: 200, Y: 200, Width: 50, Height: 50}, 1.0))
	// Sub-2px box.
	assert.Nil(t, Crop(img, &types.BoundingBox{X: 50, Y: 50, Width: 1, Height: 1}, 1.0))
}

func TestCropCopiesPixels(t *testing.T) {
	img := solidImage(10, 10, 1, 2, 3)
	// Paint one pixel inside the crop region.
	img.Pix[(5*10+5)*3] = 200

	out := Crop(img, &types.BoundingBox{X: 4, Y: 4, Width: 4, Height: 4}, 1.0)
	require.NotNil(t, out)
	r, g, b := out.RGBAt(1, 1)
	assert.Equal(t, uint8(200), r)
	assert.Equal(t, uint8(2), g)
	assert.Equal(t, uint8(3), b)

	// The crop owns its buffer.
	out.Pix[0] = 99
	assert.Equal(t, uint8(1), img.Pix[(4*10+4)*3])
}
