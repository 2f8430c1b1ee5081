package biometric

import (
	"testing"

	"facegate.io/infrastructure/biometric/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradientImage(width, height int) *types.Image {
	img := &types.Image{Width: width, Height: height, Pix: make([]uint8, width*height*3)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := (y*width + x) * 3
			img.Pix[offset] = uint8((x * 255) / width)
			img.Pix[offset+1] = uint8((y * 255) / height)
			img.Pix[offset+2] = uint8(((x + y) * 255) / (width + height))
		}
	}
	return img
}

func TestPreprocessShapeAndRange(t *testing.T) {
	for _, mode := range []types.PreprocessingMode{types.PreprocessingFast, types.PreprocessingAccurate} {
		t.Run(string(mode), func(t *testing.T) {
			out := Preprocess(gradientImage(130, 97), 112, mode)
			require.Equal(t, []int{112, 112, 3}, []int(out.Shape()))

			data := out.Data().([]float32)
			require.Len(t, data, 112*112*3)
			for i, value := range data {
				require.GreaterOrEqual(t, value, float32(0), "index %d", i)
				require.LessOrEqual(t, value, float32(1), "index %d", i)
			}
		})
	}
}

func TestToTensorChannelOrder(t *testing.T) {
	img := solidImage(2, 2, 255, 128, 0)

	rgb := ToTensor(img, "rgb").Data().([]float32)
	assert.InDelta(t, 1.0, rgb[0], 1e-6)
	assert.InDelta(t, 128.0/255.0, rgb[1], 1e-6)
	assert.InDelta(t, 0.0, rgb[2], 1e-6)

	bgr := ToTensor(img, "bgr").Data().([]float32)
	assert.InDelta(t, 0.0, bgr[0], 1e-6)
	assert.InDelta(t, 128.0/255.0, bgr[1], 1e-6)
	assert.InDelta(t, 1.0, bgr[2], 1e-6)
}

func TestLuminanceWeights(t *testing.T) {
	assert.Equal(t, 0, luminance(0, 0, 0))
	assert.Equal(t, 255, luminance(255, 255, 255))
	// 0.299*255 = 76.245, rounded
	assert.Equal(t, 76, luminance(255, 0, 0))
	assert.Equal(t, 150, luminance(0, 255, 0))
	assert.Equal(t, 29, luminance(0, 0, 255))
}

func TestEqualizeContrastStretchesRange(t *testing.T) {
	// Low-contrast image confined to a narrow band.
	img := &types.Image{Width: 16, Height: 16, Pix: make([]uint8, 16*16*3)}
	for i := 0; i < 16*16; i++ {
		v := uint8(100 + i%20)
		img.Pix[i*3] = v
		img.Pix[i*3+1] = v
		img.Pix[i*3+2] = v
	}

	out := equalizeContrast(img)
	minLum, maxLum := 255, 0
	for i := 0; i < 16*16; i++ {
		lum := luminance(out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2])
		if lum < minLum {
			minLum = lum
		}
		if lum > maxLum {
			maxLum = lum
		}
	}
	assert.Greater(t, maxLum-minLum, 100, "equalization should widen the luminance range")
}

func TestPreprocessModesDiverge(t *testing.T) {
	img := gradientImage(96, 96)
	fast := Preprocess(img, 80, types.PreprocessingFast).Data().([]float32)
	accurate := Preprocess(img, 80, types.PreprocessingAccurate).Data().([]float32)

	require.Len(t, accurate, len(fast))
	different := false
	for i := range fast {
		if fast[i] != accurate[i] {
			different = true
			break
		}
	}
	assert.True(t, different, "fast and accurate modes should produce different tensors")
}
