package biometric

import (
	"math"

	"facegate.io/infrastructure/biometric/types"
	"gorgonia.org/tensor"
)

// Preprocessing constants. These mirror the calibration of the reference
// models; changing them shifts embedding distances.
const (
	claheTileGrid  = 8
	claheClipLimit = 2.0
	fastGamma      = 0.9

	msrcrAlpha = 125.0
	msrcrBeta  = 46.0
	msrcrGain  = 5.0
	msrcrBias  = 25.0
)

var msrcrScales = []float64{15, 80, 250}

// Preprocess resizes an image to targetSize x targetSize, applies contrast
// equalization and illumination normalization per mode, and converts the
// result to a (H, W, C) float32 tensor with values in [0, 1].
//
// The resize happens first so every per-pixel pass after it runs over the
// small target raster rather than the full camera frame.
func Preprocess(img *types.Image, targetSize int, mode types.PreprocessingMode) *tensor.Dense {
	resized := ResizeImage(img, targetSize, targetSize)
	var equalized *types.Image
	if mode == types.PreprocessingAccurate {
		equalized = equalizeContrastTiled(resized)
	} else {
		equalized = equalizeContrast(resized)
	}
	var normalized *types.Image
	if mode == types.PreprocessingAccurate {
		normalized = normalizeRetinex(equalized)
	} else {
		normalized = normalizeFast(equalized)
	}
	return ToTensor(normalized, "rgb")
}

// ToTensor converts an image to a row-major (H, W, C) float32 tensor with
// each channel scaled to [0, 1]. Order selects "rgb" or "bgr" channel
// packing; the anti-spoof model is a BGR consumer.
func ToTensor(img *types.Image, order string) *tensor.Dense {
	data := make([]float32, img.Width*img.Height*3)
	for i := 0; i < img.Width*img.Height; i++ {
		r := float32(img.Pix[i*3]) / 255.0
		g := float32(img.Pix[i*3+1]) / 255.0
		b := float32(img.Pix[i*3+2]) / 255.0
		if order == "bgr" {
			data[i*3] = b
			data[i*3+1] = g
			data[i*3+2] = r
		} else {
			data[i*3] = r
			data[i*3+1] = g
			data[i*3+2] = b
		}
	}
	return tensor.New(
		tensor.WithShape(img.Height, img.Width, 3),
		tensor.WithBacking(data),
	)
}

// equalizeContrast applies the simplified global CLAHE pass: one luminance
// histogram for the whole image, its CDF normalized to [0, 255], and each
// pixel's channels rescaled by the luminance ratio.
func equalizeContrast(img *types.Image) *types.Image {
	histogram := [256]int{}
	for i := 0; i < img.Width*img.Height; i++ {
		histogram[luminance(img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2])]++
	}
	mapping := histogramMapping(histogram[:])
	return rescaleByLuminance(img, func(x, y, lum int) int {
		return mapping[lum]
	})
}

// equalizeContrastTiled is the contrast-limited variant used in accurate
// mode: an 8x8 tile grid, per-tile histograms clipped at claheClipLimit times
// the uniform bin height with the excess redistributed evenly, and each pixel
// equalized through its own tile's mapping.
func equalizeContrastTiled(img *types.Image) *types.Image {
	tileW := (img.Width + claheTileGrid - 1) / claheTileGrid
	tileH := (img.Height + claheTileGrid - 1) / claheTileGrid
	if tileW < 1 {
		tileW = 1
	}
	if tileH < 1 {
		tileH = 1
	}
	tilesX := (img.Width + tileW - 1) / tileW
	tilesY := (img.Height + tileH - 1) / tileH

	mappings := make([][]int, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			histogram := [256]int{}
			pixels := 0
			for y := ty * tileH; y < (ty+1)*tileH && y < img.Height; y++ {
				for x := tx * tileW; x < (tx+1)*tileW && x < img.Width; x++ {
					r, g, b := img.RGBAt(x, y)
					histogram[luminance(r, g, b)]++
					pixels++
				}
			}
			clipHistogram(histogram[:], pixels)
			mappings[ty*tilesX+tx] = histogramMapping(histogram[:])
		}
	}

	return rescaleByLuminance(img, func(x, y, lum int) int {
		tx := x / tileW
		ty := y / tileH
		return mappings[ty*tilesX+tx][lum]
	})
}

// clipHistogram caps each bin at claheClipLimit times the uniform height and
// spreads the clipped mass evenly over all bins.
func clipHistogram(histogram []int, pixels int) {
	if pixels == 0 {
		return
	}
	limit := int(claheClipLimit * float64(pixels) / 256.0)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i := range histogram {
		if histogram[i] > limit {
			excess += histogram[i] - limit
			histogram[i] = limit
		}
	}
	share := excess / 256
	remainder := excess % 256
	for i := range histogram {
		histogram[i] += share
		if i < remainder {
			histogram[i]++
		}
	}
}

// histogramMapping builds the equalization lookup table from a luminance
// histogram: cumulative distribution normalized by (cdf-min)/(max-min)*255.
func histogramMapping(histogram []int) []int {
	mapping := make([]int, 256)
	cdf := 0
	cdfMin := -1
	cdfMax := 0
	cumulative := make([]int, 256)
	for i, count := range histogram {
		cdf += count
		cumulative[i] = cdf
		if cdfMin == -1 && count > 0 {
			cdfMin = cdf
		}
	}
	cdfMax = cdf
	if cdfMin == -1 || cdfMax == cdfMin {
		for i := range mapping {
			mapping[i] = i
		}
		return mapping
	}
	for i := range mapping {
		mapping[i] = int(float64(cumulative[i]-cdfMin) / float64(cdfMax-cdfMin) * 255.0)
	}
	return mapping
}

// rescaleByLuminance remaps every pixel's luminance through mapped and
// scales each channel by newLum/oldLum. Zero luminance stays untouched.
func rescaleByLuminance(img *types.Image, mapped func(x, y, lum int) int) *types.Image {
	out := &types.Image{Width: img.Width, Height: img.Height, Pix: make([]uint8, len(img.Pix))}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			offset := (y*img.Width + x) * 3
			r, g, b := img.Pix[offset], img.Pix[offset+1], img.Pix[offset+2]
			oldLum := luminance(r, g, b)
			if oldLum == 0 {
				out.Pix[offset], out.Pix[offset+1], out.Pix[offset+2] = r, g, b
				continue
			}
			ratio := float64(mapped(x, y, oldLum)) / float64(oldLum)
			out.Pix[offset] = clampU8(float64(r) * ratio)
			out.Pix[offset+1] = clampU8(float64(g) * ratio)
			out.Pix[offset+2] = clampU8(float64(b) * ratio)
		}
	}
	return out
}

// normalizeFast stretches each channel over the image's luminance range and
// applies gamma correction. Identity when the image has no dynamic range.
func normalizeFast(img *types.Image) *types.Image {
	minLum, maxLum := 255, 0
	for i := 0; i < img.Width*img.Height; i++ {
		lum := luminance(img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2])
		if lum < minLum {
			minLum = lum
		}
		if lum > maxLum {
			maxLum = lum
		}
	}
	if maxLum == minLum {
		return img
	}
	span := float64(maxLum - minLum)
	out := &types.Image{Width: img.Width, Height: img.Height, Pix: make([]uint8, len(img.Pix))}
	for i, value := range img.Pix {
		scaled := (float64(value) - float64(minLum)) / span
		if scaled < 0 {
			scaled = 0
		}
		out.Pix[i] = clampU8(math.Pow(scaled, fastGamma) * 255.0)
	}
	return out
}

// normalizeRetinex is the MSRCR pass: three Gaussian scales of log-domain
// retinex averaged together, a per-channel color restoration term, then a
// fixed gain and bias.
func normalizeRetinex(img *types.Image) *types.Image {
	pixels := img.Width * img.Height
	channels := [3][]float64{}
	for c := 0; c < 3; c++ {
		channels[c] = make([]float64, pixels)
		for i := 0; i < pixels; i++ {
			channels[c][i] = float64(img.Pix[i*3+c])
		}
	}

	retinex := [3][]float64{}
	for c := 0; c < 3; c++ {
		retinex[c] = make([]float64, pixels)
	}
	for _, sigma := range msrcrScales {
		for c := 0; c < 3; c++ {
			blurred := gaussianBlur(channels[c], img.Width, img.Height, sigma)
			for i := 0; i < pixels; i++ {
				retinex[c][i] += safeLog10(channels[c][i]+1) - safeLog10(blurred[i]+1)
			}
		}
	}
	scaleCount := float64(len(msrcrScales))

	out := &types.Image{Width: img.Width, Height: img.Height, Pix: make([]uint8, len(img.Pix))}
	for i := 0; i < pixels; i++ {
		sum := channels[0][i] + channels[1][i] + channels[2][i]
		for c := 0; c < 3; c++ {
			color := msrcrBeta * (safeLog10(msrcrAlpha*channels[c][i]) - safeLog10(sum))
			value := msrcrGain * (retinex[c][i]/scaleCount*color + msrcrBias)
			out.Pix[i*3+c] = clampU8(value)
		}
	}
	return out
}

// gaussianBlur runs a separable convolution with a normalized kernel of size
// ceil(6*sigma) rounded up to odd. Edge taps clamp to the image bounds.
func gaussianBlur(channel []float64, width int, height int, sigma float64) []float64 {
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	horizontal := make([]float64, len(channel))
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sx := x + k
				if sx < 0 {
					sx = 0
				} else if sx >= width {
					sx = width - 1
				}
				sum += channel[row+sx] * kernel[k+radius]
			}
			horizontal[row+x] = sum
		}
	}

	blurred := make([]float64, len(channel))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sy := y + k
				if sy < 0 {
					sy = 0
				} else if sy >= height {
					sy = height - 1
				}
				sum += horizontal[sy*width+x] * kernel[k+radius]
			}
			blurred[y*width+x] = sum
		}
	}
	return blurred
}

func gaussianKernel(sigma float64) []float64 {
	size := int(math.Ceil(6 * sigma))
	if size%2 == 0 {
		size++
	}
	if size < 3 {
		size = 3
	}
	radius := size / 2
	kernel := make([]float64, size)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		weight := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = weight
		sum += weight
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// safeLog10 floors its argument to dodge the log singularity at zero.
func safeLog10(value float64) float64 {
	if value < 1e-10 {
		value = 1e-10
	}
	return math.Log10(value)
}
