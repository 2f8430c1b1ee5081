package detector

import (
	"fmt"
	"os"

	"facegate.io/infrastructure/biometric/types"
	"facegate.io/infrastructure/logger"
	pigo "github.com/esimov/pigo/core"
)

// Cascade sweep parameters. The quality cutoff is deliberately low: kiosk
// camera frames score far below studio photographs, and the verifier's
// embedding threshold rejects weak faces anyway.
const (
	minFaceSize      = 60
	shiftFactor      = 0.1
	scaleFactor      = 1.1
	clusterIoU       = 0.2
	qualityThreshold = 5.0
)

// PigoDetector finds the most prominent face in a frame using a Pico
// cascade. The classifier is read-only after Unpack; the verifier's
// single-flight lock covers it regardless.
type PigoDetector struct {
	classifier *pigo.Pigo
}

// NewPigoDetector loads and unpacks the cascade binary at cascadePath.
func NewPigoDetector(cascadePath string) (*PigoDetector, error) {
	cascadeFile, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("could not read cascade file %s: %w", cascadePath, err)
	}
	classifier, err := pigo.NewPigo().Unpack(cascadeFile)
	if err != nil {
		return nil, fmt.Errorf("could not unpack cascade file %s: %w", cascadePath, err)
	}
	logger.Info("face detector initialized", logger.LoggerOptions{
		Key:  "cascade",
		Data: cascadePath,
	})
	return &PigoDetector{classifier: classifier}, nil
}

// Detect runs the cascade over the grayscale frame, clusters the raw hits
// and returns the highest-quality detection as a square bounding box in
// image coordinates. A nil box means no acceptable face.
func (d *PigoDetector) Detect(img *types.Image) (*types.BoundingBox, error) {
	if img.Width < minFaceSize || img.Height < minFaceSize {
		return nil, nil
	}

	maxSize := img.Width
	if img.Height < maxSize {
		maxSize = img.Height
	}

	params := pigo.CascadeParams{
		MinSize:     minFaceSize,
		MaxSize:     maxSize,
		ShiftFactor: shiftFactor,
		ScaleFactor: scaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: grayscale(img),
			Rows:   img.Height,
			Cols:   img.Width,
			Dim:    img.Width,
		},
	}

	detections := d.classifier.RunCascade(params, 0.0)
	detections = d.classifier.ClusterDetections(detections, clusterIoU)

	best := pigo.Detection{Q: qualityThreshold}
	found := false
	for _, det := range detections {
		if det.Q >= best.Q {
			best = det
			found = true
		}
	}
	if !found {
		return nil, nil
	}

	return circleToBox(best, img.Width, img.Height), nil
}

// circleToBox converts pigo's (row, col, scale) detection circle into the
// enclosing square, clamped to the image bounds.
func circleToBox(det pigo.Detection, imageWidth int, imageHeight int) *types.BoundingBox {
	x := det.Col - det.Scale/2
	y := det.Row - det.Scale/2
	width := det.Scale
	height := det.Scale

	if x < 0 {
		width += x
		x = 0
	}
	if y < 0 {
		height += y
		y = 0
	}
	if x+width > imageWidth {
		width = imageWidth - x
	}
	if y+height > imageHeight {
		height = imageHeight - y
	}
	if width < 1 || height < 1 {
		return nil
	}

	return &types.BoundingBox{X: x, Y: y, Width: width, Height: height}
}

func grayscale(img *types.Image) []uint8 {
	pixels := make([]uint8, img.Width*img.Height)
	for i := 0; i < img.Width*img.Height; i++ {
		r := float64(img.Pix[i*3])
		g := float64(img.Pix[i*3+1])
		b := float64(img.Pix[i*3+2])
		pixels[i] = uint8(0.299*r + 0.587*g + 0.114*b)
	}
	return pixels
}
