package facestudio

import (
	"context"
	"fmt"
	"image"

	pigo "github.com/esimov/pigo/core"
)

// Cascade detection parameters.
const (
	cascadeMinSize      = 20
	cascadeMaxSize      = 1000
	cascadeShiftFactor  = 0.1
	cascadeScaleFactor  = 1.1
	cascadeIoUThreshold = 0.2
	cascadeMinQuality   = 5.0
)

// CascadeDetector adapts the pigo cascade classifier to the FaceDetector
// interface, playing the role of the optional external detector. It emits
// results in the xMin wire shape.
type CascadeDetector struct {
	classifier *pigo.Pigo
}

// NewCascadeDetector unpacks the binary cascade file. The unpacking returns
// the number of cascade trees, the tree depth, the threshold and the
// prediction from the tree's leaf nodes.
func NewCascadeDetector(cascade []byte) (*CascadeDetector, error) {
	p := pigo.NewPigo()
	classifier, err := p.Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the cascade file: %w", err)
	}
	return &CascadeDetector{classifier: classifier}, nil
}

// Detect runs the cascade over the frame and returns the clustered face
// candidates above the quality threshold.
func (cd *CascadeDetector) Detect(ctx context.Context, img *image.NRGBA) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, cols := img.Bounds().Dy(), img.Bounds().Dx()
	cParams := pigo.CascadeParams{
		MinSize:     cascadeMinSize,
		MaxSize:     cascadeMaxSize,
		ShiftFactor: cascadeShiftFactor,
		ScaleFactor: cascadeScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: rgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := cd.classifier.RunCascade(cParams, 0.0)
	dets = cd.classifier.ClusterDetections(dets, cascadeIoUThreshold)

	var results []Detection
	for _, det := range dets {
		if det.Q < cascadeMinQuality {
			continue
		}
		// The cascade reports a center (row, col) and a scale; convert
		// to the top-left anchored xMin form.
		size := float64(det.Scale)
		results = append(results, Detection{
			Box: &XMinBox{
				XMin:   float64(det.Col) - size/2,
				YMin:   float64(det.Row) - size/2,
				Width:  size,
				Height: size,
			},
		})
	}
	return results, nil
}
