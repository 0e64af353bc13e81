package facestudio

import (
	"context"
	"image"

	"github.com/rs/zerolog"
)

// FaceDetector is the boundary interface for the optional external face
// detector. Absence, an error or an empty result set are all normal
// conditions handled by the heuristic fallback chain, never surfaced to the
// user.
type FaceDetector interface {
	Detect(ctx context.Context, img *image.NRGBA) ([]Detection, error)
}

// Detection is one external detector result. Exactly one of the two known
// bounding-box wire shapes is set; the orchestrator normalizes it into the
// canonical Box and the raw shape never travels past this boundary.
type Detection struct {
	Box         *XMinBox
	BoundingBox *TopLeftBox
}

// XMinBox is the {xMin,yMin,width,height} wire shape.
type XMinBox struct {
	XMin, YMin    float64
	Width, Height float64
}

// TopLeftBox is the {topLeft:{x,y},width,height} wire shape.
type TopLeftBox struct {
	TopLeft       Point
	Width, Height float64
}

// Point is a 2D coordinate of the TopLeftBox wire shape.
type Point struct {
	X, Y float64
}

// DetectionSource tags how the final face box was obtained, so the
// annotation layer can distinguish enhanced detections from heuristics.
type DetectionSource int

const (
	SourceCascade DetectionSource = iota
	SourceHeuristic
)

func (s DetectionSource) String() string {
	if s == SourceCascade {
		return "cascade"
	}
	return "heuristic"
}

// Strategy is one named step of the heuristic fallback chain.
type Strategy struct {
	Name   string
	Locate func(img *image.NRGBA) (Box, bool)
}

// StrategyChain returns the heuristic strategies in their fixed priority
// order. The order is part of the detector contract: the orchestrator takes
// the first success and never runs the remaining strategies.
func (d *Detector) StrategyChain() []Strategy {
	return []Strategy{
		{Name: "skin-tone", Locate: d.DetectBySkinTone},
		{Name: "motion", Locate: d.TrackByMotion},
		{Name: "multi-scale-scan", Locate: d.ScanForFaceRegions},
		{Name: "center-fallback", Locate: func(img *image.NRGBA) (Box, bool) {
			return d.DefaultCenterFace(img.Bounds().Dx(), img.Bounds().Dy()), true
		}},
	}
}

// Orchestrator decides per frame whether the external detector's bounding
// box or the heuristic chain supplies the face region.
type Orchestrator struct {
	detector *Detector
	external FaceDetector
	chain    []Strategy
	log      zerolog.Logger
}

// NewOrchestrator wires the heuristic detector with an optional external
// detector. Pass nil when no external detector is configured.
func NewOrchestrator(d *Detector, external FaceDetector, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		detector: d,
		external: external,
		chain:    d.StrategyChain(),
		log:      log,
	}
}

// Detector exposes the underlying heuristic engine.
func (o *Orchestrator) Detector() *Detector {
	return o.detector
}

// Locate produces the face box for a captured frame. The external detector
// is consulted first; any failure there falls through to the heuristic chain
// in its fixed order. The returned box is always recorded in the detection
// history, and the terminal center fallback guarantees a result.
func (o *Orchestrator) Locate(ctx context.Context, img *image.NRGBA) (Box, DetectionSource) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	if box, err := o.locateExternal(ctx, img, w, h); err == nil {
		o.detector.UpdateHistory(box)
		return box, SourceCascade
	} else {
		o.log.Debug().Err(err).Msg("external detector unavailable, using heuristics")
	}

	for _, s := range o.chain {
		box, ok := s.Locate(img)
		if !ok {
			continue
		}
		o.log.Debug().Str("strategy", s.Name).
			Int("x", box.X).Int("y", box.Y).
			Int("w", box.Width).Int("h", box.Height).
			Msg("face region located")
		o.detector.UpdateHistory(box)
		return box, SourceHeuristic
	}

	// Unreachable as long as the chain ends with the center fallback.
	box := o.detector.DefaultCenterFace(w, h)
	o.detector.UpdateHistory(box)
	return box, SourceHeuristic
}

// locateExternal runs the external detector and normalizes its first usable
// result into the canonical box.
func (o *Orchestrator) locateExternal(ctx context.Context, img *image.NRGBA, w, h int) (Box, error) {
	if o.external == nil {
		return Box{}, ErrDetectorUnavailable
	}

	results, err := o.external.Detect(ctx, img)
	if err != nil || len(results) == 0 {
		return Box{}, ErrDetectorUnavailable
	}

	for _, res := range results {
		box, ok := normalizeDetection(res)
		if !ok {
			continue
		}
		box = box.Clamp(w, h)
		if !box.Empty() {
			return box, nil
		}
	}
	return Box{}, ErrDetectorUnavailable
}

// normalizeDetection converts either wire shape into the canonical Box.
func normalizeDetection(det Detection) (Box, bool) {
	switch {
	case det.Box != nil:
		return Box{
			X:      int(det.Box.XMin),
			Y:      int(det.Box.YMin),
			Width:  int(det.Box.Width),
			Height: int(det.Box.Height),
		}, true
	case det.BoundingBox != nil:
		return Box{
			X:      int(det.BoundingBox.TopLeft.X),
			Y:      int(det.BoundingBox.TopLeft.Y),
			Width:  int(det.BoundingBox.Width),
			Height: int(det.BoundingBox.Height),
		}, true
	default:
		return Box{}, false
	}
}
