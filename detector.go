package facestudio

import (
	"image"
	"math"

	"github.com/Akshat-2809/Face-Studio/utils"
	"github.com/rs/zerolog"
)

// FracRegion describes a candidate region as fractions of the frame size,
// so the fixed candidate set scales with the capture resolution.
type FracRegion struct {
	Name       string
	X, Y, W, H float64
}

// ScoreWeights are the coefficients of the multi-scale region scorer. They
// are hand-tuned values reproduced as given; do not normalize or "fix" them.
type ScoreWeights struct {
	SkinDensity    float64
	VerticalPos    float64
	ColorVariation float64
	SizePref       float64
	AspectPref     float64
}

// DetectorConfig carries every tunable constant of the heuristic detector.
type DetectorConfig struct {
	// Valid face box side lengths, inclusive.
	MinFaceSize int
	MaxFaceSize int

	// Skin-tone scan.
	CandidateRegions   []FracRegion
	SkinRatioThreshold float64

	// Motion tracking around the last accepted box.
	MotionSearchRadius     int
	MotionStep             int
	MotionDensityThreshold float64

	// Multi-scale region scan.
	ScanScales     []float64
	ScanMinWindow  int
	ScanMaxWindow  int
	ScanStepRatio  float64
	ScanMinStep    int
	ScoreThreshold float64

	// Scorer preferences.
	PreferredFaceSize int
	PreferredAspect   float64
	Weights           ScoreWeights

	// Bounded history of accepted boxes feeding the motion tracker.
	HistorySize int

	ToneBands []ToneBand
}

// DefaultDetectorConfig returns the detector constants tuned for the default
// 160×120 capture resolution.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinFaceSize: 30,
		MaxFaceSize: 100,

		CandidateRegions: []FracRegion{
			{Name: "top-left", X: 0.05, Y: 0.05, W: 0.40, H: 0.50},
			{Name: "top-right", X: 0.55, Y: 0.05, W: 0.40, H: 0.50},
			{Name: "center-large", X: 0.20, Y: 0.10, W: 0.60, H: 0.70},
			{Name: "center-medium", X: 0.25, Y: 0.15, W: 0.50, H: 0.55},
			{Name: "center-small", X: 0.33, Y: 0.20, W: 0.34, H: 0.45},
		},
		SkinRatioThreshold: 0.12,

		MotionSearchRadius:     25,
		MotionStep:             8,
		MotionDensityThreshold: 0.10,

		ScanScales:     []float64{0.3, 0.4, 0.5, 0.6, 0.7},
		ScanMinWindow:  35,
		ScanMaxWindow:  80,
		ScanStepRatio:  0.2,
		ScanMinStep:    8,
		ScoreThreshold: 0.15,

		PreferredFaceSize: 50,
		PreferredAspect:   0.8,
		Weights: ScoreWeights{
			SkinDensity:    0.40,
			VerticalPos:    0.25,
			ColorVariation: 0.15,
			SizePref:       0.10,
			AspectPref:     0.10,
		},

		HistorySize: 5,

		ToneBands: DefaultToneBands(),
	}
}

// Detector is the stateful heuristic face-region engine. It keeps the last
// accepted box and a short history of past detections; both are touched only
// from the single cooperative capture flow, so no locking is involved.
type Detector struct {
	cfg       DetectorConfig
	lastKnown *Box
	history   []Box
	log       zerolog.Logger
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg DetectorConfig, log zerolog.Logger) *Detector {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 5
	}
	return &Detector{cfg: cfg, log: log}
}

// LastKnown returns the most recently accepted face box, if any.
func (d *Detector) LastKnown() (Box, bool) {
	if d.lastKnown == nil {
		return Box{}, false
	}
	return *d.lastKnown, true
}

// History returns a copy of the bounded detection history, oldest first.
func (d *Detector) History() []Box {
	out := make([]Box, len(d.history))
	copy(out, d.history)
	return out
}

// Reset drops the tracking state.
func (d *Detector) Reset() {
	d.lastKnown = nil
	d.history = nil
}

// UpdateHistory records an accepted face box: valid-sized boxes are appended
// to the history (evicting the oldest beyond the bound) and become the new
// last known position.
func (d *Detector) UpdateHistory(box Box) {
	if !d.validFaceSize(box) {
		return
	}
	d.history = append(d.history, box)
	if len(d.history) > d.cfg.HistorySize {
		d.history = d.history[len(d.history)-d.cfg.HistorySize:]
	}
	b := box
	d.lastKnown = &b
}

// validFaceSize reports whether both box sides are within the configured
// face size bounds.
func (d *Detector) validFaceSize(box Box) bool {
	return box.Width >= d.cfg.MinFaceSize && box.Width <= d.cfg.MaxFaceSize &&
		box.Height >= d.cfg.MinFaceSize && box.Height <= d.cfg.MaxFaceSize
}

// DetectBySkinTone tests the fixed candidate regions for skin coverage.
// A region wins only if its skin ratio exceeds the threshold AND it beats
// the current best on both the absolute skin pixel count and the ratio.
// The winner must still pass the face size validation.
func (d *Detector) DetectBySkinTone(img *image.NRGBA) (Box, bool) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	var (
		best      Box
		bestRatio float64
		bestCount int
		found     bool
	)
	for _, fr := range d.cfg.CandidateRegions {
		box := Box{
			X:      int(fr.X * float64(w)),
			Y:      int(fr.Y * float64(h)),
			Width:  int(fr.W * float64(w)),
			Height: int(fr.H * float64(h)),
		}.Clamp(w, h)
		if box.Empty() {
			continue
		}

		ratio, count := skinDensity(img, box.Rect(), d.cfg.ToneBands)
		if ratio > d.cfg.SkinRatioThreshold && count > bestCount && ratio > bestRatio {
			best, bestRatio, bestCount, found = box, ratio, count, true
			d.log.Debug().
				Str("region", fr.Name).
				Float64("ratio", ratio).
				Int("pixels", count).
				Msg("skin-tone candidate")
		}
	}

	if !found || !d.validFaceSize(best) {
		return Box{}, false
	}
	return best, true
}

// TrackByMotion searches a window around the last accepted box for the
// placement with the highest skin density. It applies only when a previous
// box exists; the best placement must exceed the density threshold and pass
// the face size validation.
func (d *Detector) TrackByMotion(img *image.NRGBA) (Box, bool) {
	if d.lastKnown == nil {
		return Box{}, false
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	last := *d.lastKnown

	var (
		best        Box
		bestDensity float64
		found       bool
	)
	r, step := d.cfg.MotionSearchRadius, d.cfg.MotionStep
	for dy := -r; dy <= r; dy += step {
		for dx := -r; dx <= r; dx += step {
			cand := Box{
				X:      last.X + dx,
				Y:      last.Y + dy,
				Width:  last.Width,
				Height: last.Height,
			}
			clamped := cand.Clamp(w, h)
			// Only same-sized placements count; partially clipped
			// ones would bias the density comparison.
			if clamped != cand {
				continue
			}

			density, _ := skinDensity(img, cand.Rect(), d.cfg.ToneBands)
			if density > d.cfg.MotionDensityThreshold && density > bestDensity {
				best, bestDensity, found = cand, density, true
			}
		}
	}

	if !found || !d.validFaceSize(best) {
		return Box{}, false
	}
	d.log.Debug().
		Float64("density", bestDensity).
		Int("x", best.X).Int("y", best.Y).
		Msg("motion tracking hit")
	return best, true
}

// ScanForFaceRegions slides square windows of several scales over the whole
// frame and scores each position with the weighted region scorer. The best
// scoring box is accepted only above the score threshold.
func (d *Detector) ScanForFaceRegions(img *image.NRGBA) (Box, bool) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dim := utils.Min(w, h)

	var (
		best      Box
		bestScore float64
		found     bool
	)
	for _, scale := range d.cfg.ScanScales {
		win := utils.Clamp(int(float64(dim)*scale), d.cfg.ScanMinWindow, d.cfg.ScanMaxWindow)
		if win > w || win > h {
			continue
		}
		step := utils.Max(d.cfg.ScanMinStep, int(d.cfg.ScanStepRatio*float64(win)))

		for y := 0; y+win <= h; y += step {
			for x := 0; x+win <= w; x += step {
				box := Box{X: x, Y: y, Width: win, Height: win}
				score := d.scoreFaceRegion(img, box)
				if score > bestScore {
					best, bestScore, found = box, score, true
				}
			}
		}
	}

	if !found || bestScore <= d.cfg.ScoreThreshold || !d.validFaceSize(best) {
		return Box{}, false
	}
	d.log.Debug().
		Float64("score", bestScore).
		Int("size", best.Width).
		Msg("multi-scale scan hit")
	return best, true
}

// DefaultCenterFace returns the deterministic fallback box covering the
// central 50%×50% of the frame. It never fails.
func (d *Detector) DefaultCenterFace(w, h int) Box {
	return Box{X: w / 4, Y: h / 4, Width: w / 2, Height: h / 2}
}

// scoreFaceRegion computes the weighted sum of the face-likeness signals of
// a region: skin density, a preference for the upper third of the frame,
// color variation, and size/aspect preferences.
func (d *Detector) scoreFaceRegion(img *image.NRGBA, box Box) float64 {
	h := img.Bounds().Dy()
	weights := d.cfg.Weights

	density, _ := skinDensity(img, box.Rect(), d.cfg.ToneBands)
	score := density * weights.SkinDensity

	// Faces tend to sit in the upper third of a webcam frame.
	_, cy := box.Center()
	vertical := 1 - math.Abs(float64(cy)-float64(h)/3)/float64(h)
	score += utils.Clamp(vertical, 0, 1) * weights.VerticalPos

	variation := colorVariation(img, box.Rect())
	score += utils.Clamp(variation/128, 0, 1) * weights.ColorVariation

	size := 1 - math.Abs(float64(box.Width-d.cfg.PreferredFaceSize))/float64(d.cfg.PreferredFaceSize)
	score += utils.Clamp(size, 0, 1) * weights.SizePref

	aspect := 1 - math.Abs(float64(box.Width)/float64(box.Height)-d.cfg.PreferredAspect)
	score += utils.Clamp(aspect, 0, 1) * weights.AspectPref

	return score
}

// colorVariation returns the mean per-channel standard deviation of the
// region. A flat background scores zero.
func colorVariation(img *image.NRGBA, region image.Rectangle) float64 {
	region = region.Intersect(img.Bounds())
	total := region.Dx() * region.Dy()
	if total <= 0 {
		return 0
	}

	var sum, sqSum [3]float64
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			i := y*img.Stride + x*4
			for c := 0; c < 3; c++ {
				v := float64(img.Pix[i+c])
				sum[c] += v
				sqSum[c] += v * v
			}
		}
	}

	var dev float64
	for c := 0; c < 3; c++ {
		mean := sum[c] / float64(total)
		variance := sqSum[c]/float64(total) - mean*mean
		if variance > 0 {
			dev += math.Sqrt(variance)
		}
	}
	return dev / 3
}
