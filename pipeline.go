package facestudio

import (
	"context"
	"image"
	"sync/atomic"
	"time"

	"github.com/Akshat-2809/Face-Studio/utils"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// Default capture frame size.
const (
	DefaultFrameWidth  = 160
	DefaultFrameHeight = 120
)

// Slider identifies one of the five independent threshold channels owned by
// the UI layer.
type Slider int

const (
	SliderRed Slider = iota
	SliderGreen
	SliderBlue
	SliderHSV
	SliderLab
)

// Thresholds holds the five binarization levels. The core consumes them as
// pure input parameters at transform time; ownership stays with the driver.
type Thresholds struct {
	Red   uint8
	Green uint8
	Blue  uint8
	HSV   uint8
	Lab   uint8
}

// DefaultThresholds centers every slider.
func DefaultThresholds() Thresholds {
	return Thresholds{Red: 127, Green: 127, Blue: 127, HSV: 127, Lab: 127}
}

// Context is the driver-owned state read by the pipeline on each capture:
// the current filter selection, the threshold levels and the camera flags.
// It is only ever touched from the single cooperative UI flow, so it is not
// synchronized.
type Context struct {
	filter       Filter
	thresholds   Thresholds
	cameraActive bool
	mirror       bool
}

// NewContext returns a driver context with the default filter and centered
// thresholds.
func NewContext() *Context {
	return &Context{
		filter:     FilterOriginal,
		thresholds: DefaultThresholds(),
	}
}

// SetFilter switches the current face filter. Invalid ids are rejected and
// leave the selection unchanged.
func (c *Context) SetFilter(id int) error {
	f, err := ParseFilter(id)
	if err != nil {
		return err
	}
	c.filter = f
	return nil
}

// Filter returns the current face filter selection.
func (c *Context) Filter() Filter {
	return c.filter
}

// SetThreshold sets a slider to an absolute value, clamped to the channel
// range.
func (c *Context) SetThreshold(s Slider, value int) {
	v := uint8(utils.Clamp(value, 0, 255))
	switch s {
	case SliderRed:
		c.thresholds.Red = v
	case SliderGreen:
		c.thresholds.Green = v
	case SliderBlue:
		c.thresholds.Blue = v
	case SliderHSV:
		c.thresholds.HSV = v
	case SliderLab:
		c.thresholds.Lab = v
	}
}

// AdjustThreshold moves a slider by a delta, clamped to the channel range.
func (c *Context) AdjustThreshold(s Slider, delta int) {
	cur := c.thresholds
	var v int
	switch s {
	case SliderRed:
		v = int(cur.Red)
	case SliderGreen:
		v = int(cur.Green)
	case SliderBlue:
		v = int(cur.Blue)
	case SliderHSV:
		v = int(cur.HSV)
	case SliderLab:
		v = int(cur.Lab)
	}
	c.SetThreshold(s, v+delta)
}

// Thresholds returns the current threshold levels.
func (c *Context) Thresholds() Thresholds {
	return c.thresholds
}

// SetCameraActive flags whether the capture source is live. The background
// tracking loop only runs while it is.
func (c *Context) SetCameraActive(active bool) {
	c.cameraActive = active
}

// CameraActive reports whether the capture source is live.
func (c *Context) CameraActive() bool {
	return c.cameraActive
}

// SetMirror enables horizontal mirror correction at capture time.
func (c *Context) SetMirror(mirror bool) {
	c.mirror = mirror
}

// Output raster tags exposed to the rendering and export collaborators.
const (
	TagOriginal       = "original"
	TagGrayscale      = "grayscale"
	TagRed            = "red"
	TagGreen          = "green"
	TagBlue           = "blue"
	TagThresholdRed   = "threshold-red"
	TagThresholdGreen = "threshold-green"
	TagThresholdBlue  = "threshold-blue"
	TagHSV            = "hsv"
	TagLab            = "lab"
	TagThresholdHSV   = "threshold-hsv"
	TagThresholdLab   = "threshold-lab"
	TagPixelate       = "pixelate"
	TagFace           = "face"
)

// OutputTags lists every raster produced by a capture, in presentation
// order.
var OutputTags = []string{
	TagOriginal,
	TagGrayscale,
	TagRed, TagGreen, TagBlue,
	TagThresholdRed, TagThresholdGreen, TagThresholdBlue,
	TagHSV, TagLab,
	TagThresholdHSV, TagThresholdLab,
	TagPixelate,
	TagFace,
}

// Pipeline processes one captured frame at a time to completion: all pixel
// transforms, face localization and filter compositing. A capture is
// rejected while a previous one is still in flight.
type Pipeline struct {
	width  int
	height int

	orch    *Orchestrator
	outputs map[string]*image.NRGBA

	isCapturing atomic.Bool
	log         zerolog.Logger
}

// NewPipeline creates a pipeline producing w×h output rasters.
func NewPipeline(w, h int, orch *Orchestrator, log zerolog.Logger) *Pipeline {
	if w <= 0 {
		w = DefaultFrameWidth
	}
	if h <= 0 {
		h = DefaultFrameHeight
	}
	return &Pipeline{
		width:   w,
		height:  h,
		orch:    orch,
		outputs: map[string]*image.NRGBA{},
		log:     log,
	}
}

// Capture runs the full processing pipeline over one frame: it produces the
// named output rasters, locates the face region and composites the selected
// filter onto it. The frame is copied first, so the caller keeps ownership
// of its raster. Returns ErrCaptureBusy while a previous capture is being
// processed.
func (p *Pipeline) Capture(ctx context.Context, frame *image.NRGBA, pctx *Context) error {
	if !p.isCapturing.CompareAndSwap(false, true) {
		return ErrCaptureBusy
	}
	defer p.isCapturing.Store(false)

	started := time.Now()

	src := p.normalizeFrame(frame)
	if pctx.mirror {
		src = FlipHorizontal(src)
	}

	outputs := p.processImages(src, pctx.Thresholds())

	face := imaging.Clone(src)
	box, source := p.orch.Locate(ctx, src)
	if err := ApplyFaceFilter(face, src, box, pctx.Filter(), source); err != nil {
		// Worst case the face output stays an unfiltered frame copy.
		p.log.Warn().Err(err).Msg("face filter skipped")
	}
	outputs[TagFace] = face

	p.outputs = outputs
	p.log.Debug().
		Str("filter", pctx.Filter().String()).
		Str("source", source.String()).
		Dur("took", time.Since(started)).
		Msg("capture processed")
	return nil
}

// Output returns a processed raster by tag. The raster belongs to the
// pipeline's last completed capture.
func (p *Pipeline) Output(tag string) (*image.NRGBA, bool) {
	img, ok := p.outputs[tag]
	return img, ok
}

// TrackLoop runs the periodic background face tracking: every interval it
// grabs a live frame and refreshes the detection history, keeping the
// position continuity warm between captures. Ticks are skipped while a
// capture is in flight or the camera is inactive. Cancelling the context
// stops the loop; it never interrupts an in-flight capture.
func (p *Pipeline) TrackLoop(ctx context.Context, pctx *Context, interval time.Duration, grab func() *image.NRGBA) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.isCapturing.Load() || !pctx.CameraActive() {
				continue
			}
			frame := grab()
			if frame == nil {
				continue
			}
			box, source := p.orch.Locate(ctx, p.normalizeFrame(frame))
			p.log.Debug().
				Str("source", source.String()).
				Int("x", box.X).Int("y", box.Y).
				Msg("background tracking tick")
		}
	}
}

// normalizeFrame copies the incoming frame and rescales it to the fixed
// capture size when the source delivered something else.
func (p *Pipeline) normalizeFrame(frame *image.NRGBA) *image.NRGBA {
	if frame.Bounds().Dx() != p.width || frame.Bounds().Dy() != p.height {
		return imaging.Resize(frame, p.width, p.height, imaging.Lanczos)
	}
	return imaging.Clone(frame)
}

// processImages produces the full named output raster set for one frame.
// Every transform failure degrades to the source raster; no failure aborts
// the capture.
func (p *Pipeline) processImages(src *image.NRGBA, th Thresholds) map[string]*image.NRGBA {
	outputs := map[string]*image.NRGBA{TagOriginal: src}

	put := func(tag string, img *image.NRGBA, err error) *image.NRGBA {
		if err != nil {
			p.log.Warn().Err(err).Str("tag", tag).Msg("transform degraded to source raster")
			img = src
		}
		outputs[tag] = img
		return img
	}

	gray, err := GrayscaleWithBrightness(src)
	gray = put(TagGrayscale, gray, err)

	red, err := ExtractChannel(src, Red)
	put(TagRed, red, err)
	green, err := ExtractChannel(src, Green)
	put(TagGreen, green, err)
	blue, err := ExtractChannel(src, Blue)
	put(TagBlue, blue, err)

	tr, err := ThresholdChannel(src, th.Red, Red)
	put(TagThresholdRed, tr, err)
	tg, err := ThresholdChannel(src, th.Green, Green)
	put(TagThresholdGreen, tg, err)
	tb, err := ThresholdChannel(src, th.Blue, Blue)
	put(TagThresholdBlue, tb, err)

	hsv, err := ToHSV(src)
	hsv = put(TagHSV, hsv, err)
	lab, err := ToLab(src)
	lab = put(TagLab, lab, err)

	thsv, err := ThresholdColorspace(hsv, th.HSV)
	put(TagThresholdHSV, thsv, err)
	tlab, err := ThresholdColorspace(lab, th.Lab)
	put(TagThresholdLab, tlab, err)

	pix, err := Pixelate(gray, DefaultBlockSize)
	put(TagPixelate, pix, err)

	return outputs
}
