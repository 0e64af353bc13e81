package facestudio

import (
	"context"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(DefaultFrameWidth, DefaultFrameHeight, newTestOrchestrator(nil), zerolog.Nop())
}

func TestPipeline_CaptureProducesEveryOutput(t *testing.T) {
	assert := assert.New(t)
	p := newTestPipeline()

	frame := uniformFrame(160, 120, 128, 128, 128)
	err := p.Capture(context.Background(), frame, NewContext())
	assert.NoError(err)

	for _, tag := range OutputTags {
		img, ok := p.Output(tag)
		assert.True(ok, tag)
		assert.Equal(160, img.Bounds().Dx(), tag)
		assert.Equal(120, img.Bounds().Dy(), tag)
	}

	_, ok := p.Output("no-such-tag")
	assert.False(ok)
}

func TestPipeline_CaptureMidGrayOutputs(t *testing.T) {
	assert := assert.New(t)
	p := newTestPipeline()

	frame := uniformFrame(160, 120, 128, 128, 128)
	err := p.Capture(context.Background(), frame, NewContext())
	assert.NoError(err)

	// Grayscale boosts 128 to 154.
	gray, _ := p.Output(TagGrayscale)
	r, _, _ := pixelAt(gray, 5, 5)
	assert.Equal(uint8(154), r)

	// 128 > 127, so every channel threshold flips to white.
	for _, tag := range []string{TagThresholdRed, TagThresholdGreen, TagThresholdBlue} {
		img, _ := p.Output(tag)
		r, _, _ := pixelAt(img, 5, 5)
		assert.Equal(uint8(255), r, tag)
	}

	// Achromatic gray packs to (0, 0, 128) in the HSV raster; its channel
	// average of 42 stays under the centered threshold.
	hsv, _ := p.Output(TagHSV)
	hc, sc, vc := pixelAt(hsv, 5, 5)
	assert.Equal(uint8(0), hc)
	assert.Equal(uint8(0), sc)
	assert.Equal(uint8(128), vc)

	thsv, _ := p.Output(TagThresholdHSV)
	r, _, _ = pixelAt(thsv, 5, 5)
	assert.Equal(uint8(0), r)

	// The Lab raster averages above the centered threshold through its
	// lightness channel.
	tlab, _ := p.Output(TagThresholdLab)
	r, _, _ = pixelAt(tlab, 5, 5)
	assert.Equal(uint8(255), r)

	// Pixelating a uniform grayscale raster is a no-op.
	pix, _ := p.Output(TagPixelate)
	r, _, _ = pixelAt(pix, 5, 5)
	assert.Equal(uint8(154), r)
}

func TestPipeline_CaptureLeavesSourceFrameUntouched(t *testing.T) {
	assert := assert.New(t)
	p := newTestPipeline()

	frame := uniformFrame(160, 120, 128, 128, 128)
	err := p.Capture(context.Background(), frame, NewContext())
	assert.NoError(err)

	// The face output gets a marker drawn into it, but the caller's
	// frame is copied first.
	r, g, b := pixelAt(frame, 80, 60)
	assert.Equal([3]uint8{128, 128, 128}, [3]uint8{r, g, b})
}

func TestPipeline_CaptureRejectsConcurrentCapture(t *testing.T) {
	assert := assert.New(t)
	p := newTestPipeline()

	p.isCapturing.Store(true)
	err := p.Capture(context.Background(), uniformFrame(160, 120, 0, 0, 0), NewContext())
	assert.ErrorIs(err, ErrCaptureBusy)

	p.isCapturing.Store(false)
	err = p.Capture(context.Background(), uniformFrame(160, 120, 0, 0, 0), NewContext())
	assert.NoError(err)
}

func TestPipeline_CaptureNormalizesFrameSize(t *testing.T) {
	assert := assert.New(t)
	p := newTestPipeline()

	frame := uniformFrame(320, 240, 128, 128, 128)
	err := p.Capture(context.Background(), frame, NewContext())
	assert.NoError(err)

	out, ok := p.Output(TagOriginal)
	assert.True(ok)
	assert.Equal(160, out.Bounds().Dx())
	assert.Equal(120, out.Bounds().Dy())
}

func TestPipeline_MirrorFlipsBeforeProcessing(t *testing.T) {
	assert := assert.New(t)
	p := newTestPipeline()

	frame := uniformFrame(160, 120, 0, 0, 0)
	frame.Pix[0] = 200 // top-left pixel

	pctx := NewContext()
	pctx.SetMirror(true)
	err := p.Capture(context.Background(), frame, pctx)
	assert.NoError(err)

	out, _ := p.Output(TagOriginal)
	r, _, _ := pixelAt(out, 159, 0)
	assert.Equal(uint8(200), r)
}

func TestPipeline_ThresholdsAreReadPerCapture(t *testing.T) {
	assert := assert.New(t)
	p := newTestPipeline()

	pctx := NewContext()
	pctx.SetThreshold(SliderRed, 200)

	frame := uniformFrame(160, 120, 128, 128, 128)
	err := p.Capture(context.Background(), frame, pctx)
	assert.NoError(err)

	// 128 is not above 200 anymore.
	tr, _ := p.Output(TagThresholdRed)
	r, _, _ := pixelAt(tr, 5, 5)
	assert.Equal(uint8(0), r)
}

func TestContext_ThresholdClamping(t *testing.T) {
	assert := assert.New(t)
	pctx := NewContext()

	pctx.SetThreshold(SliderRed, 300)
	assert.Equal(uint8(255), pctx.Thresholds().Red)

	pctx.SetThreshold(SliderRed, -10)
	assert.Equal(uint8(0), pctx.Thresholds().Red)

	pctx.AdjustThreshold(SliderRed, 40)
	assert.Equal(uint8(40), pctx.Thresholds().Red)

	pctx.AdjustThreshold(SliderRed, -100)
	assert.Equal(uint8(0), pctx.Thresholds().Red)
}

func TestContext_InvalidFilterKeepsSelection(t *testing.T) {
	assert := assert.New(t)
	pctx := NewContext()

	assert.NoError(pctx.SetFilter(2))
	assert.Error(pctx.SetFilter(9))
	assert.Equal(FilterBlur, pctx.Filter())
}

func TestPipeline_TrackLoopSkipsInactiveCamera(t *testing.T) {
	assert := assert.New(t)
	p := newTestPipeline()
	pctx := NewContext()

	var grabs atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	p.TrackLoop(ctx, pctx, 5*time.Millisecond, func() *image.NRGBA {
		grabs.Add(1)
		return uniformFrame(160, 120, 128, 128, 128)
	})
	assert.Equal(int32(0), grabs.Load())
}

func TestPipeline_TrackLoopRefreshesHistory(t *testing.T) {
	assert := assert.New(t)
	p := newTestPipeline()
	pctx := NewContext()
	pctx.SetCameraActive(true)

	var grabs atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	p.TrackLoop(ctx, pctx, 5*time.Millisecond, func() *image.NRGBA {
		grabs.Add(1)
		return uniformFrame(160, 120, skinR, skinG, skinB)
	})
	assert.Greater(grabs.Load(), int32(0))

	// The background ticks feed the detection history.
	_, ok := p.orch.Detector().LastKnown()
	assert.True(ok)
}
