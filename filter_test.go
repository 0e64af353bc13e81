package facestudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_ParseValidatesRange(t *testing.T) {
	assert := assert.New(t)

	for id := 0; id <= 4; id++ {
		f, err := ParseFilter(id)
		assert.NoError(err)
		assert.Equal(Filter(id), f)
	}

	_, err := ParseFilter(-1)
	assert.Error(err)
	_, err = ParseFilter(5)
	assert.Error(err)
}

func TestFilter_StringNames(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("original", FilterOriginal.String())
	assert.Equal("grayscale", FilterGrayscale.String())
	assert.Equal("blur", FilterBlur.String())
	assert.Equal("colorspace", FilterColorSpace.String())
	assert.Equal("pixelate", FilterPixelate.String())
}

func TestFilter_RejectsEmptyRegion(t *testing.T) {
	assert := assert.New(t)

	src := uniformFrame(160, 120, 128, 128, 128)
	dst := uniformFrame(160, 120, 128, 128, 128)

	err := ApplyFaceFilter(dst, src, Box{}, FilterOriginal, SourceHeuristic)
	assert.ErrorIs(err, ErrInvalidRegion)

	err = ApplyFaceFilter(dst, src, Box{X: 300, Y: 300, Width: 40, Height: 40}, FilterOriginal, SourceHeuristic)
	assert.ErrorIs(err, ErrInvalidRegion)
}

func TestFilter_OriginalKeepsRegionPixels(t *testing.T) {
	assert := assert.New(t)

	src := uniformFrame(160, 120, 100, 150, 200)
	dst := uniformFrame(160, 120, 100, 150, 200)

	box := Box{X: 40, Y: 30, Width: 60, Height: 60}
	err := ApplyFaceFilter(dst, src, box, FilterOriginal, SourceHeuristic)
	assert.NoError(err)

	// A pixel well inside the region, away from the marker border and
	// the corner tab, is untouched.
	r, g, b := pixelAt(dst, 70, 60)
	assert.Equal([3]uint8{100, 150, 200}, [3]uint8{r, g, b})
}

func TestFilter_GrayscaleTransformsOnlyTheRegion(t *testing.T) {
	assert := assert.New(t)

	src := uniformFrame(160, 120, 100, 150, 200)
	dst := uniformFrame(160, 120, 100, 150, 200)

	box := Box{X: 40, Y: 30, Width: 60, Height: 60}
	err := ApplyFaceFilter(dst, src, box, FilterGrayscale, SourceHeuristic)
	assert.NoError(err)

	// Luminance of (100,150,200) is 140.75, boosted by 1.2 and rounded.
	r, g, b := pixelAt(dst, 70, 60)
	assert.Equal([3]uint8{169, 169, 169}, [3]uint8{r, g, b})

	// Outside the region the frame is untouched.
	r, g, b = pixelAt(dst, 10, 10)
	assert.Equal([3]uint8{100, 150, 200}, [3]uint8{r, g, b})
}

func TestFilter_PixelateGrayscalesFirst(t *testing.T) {
	assert := assert.New(t)

	src := uniformFrame(160, 120, 100, 150, 200)
	dst := uniformFrame(160, 120, 100, 150, 200)

	box := Box{X: 40, Y: 30, Width: 60, Height: 60}
	err := ApplyFaceFilter(dst, src, box, FilterPixelate, SourceHeuristic)
	assert.NoError(err)

	// A uniform region pixelates to its boosted grayscale value.
	r, g, b := pixelAt(dst, 70, 60)
	assert.Equal([3]uint8{169, 169, 169}, [3]uint8{r, g, b})
}

func TestFilter_MarkerEncodesDetectionSource(t *testing.T) {
	assert := assert.New(t)

	box := Box{X: 40, Y: 30, Width: 60, Height: 60}

	src := uniformFrame(160, 120, 128, 128, 128)
	dst := uniformFrame(160, 120, 128, 128, 128)
	err := ApplyFaceFilter(dst, src, box, FilterOriginal, SourceHeuristic)
	assert.NoError(err)

	// The corner tab carries the source color.
	r, g, b := pixelAt(dst, box.X+2, box.Y+2)
	assert.Equal(heuristicMarkColor.R, r)
	assert.Equal(heuristicMarkColor.G, g)
	assert.Equal(heuristicMarkColor.B, b)

	dst = uniformFrame(160, 120, 128, 128, 128)
	err = ApplyFaceFilter(dst, src, box, FilterOriginal, SourceCascade)
	assert.NoError(err)

	r, g, b = pixelAt(dst, box.X+2, box.Y+2)
	assert.Equal(cascadeMarkColor.R, r)
	assert.Equal(cascadeMarkColor.G, g)
	assert.Equal(cascadeMarkColor.B, b)
}

func TestFilter_ClipsBoxToFrame(t *testing.T) {
	assert := assert.New(t)

	src := uniformFrame(160, 120, 100, 150, 200)
	dst := uniformFrame(160, 120, 100, 150, 200)

	// The box hangs over the right and bottom edges; the filter applies
	// to the clipped part without error.
	box := Box{X: 130, Y: 100, Width: 60, Height: 60}
	err := ApplyFaceFilter(dst, src, box, FilterGrayscale, SourceHeuristic)
	assert.NoError(err)

	r, _, _ := pixelAt(dst, 145, 110)
	assert.Equal(uint8(169), r)
}

func TestFilter_ExtractRegionIsAnchoredCopy(t *testing.T) {
	assert := assert.New(t)

	src := uniformFrame(20, 20, 0, 0, 0)
	i := 10*src.Stride + 10*4
	src.Pix[i] = 200

	sub, err := extractRegion(src, Box{X: 8, Y: 8, Width: 6, Height: 6}.Rect())
	assert.NoError(err)
	assert.Equal(6, sub.Bounds().Dx())
	assert.Equal(6, sub.Bounds().Dy())

	r, _, _ := pixelAt(sub, 2, 2)
	assert.Equal(uint8(200), r)

	// Mutating the copy leaves the source untouched.
	sub.Pix[0] = 99
	assert.Equal(uint8(0), src.Pix[8*src.Stride+8*4])
}
