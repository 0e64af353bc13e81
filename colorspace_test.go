package facestudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorspace_HSVPrimaries(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		r, g, b uint8
		h       int
		s, v    uint8
	}{
		{255, 0, 0, 0, 255, 255},
		{0, 255, 0, 120, 255, 255},
		{0, 0, 255, 240, 255, 255},
		{255, 255, 0, 60, 255, 255},
		{0, 255, 255, 180, 255, 255},
		{255, 0, 255, 300, 255, 255},
	}
	for _, tc := range tests {
		h, s, v := RGBToHSV(tc.r, tc.g, tc.b)
		assert.Equal(tc.h, h)
		assert.Equal(tc.s, s)
		assert.Equal(tc.v, v)
	}
}

func TestColorspace_HSVAchromatic(t *testing.T) {
	assert := assert.New(t)

	h, s, v := RGBToHSV(0, 0, 0)
	assert.Equal(0, h)
	assert.Equal(uint8(0), s)
	assert.Equal(uint8(0), v)

	h, s, v = RGBToHSV(128, 128, 128)
	assert.Equal(0, h)
	assert.Equal(uint8(0), s)
	assert.Equal(uint8(128), v)

	h, s, v = RGBToHSV(255, 255, 255)
	assert.Equal(0, h)
	assert.Equal(uint8(0), s)
	assert.Equal(uint8(255), v)
}

func TestColorspace_HSVHueRange(t *testing.T) {
	assert := assert.New(t)

	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 17 {
			for b := 0; b < 256; b += 17 {
				h, _, _ := RGBToHSV(uint8(r), uint8(g), uint8(b))
				assert.GreaterOrEqual(h, 0)
				assert.Less(h, 360)
			}
		}
	}
}

func TestColorspace_HSVRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for r := 0; r < 256; r += 51 {
		for g := 0; g < 256; g += 51 {
			for b := 0; b < 256; b += 51 {
				h, s, v := RGBToHSV(uint8(r), uint8(g), uint8(b))
				rr, gg, bb := HSVToRGB(h, s, v)

				// The hue is stored as an integer degree, so a small
				// quantization error is expected.
				assert.InDelta(float64(r), float64(rr), 4)
				assert.InDelta(float64(g), float64(gg), 4)
				assert.InDelta(float64(b), float64(bb), 4)
			}
		}
	}
}

func TestColorspace_LabExtremes(t *testing.T) {
	assert := assert.New(t)

	l, a, b := RGBToLab(0, 0, 0)
	assert.Equal(uint8(0), l)
	assert.Equal(uint8(128), a)
	assert.Equal(uint8(128), b)

	l, a, b = RGBToLab(255, 255, 255)
	assert.Equal(uint8(255), l)
	assert.Equal(uint8(128), a)
	assert.Equal(uint8(128), b)
}

func TestColorspace_LabMidGray(t *testing.T) {
	assert := assert.New(t)

	l, a, b := RGBToLab(128, 128, 128)
	// CIE L for 50% sRGB gray is 53.59, rescaled into the channel range.
	assert.InDelta(137, float64(l), 1)
	assert.Equal(uint8(128), a)
	assert.Equal(uint8(128), b)
}

func TestColorspace_LabChromaDirection(t *testing.T) {
	assert := assert.New(t)

	// Red pushes a above neutral, green below.
	_, a, _ := RGBToLab(255, 0, 0)
	assert.Greater(a, uint8(128))

	_, a, _ = RGBToLab(0, 255, 0)
	assert.Less(a, uint8(128))

	// Yellow pushes b above neutral, blue below.
	_, _, b := RGBToLab(255, 255, 0)
	assert.Greater(b, uint8(128))

	_, _, b = RGBToLab(0, 0, 255)
	assert.Less(b, uint8(128))
}
