package facestudio

import (
	"math"

	"github.com/Akshat-2809/Face-Studio/utils"
)

// D65 reference white point used for the XYZ normalization step.
const (
	whiteX = 0.95047
	whiteY = 1.00000
	whiteZ = 1.08883
)

// labEpsilon is the threshold of the piecewise cube-root transform.
const labEpsilon = 0.008856

// RGBToHSV converts a pixel triple to the HSV color space using the standard
// hexagonal formula. The hue is rounded to the nearest integer degree and
// wrapped into [0,360); saturation and value are scaled to [0,255] so they
// can be stored directly into raster channels.
func RGBToHSV(r, g, b uint8) (h int, s, v uint8) {
	maxc := utils.Max(r, utils.Max(g, b))
	minc := utils.Min(r, utils.Min(g, b))
	diff := float64(maxc) - float64(minc)

	var hue float64
	switch {
	case diff == 0:
		hue = 0
	case maxc == r:
		hue = 60 * math.Mod((float64(g)-float64(b))/diff, 6)
	case maxc == g:
		hue = 60 * ((float64(b)-float64(r))/diff + 2)
	default:
		hue = 60 * ((float64(r)-float64(g))/diff + 4)
	}

	h = int(math.Round(hue))
	if h < 0 {
		h += 360
	}
	h %= 360

	if maxc > 0 {
		s = uint8(math.Round(diff / float64(maxc) * 255))
	}
	return h, s, maxc
}

// HSVToRGB is the inverse of RGBToHSV. It expects the hue in degrees and
// saturation/value scaled to [0,255].
func HSVToRGB(h int, s, v uint8) (r, g, b uint8) {
	sn := float64(s) / 255
	vn := float64(v) / 255

	c := vn * sn
	x := c * (1 - math.Abs(math.Mod(float64(h)/60, 2)-1))
	m := vn - c

	var rn, gn, bn float64
	switch {
	case h < 60:
		rn, gn, bn = c, x, 0
	case h < 120:
		rn, gn, bn = x, c, 0
	case h < 180:
		rn, gn, bn = 0, c, x
	case h < 240:
		rn, gn, bn = 0, x, c
	case h < 300:
		rn, gn, bn = x, 0, c
	default:
		rn, gn, bn = c, 0, x
	}

	r = uint8(math.Round((rn + m) * 255))
	g = uint8(math.Round((gn + m) * 255))
	b = uint8(math.Round((bn + m) * 255))
	return r, g, b
}

// RGBToLab converts a pixel triple to the CIE Lab color space, rescaled per
// channel into [0,255] for raster storage: L from [0,100], a and b from
// roughly [-128,127] shifted by 128. The conversion decodes the sRGB gamma,
// goes through CIE XYZ normalized against the D65 white point and applies
// the piecewise cube-root Lab transform.
func RGBToLab(r, g, b uint8) (lc, ac, bc uint8) {
	rl := gammaDecode(float64(r) / 255)
	gl := gammaDecode(float64(g) / 255)
	bl := gammaDecode(float64(b) / 255)

	// sRGB to XYZ conversion matrix (D65).
	x := 0.4124*rl + 0.3576*gl + 0.1805*bl
	y := 0.2126*rl + 0.7152*gl + 0.0722*bl
	z := 0.0193*rl + 0.1192*gl + 0.9505*bl

	fx := labTransfer(x / whiteX)
	fy := labTransfer(y / whiteY)
	fz := labTransfer(z / whiteZ)

	l := 116*fy - 16
	av := 500 * (fx - fy)
	bv := 200 * (fy - fz)

	lc = clampChannel(math.Round(l * 255 / 100))
	ac = clampChannel(math.Round(av + 128))
	bc = clampChannel(math.Round(bv + 128))
	return lc, ac, bc
}

// gammaDecode linearizes an sRGB encoded channel value.
func gammaDecode(u float64) float64 {
	if u <= 0.04045 {
		return u / 12.92
	}
	return math.Pow((u+0.055)/1.055, 2.4)
}

// labTransfer applies the piecewise cube-root transform of the Lab model.
func labTransfer(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116
}

// clampChannel clamps a float value into the [0,255] channel range.
func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
