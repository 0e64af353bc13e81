package facestudio

import (
	"image"

	"github.com/Akshat-2809/Face-Studio/utils"
)

// ToneBand is a single rule of the skin-tone classifier: a conjunction of
// absolute channel minimums and relative channel constraints. A zero field
// disables the corresponding check. The rules are kept as configuration data
// rather than literals so they can be tuned and tested independently.
type ToneBand struct {
	Name string

	// Absolute channel floors.
	MinR, MinG, MinB int

	// MinSpread/MaxSpread bound max(r,g,b)-min(r,g,b).
	MinSpread int
	MaxSpread int

	// MinRG and MinRB are lower bounds on r-g and r-b.
	MinRG int
	MinRB int
}

// DefaultToneBands are the four OR'd rules of the skin classifier. Each band
// intentionally targets a different population range (light, medium,
// medium-dark, dark); they must not be merged, as their constraints overlap
// only partially.
func DefaultToneBands() []ToneBand {
	return []ToneBand{
		{
			Name: "light",
			MinR: 95, MinG: 40, MinB: 20,
			MinSpread: 15,
			MinRG:     15, MinRB: 1,
		},
		{
			Name: "medium",
			MinR: 60, MinG: 30, MinB: 15,
			MinRG: 5, MinRB: 10,
		},
		{
			Name: "medium-dark",
			MinR: 45, MinG: 25, MinB: 10,
			MaxSpread: 80,
			MinRG:     3, MinRB: 5,
		},
		{
			Name: "dark",
			MinR: 30, MinG: 15, MinB: 5,
			MaxSpread: 60,
			MinRG:     1, MinRB: 3,
		},
	}
}

// match reports whether the pixel triple satisfies every enabled constraint
// of the band.
func (tb ToneBand) match(r, g, b uint8) bool {
	ri, gi, bi := int(r), int(g), int(b)

	if ri < tb.MinR || gi < tb.MinG || bi < tb.MinB {
		return false
	}

	spread := utils.Max(ri, utils.Max(gi, bi)) - utils.Min(ri, utils.Min(gi, bi))
	if tb.MinSpread > 0 && spread < tb.MinSpread {
		return false
	}
	if tb.MaxSpread > 0 && spread > tb.MaxSpread {
		return false
	}

	if tb.MinRG > 0 && ri-gi < tb.MinRG {
		return false
	}
	if tb.MinRB > 0 && ri-bi < tb.MinRB {
		return false
	}
	return true
}

// IsSkinTone reports whether a pixel triple approximates human skin
// coloration according to any of the provided tone bands.
func IsSkinTone(r, g, b uint8, bands []ToneBand) bool {
	for _, band := range bands {
		if band.match(r, g, b) {
			return true
		}
	}
	return false
}

// skinDensity computes the fraction and the absolute number of skin-tone
// pixels inside the given frame region. The region is expected to be
// pre-clamped to the raster bounds.
func skinDensity(img *image.NRGBA, region image.Rectangle, bands []ToneBand) (float64, int) {
	region = region.Intersect(img.Bounds())
	total := region.Dx() * region.Dy()
	if total <= 0 {
		return 0, 0
	}

	var count int
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			i := y*img.Stride + x*4
			if IsSkinTone(img.Pix[i], img.Pix[i+1], img.Pix[i+2], bands) {
				count++
			}
		}
	}
	return float64(count) / float64(total), count
}
