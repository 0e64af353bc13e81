package facestudio

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/pkg/errors"
)

// Filter identifies the face filter applied to the detected region.
type Filter int

const (
	FilterOriginal Filter = iota
	FilterGrayscale
	FilterBlur
	FilterColorSpace
	FilterPixelate
)

// FaceBlurRadius is the heavier blur radius used when blurring only the
// face sub-region.
const FaceBlurRadius = 25

func (f Filter) String() string {
	switch f {
	case FilterOriginal:
		return "original"
	case FilterGrayscale:
		return "grayscale"
	case FilterBlur:
		return "blur"
	case FilterColorSpace:
		return "colorspace"
	case FilterPixelate:
		return "pixelate"
	}
	return "unknown"
}

// ParseFilter validates a numeric filter id coming from the UI or voice
// layer.
func ParseFilter(id int) (Filter, error) {
	if id < int(FilterOriginal) || id > int(FilterPixelate) {
		return FilterOriginal, errors.Errorf("invalid filter id: %d", id)
	}
	return Filter(id), nil
}

// Annotation colors distinguishing cascade detections from heuristic ones.
var (
	cascadeMarkColor   = color.NRGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	heuristicMarkColor = color.NRGBA{R: 0xe6, G: 0x7e, B: 0x22, A: 0xff}
)

// ApplyFaceFilter extracts the face sub-raster at box from src, runs it
// through the selected filter and composites the result back into dst at the
// same position, clipped to the frame bounds. A transform failure degrades
// to compositing the unmodified sub-raster; a composite failure degrades to
// an explicit per-pixel copy. The annotated rectangle drawn afterwards is a
// visualization side effect, not part of the data contract.
func ApplyFaceFilter(dst, src *image.NRGBA, box Box, f Filter, source DetectionSource) error {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	box = box.Clamp(w, h)
	if box.Empty() {
		return errors.Wrapf(ErrInvalidRegion, "face box %+v", box)
	}

	sub, err := extractRegion(src, box.Rect())
	if err != nil {
		return err
	}

	filtered := filterRegion(sub, f)

	if err := composite(dst, filtered, box.Rect()); err != nil {
		pixelCopy(dst, filtered, box.Rect())
	}

	markColor := heuristicMarkColor
	if source == SourceCascade {
		markColor = cascadeMarkColor
	}
	drawFaceMarker(dst, box.Rect(), markColor)
	return nil
}

// filterRegion maps the filter selection onto the transform engine. Any
// transform failure returns the unmodified sub-raster so the caller always
// has something to composite.
func filterRegion(sub *image.NRGBA, f Filter) *image.NRGBA {
	var (
		out *image.NRGBA
		err error
	)
	switch f {
	case FilterGrayscale:
		out, err = GrayscaleWithBrightness(sub)
	case FilterBlur:
		out, err = Blur(sub, FaceBlurRadius)
	case FilterColorSpace:
		out, err = ToHSV(sub)
	case FilterPixelate:
		// Pixelation averages a single channel, so the region is
		// grayscaled first.
		out, err = GrayscaleWithBrightness(sub)
		if err == nil {
			out, err = Pixelate(out, DefaultBlockSize)
		}
	default:
		return sub
	}
	if err != nil {
		return sub
	}
	return out
}

// extractRegion copies the given sub-rectangle out of the raster. The caller
// receives a fresh raster anchored at the origin.
func extractRegion(src *image.NRGBA, region image.Rectangle) (*image.NRGBA, error) {
	region = region.Intersect(src.Bounds())
	if region.Dx() <= 0 || region.Dy() <= 0 {
		return nil, ErrInvalidRegion
	}

	dst, err := newRaster(region.Dx(), region.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < region.Dy(); y++ {
		si := (region.Min.Y+y)*src.Stride + region.Min.X*4
		di := y * dst.Stride
		copy(dst.Pix[di:di+region.Dx()*4], src.Pix[si:si+region.Dx()*4])
	}
	return dst, nil
}

// composite draws the sub-raster into dst at the region position, clipped to
// the destination bounds.
func composite(dst, sub *image.NRGBA, region image.Rectangle) error {
	if dst == nil || sub == nil {
		return ErrComposite
	}
	target := region.Intersect(dst.Bounds())
	if target.Dx() <= 0 || target.Dy() <= 0 {
		return errors.Wrap(ErrComposite, "target region is empty")
	}
	draw.Draw(dst, target, sub, image.Point{}, draw.Src)
	return nil
}

// pixelCopy is the degraded composite path: an explicit per-pixel copy
// between the two rasters at matching offsets.
func pixelCopy(dst, sub *image.NRGBA, region image.Rectangle) {
	if dst == nil || sub == nil {
		return
	}
	bounds := dst.Bounds()
	for y := 0; y < sub.Bounds().Dy(); y++ {
		for x := 0; x < sub.Bounds().Dx(); x++ {
			tx, ty := region.Min.X+x, region.Min.Y+y
			if tx < bounds.Min.X || ty < bounds.Min.Y || tx >= bounds.Max.X || ty >= bounds.Max.Y {
				continue
			}
			si := y*sub.Stride + x*4
			di := ty*dst.Stride + tx*4
			copy(dst.Pix[di:di+4], sub.Pix[si:si+4])
		}
	}
}

// drawFaceMarker draws a two pixel wide rectangle around the region plus a
// filled tab in its top-left corner. The tab color encodes the detection
// source.
func drawFaceMarker(dst *image.NRGBA, region image.Rectangle, col color.NRGBA) {
	region = region.Intersect(dst.Bounds())
	if region.Dx() <= 0 || region.Dy() <= 0 {
		return
	}

	const thickness = 2
	for t := 0; t < thickness; t++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			setMarkerPixel(dst, x, region.Min.Y+t, col)
			setMarkerPixel(dst, x, region.Max.Y-1-t, col)
		}
		for y := region.Min.Y; y < region.Max.Y; y++ {
			setMarkerPixel(dst, region.Min.X+t, y, col)
			setMarkerPixel(dst, region.Max.X-1-t, y, col)
		}
	}

	// Corner tab acting as the source label.
	const tab = 6
	for y := region.Min.Y; y < region.Min.Y+tab; y++ {
		for x := region.Min.X; x < region.Min.X+tab; x++ {
			setMarkerPixel(dst, x, y, col)
		}
	}
}

func setMarkerPixel(dst *image.NRGBA, x, y int, col color.NRGBA) {
	if !(image.Point{X: x, Y: y}).In(dst.Bounds()) {
		return
	}
	i := y*dst.Stride + x*4
	dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = col.R, col.G, col.B, col.A
}
