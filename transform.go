package facestudio

import (
	"image"
	"math"

	"github.com/Akshat-2809/Face-Studio/utils"
	"github.com/disintegration/imaging"
)

// Channel identifies one of the three color channels of a raster.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// Default parameters of the parametrized transforms.
const (
	// BrightnessFactor is applied on top of the luminance during the
	// grayscale conversion.
	BrightnessFactor = 1.2

	// DefaultBlockSize is the tile size of the pixelation effect.
	DefaultBlockSize = 12

	// DefaultBlurRadius is the radius of the generic blur.
	DefaultBlurRadius = 8
)

// maxRasterPixels bounds the size of a single output raster allocation.
// Frames are small (160×120 by default), so anything beyond this means the
// caller passed in garbage dimensions.
const maxRasterPixels = 1 << 26

// newRaster allocates the output raster for a transform. It returns
// ErrAllocation when the requested dimensions cannot back a drawable raster;
// callers are expected to substitute the input raster and continue.
func newRaster(w, h int) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 || w*h > maxRasterPixels {
		return nil, ErrAllocation
	}
	return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
}

// GrayscaleWithBrightness converts the raster to grayscale mode with a fixed
// brightness boost: the luminance is multiplied by BrightnessFactor and
// clamped to the channel range. The input raster is left untouched.
func GrayscaleWithBrightness(src *image.NRGBA) (*image.NRGBA, error) {
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	dst, err := newRaster(dx, dy)
	if err != nil {
		return nil, err
	}

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			i := y*src.Stride + x*4
			r, g, b := src.Pix[i], src.Pix[i+1], src.Pix[i+2]

			lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			v := clampChannel(math.Round(lum * BrightnessFactor))

			j := y*dst.Stride + x*4
			dst.Pix[j], dst.Pix[j+1], dst.Pix[j+2], dst.Pix[j+3] = v, v, v, 0xff
		}
	}
	return dst, nil
}

// ExtractChannel isolates a single color channel by zeroing out the other
// two. The alpha channel stays opaque.
func ExtractChannel(src *image.NRGBA, ch Channel) (*image.NRGBA, error) {
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	dst, err := newRaster(dx, dy)
	if err != nil {
		return nil, err
	}

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			i := y*src.Stride + x*4
			j := y*dst.Stride + x*4

			dst.Pix[j+int(ch)] = src.Pix[i+int(ch)]
			dst.Pix[j+3] = 0xff
		}
	}
	return dst, nil
}

// ThresholdChannel binarizes the raster against a single channel: a pixel
// becomes white when its channel value exceeds the threshold, black
// otherwise.
func ThresholdChannel(src *image.NRGBA, threshold uint8, ch Channel) (*image.NRGBA, error) {
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	dst, err := newRaster(dx, dy)
	if err != nil {
		return nil, err
	}

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			i := y*src.Stride + x*4

			var v uint8
			if src.Pix[i+int(ch)] > threshold {
				v = 0xff
			}

			j := y*dst.Stride + x*4
			dst.Pix[j], dst.Pix[j+1], dst.Pix[j+2], dst.Pix[j+3] = v, v, v, 0xff
		}
	}
	return dst, nil
}

// ToHSV converts every pixel to the HSV color space, packing the components
// into the three color channels. The hue is rescaled from degrees into the
// channel range.
func ToHSV(src *image.NRGBA) (*image.NRGBA, error) {
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	dst, err := newRaster(dx, dy)
	if err != nil {
		return nil, err
	}

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			i := y*src.Stride + x*4
			h, s, v := RGBToHSV(src.Pix[i], src.Pix[i+1], src.Pix[i+2])

			j := y*dst.Stride + x*4
			dst.Pix[j] = uint8(math.Round(float64(h) / 360 * 255))
			dst.Pix[j+1] = s
			dst.Pix[j+2] = v
			dst.Pix[j+3] = 0xff
		}
	}
	return dst, nil
}

// ToLab converts every pixel to the CIE Lab color space, packing the
// rescaled L, a and b components into the three color channels.
func ToLab(src *image.NRGBA) (*image.NRGBA, error) {
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	dst, err := newRaster(dx, dy)
	if err != nil {
		return nil, err
	}

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			i := y*src.Stride + x*4
			l, a, b := RGBToLab(src.Pix[i], src.Pix[i+1], src.Pix[i+2])

			j := y*dst.Stride + x*4
			dst.Pix[j], dst.Pix[j+1], dst.Pix[j+2], dst.Pix[j+3] = l, a, b, 0xff
		}
	}
	return dst, nil
}

// ThresholdColorspace binarizes the raster against the average of the three
// stored channel values. It is meant to run over an already converted
// colorspace raster (see ToHSV and ToLab).
func ThresholdColorspace(src *image.NRGBA, threshold uint8) (*image.NRGBA, error) {
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	dst, err := newRaster(dx, dy)
	if err != nil {
		return nil, err
	}

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			i := y*src.Stride + x*4
			avg := (int(src.Pix[i]) + int(src.Pix[i+1]) + int(src.Pix[i+2])) / 3

			var v uint8
			if avg > int(threshold) {
				v = 0xff
			}

			j := y*dst.Stride + x*4
			dst.Pix[j], dst.Pix[j+1], dst.Pix[j+2], dst.Pix[j+3] = v, v, v, 0xff
		}
	}
	return dst, nil
}

// Pixelate partitions the raster into blockSize×blockSize tiles and replaces
// each tile with the mean of its first-channel intensity. The raster is
// assumed to be pre-grayscaled, which is why averaging a single channel is
// enough. Tiles clipped at the raster edge average only in-bounds pixels.
func Pixelate(src *image.NRGBA, blockSize int) (*image.NRGBA, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	dst, err := newRaster(dx, dy)
	if err != nil {
		return nil, err
	}

	for by := 0; by < dy; by += blockSize {
		for bx := 0; bx < dx; bx += blockSize {
			ex := utils.Min(bx+blockSize, dx)
			ey := utils.Min(by+blockSize, dy)

			var sum, count int
			for y := by; y < ey; y++ {
				for x := bx; x < ex; x++ {
					sum += int(src.Pix[y*src.Stride+x*4])
					count++
				}
			}
			mean := uint8(math.Round(float64(sum) / float64(count)))

			for y := by; y < ey; y++ {
				for x := bx; x < ex; x++ {
					j := y*dst.Stride + x*4
					dst.Pix[j], dst.Pix[j+1], dst.Pix[j+2], dst.Pix[j+3] = mean, mean, mean, 0xff
				}
			}
		}
	}
	return dst, nil
}

// Blur applies a stack blur with the given radius onto a fresh copy of the
// raster. A larger radius produces more spatial averaging; the output is
// deterministic for the same input and radius.
func Blur(src *image.NRGBA, radius int) (*image.NRGBA, error) {
	if radius <= 0 {
		radius = DefaultBlurRadius
	}
	if radius > maxBlurRadius {
		radius = maxBlurRadius
	}
	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrAllocation
	}

	// The blur primitive works in place, so it gets its own copy.
	dst := imaging.Clone(src)
	stackBlur(dst, uint32(bounds.Dx()), uint32(bounds.Dy()), uint32(radius))
	return dst, nil
}

// FlipHorizontal mirrors the raster columns. It corrects for the camera
// mirroring applied upstream of the transform engine.
func FlipHorizontal(src *image.NRGBA) *image.NRGBA {
	return imaging.FlipH(src)
}
