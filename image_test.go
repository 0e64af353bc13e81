package facestudio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImage_DecodeConvertsToNRGBA(t *testing.T) {
	assert := assert.New(t)

	// Encode an RGBA image and make sure decoding hands back the raster
	// representation the pipeline works with.
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(png.Encode(&buf, src))

	img, err := DecodeImage(&buf)
	assert.NoError(err)
	assert.Equal(8, img.Bounds().Dx())
	assert.Equal(8, img.Bounds().Dy())

	r, g, b := pixelAt(img, 3, 3)
	assert.Equal([3]uint8{10, 20, 30}, [3]uint8{r, g, b})
}

func TestImage_DecodeRejectsGarbage(t *testing.T) {
	assert := assert.New(t)

	_, err := DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.Error(err)
}

func TestImage_EncodeDefaultsToJPEG(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	err := EncodeImage(&buf, uniformFrame(8, 8, 100, 100, 100))
	assert.NoError(err)

	// JPEG magic bytes.
	assert.Equal([]byte{0xff, 0xd8}, buf.Bytes()[:2])
}

func TestImage_NRGBAConversionNormalizesOrigin(t *testing.T) {
	assert := assert.New(t)

	src := image.NewNRGBA(image.Rect(2, 3, 10, 11))
	dst := ImgToNRGBA(src)

	assert.Equal(image.Pt(0, 0), dst.Bounds().Min)
	assert.Equal(8, dst.Bounds().Dx())
	assert.Equal(8, dst.Bounds().Dy())
}

func TestImage_GrayscalePixelLayout(t *testing.T) {
	assert := assert.New(t)

	img := uniformFrame(4, 2, 255, 0, 0)
	gray := rgbToGrayscale(img)

	assert.Len(gray, 8)
	// Pure red weighs in at its luminance coefficient.
	assert.Equal(uint8(76), gray[0])
}
