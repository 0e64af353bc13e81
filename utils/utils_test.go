package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUtils_DecorateText(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(SuccessColor+"done"+DefaultColor, DecorateText("done", SuccessMessage))
	assert.Equal(ErrorColor+"boom"+DefaultColor, DecorateText("boom", ErrorMessage))
	assert.Equal(StatusColor+"busy"+DefaultColor, DecorateText("busy", StatusMessage))
	assert.Equal("raw", DecorateText("raw", MessageType(99)))
}

func TestUtils_FormatTime(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal("2m 5.00s", FormatTime(125*time.Second))
	assert.Equal("1h 1m 1.00s", FormatTime(time.Hour+time.Minute+time.Second))
}

func TestUtils_IsValidUrl(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsValidUrl("https://example.com/image.jpg"))
	assert.False(IsValidUrl("/tmp/image.jpg"))
	assert.False(IsValidUrl("image.jpg"))
}

func TestUtils_MathHelpers(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(5, Max(2, 5))
	assert.Equal(3.5, Abs(-3.5))
	assert.Equal(0, Clamp(-4, 0, 255))
	assert.Equal(255, Clamp(300, 0, 255))
	assert.Equal(40, Clamp(40, 0, 255))
}
