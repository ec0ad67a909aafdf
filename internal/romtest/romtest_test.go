package romtest

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareImagesIdenticalIsZeroError(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 0, A: 255})
		}
	}
	result, err := CompareImages(img, img)
	require.NoError(t, err)
	require.Zero(t, result.Error)
}

func TestCompareImagesDiffersOnMismatch(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 2, 2))
	b := image.NewRGBA(image.Rect(0, 0, 2, 2))
	b.Set(0, 0, color.RGBA{R: 255, A: 255})

	result, err := CompareImages(a, b)
	require.NoError(t, err)
	require.NotZero(t, result.Error)
}

func TestCompareImagesRejectsMismatchedBounds(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 2, 2))
	b := image.NewRGBA(image.Rect(0, 0, 4, 4))
	_, err := CompareImages(a, b)
	require.Error(t, err)
}

func TestHashFramebufferIsDeterministic(t *testing.T) {
	buf := make([]byte, 160*144*4)
	for i := range buf {
		buf[i] = byte(i)
	}
	require.Equal(t, HashFramebuffer(buf), HashFramebuffer(buf))

	other := make([]byte, len(buf))
	copy(other, buf)
	other[0] ^= 0xFF
	require.NotEqual(t, HashFramebuffer(buf), HashFramebuffer(other))
}
