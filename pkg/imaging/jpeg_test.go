package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 120, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestCompressJPEGScalesWideImages(t *testing.T) {
	res, err := CompressJPEG(pngFixture(t, 1600, 900), Options{Quality: 70, MaxWidth: 800})
	require.NoError(t, err)
	assert.Equal(t, 800, res.Width)
	assert.Equal(t, 450, res.Height)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
}

func TestCompressJPEGKeepsSmallImages(t *testing.T) {
	res, err := CompressJPEG(pngFixture(t, 320, 200), Options{MaxWidth: 800})
	require.NoError(t, err)
	assert.Equal(t, 320, res.Width)
	assert.Equal(t, "image/jpeg", Sniff(res.Data))
}

func TestCompressJPEGRejectsNonImage(t *testing.T) {
	_, err := CompressJPEG([]byte("%PDF-1.4 not an image"), Options{})
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestIsImageType(t *testing.T) {
	assert.True(t, IsImageType("image/png"))
	assert.True(t, IsImageType(" IMAGE/JPEG"))
	assert.False(t, IsImageType("application/pdf"))
}
