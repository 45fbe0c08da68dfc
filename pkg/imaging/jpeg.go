package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	// decoders for the formats browsers commonly upload
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when the payload cannot be decoded as an image.
var ErrNotImage = errors.New("file is not a supported image")

// Options controls re-encoding.
type Options struct {
	Quality  int
	MaxWidth int
}

// Result is the re-encoded JPEG plus its final dimensions.
type Result struct {
	Data   []byte
	Width  int
	Height int
}

// IsImageType reports whether a declared or sniffed content type is an image.
func IsImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// Sniff returns the detected content type of the first bytes of a payload.
func Sniff(data []byte) string {
	return http.DetectContentType(data)
}

// CompressJPEG decodes any supported image, scales it down to MaxWidth
// keeping the aspect ratio and re-encodes it as JPEG at Quality.
func CompressJPEG(data []byte, opts Options) (*Result, error) {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 70
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	img := src
	bounds := src.Bounds()
	if opts.MaxWidth > 0 && bounds.Dx() > opts.MaxWidth {
		height := bounds.Dy() * opts.MaxWidth / bounds.Dx()
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, opts.MaxWidth, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		img = dst
	}

	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	b := img.Bounds()
	return &Result{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}
