// Package imageproc normalizes uploaded gallery photos: decode JPEG, PNG or
// WebP, fit within MaxDimension on both sides without upscaling, flatten onto
// white, and re-encode as JPEG.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	// MaxDimension bounds both width and height of a processed photo.
	MaxDimension = 400
	// JPEGQuality is the output encoder quality.
	JPEGQuality = 82
	// ContentType is the MIME type of every processed photo.
	ContentType = "image/jpeg"
)

// ErrUnsupported is returned for input that is not a decodable JPEG, PNG or WebP.
var ErrUnsupported = errors.New("unsupported image")

// Result is a processed photo.
type Result struct {
	Data   []byte
	Width  int
	Height int
}

// Process reads an image from r and returns the normalized JPEG.
func Process(r io.Reader) (*Result, error) {
	all, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	src, err := decode(all)
	if err != nil {
		return nil, err
	}

	dst := imaging.Fit(src, MaxDimension, MaxDimension, imaging.Lanczos)
	b := dst.Bounds()
	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), dst, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return &Result{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// decode sniffs the content type and picks a decoder. imaging handles JPEG
// (with EXIF orientation) and PNG; WebP goes through chai2010/webp.
func decode(all []byte) (image.Image, error) {
	if len(all) == 0 {
		return nil, ErrUnsupported
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	var (
		img image.Image
		err error
	)
	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "png"):
		img, err = imaging.Decode(bytes.NewReader(all), imaging.AutoOrientation(true))
	case strings.Contains(ct, "webp"):
		img, err = webp.Decode(bytes.NewReader(all))
	default:
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return img, nil
}
