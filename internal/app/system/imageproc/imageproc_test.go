package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcess_FitsWithinBounds(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 800, 400, 400, 200},
		{"portrait", 300, 1200, 100, 400},
		{"square", 1000, 1000, 400, 400},
		{"small is not upscaled", 120, 80, 120, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := encodePNG(t, solid(tt.w, tt.h, color.NRGBA{R: 200, G: 50, B: 50, A: 255}))

			res, err := Process(bytes.NewReader(in))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, res.Width)
			assert.Equal(t, tt.wantH, res.Height)

			out, err := jpeg.Decode(bytes.NewReader(res.Data))
			require.NoError(t, err, "output must be JPEG")
			assert.Equal(t, tt.wantW, out.Bounds().Dx())
			assert.Equal(t, tt.wantH, out.Bounds().Dy())
		})
	}
}

func TestProcess_TransparentBecomesWhite(t *testing.T) {
	in := encodePNG(t, solid(10, 10, color.NRGBA{}))

	res, err := Process(bytes.NewReader(in))
	require.NoError(t, err)

	out, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	r, g, b, _ := out.At(5, 5).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestProcess_JPEGInput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(600, 600, color.NRGBA{G: 128, A: 255}), nil))

	res, err := Process(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, res.Width)
}

func TestProcess_WebPInput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, solid(500, 250, color.NRGBA{B: 200, A: 255}), &webp.Options{Quality: 80}))

	res, err := Process(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, res.Width)
	assert.Equal(t, 200, res.Height)
}

func TestProcess_Unsupported(t *testing.T) {
	inputs := map[string][]byte{
		"empty":     nil,
		"text":      []byte("definitely not an image"),
		"truncated": encodePNG(t, solid(20, 20, color.Black))[:40],
		"gif magic": []byte("GIF89a" + strings.Repeat("\x00", 20)),
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Process(bytes.NewReader(in))
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}
}
