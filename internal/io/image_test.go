package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageService_Cover(t *testing.T) {
	svc := NewImageService()

	tests := []struct {
		name    string
		w, h    int
		maxSize int
		want    int
	}{
		{"wide thumbnail", 1280, 720, 500, 500},
		{"tall", 300, 600, 200, 200},
		{"already small", 120, 90, 1000, 90},
		{"exact", 64, 64, 64, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.Cover(context.Background(), pngBytes(t, tt.w, tt.h), tt.maxSize)
			require.NoError(t, err)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, tt.want, cfg.Width)
			assert.Equal(t, tt.want, cfg.Height)
		})
	}
}

func TestSquareCrop(t *testing.T) {
	assert.Equal(t, image.Rect(280, 0, 1000, 720), squareCrop(image.Rect(0, 0, 1280, 720)))
	assert.Equal(t, image.Rect(0, 150, 300, 450), squareCrop(image.Rect(0, 0, 300, 600)))
	assert.Equal(t, image.Rect(15, 10, 25, 20), squareCrop(image.Rect(10, 10, 30, 20)))
}

func TestImageService_CoverErrors(t *testing.T) {
	svc := NewImageService()

	_, err := svc.Cover(context.Background(), []byte("not an image"), 10)
	assert.ErrorContains(t, err, "failed to decode thumbnail")

	_, err = svc.Cover(context.Background(), pngBytes(t, 4, 4), 0)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Cover(ctx, pngBytes(t, 4, 4), 10)
	assert.ErrorIs(t, err, context.Canceled)
}
