package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultJPEGQuality is the encoder quality used by NewImageService.
const DefaultJPEGQuality = 90

// ImageService turns video thumbnails into album covers.
//
// Thumbnails arrive as JPEG, PNG or WebP in the video's aspect ratio. A
// cover is the centered square of the thumbnail, scaled down with
// Catmull-Rom when larger than the requested size, encoded as JPEG.
//
//	svc := NewImageService()
//	thumb, _ := client.Get(ctx, thumbnailURL)
//	cover, _ := svc.Cover(ctx, thumb, 1000)
type ImageService struct {
	quality int
}

// NewImageService creates an ImageService encoding at DefaultJPEGQuality.
func NewImageService() *ImageService {
	return &ImageService{quality: DefaultJPEGQuality}
}

// Cover crops data to its centered square and scales it to at most
// maxSize pixels per side. Images already small enough keep their size
// and are only re-encoded. A 1280x720 thumbnail with maxSize 500 becomes
// a 500x500 cover cut from its middle 720x720.
func (s *ImageService) Cover(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("cover size must be positive, got %d", maxSize)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode thumbnail: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	crop := squareCrop(src.Bounds())
	side := min(crop.Dx(), maxSize)

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode %s thumbnail as JPEG: %w", format, err)
	}
	return buf.Bytes(), nil
}

// squareCrop returns the largest square centered in b.
func squareCrop(b image.Rectangle) image.Rectangle {
	side := min(b.Dx(), b.Dy())
	x := b.Min.X + (b.Dx()-side)/2
	y := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x, y, x+side, y+side)
}
