package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"os"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// DefaultJPEGQuality is used when NewImageService is given an invalid quality.
const DefaultJPEGQuality = 90

// ImageService normalises downloaded pages.
//
// Catalogue sites often serve PNG or WebP behind .jpg URLs, and some pages
// are long webtoon strips. ImageService is used to:
//   - Convert pages to real JPEG so that every reader can open the archive
//   - Scale down pages taller than a maximum height
//
// Example usage:
//
//	svc := NewImageService(90)
//	changed, err := svc.NormalizePage(ctx, "/scans/one-piece/1/0.jpg", 4000)
type ImageService struct {
	quality int
}

// NewImageService creates a new ImageService encoding JPEG with the given quality (1-100).
func NewImageService(quality int) *ImageService {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &ImageService{quality: quality}
}

// ResizeToHeight scales an image down so that it is at most maxHeight pixels
// tall, preserving the aspect ratio. Smaller images are returned unchanged.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 800x12000 strip becomes 266x4000
//	img = svc.ResizeToHeight(img, 4000)
func (s *ImageService) ResizeToHeight(img image.Image, maxHeight int) image.Image {
	bounds := img.Bounds()
	if maxHeight <= 0 || bounds.Dy() <= maxHeight {
		return img
	}

	width := bounds.Dx() * maxHeight / bounds.Dy()
	if width < 1 {
		width = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, maxHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// ConvertToJPEG converts an image to JPEG format.
//
// Parameters:
//   - ctx: Context for cancellation
//   - data: Original image data (JPEG, PNG, GIF or WebP)
//
// Note: If the input is already JPEG, it will be re-encoded.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return s.encode(img)
}

// NormalizePage rewrites the page at path as JPEG, scaled to maxHeight when
// maxHeight > 0. A page that already is a JPEG within bounds is left
// untouched. It reports whether the file was rewritten.
func (s *ImageService) NormalizePage(ctx context.Context, path string, maxHeight int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	mime := mimetype.Detect(data)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("decode %s (%s): %w", path, mime.String(), err)
	}

	tooTall := maxHeight > 0 && cfg.Height > maxHeight
	if mime.Is("image/jpeg") && !tooTall {
		return false, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("decode %s (%s): %w", path, mime.String(), err)
	}

	out, err := s.encode(s.ResizeToHeight(img, maxHeight))
	if err != nil {
		return false, err
	}

	if err := WriteFileAtomic(path, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ImageService) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
