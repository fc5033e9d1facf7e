package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/law-makers/vision-researcher/pkg/models"
)

// DefaultBandHeight is the tallest slice sent to the vision service in one request
const DefaultBandHeight = 1000

// Bands partitions [0, height) into contiguous top-to-bottom bands of
// bandHeight pixels. The last band takes the remainder. The result has
// ceil(height/bandHeight) entries and is empty for a non-positive height.
func Bands(height, bandHeight int) []models.Band {
	if height <= 0 || bandHeight <= 0 {
		return nil
	}

	bands := make([]models.Band, 0, (height+bandHeight-1)/bandHeight)
	for top := 0; top < height; top += bandHeight {
		bands = append(bands, models.Band{
			Index:  len(bands),
			Top:    top,
			Bottom: min(top+bandHeight, height),
		})
	}
	return bands
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// cropBand returns the full-width region of img covered by band
func cropBand(img image.Image, band models.Band) image.Image {
	b := img.Bounds()
	r := image.Rect(b.Min.X, b.Min.Y+band.Top, b.Max.X, b.Min.Y+band.Bottom)

	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// encodeBand crops band out of img and re-encodes it as a standalone JPEG
func encodeBand(img image.Image, band models.Band, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropBand(img, band), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode band %d: %w", band.Index, err)
	}
	return buf.Bytes(), nil
}
