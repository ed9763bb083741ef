package service

import (
	"bytes"
	"fmt"
	"log"

	"github.com/disintegration/imaging"
)

// ImageSize selects the output dimensions and quality of OptimizeImage
type ImageSize string

const (
	ImageSizeThumb  ImageSize = "thumb"
	ImageSizeMedium ImageSize = "medium"
)

type imageSpec struct {
	maxDim  int
	quality int
}

var imageSpecs = map[ImageSize]imageSpec{
	ImageSizeThumb:  {maxDim: 300, quality: 60},
	ImageSizeMedium: {maxDim: 800, quality: 75},
}

// OptimizeImage decodes an uploaded image (PNG, JPEG, GIF, BMP, TIFF), honours
// its EXIF orientation, fits it within the size's bounding box and re-encodes it as JPEG.
func OptimizeImage(imageData []byte, size ImageSize) ([]byte, error) {
	spec, ok := imageSpecs[size]
	if !ok {
		log.Printf("⚠️  Unknown size '%s', defaulting to medium", size)
		spec = imageSpecs[ImageSizeMedium]
	}

	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > spec.maxDim || bounds.Dy() > spec.maxDim {
		img = imaging.Fit(img, spec.maxDim, spec.maxDim, imaging.Lanczos)
		log.Printf("🔄 Resized image: %dx%d -> %dx%d", bounds.Dx(), bounds.Dy(), img.Bounds().Dx(), img.Bounds().Dy())
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(spec.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	log.Printf("✓ Image optimized: size=%s, quality=%d, output_size=%d bytes", size, spec.quality, buf.Len())
	return buf.Bytes(), nil
}
