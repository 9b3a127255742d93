package webp

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PerceptualHash decodes an image file and calculates its perception hash
func PerceptualHash(path string) (*goimagehash.ImageHash, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate perceptual hash: %w", err)
	}

	return hash, nil
}

// CompareImages returns the Hamming distance between the perception hashes of
// two image files. Lower means more similar, 0 is a perceptual match.
func CompareImages(a, b string) (int, error) {
	ha, err := PerceptualHash(a)
	if err != nil {
		return 0, err
	}
	hb, err := PerceptualHash(b)
	if err != nil {
		return 0, err
	}

	distance, err := ha.Distance(hb)
	if err != nil {
		return 0, fmt.Errorf("failed to compare %s and %s: %w", a, b, err)
	}
	return distance, nil
}
