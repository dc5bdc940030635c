package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropRegion extracts rect from img.
//
// rect is expressed in img's coordinate space and must lie entirely inside
// img.Bounds() with a positive width and height. The returned image is a copy
// whose bounds start at (0,0).
func CropRegion(img image.Image, rect image.Rectangle) (image.Image, error) {
	bounds := img.Bounds()

	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return nil, fmt.Errorf("invalid crop region %v: width and height must be > 0", rect)
	}
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	return imaging.Crop(img, rect), nil
}
