package capture

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/screen-text-alert/internal/imaging"
)

// FileSource replays a still image as if it were the screen.
//
// The file is decoded once through an ImageCache. When a region is set it is
// cut out of the image on every Capture, so the pipeline sees the same frame
// geometry as a live capture of that region.
type FileSource struct {
	path   string
	region *Region
	cache  *imaging.ImageCache
}

// NewFileSource returns a source replaying path. cache may be shared between
// sources; nil allocates a private one.
func NewFileSource(path string, region *Region, cache *imaging.ImageCache) *FileSource {
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	return &FileSource{path: path, region: region, cache: cache}
}

// Capture returns the (cropped) frame image.
func (s *FileSource) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}

	img, err := s.cache.Load(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	if s.region == nil {
		return img, nil
	}

	rect := s.region.Rect().Add(img.Bounds().Min)
	cropped, err := imaging.CropRegion(img, rect)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	return cropped, nil
}

// Bounds returns the size of the frames Capture produces.
func (s *FileSource) Bounds() (image.Rectangle, error) {
	if s.region != nil {
		return image.Rect(0, 0, s.region.Width, s.region.Height), nil
	}
	img, err := s.cache.Load(s.path)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	return img.Bounds(), nil
}
