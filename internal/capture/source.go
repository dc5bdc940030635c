// Package capture produces frames for the monitor loop.
//
// A Source captures one frame on demand. ScreenSource grabs a rectangle of
// the live display; FileSource replays a still image from disk, which is
// useful for dry runs on machines without a display and for the probe
// command. Every error returned by Capture wraps ErrCapture.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// ErrCapture wraps every failure returned by a Source.
var ErrCapture = errors.New("frame capture failed")

// Source produces one frame per call.
type Source interface {
	Capture(ctx context.Context) (image.Image, error)
}

// ScreenSource captures a region of the live display.
type ScreenSource struct {
	region *Region
}

// NewScreenSource returns a source for region, or for the entire virtual
// display when region is nil.
func NewScreenSource(region *Region) *ScreenSource {
	return &ScreenSource{region: region}
}

// Capture grabs the configured rectangle.
func (s *ScreenSource) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}

	rect, err := s.Bounds()
	if err != nil {
		return nil, err
	}

	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %w", ErrCapture, rect, err)
	}
	return img, nil
}

// Bounds returns the rectangle Capture will grab.
func (s *ScreenSource) Bounds() (image.Rectangle, error) {
	if s.region != nil {
		return s.region.Rect(), nil
	}
	rect, err := screenshot.ScreenRect()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("%w: failed to query screen size: %w", ErrCapture, err)
	}
	return rect, nil
}
