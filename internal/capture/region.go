package capture

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Region is a capture rectangle in screen coordinates.
type Region struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ParseRegion parses "left,top,width,height".
//
// An empty string yields a nil region, meaning the entire virtual display.
func ParseRegion(s string) (*Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("region must be left,top,width,height, got %q", s)
	}

	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("region must be left,top,width,height, got %q: %w", s, err)
		}
		vals[i] = v
	}

	r := &Region{Left: vals[0], Top: vals[1], Width: vals[2], Height: vals[3]}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks that the region is non-negative with a positive size.
func (r Region) Validate() error {
	if r.Left < 0 || r.Top < 0 {
		return fmt.Errorf("region origin must be non-negative, got (%d,%d)", r.Left, r.Top)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("region width and height must be > 0, got %dx%d", r.Width, r.Height)
	}
	return nil
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Width, r.Height)
}
