//go:build !cgo

package ocr

import (
	"context"
	"fmt"
	"image"
)

// Tesseract is unavailable without cgo; NewTesseract always fails.
type Tesseract struct{}

// NewTesseract reports ErrEngineUnavailable in builds without cgo.
func NewTesseract(opts Options) (*Tesseract, error) {
	return nil, ErrEngineUnavailable
}

// Recognize always fails in builds without cgo.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	return nil, fmt.Errorf("%w: %w", ErrRecognition, ErrEngineUnavailable)
}

// Version returns an empty string in builds without cgo.
func (t *Tesseract) Version() string { return "" }

// Info reports the engine as unavailable.
func (t *Tesseract) Info() Info {
	return Info{Available: false, Error: ErrEngineUnavailable.Error(), Backend: "none"}
}

// Close is a no-op in builds without cgo.
func (t *Tesseract) Close() error { return nil }
