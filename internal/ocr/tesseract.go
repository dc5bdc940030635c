//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/otiai10/gosseract/v2"
)

const backendName = "gosseract"

// Tesseract recognizes text with a long-lived gosseract client.
//
// A Tesseract is not safe for concurrent use; the monitor loop owns exactly
// one and calls it from a single goroutine. Call Close to release the engine.
type Tesseract struct {
	opts       Options
	client     *gosseract.Client
	configPath string
}

// NewTesseract creates a recognizer configured by opts.
//
// The engine itself is initialized lazily by gosseract on the first
// Recognize call, so a missing language pack surfaces as a recognition error
// then. Use Info or a probe run to check the installation up front.
func NewTesseract(opts Options) (*Tesseract, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid OCR options: %w", err)
	}

	client := gosseract.NewClient()
	t := &Tesseract{opts: opts, client: client}

	if err := client.SetLanguage(opts.Languages()...); err != nil {
		t.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
		t.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			t.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	// tessedit_ocr_engine_mode can only be set while the engine initializes,
	// which gosseract exposes through a config file.
	configPath, err := writeEngineConfig(opts.EngineMode)
	if err != nil {
		t.Close()
		return nil, err
	}
	t.configPath = configPath
	if err := client.SetConfigFile(configPath); err != nil {
		t.Close()
		return nil, fmt.Errorf("failed to set engine config: %w", err)
	}

	return t, nil
}

// Recognize performs OCR on img and returns word-level tokens.
//
// The image is PNG-encoded in memory and handed to the engine; no temporary
// image file is written. Words come from Tesseract's RIL_WORD iterator, in
// reading order. Cancellation is checked before the engine is invoked; an
// in-flight recognition always runs to completion.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecognition, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: failed to encode image: %w", ErrRecognition, err)
	}

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: failed to set image: %w", ErrRecognition, err)
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecognition, err)
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, Word{Text: box.Word, Confidence: box.Confidence})
	}

	return NewResult(words), nil
}

// Version returns the linked Tesseract version.
func (t *Tesseract) Version() string {
	return t.client.Version()
}

// Info returns information about OCR availability.
func (t *Tesseract) Info() Info {
	version := t.Version()
	if version == "" {
		return Info{
			Available: false,
			Error:     "tesseract did not report a version",
			Backend:   backendName,
		}
	}
	return Info{
		Available:      true,
		Version:        version,
		Backend:        backendName,
		TessdataPrefix: t.opts.TessdataPrefix,
	}
}

// Close releases the engine and removes the generated config file.
func (t *Tesseract) Close() error {
	var err error
	if t.client != nil {
		err = t.client.Close()
		t.client = nil
	}
	if t.configPath != "" {
		os.Remove(t.configPath)
		t.configPath = ""
	}
	return err
}

// writeEngineConfig writes a Tesseract config file selecting the engine mode.
//
// IMPORTANT: The caller is responsible for deleting the file after use.
func writeEngineConfig(engineMode int) (string, error) {
	f, err := os.CreateTemp("", "screen-alert-tess-*.cfg")
	if err != nil {
		return "", fmt.Errorf("failed to create engine config: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "tessedit_ocr_engine_mode %d\n", engineMode); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write engine config: %w", err)
	}
	return f.Name(), nil
}
