package ocr

import (
	"fmt"
	"strings"
)

// Tesseract defaults: English, a single uniform block of text, and the
// engine's default OCR engine mode.
const (
	DefaultLanguage    = "eng"
	DefaultPageSegMode = 6
	DefaultEngineMode  = 3
)

// Options configures the Tesseract recognizer.
type Options struct {
	// Language is one or more Tesseract language codes joined with "+".
	Language string

	// PageSegMode is Tesseract's page segmentation mode (0-13).
	PageSegMode int

	// EngineMode is Tesseract's OCR engine mode (0-3).
	EngineMode int

	// TessdataPrefix overrides the directory containing *.traineddata files.
	// Empty uses the engine's compiled-in default or TESSDATA_PREFIX.
	TessdataPrefix string
}

// DefaultOptions returns the recognizer defaults.
func DefaultOptions() Options {
	return Options{
		Language:    DefaultLanguage,
		PageSegMode: DefaultPageSegMode,
		EngineMode:  DefaultEngineMode,
	}
}

// Languages splits Language into individual codes, dropping empty entries.
func (o Options) Languages() []string {
	var langs []string
	for _, l := range strings.Split(o.Language, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// Validate reports options Tesseract would reject at init time.
func (o Options) Validate() error {
	if len(o.Languages()) == 0 {
		return fmt.Errorf("language must not be empty")
	}
	if o.PageSegMode < 0 || o.PageSegMode > 13 {
		return fmt.Errorf("page segmentation mode must be 0-13, got %d", o.PageSegMode)
	}
	if o.EngineMode < 0 || o.EngineMode > 3 {
		return fmt.Errorf("engine mode must be 0-3, got %d", o.EngineMode)
	}
	return nil
}

// Info contains information about the OCR subsystem.
type Info struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Error          string `json:"error,omitempty"`
	Backend        string `json:"backend"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
}
