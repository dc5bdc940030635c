package ocr

import (
	"context"
	"errors"
	"image"
	"math"
	"strings"
)

// NoConfidence marks a token for which the engine reported no usable confidence.
const NoConfidence = -1

var (
	// ErrRecognition wraps every failure returned by a Recognizer.
	ErrRecognition = errors.New("text recognition failed")

	// ErrEngineUnavailable is returned when the binary was built without OCR support.
	ErrEngineUnavailable = errors.New("OCR engine not available in this build (requires cgo and libtesseract)")
)

// Recognizer turns a preprocessed image into recognized text.
//
// Implementations must not retain img after returning.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (*Result, error)
}

// Token is a single recognized word with its confidence.
type Token struct {
	// Text is the recognized word, trimmed of surrounding whitespace.
	Text string `json:"text"`

	// Confidence is the engine's certainty in [0,100], or NoConfidence.
	Confidence int `json:"confidence"`
}

// Usable reports whether the token's confidence can take part in aggregation.
func (t Token) Usable() bool {
	return t.Confidence >= 0 && t.Confidence <= 100
}

// Result contains the outcome of recognizing one frame.
type Result struct {
	// FullText is every non-empty token joined by single spaces, in engine order.
	FullText string `json:"full_text"`

	// Tokens preserves the order reported by the engine.
	Tokens []Token `json:"tokens"`
}

// Word is a raw engine word before normalization.
type Word struct {
	Text       string
	Confidence float64
}

// NewResult builds a Result from raw engine words.
//
// Whitespace-only words are dropped. Confidences are rounded to the nearest
// integer; NaN and anything outside [0,100] become NoConfidence.
func NewResult(words []Word) *Result {
	tokens := make([]Token, 0, len(words))
	texts := make([]string, 0, len(words))

	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		tokens = append(tokens, Token{
			Text:       text,
			Confidence: normalizeConfidence(w.Confidence),
		})
		texts = append(texts, text)
	}

	return &Result{
		FullText: strings.Join(texts, " "),
		Tokens:   tokens,
	}
}

// normalizeConfidence range checks the raw engine value and then rounds it.
func normalizeConfidence(c float64) int {
	if math.IsNaN(c) || c < 0 || c > 100 {
		return NoConfidence
	}
	return int(math.Round(c))
}
