// Package ocr adapts the Tesseract OCR engine to the detection pipeline.
//
// The pipeline only needs one capability from the engine: given a
// preprocessed image, return the recognized words in reading order together
// with a per-word confidence. That capability is the Recognizer interface;
// Tesseract is its production implementation, backed by gosseract/v2.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// gosseract links against libtesseract, so the engine is only available in
// cgo builds. Without cgo NewTesseract returns ErrEngineUnavailable.
//
// # Languages and Modes
//
// Options.Language accepts Tesseract language codes joined with "+", for
// example "eng" or "eng+deu". Options.PageSegMode and Options.EngineMode map
// to Tesseract's --psm and --oem switches. The engine mode is an init-only
// parameter in Tesseract, so it is passed through a generated config file.
//
// # Confidence
//
// Token confidences are integers in [0,100]. Values the engine reports
// outside that range are replaced by NoConfidence (-1) so they cannot skew
// aggregate confidence downstream.
//
// # Error Handling
//
// Every failure returned by Recognize wraps ErrRecognition, so callers can
// treat any engine hiccup uniformly with errors.Is.
package ocr
