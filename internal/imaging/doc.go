// Package imaging prepares captured frames for text recognition.
//
// The central entry point is Preprocess, which runs a fixed transform chain
// over a frame and always returns a single-channel *image.Gray anchored at the
// origin. The chain order is significant because each step consumes the
// previous step's output:
//
//  1. Grayscale conversion (ITU-R BT.601 luma)
//  2. Resize by Options.Scale with a Lanczos filter
//  3. Linear contrast about mid-grey by Options.Contrast
//  4. Binarization against Options.Threshold (strictly greater is white)
//  5. Inversion (p -> 255-p)
//  6. Unsharp-mask sharpening
//
// Steps 2 to 6 are skipped when their option is at its neutral value. The
// transform is deterministic: the same frame and Options always produce the
// same Pix slice.
//
// # Validation
//
// Preprocess never fails. Options that cannot work (non-positive scale or
// contrast, a scale that would collapse the configured region to zero pixels)
// are rejected up front by ValidateOptions, before the monitor loop starts.
//
// # Frame Files
//
// ImageCache and CropRegion support replaying a still image in place of a live
// screen: the cache decodes a file once (again only when it changes on disk)
// and CropRegion cuts the configured capture rectangle out of it.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Preprocess and CropRegion
// are stateless.
package imaging
