package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

const (
	// DefaultThreshold is the binarization cut-off used when none is configured.
	DefaultThreshold = 180

	// autoScaleFactor and autoScaleLimit reproduce the upscaling heuristic for
	// small captures: frames whose longest side is under the limit are enlarged.
	autoScaleFactor = 1.5
	autoScaleLimit  = 2000

	unsharpRadius = 2.0
	unsharpAmount = 1.0
)

// Options configures the preprocessing chain.
//
// Options is a plain value built once at startup. Use DefaultOptions as the
// starting point; the zero value is not neutral because a zero Contrast
// flattens the image.
type Options struct {
	// Scale resizes both dimensions by this factor. 1.0 leaves the size alone.
	Scale float64

	// AutoScale ignores Scale and enlarges frames whose longest side is below
	// 2000 pixels by 1.5.
	AutoScale bool

	// Contrast is a linear contrast factor. 1.0 leaves the image unchanged,
	// values above 1 stretch intensities away from mid-grey.
	Contrast float64

	// Binarize maps every pixel above Threshold to white and the rest to black.
	Binarize bool

	// Threshold is the binarization cut-off (0-255).
	Threshold uint8

	// Invert replaces each pixel p with 255-p.
	Invert bool

	// Sharpen applies an unsharp mask as the last step.
	Sharpen bool
}

// DefaultOptions returns the neutral chain: grayscale conversion only.
func DefaultOptions() Options {
	return Options{
		Scale:     1.0,
		Contrast:  1.0,
		Threshold: DefaultThreshold,
	}
}

// ValidateOptions checks that opts can be applied to frames of the given size.
//
// Parameters:
//   - opts: the chain configuration.
//   - width, height: the expected frame size in pixels. Pass 0 for either to
//     skip the size check (for example when the capture size is unknown).
//
// Returns a non-nil error if Scale or Contrast are not positive or if scaling
// would produce an image with a zero-length side.
func ValidateOptions(opts Options, width, height int) error {
	if !opts.AutoScale && !(opts.Scale > 0) {
		return fmt.Errorf("scale must be > 0, got %v", opts.Scale)
	}
	if !(opts.Contrast > 0) {
		return fmt.Errorf("contrast must be > 0, got %v", opts.Contrast)
	}
	if width <= 0 || height <= 0 {
		return nil
	}
	scale := opts.effectiveScale(width, height)
	w, h := scaledSize(width, height, scale)
	if w < 1 || h < 1 {
		return fmt.Errorf("scale %v reduces a %dx%d frame to %dx%d", scale, width, height, w, h)
	}
	return nil
}

// Preprocess runs the transform chain over img.
//
// The result is a newly allocated *image.Gray with bounds starting at (0,0);
// img is not modified. Preprocess does not fail: a scale that would collapse
// a side to zero is clamped to one pixel, but ValidateOptions should have
// rejected such a configuration before the first frame.
func Preprocess(img image.Image, opts Options) *image.Gray {
	var out image.Image = imaging.Grayscale(img)

	b := out.Bounds()
	scale := opts.effectiveScale(b.Dx(), b.Dy())
	if scale != 1.0 {
		w, h := scaledSize(b.Dx(), b.Dy(), scale)
		out = imaging.Resize(out, max(w, 1), max(h, 1), imaging.Lanczos)
	}

	if opts.Contrast != 1.0 {
		out = adjust.Contrast(out, opts.Contrast-1.0)
	}

	if opts.Binarize {
		threshold := opts.Threshold
		out = imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
			v := uint8(0)
			if c.R > threshold {
				v = 255
			}
			return color.NRGBA{R: v, G: v, B: v, A: 255}
		})
	}

	if opts.Invert {
		out = imaging.Invert(out)
	}

	if opts.Sharpen {
		out = effect.UnsharpMask(out, unsharpRadius, unsharpAmount)
	}

	return toGray(out)
}

func (o Options) effectiveScale(width, height int) float64 {
	if !o.AutoScale {
		return o.Scale
	}
	if max(width, height) < autoScaleLimit {
		return autoScaleFactor
	}
	return 1.0
}

func scaledSize(width, height int, scale float64) (int, int) {
	return int(math.Round(float64(width) * scale)), int(math.Round(float64(height) * scale))
}

// toGray converts any image to a single-channel image anchored at the origin.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
