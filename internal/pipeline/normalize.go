package pipeline

import (
	"image"

	"github.com/disintegration/imaging"
)

// NormalizeOptions are the preparation knobs for recognition. Zero values
// fall back to the defaults the receipts were tuned with.
type NormalizeOptions struct {
	UpscaleFactor int
	ContrastBoost float64
	SharpenSigma  float64
}

func (o NormalizeOptions) withDefaults() NormalizeOptions {
	if o.UpscaleFactor <= 0 {
		o.UpscaleFactor = 2
	}
	if o.ContrastBoost == 0 {
		o.ContrastBoost = 40
	}
	if o.SharpenSigma <= 0 {
		o.SharpenSigma = 1.0
	}
	return o
}

// Normalize prepares a decoded receipt for recognition: single-channel
// grayscale, fixed upscale with Lanczos resampling, a contrast boost, and a
// sharpening pass. Cheap phone photos and fax-grade scans both come out
// legible enough for single-column recognition.
func Normalize(img image.Image, opts NormalizeOptions) *image.NRGBA {
	opts = opts.withDefaults()

	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	scaled := imaging.Resize(gray, bounds.Dx()*opts.UpscaleFactor, bounds.Dy()*opts.UpscaleFactor, imaging.Lanczos)
	boosted := imaging.AdjustContrast(scaled, opts.ContrastBoost)
	return imaging.Sharpen(boosted, opts.SharpenSigma)
}
