// Package ocr is the recognition capability boundary: a prepared bitmap in,
// raw multi-line text out. The production engine wraps Tesseract; tests
// substitute canned engines.
package ocr

import (
	"context"
	"image"
)

type Engine interface {
	// Recognize runs the engine over one prepared bitmap and returns the raw
	// recognized text, newlines delimiting recognized lines.
	Recognize(ctx context.Context, img image.Image) (string, error)
}
