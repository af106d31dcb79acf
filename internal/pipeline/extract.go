package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	pdf "github.com/ledongthuc/pdf"

	"routesheet/internal"
	"routesheet/internal/ocr"
)

// ExtractService turns one input document into raw multi-line text. Raster
// images are normalized and recognized; paginated documents are read through
// their embedded first-page text layer (later pages are ignored).
type ExtractService struct {
	engine ocr.Engine
	opts   NormalizeOptions
}

func NewExtractService(engine ocr.Engine, opts NormalizeOptions) *ExtractService {
	return &ExtractService{engine: engine, opts: opts}
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".tif":  true,
	".bmp":  true,
	".gif":  true,
}

func IsReceiptFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".pdf" || imageExtensions[ext]
}

func (s *ExtractService) ExtractText(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return firstPageText(path)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", internal.ErrLoad, path, err)
	}

	text, err := s.engine.Recognize(ctx, Normalize(img, s.opts))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", internal.ErrOCR, path, err)
	}
	return text, nil
}

func firstPageText(path string) (text string, err error) {
	// The pdf library panics on some malformed inputs; fold those into the
	// conversion failure path.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %s: %v", internal.ErrConversion, path, r)
		}
	}()

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", internal.ErrConversion, path, err)
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", internal.ErrConversion, path, err)
	}
	if r.NumPage() < 1 {
		return "", fmt.Errorf("%w: %s: document has no pages", internal.ErrConversion, path)
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return "", fmt.Errorf("%w: %s: first page is empty", internal.ErrConversion, path)
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", internal.ErrConversion, path, err)
	}
	return text, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
