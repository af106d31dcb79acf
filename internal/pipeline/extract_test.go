package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"routesheet/internal"
)

func TestSplitLines(t *testing.T) {
	lines := splitLines("Troop 123\r\n\r\n  Calumet  \n\n5 Youth Renewal\n")
	if len(lines) != 3 {
		t.Fatalf("len=%d: %v", len(lines), lines)
	}
	if lines[1] != "Calumet" {
		t.Fatalf("line=%q", lines[1])
	}
}

func TestIsReceiptFile(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.tiff", "e.bmp", "f.pdf"} {
		if !IsReceiptFile(name) {
			t.Fatalf("%s should be accepted", name)
		}
	}
	for _, name := range []string{"notes.txt", "sheet.xlsx", "receipt"} {
		if IsReceiptFile(name) {
			t.Fatalf("%s should be rejected", name)
		}
	}
}

func TestExtractTextUndecodableImage(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewExtractService(&scriptedEngine{}, NormalizeOptions{})
	_, err := svc.ExtractText(context.Background(), path)
	if !errors.Is(err, internal.ErrLoad) {
		t.Fatalf("err=%v", err)
	}
}

func TestExtractTextUnconvertiblePDF(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "broken.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 truncated"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewExtractService(&scriptedEngine{}, NormalizeOptions{})
	_, err := svc.ExtractText(context.Background(), path)
	if !errors.Is(err, internal.ErrConversion) {
		t.Fatalf("err=%v", err)
	}
}
