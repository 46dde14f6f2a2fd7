// Package pdftext adapts a PDF library to the PageSource port: per-page
// plain text, lowercased, with a size gate for files the identification
// step should not even try to decode.
package pdftext

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dslipak/pdf"

	"faturas/internal/domain"
)

type reader struct {
	maxFileSize int64
}

// NewReader creates a PageSource that rejects files larger than maxFileSize
// bytes with domain.ErrFileTooLarge.
func NewReader(maxFileSize int64) *reader {
	return &reader{maxFileSize: maxFileSize}
}

func (r *reader) Extract(ctx context.Context, path string) (*domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() >= r.maxFileSize {
		return nil, fmt.Errorf("%s (%d bytes): %w", path, info.Size(), domain.ErrFileTooLarge)
	}

	doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	pages := make([]string, 0, doc.NumPage())
	for n := 1; n <= doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Page(n).GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d of %s: %w", n, path, err)
		}
		pages = append(pages, strings.ToLower(text))
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s: document has no pages", path)
	}
	return &domain.Document{Path: path, Pages: pages}, nil
}
