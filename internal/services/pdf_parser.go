package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNoTextLayer = errors.New("no text content found in PDF")

type PDFContent struct {
	Text      string
	PageCount int
}

// PDFTextExtractor reads the text layer of a stored PDF.
type PDFTextExtractor interface {
	Extract(filePath string) (*PDFContent, error)
}

type pdfTextExtractor struct{}

func NewPDFTextExtractor() PDFTextExtractor {
	return &pdfTextExtractor{}
}

func (p *pdfTextExtractor) Extract(filePath string) (*PDFContent, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("failed to stat PDF: %w", err)
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Unreadable pages are skipped.
			continue
		}

		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}

	content := &PDFContent{Text: strings.TrimSpace(b.String()), PageCount: totalPage}
	if content.Text == "" {
		return content, ErrNoTextLayer
	}
	return content, nil
}
