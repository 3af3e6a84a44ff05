package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

func extractPDF(ctx context.Context, data []byte, progress ProgressFunc) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := pdfReader.Page(i)
		if !page.V.IsNull() {
			// Unreadable pages are skipped; the rest of the document still counts.
			if text, err := page.GetPlainText(nil); err == nil {
				textBuilder.WriteString(text)
				textBuilder.WriteString("\n")
			}
		}

		report(progress, i*100/numPages)
	}

	extracted := strings.TrimSpace(textBuilder.String())
	if extracted == "" {
		return "", fmt.Errorf("pdf: %w", ErrNoText)
	}

	return extracted, nil
}
