package ocr

import (
	"context"
	"fmt"
)

// TextEngine reads text straight out of PDF, DOCX and plain-text files.
// Images and legacy .doc files return ErrUnsupportedFormat.
type TextEngine struct{}

func NewTextEngine() *TextEngine {
	return &TextEngine{}
}

func (e *TextEngine) Recognize(ctx context.Context, file File, progress ProgressFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	report(progress, 0)

	var (
		text string
		err  error
	)
	switch format := DetectFormat(file.Name, file.ContentType); format {
	case FormatPDF:
		text, err = extractPDF(ctx, file.Data, progress)
	case FormatDOCX:
		text, err = extractDOCX(ctx, file.Data, progress)
	case FormatTXT:
		text, err = extractTXT(file.Data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, file.Name)
	}
	if err != nil {
		return "", err
	}

	report(progress, 100)
	return text, nil
}
