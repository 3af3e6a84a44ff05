// Package ocr turns uploaded files into text. TextEngine reads files that
// already carry text; RemoteEngine calls an external OCR service for scans.
package ocr

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNoText            = errors.New("no text could be extracted")
)

type Format string

const (
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatDOC     Format = "doc"
	FormatTXT     Format = "txt"
	FormatImage   Format = "image"
	FormatUnknown Format = ""
)

type File = models.File

// ProgressFunc receives completion percentages between 0 and 100.
type ProgressFunc func(percent int)

type Engine interface {
	Recognize(ctx context.Context, file File, progress ProgressFunc) (string, error)
}

// DetectFormat classifies a file by extension, falling back to its content type.
func DetectFormat(name, contentType string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".doc":
		return FormatDOC
	case ".txt":
		return FormatTXT
	case ".jpg", ".jpeg", ".png":
		return FormatImage
	}

	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case ct == "application/pdf":
		return FormatPDF
	case isDOCXContentType(ct):
		return FormatDOCX
	case ct == "application/msword":
		return FormatDOC
	case ct == "text/plain", ct == "text/txt", ct == "application/txt", ct == "application/x-txt":
		return FormatTXT
	case strings.HasPrefix(ct, "image/"):
		return FormatImage
	}
	return FormatUnknown
}

// ContentType returns the canonical MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatDOC:
		return "application/msword"
	case FormatTXT:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

func isDOCXContentType(contentType string) bool {
	switch contentType {
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.wordprocessingml",
		"application/docx",
		"application/x-docx":
		return true
	}
	return false
}

func report(progress ProgressFunc, percent int) {
	if progress != nil {
		progress(percent)
	}
}
