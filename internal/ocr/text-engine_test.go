package ocr

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(docxDocumentPath)
	require.NoError(t, err)
	_, err = w.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

type progressLog struct {
	values []int
}

func (p *progressLog) record(percent int) {
	p.values = append(p.values, percent)
}

func TestTextEngineDOCX(t *testing.T) {
	data := buildDOCX(t, "Certificate of Formation", "EIN: 12-3456789", "Filed in Delaware")
	progress := &progressLog{}

	text, err := NewTextEngine().Recognize(context.Background(), File{Name: "formation.docx", Data: data}, progress.record)
	require.NoError(t, err)

	assert.Equal(t, "Certificate of Formation\nEIN: 12-3456789\nFiled in Delaware", text)
	assert.Equal(t, []int{0, 33, 66, 100, 100}, progress.values)
}

func TestTextEngineDOCXWithoutText(t *testing.T) {
	data := buildDOCX(t)

	_, err := NewTextEngine().Recognize(context.Background(), File{Name: "empty.docx", Data: data}, nil)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestTextEngineDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = NewTextEngine().Recognize(context.Background(), File{Name: "broken.docx", Data: buf.Bytes()}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document.xml not found")
}

func TestTextEngineTXT(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"utf8 with blank lines", []byte("Legal Name: Acme\r\n\r\n  EIN 12-3456789  \n"), "Legal Name: Acme\nEIN 12-3456789"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...), "hello"},
		{"utf16 little endian", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi"},
		{"utf16 big endian", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi"},
		{"windows-1252", []byte{'c', 'a', 'f', 0xE9}, "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := NewTextEngine().Recognize(context.Background(), File{Name: "notes.txt", Data: tt.data}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestTextEngineEmptyTXT(t *testing.T) {
	_, err := NewTextEngine().Recognize(context.Background(), File{Name: "empty.txt"}, nil)
	assert.ErrorIs(t, err, ErrNoText)

	_, err = NewTextEngine().Recognize(context.Background(), File{Name: "blank.txt", Data: []byte(" \n\n ")}, nil)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestTextEngineInvalidPDF(t *testing.T) {
	_, err := NewTextEngine().Recognize(context.Background(), File{Name: "scan.pdf", Data: []byte("not a pdf")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create PDF reader")
}

func TestTextEngineUnsupportedFormats(t *testing.T) {
	for _, name := range []string{"passport.jpg", "license.PNG", "legacy.doc", "archive.zip"} {
		_, err := NewTextEngine().Recognize(context.Background(), File{Name: name, Data: []byte{1, 2, 3}}, nil)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestTextEngineHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTextEngine().Recognize(ctx, File{Name: "notes.txt", Data: []byte("hello")}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        Format
	}{
		{"a.PDF", "", FormatPDF},
		{"a.docx", "", FormatDOCX},
		{"a.doc", "", FormatDOC},
		{"a.txt", "", FormatTXT},
		{"a.jpeg", "", FormatImage},
		{"upload", "application/pdf", FormatPDF},
		{"upload", "application/x-docx", FormatDOCX},
		{"upload", "text/plain; charset=utf-8", FormatTXT},
		{"upload", "image/png", FormatImage},
		{"upload", "application/zip", FormatUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.name, tt.contentType), tt.name+" "+tt.contentType)
	}
}
