// Package document turns uploaded files and web pages into plain text for
// analysis.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// Document types.
const (
	TypePDF  = "pdf"
	TypeDOCX = "docx"
	TypeTXT  = "txt"
	TypeWeb  = "web-scraping"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDOC  = "application/msword"
	mimeText = "text/plain"
)

// AllowedUploadTypes are the MIME types accepted for upload.
var AllowedUploadTypes = []string{mimePDF, mimeDOCX, mimeDOC, mimeText}

var (
	// ErrEmptyDocument is returned when a file has no bytes.
	ErrEmptyDocument = errors.New("el documento está vacío")
	// ErrUnsupportedType is returned for binary files that are not PDF or DOCX.
	ErrUnsupportedType = errors.New("tipo de archivo no soportado")
)

// Document is extracted text plus what is known about its source.
type Document struct {
	Content  string                   `json:"content"`
	Metadata storage.DocumentMetadata `json:"metadata"`
}

// DetectType sniffs the content type of data, using the file extension
// when sniffing is inconclusive.
func DetectType(name string, data []byte) string {
	m := mimetype.Detect(data)
	switch {
	case m.Is(mimePDF):
		return TypePDF
	case m.Is(mimeDOCX):
		return TypeDOCX
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return TypePDF
	case ".docx", ".doc":
		if m.Is("application/zip") || m.Is(mimeDOC) || m.Is("application/x-ole-storage") {
			return TypeDOCX
		}
	}

	for p := m; p != nil; p = p.Parent() {
		if p.Is(mimeText) {
			return TypeTXT
		}
	}
	if utf8.Valid(data) {
		return TypeTXT
	}
	return ""
}

// IsAllowedUpload reports whether a declared upload MIME type is accepted.
// Parameters such as charset are ignored.
func IsAllowedUpload(contentType string) bool {
	base, _, _ := strings.Cut(contentType, ";")
	base = strings.TrimSpace(strings.ToLower(base))
	for _, t := range AllowedUploadTypes {
		if base == t {
			return true
		}
	}
	return false
}

// Extract reads the text out of an uploaded file.
func Extract(name string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	var (
		doc *Document
		err error
	)
	switch DetectType(name, data) {
	case TypePDF:
		doc, err = extractPDF(data)
	case TypeDOCX:
		doc, err = extractDOCX(data)
	case TypeTXT:
		doc = extractText(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimetype.Detect(data).String())
	}
	if err != nil {
		return nil, err
	}

	doc.Metadata.OriginalName = name
	doc.Metadata.Size = int64(len(data))
	return doc, nil
}

func extractPDF(data []byte) (*Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error procesando PDF: %w", err)
	}

	text, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("error procesando PDF: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(text); err != nil {
		return nil, fmt.Errorf("error procesando PDF: %w", err)
	}

	return &Document{
		Content: buf.String(),
		Metadata: storage.DocumentMetadata{
			Type:  TypePDF,
			Pages: r.NumPage(),
		},
	}, nil
}

func extractText(data []byte) *Document {
	content := string(data)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "�")
	}
	return &Document{
		Content:  content,
		Metadata: storage.DocumentMetadata{Type: TypeTXT},
	}
}
