// Package extract turns uploaded documents into raw text for the generation
// flow. Supported inputs are PDF, Word (docx) and plain text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"intelliq/internal/apperr"
)

// SaveTemp writes uploaded bytes to a uniquely named file in the OS temp
// directory and returns its path.
func SaveTemp(data []byte, filename string) (string, error) {
	tempFile := filepath.Join(os.TempDir(), uuid.New().String()+"_"+filepath.Base(filename))
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save temporary file: %w", err)
	}
	return tempFile, nil
}

// Text extracts raw text from the file at path according to its declared MIME
// type. The file is removed exactly once before Text returns, whether
// extraction succeeds or fails.
func Text(path, mimeType string) (string, error) {
	defer os.Remove(path)

	mt := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mt, "pdf"):
		return pdfText(path)
	case strings.Contains(mt, "word") || strings.HasSuffix(strings.ToLower(path), ".docx"):
		return docxText(path)
	case strings.Contains(mt, "text") || strings.HasSuffix(strings.ToLower(path), ".txt"):
		return plainText(path)
	default:
		return "", apperr.New(apperr.UnsupportedType, "Unsupported file type")
	}
}

func pdfText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", apperr.Wrap(apperr.Extraction, "PDF extraction failed", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", apperr.Wrap(apperr.Extraction, "PDF extraction failed", err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		// Typical for scanned or image-only PDFs.
		return "", apperr.New(apperr.Extraction, "Unable to extract text from PDF (it may be scanned or image-based)")
	}
	return text, nil
}

func docxText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperr.Wrap(apperr.Extraction, "Word extraction failed", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", apperr.Wrap(apperr.Extraction, "Word extraction failed", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", apperr.Wrap(apperr.Extraction, "Word extraction failed", err)
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch block := item.(type) {
		case *docx.Paragraph:
			sb.WriteString(block.String())
			sb.WriteString("\n")
		case *docx.Table:
			sb.WriteString(block.String())
			sb.WriteString("\n")
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", apperr.New(apperr.Extraction, "No readable text found in Word document")
	}
	return text, nil
}

func plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.Wrap(apperr.Extraction, "Failed to read text file", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", apperr.New(apperr.Extraction, "Text file is empty")
	}
	return text, nil
}
