package service

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat marks a MIME type the extractor cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoTextContent marks a file that parsed fine but yielded no text.
	// Indexing treats it as a per-file skip, not a failure of the batch.
	ErrNoTextContent = errors.New("no text content")
)

const (
	mimeTextPlain = "text/plain"
	mimeTextTxt   = "text/txt"
	mimePDF       = "application/pdf"
	mimeDoc       = "application/msword"
	mimeDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// sanitizeUTF8 drops invalid byte sequences so extracted text is safe to
// store in Postgres.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}

// ExtractorService pulls plain text out of uploaded study materials.
type ExtractorService struct {
	logger *zap.Logger
}

func NewExtractorService(logger *zap.Logger) *ExtractorService {
	return &ExtractorService{logger: logger}
}

// Extract dispatches on the declared MIME type and returns the file's text.
func (s *ExtractorService) Extract(data []byte, mimeType string) (string, error) {
	var (
		text string
		err  error
	)

	switch mimeType {
	case mimeTextPlain, mimeTextTxt:
		text = sanitizeUTF8(string(data))
	case mimePDF:
		text, err = s.extractPDF(data)
	case mimeDoc, mimeDocx:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrNoTextContent
	}

	return text, nil
}

func (s *ExtractorService) extractPDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var builder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract PDF page",
				zap.Int("page", i),
				zap.Error(err),
			)
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}

	return sanitizeUTF8(builder.String()), nil
}

// extractDOCX reads word/document.xml from the zip container and gathers the
// <w:t> text runs. Paragraph boundaries become newlines.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a valid document container: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("document container is missing word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open word/document.xml: %w", err)
	}
	defer rc.Close()

	var builder strings.Builder
	decoder := xml.NewDecoder(rc)
	inTextRun := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse word/document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inTextRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inTextRun = false
			case "p":
				builder.WriteString("\n")
			}
		case xml.CharData:
			if inTextRun {
				builder.Write(t)
			}
		}
	}

	return sanitizeUTF8(builder.String()), nil
}
