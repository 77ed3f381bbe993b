package service

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func makeDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_PlainText(t *testing.T) {
	s := NewExtractorService(zap.NewNop())

	text, err := s.Extract([]byte("hola mundo"), "text/plain")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "hola mundo" {
		t.Errorf("unexpected text %q", text)
	}

	// text/txt is accepted as an alias
	if _, err := s.Extract([]byte("contenido"), "text/txt"); err != nil {
		t.Errorf("text/txt: %v", err)
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	s := NewExtractorService(zap.NewNop())

	_, err := s.Extract([]byte("data"), "image/png")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtract_WhitespaceOnlyIsNoContent(t *testing.T) {
	s := NewExtractorService(zap.NewNop())

	_, err := s.Extract([]byte("  \n\t  "), "text/plain")
	if !errors.Is(err, ErrNoTextContent) {
		t.Errorf("expected ErrNoTextContent, got %v", err)
	}
}

func TestExtract_Docx(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>La Revolución Francesa</w:t></w:r></w:p>
    <w:p><w:r><w:t>comenzó en 1789.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	s := NewExtractorService(zap.NewNop())
	data := makeDocx(t, doc)

	text, err := s.Extract(data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if !strings.Contains(text, "La Revolución Francesa") || !strings.Contains(text, "comenzó en 1789.") {
		t.Errorf("missing text runs in %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Error("expected paragraph boundary to become a newline")
	}
}

func TestExtract_DocxEmptyBody(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body></w:body>
</w:document>`

	s := NewExtractorService(zap.NewNop())
	_, err := s.Extract(makeDocx(t, doc), "application/msword")
	if !errors.Is(err, ErrNoTextContent) {
		t.Errorf("expected ErrNoTextContent, got %v", err)
	}
}

func TestExtract_DocxInvalidContainer(t *testing.T) {
	s := NewExtractorService(zap.NewNop())
	_, err := s.Extract([]byte("not a zip"), "application/msword")
	if err == nil || errors.Is(err, ErrNoTextContent) {
		t.Errorf("expected container error, got %v", err)
	}
}

func TestSanitizeUTF8(t *testing.T) {
	dirty := string([]byte{'h', 'o', 'l', 0xff, 'a'})
	if got := sanitizeUTF8(dirty); got != "hola" {
		t.Errorf("expected invalid byte dropped, got %q", got)
	}
	if got := sanitizeUTF8("límpio"); got != "límpio" {
		t.Errorf("valid UTF-8 must pass through, got %q", got)
	}
}
