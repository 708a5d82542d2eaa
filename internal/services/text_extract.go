package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
)

// ResolveMIME picks the effective MIME type for an upload: the supplied one
// when present, else the filename extension, else empty (caller sniffs bytes).
func ResolveMIME(supplied string, filename string) string {
	mt := strings.ToLower(strings.TrimSpace(supplied))
	if mt != "" && mt != "application/octet-stream" {
		return mt
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return strings.ToLower(strings.Split(byExt, ";")[0])
		}
	}
	return mt
}

// IsImage reports whether the upload should be routed through the
// image-to-text collaborator instead of a document parser.
func IsImage(mimeType string, data []byte) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/") {
		return true
	}
	if len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}) {
		return true
	}
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return true
	}
	if len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))) {
		return true
	}
	return len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
}

// ExtractText sniffs the true file type from bytes first, then extracts text
// accordingly. Supported: PDF, DOCX, XLSX, HTML, plaintext; anything else
// falls back to a raw text decode. Returns ErrEmptyExtraction when the
// result is empty or whitespace-only.
func ExtractText(filename string, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file %s", apperr.ErrEmptyExtraction, filename)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	mt := strings.ToLower(strings.TrimSpace(mimeType))

	var (
		text string
		err  error
	)
	switch {
	case isPDF(data):
		text, err = extractPDF(data)
	case isZip(data):
		text, err = extractOpenXML(data, filename, mt)
	case looksLikeHTML(data) || mt == "text/html" || ext == ".html" || ext == ".htm":
		text = extractHTML(string(data))
	case strings.HasPrefix(mt, "text/") || ext == ".txt" || ext == ".md" || ext == ".markdown" || isProbablyText(data):
		text = collapseWhitespace(string(data))
	default:
		// Unknown binary: last-ditch raw decode; the emptiness check below
		// rejects anything unusable.
		text = collapseWhitespace(printableRunes(data))
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text in %s (mime=%s)", apperr.ErrEmptyExtraction, filename, mt)
	}
	return text, nil
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func looksLikeHTML(b []byte) bool {
	s := strings.ToLower(string(b[:minInt(len(b), 2048)]))
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		return true
	}
	return strings.Contains(s, "<html") && strings.Contains(s, "</html>")
}

func isProbablyText(b []byte) bool {
	sample := b[:minInt(len(b), 4096)]
	good := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			good++
		}
	}
	return float64(good)/float64(len(sample)) > 0.9
}

func printableRunes(b []byte) string {
	var out strings.Builder
	for _, r := range string(b) {
		if r == '\n' || r == '\t' || (r >= 0x20 && r != 0xFFFD) {
			out.WriteRune(r)
		} else {
			out.WriteRune(' ')
		}
	}
	return out.String()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ------------------------
// Extractors
// ------------------------

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return collapseWhitespace(string(b)), nil
}

func extractOpenXML(zipBytes []byte, filename, mimeType string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return "", fmt.Errorf("openxml container: %w", err)
	}
	hasWord, hasSheet := false, false
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			hasWord = true
		}
		if strings.HasPrefix(f.Name, "xl/") {
			hasSheet = true
		}
	}
	switch {
	case hasWord:
		return extractDOCX(zr)
	case hasSheet:
		return extractXLSX(zr)
	default:
		return "", fmt.Errorf("unsupported zip container: name=%s mime=%s", filename, mimeType)
	}
}

// extractDOCX gathers <w:t> runs from word/document.xml.
func extractDOCX(zr *zip.Reader) (string, error) {
	f := findZipFile(zr, "word/document.xml")
	if f == nil {
		return "", fmt.Errorf("docx missing word/document.xml")
	}
	b, err := readZipFile(f)
	if err != nil {
		return "", err
	}
	return collapseWhitespace(xmlElementText(b, "t")), nil
}

// extractXLSX gathers shared strings plus inline cell strings across sheets.
func extractXLSX(zr *zip.Reader) (string, error) {
	var out strings.Builder
	if f := findZipFile(zr, "xl/sharedStrings.xml"); f != nil {
		if b, err := readZipFile(f); err == nil {
			out.WriteString(xmlElementText(b, "t"))
			out.WriteString("\n")
		}
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/") && strings.HasSuffix(f.Name, ".xml") {
			b, err := readZipFile(f)
			if err != nil {
				return "", err
			}
			out.WriteString(xmlElementText(b, "is"))
			out.WriteString("\n")
		}
	}
	return collapseWhitespace(out.String()), nil
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func xmlElementText(xmlBytes []byte, local string) string {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != local {
			continue
		}
		var v string
		_ = dec.DecodeElement(&v, &se)
		if v != "" {
			out.WriteString(v)
			out.WriteString(" ")
		}
	}
	return out.String()
}

var htmlTagRe = regexp.MustCompile(`(?s)<[^>]*>`)

func extractHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return collapseWhitespace(s)
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
