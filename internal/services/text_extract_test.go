package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
)

func TestResolveMIME(t *testing.T) {
	cases := []struct {
		name     string
		supplied string
		filename string
		want     string
	}{
		{"supplied wins", "text/markdown", "notes.txt", "text/markdown"},
		{"supplied normalized", "  Text/Plain ", "notes.bin", "text/plain"},
		{"octet-stream defers to extension", "application/octet-stream", "page.html", "text/html"},
		{"extension fallback", "", "report.pdf", "application/pdf"},
		{"no signal", "", "mystery", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveMIME(tc.supplied, tc.filename); got != tc.want {
				t.Fatalf("ResolveMIME(%q, %q) = %q, want %q", tc.supplied, tc.filename, got, tc.want)
			}
		})
	}
}

func TestIsImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0}
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	if !IsImage("image/png", nil) {
		t.Fatal("mime image/png not detected")
	}
	if !IsImage("", png) {
		t.Fatal("png magic bytes not detected")
	}
	if !IsImage("", jpeg) {
		t.Fatal("jpeg magic bytes not detected")
	}
	if !IsImage("", []byte("GIF89a....")) {
		t.Fatal("gif magic bytes not detected")
	}
	if IsImage("text/plain", []byte("just words")) {
		t.Fatal("plain text misdetected as image")
	}
}

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText("notes.txt", "text/plain", []byte("line  one\n\nline\ttwo"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "line one line two" {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractTextHTMLStripsMarkup(t *testing.T) {
	html := `<!DOCTYPE html><html><head><title>t</title></head>` +
		`<body><h1>Routing</h1><p>Packets&nbsp;move between networks.</p></body></html>`
	text, err := ExtractText("page.html", "text/html", []byte(html))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if strings.Contains(text, "<") {
		t.Fatalf("markup survived: %q", text)
	}
	if !strings.Contains(text, "Packets move between networks.") {
		t.Fatalf("entity not decoded: %q", text)
	}
}

func TestExtractTextSniffsHTMLWithoutExtension(t *testing.T) {
	html := `<html><body>sniffed body</body></html>`
	text, err := ExtractText("download", "", []byte(html))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "sniffed body") || strings.Contains(text, "<") {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractTextEmptyFile(t *testing.T) {
	_, err := ExtractText("empty.txt", "text/plain", nil)
	if !errors.Is(err, apperr.ErrEmptyExtraction) {
		t.Fatalf("err = %v, want ErrEmptyExtraction", err)
	}
}

func TestExtractTextWhitespaceOnly(t *testing.T) {
	_, err := ExtractText("blank.txt", "text/plain", []byte("  \n\t\n  "))
	if !errors.Is(err, apperr.ErrEmptyExtraction) {
		t.Fatalf("err = %v, want ErrEmptyExtraction", err)
	}
}

func TestExtractTextBinaryGarbage(t *testing.T) {
	data := make([]byte, 64)
	// NUL runs fail the text heuristic and leave nothing printable.
	_, err := ExtractText("blob.bin", "", data)
	if !errors.Is(err, apperr.ErrEmptyExtraction) {
		t.Fatalf("err = %v, want ErrEmptyExtraction", err)
	}
}
