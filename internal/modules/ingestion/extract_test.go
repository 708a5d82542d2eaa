package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/repos/testutil"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestExtractReadsTextDocument(t *testing.T) {
	storage := &fakeStorage{files: map[string][]byte{
		"documents/d1/notes.txt": []byte("Plain   text\n\nwith   gaps"),
	}}
	deps := ExtractDeps{Log: testutil.Logger(t), Storage: storage}

	text, err := Extract(context.Background(), deps, ExtractInput{
		DocumentID:  uuid.New(),
		StoragePath: "documents/d1/notes.txt",
		Filename:    "notes.txt",
		MimeType:    "text/plain",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(text, "Plain text") {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractRoutesImagesThroughVision(t *testing.T) {
	storage := &fakeStorage{files: map[string][]byte{
		"documents/d1/diagram.png": pngHeader,
	}}
	vision := &fakeVision{text: "A diagram of the TCP handshake."}
	deps := ExtractDeps{Log: testutil.Logger(t), Storage: storage, Vision: vision}

	text, err := Extract(context.Background(), deps, ExtractInput{
		DocumentID:  uuid.New(),
		StoragePath: "documents/d1/diagram.png",
		Filename:    "diagram.png",
		MimeType:    "image/png",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != vision.text {
		t.Fatalf("text = %q, want vision output", text)
	}
}

func TestExtractBlankVisionDescriptionFails(t *testing.T) {
	storage := &fakeStorage{files: map[string][]byte{
		"documents/d1/diagram.png": pngHeader,
	}}
	vision := &fakeVision{text: "   \n\t  "}
	deps := ExtractDeps{Log: testutil.Logger(t), Storage: storage, Vision: vision}

	_, err := Extract(context.Background(), deps, ExtractInput{
		StoragePath: "documents/d1/diagram.png",
		Filename:    "diagram.png",
		MimeType:    "image/png",
	})
	if !errors.Is(err, apperr.ErrEmptyExtraction) {
		t.Fatalf("err = %v, want ErrEmptyExtraction", err)
	}
}

func TestExtractImageWithoutVisionFails(t *testing.T) {
	storage := &fakeStorage{files: map[string][]byte{
		"documents/d1/diagram.png": pngHeader,
	}}
	deps := ExtractDeps{Log: testutil.Logger(t), Storage: storage}

	_, err := Extract(context.Background(), deps, ExtractInput{
		StoragePath: "documents/d1/diagram.png",
		Filename:    "diagram.png",
		MimeType:    "image/png",
	})
	if err == nil {
		t.Fatal("expected error for image upload with no vision collaborator")
	}
}

func TestExtractMissingObjectFails(t *testing.T) {
	deps := ExtractDeps{Log: testutil.Logger(t), Storage: &fakeStorage{}}

	_, err := Extract(context.Background(), deps, ExtractInput{
		StoragePath: "documents/d1/gone.txt",
		Filename:    "gone.txt",
	})
	if err == nil {
		t.Fatal("expected error for missing object")
	}
}

func TestExtractEmptyContent(t *testing.T) {
	storage := &fakeStorage{files: map[string][]byte{
		"documents/d1/empty.txt": []byte("   \n\t  "),
	}}
	deps := ExtractDeps{Log: testutil.Logger(t), Storage: storage}

	_, err := Extract(context.Background(), deps, ExtractInput{
		StoragePath: "documents/d1/empty.txt",
		Filename:    "empty.txt",
		MimeType:    "text/plain",
	})
	if !errors.Is(err, apperr.ErrEmptyExtraction) {
		t.Fatalf("err = %v, want ErrEmptyExtraction", err)
	}
}
