package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/repos/testutil"
)

func TestAnalyzeFansOutAllThreeCalls(t *testing.T) {
	deps := AnalyzeDeps{
		Log:       testutil.Logger(t),
		Extractor: &fakeExtractor{concepts: []ai.ExtractedConcept{{Name: "Goroutines"}}},
		Analyzer:  &fakeAnalyzer{analysis: ai.DocumentAnalysis{TopicArea: "Go"}},
		QuizGen:   &fakeQuizGen{drafts: []ai.QuizQuestionDraft{{Text: "What starts a goroutine?"}}},
	}

	out, err := Analyze(context.Background(), deps, "goroutines are lightweight threads")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(out.Concepts) != 1 || out.Concepts[0].Name != "Goroutines" {
		t.Fatalf("concepts = %+v", out.Concepts)
	}
	if out.Analysis.TopicArea != "Go" {
		t.Fatalf("analysis = %+v", out.Analysis)
	}
	if len(out.Questions) != 1 {
		t.Fatalf("questions = %+v", out.Questions)
	}
}

func TestAnalyzeFailsWhenAnyCallFails(t *testing.T) {
	boom := errors.New("model unavailable")
	cases := []struct {
		name string
		deps AnalyzeDeps
	}{
		{"extractor", AnalyzeDeps{Extractor: &fakeExtractor{err: boom}, Analyzer: &fakeAnalyzer{}, QuizGen: &fakeQuizGen{}}},
		{"analyzer", AnalyzeDeps{Extractor: &fakeExtractor{}, Analyzer: &fakeAnalyzer{err: boom}, QuizGen: &fakeQuizGen{}}},
		{"quiz generator", AnalyzeDeps{Extractor: &fakeExtractor{}, Analyzer: &fakeAnalyzer{}, QuizGen: &fakeQuizGen{err: boom}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.deps.Log = testutil.Logger(t)
			_, err := Analyze(context.Background(), tc.deps, "some text")
			if !errors.Is(err, boom) {
				t.Fatalf("Analyze err = %v, want wrapped %v", err, boom)
			}
		})
	}
}

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	short := "hello"
	if got := Truncate(short, 100); got != short {
		t.Fatalf("Truncate(short) = %q", got)
	}

	long := strings.Repeat("héllo wörld ", 2000)
	got := Truncate(long, MaxAnalysisChars)
	if len(got) > len(long) {
		t.Fatalf("truncated text longer than input")
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a multi-byte rune")
	}
	if utf8.RuneCountInString(got) > MaxAnalysisChars {
		t.Fatalf("got %d runes, want at most %d", utf8.RuneCountInString(got), MaxAnalysisChars)
	}
}
