package ingestion

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

// MaxAnalysisChars bounds the text sent to the AI collaborators to keep cost
// and latency predictable.
const MaxAnalysisChars = 15000

type AnalyzeDeps struct {
	Log       *logger.Logger
	Extractor ai.ConceptExtractor
	Analyzer  ai.DocumentAnalyzer
	QuizGen   ai.QuizGenerator
}

type AnalyzeOutput struct {
	Concepts  []ai.ExtractedConcept
	Analysis  ai.DocumentAnalysis
	Questions []ai.QuizQuestionDraft
}

// Analyze fans out the three document AI calls concurrently. All three must
// succeed; there is no partial-success path here, unlike resource discovery.
func Analyze(ctx context.Context, deps AnalyzeDeps, text string) (AnalyzeOutput, error) {
	out := AnalyzeOutput{}
	if deps.Extractor == nil || deps.Analyzer == nil || deps.QuizGen == nil {
		return out, fmt.Errorf("analyze: missing AI collaborators")
	}

	text = Truncate(text, MaxAnalysisChars)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		concepts, err := deps.Extractor.ExtractConcepts(gctx, text)
		if err != nil {
			return fmt.Errorf("concept extraction: %w", err)
		}
		out.Concepts = concepts
		return nil
	})

	g.Go(func() error {
		analysis, err := deps.Analyzer.AnalyzeDocument(gctx, text)
		if err != nil {
			return fmt.Errorf("document analysis: %w", err)
		}
		out.Analysis = analysis
		return nil
	})

	g.Go(func() error {
		questions, err := deps.QuizGen.GenerateQuiz(gctx, text, nil, ai.QuizOptions{QuestionCount: ai.DefaultQuizQuestionCount})
		if err != nil {
			return fmt.Errorf("quiz generation: %w", err)
		}
		out.Questions = questions
		return nil
	})

	if err := g.Wait(); err != nil {
		return AnalyzeOutput{}, err
	}
	return out, nil
}

func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	// Cut on a rune boundary.
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
