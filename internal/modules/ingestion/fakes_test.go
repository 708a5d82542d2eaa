package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
)

type fakeGraph struct {
	mu        sync.Mutex
	concepts  map[string]graph.Concept
	relations []graph.Edge
	links     map[string][]string // documentID -> concept ids
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{concepts: map[string]graph.Concept{}, links: map[string][]string{}}
}

func (f *fakeGraph) SaveConcept(ctx context.Context, c graph.Concept) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.concepts[c.ID] = c
	return nil
}

func (f *fakeGraph) SaveConcepts(ctx context.Context, concepts []graph.Concept) error {
	for _, c := range concepts {
		if err := f.SaveConcept(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeGraph) FindConceptByID(ctx context.Context, id string) (*graph.Concept, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.concepts[id]
	if !ok {
		return nil, fmt.Errorf("concept %s not found", id)
	}
	return &c, nil
}

func (f *fakeGraph) AddRelation(ctx context.Context, fromID, toID, relType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relations = append(f.relations, graph.Edge{FromID: fromID, ToID: toID, Type: relType})
	return nil
}

func (f *fakeGraph) AddSubConceptRelation(ctx context.Context, parentID, childID string) error {
	return f.AddRelation(ctx, parentID, childID, graph.RelHasSubconcept)
}

func (f *fakeGraph) LinkDocument(ctx context.Context, documentID uuid.UUID, conceptID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := documentID.String()
	f.links[key] = append(f.links[key], conceptID)
	return nil
}

func (f *fakeGraph) GetGraphByDocumentID(ctx context.Context, documentID uuid.UUID) (*graph.DocumentGraph, error) {
	return &graph.DocumentGraph{}, nil
}

type fakeExtractor struct {
	concepts []ai.ExtractedConcept
	err      error
}

func (f *fakeExtractor) ExtractConcepts(ctx context.Context, text string) ([]ai.ExtractedConcept, error) {
	return f.concepts, f.err
}

type fakeAnalyzer struct {
	analysis ai.DocumentAnalysis
	err      error
}

func (f *fakeAnalyzer) AnalyzeDocument(ctx context.Context, text string) (ai.DocumentAnalysis, error) {
	return f.analysis, f.err
}

type fakeQuizGen struct {
	drafts []ai.QuizQuestionDraft
	err    error
}

func (f *fakeQuizGen) GenerateQuiz(ctx context.Context, text string, conceptNames []string, opts ai.QuizOptions) ([]ai.QuizQuestionDraft, error) {
	return f.drafts, f.err
}

type fakeVision struct {
	text string
	err  error
}

func (f *fakeVision) DescribeImage(ctx context.Context, imageURL string) (string, error) {
	return f.text, f.err
}

// fakeStorage serves a fixed byte blob for any key it holds.
type fakeStorage struct {
	files map[string][]byte
}

func (f *fakeStorage) UploadFile(ctx context.Context, key string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	f.files[key] = data
	return nil
}

func (f *fakeStorage) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("object %s does not exist", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) DeleteFile(ctx context.Context, key string) error {
	delete(f.files, key)
	return nil
}

func (f *fakeStorage) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range f.files {
		keys = append(keys, k)
	}
	return keys, nil
}
