package roadmap

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
)

// fakeGraph records writes in memory; tests assert on what the code under
// test persisted.
type fakeGraph struct {
	mu        sync.Mutex
	concepts  map[string]graph.Concept
	relations []graph.Edge
	failSave  bool
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{concepts: map[string]graph.Concept{}}
}

func (f *fakeGraph) SaveConcept(ctx context.Context, c graph.Concept) error {
	if f.failSave {
		return fmt.Errorf("graph unavailable")
	}
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
	return f.AddRelation(ctx, documentID.String(), conceptID, graph.RelContains)
}

func (f *fakeGraph) GetGraphByDocumentID(ctx context.Context, documentID uuid.UUID) (*graph.DocumentGraph, error) {
	return &graph.DocumentGraph{}, nil
}

func (f *fakeGraph) relationsOfType(relType string) []graph.Edge {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []graph.Edge
	for _, r := range f.relations {
		if r.Type == relType {
			out = append(out, r)
		}
	}
	return out
}

type fakeExpander struct {
	subs []ai.SubConcept
	err  error
}

func (f *fakeExpander) ExpandConcept(ctx context.Context, name, description string, siblingNames []string, userCtx ai.UserContext) ([]ai.SubConcept, error) {
	return f.subs, f.err
}

type fakeTopics struct {
	result ai.TopicConcepts
	err    error
}

func (f *fakeTopics) GenerateConceptsFromTopic(ctx context.Context, topic string, userCtx ai.UserContext) (ai.TopicConcepts, error) {
	return f.result, f.err
}

type fakePlanner struct {
	path ai.LearningPath
	err  error
}

func (f *fakePlanner) GenerateLearningPath(ctx context.Context, concepts []ai.GeneratedConcept, relationships []ai.GeneratedRelationship, userCtx ai.UserContext) (ai.LearningPath, error) {
	return f.path, f.err
}

type fakeDiscoverer struct {
	candidates []ai.ResourceCandidate
	err        error
}

func (f *fakeDiscoverer) DiscoverResourcesForConcept(ctx context.Context, name, description string, opts ai.ResourceOptions) ([]ai.ResourceCandidate, error) {
	return f.candidates, f.err
}

type fakeQuizGen struct {
	drafts []ai.QuizQuestionDraft
	err    error
}

func (f *fakeQuizGen) GenerateQuiz(ctx context.Context, text string, conceptNames []string, opts ai.QuizOptions) ([]ai.QuizQuestionDraft, error) {
	return f.drafts, f.err
}
