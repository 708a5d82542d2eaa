package ingestion

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
	"github.com/pathwise/pathwise-backend/internal/repos"
	"github.com/pathwise/pathwise-backend/internal/repos/testutil"
)

func extractedNetworking() []ai.ExtractedConcept {
	return []ai.ExtractedConcept{
		{
			Name:        "IP Addressing",
			Description: "How hosts are identified on a network.",
			Relationships: []ai.ExtractedRelationship{
				{TargetName: "Subnetting", Type: "NEXT_STEP"},
			},
		},
		{
			Name:        "Subnetting",
			Description: "Dividing an address space into networks.",
			Relationships: []ai.ExtractedRelationship{
				{TargetName: "ip addressing", Type: "depends_on"},
				{TargetName: "BGP", Type: "DEPENDS_ON"},       // not extracted
				{TargetName: "Subnetting", Type: "RELATED_TO"}, // self-edge
			},
		},
		{
			Name: "Routing",
			Relationships: []ai.ExtractedRelationship{
				{TargetName: "Subnetting", Type: "IS_COUSIN_OF"},
			},
		},
	}
}

func TestPersistWritesGraphSummaryAndQuiz(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	g := newFakeGraph()
	deps := PersistDeps{
		DB:        db,
		Log:       log,
		Graph:     g,
		Summaries: repos.NewDocumentSummaryRepo(db, log),
		Quizzes:   repos.NewQuizRepo(db, log),
	}

	documentID := uuid.New()
	in := PersistInput{
		DocumentID: documentID,
		Analysis: AnalyzeOutput{
			Concepts: extractedNetworking(),
			Analysis: ai.DocumentAnalysis{
				Overview:   "An introduction to IP networking.",
				KeyPoints:  []string{"addressing", "subnet masks"},
				TopicArea:  "Networking",
				Difficulty: "beginner",
			},
			Questions: []ai.QuizQuestionDraft{
				{Text: "What does CIDR stand for?", Options: []ai.QuizOptionDraft{{Label: "A", Text: "Classless Inter-Domain Routing", IsCorrect: true}}},
				{Text: "How many bits in an IPv4 address?", Options: []ai.QuizOptionDraft{{Label: "A", Text: "32", IsCorrect: true}}},
			},
		},
	}

	out, err := Persist(context.Background(), deps, in)
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if out.ConceptCount != 3 {
		t.Fatalf("ConceptCount = %d, want 3", out.ConceptCount)
	}
	if len(g.concepts) != 3 {
		t.Fatalf("saved %d concepts, want 3", len(g.concepts))
	}
	if got := len(g.links[documentID.String()]); got != 3 {
		t.Fatalf("linked %d concepts to document, want 3", got)
	}

	// Only the two well-formed cross-concept relationships survive.
	if len(g.relations) != 2 {
		t.Fatalf("got %d relations, want 2: %+v", len(g.relations), g.relations)
	}
	types := map[string]int{}
	for _, e := range g.relations {
		types[e.Type]++
		if e.FromID == e.ToID {
			t.Fatalf("self-edge persisted: %+v", e)
		}
	}
	if types[graph.RelNextStep] != 1 || types[graph.RelDependsOn] != 1 {
		t.Fatalf("unexpected relation types: %v", types)
	}

	summary, err := deps.Summaries.GetByDocumentID(context.Background(), nil, documentID)
	if err != nil {
		t.Fatalf("GetByDocumentID: %v", err)
	}
	if summary.TopicArea != "Networking" || summary.Overview == "" {
		t.Fatalf("summary not persisted correctly: %+v", summary)
	}

	quiz, questions, err := deps.Quizzes.GetByDocumentID(context.Background(), nil, documentID)
	if err != nil {
		t.Fatalf("quiz GetByDocumentID: %v", err)
	}
	if quiz.Title != "Networking quiz" {
		t.Fatalf("quiz title = %q", quiz.Title)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if questions[0].SortIndex != 0 || questions[1].SortIndex != 1 {
		t.Fatalf("questions out of order: %d, %d", questions[0].SortIndex, questions[1].SortIndex)
	}
	if questions[0].Type != "multiple_choice" {
		t.Fatalf("question type defaulted to %q", questions[0].Type)
	}
}

func TestPersistCollectsUnmatchedRelations(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	deps := PersistDeps{
		DB:        db,
		Log:       log,
		Graph:     newFakeGraph(),
		Summaries: repos.NewDocumentSummaryRepo(db, log),
		Quizzes:   repos.NewQuizRepo(db, log),
	}

	out, err := Persist(context.Background(), deps, PersistInput{
		DocumentID: uuid.New(),
		Analysis:   AnalyzeOutput{Concepts: extractedNetworking()},
	})
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	// "BGP" never reconciles; "Subnetting" is reported once for the bad
	// relation type. The self-edge is dropped silently.
	if len(out.UnmatchedRelations) != 2 {
		t.Fatalf("UnmatchedRelations = %v, want 2 entries", out.UnmatchedRelations)
	}
}

func TestPersistIsIdempotentForQuiz(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	deps := PersistDeps{
		DB:        db,
		Log:       log,
		Graph:     newFakeGraph(),
		Summaries: repos.NewDocumentSummaryRepo(db, log),
		Quizzes:   repos.NewQuizRepo(db, log),
	}

	documentID := uuid.New()
	in := PersistInput{
		DocumentID: documentID,
		Analysis: AnalyzeOutput{
			Analysis:  ai.DocumentAnalysis{Overview: "first pass"},
			Questions: []ai.QuizQuestionDraft{{Text: "Q1"}, {Text: "Q2"}, {Text: "Q3"}},
		},
	}
	if _, err := Persist(context.Background(), deps, in); err != nil {
		t.Fatalf("first Persist: %v", err)
	}
	in.Analysis.Analysis.Overview = "second pass"
	in.Analysis.Questions = in.Analysis.Questions[:2]
	if _, err := Persist(context.Background(), deps, in); err != nil {
		t.Fatalf("second Persist: %v", err)
	}

	summary, err := deps.Summaries.GetByDocumentID(context.Background(), nil, documentID)
	if err != nil {
		t.Fatalf("GetByDocumentID: %v", err)
	}
	if summary.Overview != "second pass" {
		t.Fatalf("summary overview = %q, want overwrite", summary.Overview)
	}

	quiz, questions, err := deps.Quizzes.GetByDocumentID(context.Background(), nil, documentID)
	if err != nil {
		t.Fatalf("quiz GetByDocumentID: %v", err)
	}
	if quiz.Title != "Document quiz" {
		t.Fatalf("quiz title = %q", quiz.Title)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions after replace, want 2", len(questions))
	}
}
