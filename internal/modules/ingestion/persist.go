package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/repos"
)

type PersistDeps struct {
	DB        *gorm.DB
	Log       *logger.Logger
	Graph     graph.ConceptStore
	Summaries repos.DocumentSummaryRepo
	Quizzes   repos.QuizRepo
}

type PersistInput struct {
	DocumentID uuid.UUID
	Analysis   AnalyzeOutput
}

type PersistOutput struct {
	ConceptCount int
	// UnmatchedRelations lists relationship target names that did not
	// reconcile to an extracted concept and were therefore dropped.
	UnmatchedRelations []string
}

// Persist writes the concept subgraph, the summary, and the quiz. All writes
// are idempotent upserts so a redelivered job can safely re-run them.
func Persist(ctx context.Context, deps PersistDeps, in PersistInput) (PersistOutput, error) {
	out := PersistOutput{}
	if deps.Graph == nil || deps.Summaries == nil || deps.Quizzes == nil {
		return out, fmt.Errorf("persist: missing deps")
	}

	concepts, edges, unmatched := reconcileConcepts(in.DocumentID, in.Analysis.Concepts)
	out.ConceptCount = len(concepts)
	out.UnmatchedRelations = unmatched
	if len(unmatched) > 0 {
		deps.Log.Warn("Dropped relationships referencing unknown concept names",
			"document_id", in.DocumentID,
			"unmatched", unmatched,
		)
	}

	if err := deps.Graph.SaveConcepts(ctx, concepts); err != nil {
		return out, fmt.Errorf("save concepts: %w", err)
	}
	for _, c := range concepts {
		if err := deps.Graph.LinkDocument(ctx, in.DocumentID, c.ID); err != nil {
			return out, fmt.Errorf("link concept %s: %w", c.ID, err)
		}
	}
	for _, e := range edges {
		if err := deps.Graph.AddRelation(ctx, e.FromID, e.ToID, e.Type); err != nil {
			return out, fmt.Errorf("add relation %s->%s: %w", e.FromID, e.ToID, err)
		}
	}

	if err := persistSummary(ctx, deps, in.DocumentID, in.Analysis.Analysis); err != nil {
		return out, err
	}
	if err := persistQuiz(ctx, deps, in.DocumentID, in.Analysis); err != nil {
		return out, err
	}
	return out, nil
}

// reconcileConcepts mints ids for the extracted concepts and resolves
// name-referenced relationships into id edges. Names are matched trimmed and
// case-insensitively; relationships to unknown names are collected, not
// silently lost.
func reconcileConcepts(documentID uuid.UUID, extracted []ai.ExtractedConcept) ([]graph.Concept, []graph.Edge, []string) {
	concepts := make([]graph.Concept, 0, len(extracted))
	byName := make(map[string]string, len(extracted))
	for _, ec := range extracted {
		name := strings.TrimSpace(ec.Name)
		if name == "" {
			continue
		}
		c := graph.Concept{
			ID:          uuid.NewString(),
			Name:        name,
			Description: strings.TrimSpace(ec.Description),
			DocumentID:  documentID.String(),
		}
		concepts = append(concepts, c)
		byName[strings.ToLower(name)] = c.ID
	}

	var edges []graph.Edge
	var unmatched []string
	for i, ec := range extracted {
		name := strings.TrimSpace(ec.Name)
		if name == "" {
			continue
		}
		fromID := byName[strings.ToLower(name)]
		for _, rel := range extracted[i].Relationships {
			target := strings.TrimSpace(rel.TargetName)
			toID, ok := byName[strings.ToLower(target)]
			if !ok || toID == fromID {
				if target != "" && !ok {
					unmatched = append(unmatched, target)
				}
				continue
			}
			relType, ok := relationTypeFor(rel.Type)
			if !ok {
				unmatched = append(unmatched, target)
				continue
			}
			edges = append(edges, graph.Edge{FromID: fromID, ToID: toID, Type: relType})
		}
	}
	return concepts, edges, unmatched
}

func relationTypeFor(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case graph.RelDependsOn:
		return graph.RelDependsOn, true
	case graph.RelNextStep:
		return graph.RelNextStep, true
	case graph.RelRelatedTo:
		return graph.RelRelatedTo, true
	default:
		return "", false
	}
}

func persistSummary(ctx context.Context, deps PersistDeps, documentID uuid.UUID, analysis ai.DocumentAnalysis) error {
	keyPoints, err := json.Marshal(analysis.KeyPoints)
	if err != nil {
		return err
	}
	_, err = deps.Summaries.Upsert(ctx, nil, &types.DocumentSummary{
		DocumentID: documentID,
		Overview:   analysis.Overview,
		KeyPoints:  datatypes.JSON(keyPoints),
		TopicArea:  analysis.TopicArea,
		Difficulty: analysis.Difficulty,
	})
	if err != nil {
		return fmt.Errorf("persist summary: %w", err)
	}
	return nil
}

// persistQuiz replaces any quiz a prior delivery of the same job created, so
// redelivery never yields duplicate question sets.
func persistQuiz(ctx context.Context, deps PersistDeps, documentID uuid.UUID, analysis AnalyzeOutput) error {
	title := strings.TrimSpace(analysis.Analysis.TopicArea)
	if title == "" {
		title = "Document quiz"
	} else {
		title = title + " quiz"
	}

	quiz := &types.Quiz{DocumentID: &documentID, Title: title}
	questions := make([]*types.QuizQuestion, 0, len(analysis.Questions))
	for i, q := range analysis.Questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		qType := q.Type
		if qType == "" {
			qType = "multiple_choice"
		}
		questions = append(questions, &types.QuizQuestion{
			Type:        qType,
			Text:        q.Text,
			Options:     datatypes.JSON(opts),
			Explanation: q.Explanation,
			Difficulty:  q.Difficulty,
			SortIndex:   i,
		})
	}

	if _, err := deps.Quizzes.ReplaceForDocument(ctx, nil, quiz, questions); err != nil {
		return fmt.Errorf("persist quiz: %w", err)
	}
	return nil
}
