package roadmap

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/domain/roadmaps"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/repos"
	"github.com/pathwise/pathwise-backend/internal/repos/testutil"
)

func makeSteps(ids ...string) []types.RoadmapStep {
	steps := make([]types.RoadmapStep, 0, len(ids))
	for i, id := range ids {
		steps = append(steps, types.RoadmapStep{
			ConceptID:         id,
			ConceptName:       "Concept " + id,
			Order:             i + 1,
			EstimatedDuration: 30,
		})
	}
	return steps
}

func assertContiguous(t *testing.T, steps []types.RoadmapStep) {
	t.Helper()
	seen := map[int]bool{}
	for i, s := range steps {
		if s.Order != i+1 {
			t.Fatalf("step %d has order %d, want %d", i, s.Order, i+1)
		}
		if seen[s.Order] {
			t.Fatalf("duplicate order %d", s.Order)
		}
		seen[s.Order] = true
	}
}

func TestSpliceAfterInsertsAndRenumbers(t *testing.T) {
	steps := makeSteps("C1", "C2", "C3", "C4", "C5")
	newSteps := []types.RoadmapStep{
		{ConceptID: "S1", ConceptName: "Sub one", DependsOn: []string{"C2"}},
		{ConceptID: "S2", ConceptName: "Sub two", DependsOn: []string{"C2"}},
	}

	out, ok := SpliceAfter(steps, "C2", newSteps)
	if !ok {
		t.Fatal("SpliceAfter reported missing parent")
	}
	if len(out) != 7 {
		t.Fatalf("got %d steps, want 7", len(out))
	}
	assertContiguous(t, out)

	if out[2].ConceptID != "S1" || out[2].Order != 3 {
		t.Fatalf("first sub-step at %q order %d, want S1 order 3", out[2].ConceptID, out[2].Order)
	}
	if out[3].ConceptID != "S2" || out[3].Order != 4 {
		t.Fatalf("second sub-step at %q order %d, want S2 order 4", out[3].ConceptID, out[3].Order)
	}
	if out[4].ConceptID != "C3" || out[4].Order != 5 {
		t.Fatalf("former step 3 now %q order %d, want C3 order 5", out[4].ConceptID, out[4].Order)
	}
	for _, sub := range out[2:4] {
		if len(sub.DependsOn) != 1 || sub.DependsOn[0] != "C2" {
			t.Fatalf("sub-step %q dependsOn = %v, want [C2]", sub.ConceptID, sub.DependsOn)
		}
	}
}

func TestSpliceAfterParentAtEnd(t *testing.T) {
	steps := makeSteps("C1", "C2")
	out, ok := SpliceAfter(steps, "C2", makeSteps("S1"))
	if !ok {
		t.Fatal("SpliceAfter reported missing parent")
	}
	if out[len(out)-1].ConceptID != "S1" {
		t.Fatalf("last step is %q, want S1", out[len(out)-1].ConceptID)
	}
	assertContiguous(t, out)
}

func TestSpliceAfterUnknownParent(t *testing.T) {
	if _, ok := SpliceAfter(makeSteps("C1"), "missing", makeSteps("S1")); ok {
		t.Fatal("expected ok=false for unknown parent")
	}
}

func TestSpliceAfterUnsortedInput(t *testing.T) {
	steps := []types.RoadmapStep{
		{ConceptID: "C3", Order: 3},
		{ConceptID: "C1", Order: 1},
		{ConceptID: "C2", Order: 2},
	}
	out, ok := SpliceAfter(steps, "C1", []types.RoadmapStep{{ConceptID: "S1"}})
	if !ok {
		t.Fatal("SpliceAfter reported missing parent")
	}
	want := []string{"C1", "S1", "C2", "C3"}
	for i, id := range want {
		if out[i].ConceptID != id {
			t.Fatalf("position %d is %q, want %q", i, out[i].ConceptID, id)
		}
	}
	assertContiguous(t, out)
}

func seedRoadmap(t *testing.T, repo repos.RoadmapRepo, steps []types.RoadmapStep) *types.Roadmap {
	t.Helper()
	roadmap := &types.Roadmap{
		Title:  "Test roadmap",
		Status: roadmaps.StatusCompleted,
	}
	if err := roadmap.SetSteps(steps); err != nil {
		t.Fatalf("set steps: %v", err)
	}
	created, err := repo.Create(context.Background(), nil, roadmap)
	if err != nil {
		t.Fatalf("create roadmap: %v", err)
	}
	return created
}

func TestExpandSplicesSubConcepts(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewRoadmapRepo(db, log)

	created := seedRoadmap(t, repo, makeSteps("C1", "C2", "C3"))
	g := newFakeGraph()
	g.concepts["C2"] = graph.Concept{ID: "C2", Name: "Concept C2", Description: "parent description"}

	expander := &fakeExpander{subs: []ai.SubConcept{
		{Name: "Sub one", Description: "first", LearningObjective: "learn one", EstimatedDuration: 15, Difficulty: "beginner"},
		{Name: "Sub two", Description: "second", LearningObjective: "learn two", EstimatedDuration: 20, Difficulty: "beginner"},
	}}

	seq := NewSequencer(log, repo, nil, g, expander, nil)
	saved, err := seq.Expand(context.Background(), created.ID, "C2", ai.UserContext{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	steps, err := saved.DecodeSteps()
	if err != nil {
		t.Fatalf("decode steps: %v", err)
	}
	if len(steps) != 5 {
		t.Fatalf("got %d steps, want 5", len(steps))
	}
	assertContiguous(t, steps)

	sub := steps[2]
	if sub.ConceptName != "Sub one" {
		t.Fatalf("step 3 is %q, want Sub one", sub.ConceptName)
	}
	if len(sub.DependsOn) != 1 || sub.DependsOn[0] != "C2" {
		t.Fatalf("sub-step dependsOn = %v, want [C2]", sub.DependsOn)
	}
	if !strings.Contains(sub.Rationale, `Sub-concept of "Concept C2"`) {
		t.Fatalf("rationale %q does not record provenance", sub.Rationale)
	}

	edges := g.relationsOfType(graph.RelHasSubconcept)
	if len(edges) != 2 {
		t.Fatalf("got %d HAS_SUBCONCEPT edges, want 2", len(edges))
	}
	for _, e := range edges {
		if e.FromID != "C2" {
			t.Fatalf("edge from %q, want C2", e.FromID)
		}
	}

	reloaded, err := repo.GetByID(context.Background(), nil, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Version != created.Version+1 {
		t.Fatalf("version %d, want %d", reloaded.Version, created.Version+1)
	}
	if reloaded.TotalEstimatedDuration == nil || *reloaded.TotalEstimatedDuration != 30*3+15+20 {
		t.Fatalf("total duration = %v, want %d", reloaded.TotalEstimatedDuration, 30*3+15+20)
	}
}

func TestExpandMissingRoadmap(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewRoadmapRepo(db, log)

	seq := NewSequencer(log, repo, nil, newFakeGraph(), &fakeExpander{}, nil)
	_, err := seq.Expand(context.Background(), uuid.New(), "C1", ai.UserContext{})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestExpandConceptNotAStep(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewRoadmapRepo(db, log)
	created := seedRoadmap(t, repo, makeSteps("C1"))

	seq := NewSequencer(log, repo, nil, newFakeGraph(), &fakeExpander{}, nil)
	_, err := seq.Expand(context.Background(), created.ID, "unknown", ai.UserContext{})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

// racingRoadmapRepo bumps the stored version out of band right before the
// first N guarded step writes, so SaveStepsIfVersion sees a stale version
// the way a concurrent expansion would.
type racingRoadmapRepo struct {
	repos.RoadmapRepo
	db        *gorm.DB
	conflicts int
}

func (r *racingRoadmapRepo) SaveStepsIfVersion(ctx context.Context, tx *gorm.DB, id uuid.UUID, steps datatypes.JSON, expectedVersion int) (bool, error) {
	if r.conflicts > 0 {
		r.conflicts--
		if err := r.db.Model(&types.Roadmap{}).
			Where("id = ?", id).
			Update("version", gorm.Expr("version + 1")).Error; err != nil {
			return false, err
		}
	}
	return r.RoadmapRepo.SaveStepsIfVersion(ctx, tx, id, steps, expectedVersion)
}

func TestExpandRetriesOnVersionConflict(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	inner := repos.NewRoadmapRepo(db, log)
	created := seedRoadmap(t, inner, makeSteps("C1", "C2", "C3"))
	repo := &racingRoadmapRepo{RoadmapRepo: inner, db: db, conflicts: 1}

	expander := &fakeExpander{subs: []ai.SubConcept{
		{Name: "Sub one", EstimatedDuration: 10, Difficulty: "beginner"},
	}}
	seq := NewSequencer(log, repo, nil, newFakeGraph(), expander, nil)

	saved, err := seq.Expand(context.Background(), created.ID, "C2", ai.UserContext{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	steps, err := saved.DecodeSteps()
	if err != nil {
		t.Fatalf("decode steps: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(steps))
	}
	assertContiguous(t, steps)
	if repo.conflicts != 0 {
		t.Fatalf("conflict was never triggered")
	}

	reloaded, err := inner.GetByID(context.Background(), nil, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	// One out-of-band bump plus the guarded write that finally landed.
	if reloaded.Version != created.Version+2 {
		t.Fatalf("version = %d, want %d", reloaded.Version, created.Version+2)
	}
}

func TestExpandPersistentConflictSurfacesConflict(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	inner := repos.NewRoadmapRepo(db, log)
	created := seedRoadmap(t, inner, makeSteps("C1", "C2", "C3"))
	repo := &racingRoadmapRepo{RoadmapRepo: inner, db: db, conflicts: maxSequenceRetries}

	expander := &fakeExpander{subs: []ai.SubConcept{
		{Name: "Sub one", EstimatedDuration: 10, Difficulty: "beginner"},
	}}
	seq := NewSequencer(log, repo, nil, newFakeGraph(), expander, nil)

	_, err := seq.Expand(context.Background(), created.ID, "C2", ai.UserContext{})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	reloaded, err := inner.GetByID(context.Background(), nil, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	steps, _ := reloaded.DecodeSteps()
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want the original 3 untouched", len(steps))
	}
}

func TestExpandNoSubConceptsKeepsRoadmap(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewRoadmapRepo(db, log)
	created := seedRoadmap(t, repo, makeSteps("C1", "C2"))

	seq := NewSequencer(log, repo, nil, newFakeGraph(), &fakeExpander{subs: nil}, nil)
	saved, err := seq.Expand(context.Background(), created.ID, "C1", ai.UserContext{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	steps, _ := saved.DecodeSteps()
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2 unchanged", len(steps))
	}
}
