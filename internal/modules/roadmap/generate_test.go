package roadmap

import (
	"context"
	"fmt"
	"testing"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
	"github.com/pathwise/pathwise-backend/internal/repos"
	"github.com/pathwise/pathwise-backend/internal/repos/testutil"
)

func kubernetesConcepts() ai.TopicConcepts {
	return ai.TopicConcepts{
		Concepts: []ai.GeneratedConcept{
			{ID: "containers", Name: "Containers", Description: "container basics"},
			{ID: "pods", Name: "Pods", Description: "pod model"},
			{ID: "services", Name: "Services", Description: "service networking"},
		},
		Relationships: []ai.GeneratedRelationship{
			{FromID: "pods", ToID: "containers", Type: "DEPENDS_ON"},
			{FromID: "services", ToID: "pods", Type: "DEPENDS_ON"},
			{FromID: "containers", ToID: "pods", Type: "NEXT_STEP"},
		},
	}
}

func kubernetesPath() ai.LearningPath {
	return ai.LearningPath{
		OrderedConcepts: []ai.OrderedConcept{
			{ConceptID: "containers", Order: 1, LearningObjective: "understand containers", EstimatedDuration: 60, Difficulty: "beginner"},
			{ConceptID: "pods", Order: 2, LearningObjective: "run pods", EstimatedDuration: 120, Difficulty: "intermediate"},
			{ConceptID: "services", Order: 3, LearningObjective: "expose services", EstimatedDuration: 90, Difficulty: "intermediate"},
		},
		Description:     "From containers to cluster networking.",
		RecommendedPace: "steady",
	}
}

func TestGenerateConceptsPersistsGraph(t *testing.T) {
	g := newFakeGraph()
	deps := GenerateDeps{Log: testutil.Logger(t), Graph: g, Topics: &fakeTopics{result: kubernetesConcepts()}}

	tc, err := GenerateConcepts(context.Background(), deps, "kubernetes", ai.UserContext{})
	if err != nil {
		t.Fatalf("GenerateConcepts: %v", err)
	}
	if len(tc.Concepts) != 3 {
		t.Fatalf("got %d concepts, want 3", len(tc.Concepts))
	}
	if len(g.concepts) != 3 {
		t.Fatalf("graph holds %d concepts, want 3", len(g.concepts))
	}
	if got := len(g.relationsOfType(graph.RelDependsOn)); got != 2 {
		t.Fatalf("got %d DEPENDS_ON edges, want 2", got)
	}
	if got := len(g.relationsOfType(graph.RelNextStep)); got != 1 {
		t.Fatalf("got %d NEXT_STEP edges, want 1", got)
	}
}

func TestGenerateConceptsDropsUnknownRelationEndpoints(t *testing.T) {
	tc := kubernetesConcepts()
	tc.Relationships = append(tc.Relationships,
		ai.GeneratedRelationship{FromID: "pods", ToID: "nonexistent", Type: "DEPENDS_ON"},
		ai.GeneratedRelationship{FromID: "pods", ToID: "pods", Type: "RELATED_TO"},
		ai.GeneratedRelationship{FromID: "pods", ToID: "containers", Type: "MADE_UP_TYPE"},
	)
	g := newFakeGraph()
	deps := GenerateDeps{Log: testutil.Logger(t), Graph: g, Topics: &fakeTopics{result: tc}}

	if _, err := GenerateConcepts(context.Background(), deps, "kubernetes", ai.UserContext{}); err != nil {
		t.Fatalf("GenerateConcepts: %v", err)
	}
	if got := len(g.relations); got != 3 {
		t.Fatalf("got %d edges, want only the 3 valid ones", got)
	}
}

func TestGenerateConceptsEmptyIsNotAnError(t *testing.T) {
	deps := GenerateDeps{Log: testutil.Logger(t), Graph: newFakeGraph(), Topics: &fakeTopics{}}
	tc, err := GenerateConcepts(context.Background(), deps, "gibberish topic", ai.UserContext{})
	if err != nil {
		t.Fatalf("GenerateConcepts: %v", err)
	}
	if len(tc.Concepts) != 0 {
		t.Fatalf("got %d concepts, want 0", len(tc.Concepts))
	}
}

func TestBuildStepsJoinsOrderAndDependencies(t *testing.T) {
	steps := BuildSteps(kubernetesConcepts(), kubernetesPath())
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(steps))
	}
	assertContiguous(t, steps)

	if steps[0].ConceptName != "Containers" || steps[0].EstimatedDuration != 60 {
		t.Fatalf("step 1 = %+v, want Containers/60", steps[0])
	}
	if len(steps[1].DependsOn) != 1 || steps[1].DependsOn[0] != "containers" {
		t.Fatalf("pods dependsOn = %v, want [containers]", steps[1].DependsOn)
	}
	if len(steps[2].DependsOn) != 1 || steps[2].DependsOn[0] != "pods" {
		t.Fatalf("services dependsOn = %v, want [pods]", steps[2].DependsOn)
	}
	if SumDurations(steps) != 270 {
		t.Fatalf("total duration = %d, want 270", SumDurations(steps))
	}
}

func TestBuildStepsDropsUnknownOrderedConcept(t *testing.T) {
	path := kubernetesPath()
	path.OrderedConcepts = append(path.OrderedConcepts, ai.OrderedConcept{ConceptID: "hallucinated", Order: 4})
	steps := BuildSteps(kubernetesConcepts(), path)
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want unknown entry dropped to 3", len(steps))
	}
	assertContiguous(t, steps)
}

func TestDiscoverResourcesPersistsUpToCap(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	resourceRepo := repos.NewResourceRepo(db, log)
	roadmapRepo := repos.NewRoadmapRepo(db, log)
	created := seedRoadmap(t, roadmapRepo, makeSteps("C1", "C2"))

	candidates := make([]ai.ResourceCandidate, 0, 5)
	for i := 0; i < 5; i++ {
		candidates = append(candidates, ai.ResourceCandidate{
			Title: fmt.Sprintf("Resource %d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
			Type:  "article",
		})
	}
	deps := ResourceDeps{Log: log, Resources: resourceRepo, Discoverer: &fakeDiscoverer{candidates: candidates}}

	steps, _ := created.DecodeSteps()
	saved := DiscoverResources(context.Background(), deps, created.ID, steps)
	if saved != 2*MaxResourcesPerStep {
		t.Fatalf("saved %d resources, want %d", saved, 2*MaxResourcesPerStep)
	}

	stored, err := resourceRepo.GetByRoadmapID(context.Background(), nil, created.ID)
	if err != nil {
		t.Fatalf("GetByRoadmapID: %v", err)
	}
	if len(stored) != 2*MaxResourcesPerStep {
		t.Fatalf("stored %d resources, want %d", len(stored), 2*MaxResourcesPerStep)
	}
}

func TestDiscoverResourcesSkipsInvalidCandidatesWithoutGaps(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	resourceRepo := repos.NewResourceRepo(db, log)
	roadmapRepo := repos.NewRoadmapRepo(db, log)
	created := seedRoadmap(t, roadmapRepo, makeSteps("C1"))

	// The middle candidate has no URL and must be dropped without leaving a
	// hole in the stored display order.
	candidates := []ai.ResourceCandidate{
		{Title: "First", URL: "https://example.com/1", Type: "article"},
		{Title: "Broken"},
		{Title: "Second", URL: "https://example.com/2", Type: "video"},
	}
	deps := ResourceDeps{Log: log, Resources: resourceRepo, Discoverer: &fakeDiscoverer{candidates: candidates}}

	steps, _ := created.DecodeSteps()
	if saved := DiscoverResources(context.Background(), deps, created.ID, steps); saved != 2 {
		t.Fatalf("saved %d resources, want 2", saved)
	}

	stored, err := resourceRepo.GetByRoadmapID(context.Background(), nil, created.ID)
	if err != nil {
		t.Fatalf("GetByRoadmapID: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored %d resources, want 2", len(stored))
	}
	orders := map[int]string{}
	for _, r := range stored {
		orders[r.DisplayOrder] = r.Title
	}
	if orders[0] != "First" || orders[1] != "Second" {
		t.Fatalf("display orders = %v, want contiguous 0,1", orders)
	}
}

func TestDiscoverResourcesSwallowsFailures(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	resourceRepo := repos.NewResourceRepo(db, log)
	roadmapRepo := repos.NewRoadmapRepo(db, log)
	created := seedRoadmap(t, roadmapRepo, makeSteps("C1", "C2", "C3"))

	deps := ResourceDeps{Log: log, Resources: resourceRepo, Discoverer: &fakeDiscoverer{err: fmt.Errorf("upstream down")}}
	steps, _ := created.DecodeSteps()
	if saved := DiscoverResources(context.Background(), deps, created.ID, steps); saved != 0 {
		t.Fatalf("saved %d resources, want 0", saved)
	}

	stored, err := resourceRepo.GetByRoadmapID(context.Background(), nil, created.ID)
	if err != nil {
		t.Fatalf("GetByRoadmapID: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("stored %d resources, want 0 after failures", len(stored))
	}
}
