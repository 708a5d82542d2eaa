package roadmap_generate

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/domain/jobs"
	"github.com/pathwise/pathwise-backend/internal/domain/roadmaps"
	jobrt "github.com/pathwise/pathwise-backend/internal/jobs/runtime"
	"github.com/pathwise/pathwise-backend/internal/repos"
	"github.com/pathwise/pathwise-backend/internal/repos/testutil"
)

type stubGraph struct{}

func (stubGraph) SaveConcept(ctx context.Context, c graph.Concept) error        { return nil }
func (stubGraph) SaveConcepts(ctx context.Context, cs []graph.Concept) error    { return nil }
func (stubGraph) FindConceptByID(ctx context.Context, id string) (*graph.Concept, error) {
	return nil, fmt.Errorf("not found")
}
func (stubGraph) AddRelation(ctx context.Context, fromID, toID, relType string) error { return nil }
func (stubGraph) AddSubConceptRelation(ctx context.Context, parentID, childID string) error {
	return nil
}
func (stubGraph) LinkDocument(ctx context.Context, documentID uuid.UUID, conceptID string) error {
	return nil
}
func (stubGraph) GetGraphByDocumentID(ctx context.Context, documentID uuid.UUID) (*graph.DocumentGraph, error) {
	return &graph.DocumentGraph{}, nil
}

type stubTopics struct {
	result ai.TopicConcepts
	err    error
}

func (s stubTopics) GenerateConceptsFromTopic(ctx context.Context, topic string, userCtx ai.UserContext) (ai.TopicConcepts, error) {
	return s.result, s.err
}

type stubPlanner struct {
	path ai.LearningPath
	err  error
}

func (s stubPlanner) GenerateLearningPath(ctx context.Context, concepts []ai.GeneratedConcept, relationships []ai.GeneratedRelationship, userCtx ai.UserContext) (ai.LearningPath, error) {
	return s.path, s.err
}

type stubDiscoverer struct {
	candidates []ai.ResourceCandidate
	err        error
}

func (s stubDiscoverer) DiscoverResourcesForConcept(ctx context.Context, name, description string, opts ai.ResourceOptions) ([]ai.ResourceCandidate, error) {
	return s.candidates, s.err
}

type fixture struct {
	db        *gorm.DB
	roadmaps  repos.RoadmapRepo
	resources repos.ResourceRepo
	jobRuns   repos.JobRunRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return fixture{
		db:        db,
		roadmaps:  repos.NewRoadmapRepo(db, log),
		resources: repos.NewResourceRepo(db, log),
		jobRuns:   repos.NewJobRunRepo(db, log),
	}
}

func (f fixture) seedJob(t *testing.T, roadmapID uuid.UUID, topic string) *types.JobRun {
	t.Helper()
	payload, _ := json.Marshal(map[string]any{
		"roadmap_id": roadmapID.String(),
		"topic":      topic,
		"title":      "Test roadmap",
		"user_id":    uuid.NewString(),
	})
	job := &types.JobRun{
		OwnerUserID: uuid.New(),
		JobType:     jobs.JobTypeRoadmapGenerate,
		EntityType:  "roadmap",
		EntityID:    &roadmapID,
		Status:      jobs.StatusRunning,
		Stage:       roadmaps.StageConcepts,
		Payload:     datatypes.JSON(payload),
	}
	created, err := f.jobRuns.Create(context.Background(), nil, []*types.JobRun{job})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return created[0]
}

func (f fixture) seedRoadmap(t *testing.T) *types.Roadmap {
	t.Helper()
	roadmap := &types.Roadmap{Title: "Test roadmap", Status: roadmaps.StatusPending}
	if err := roadmap.SetSteps(nil); err != nil {
		t.Fatalf("set steps: %v", err)
	}
	created, err := f.roadmaps.Create(context.Background(), nil, roadmap)
	if err != nil {
		t.Fatalf("create roadmap: %v", err)
	}
	return created
}

func clusterConcepts() ai.TopicConcepts {
	return ai.TopicConcepts{
		Concepts: []ai.GeneratedConcept{
			{ID: "containers", Name: "Containers"},
			{ID: "pods", Name: "Pods"},
			{ID: "services", Name: "Services"},
		},
		Relationships: []ai.GeneratedRelationship{
			{FromID: "pods", ToID: "containers", Type: "DEPENDS_ON"},
			{FromID: "services", ToID: "pods", Type: "DEPENDS_ON"},
		},
	}
}

func clusterPath() ai.LearningPath {
	return ai.LearningPath{
		OrderedConcepts: []ai.OrderedConcept{
			{ConceptID: "containers", Order: 1, EstimatedDuration: 60},
			{ConceptID: "pods", Order: 2, EstimatedDuration: 120},
			{ConceptID: "services", Order: 3, EstimatedDuration: 90},
		},
		Description:     "Cluster fundamentals in order.",
		RecommendedPace: "steady",
	}
}

func runPipeline(t *testing.T, f fixture, p *Pipeline, job *types.JobRun) *jobrt.Context {
	t.Helper()
	jc := jobrt.NewContext(context.Background(), f.db, job, f.jobRuns, nil)
	if err := p.Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return jc
}

func TestRunCompletesRoadmapWithSteps(t *testing.T) {
	f := newFixture(t)
	log := testutil.Logger(t)
	roadmap := f.seedRoadmap(t)
	job := f.seedJob(t, roadmap.ID, "kubernetes")

	p := New(f.db, log, f.roadmaps, f.resources, stubGraph{},
		stubTopics{result: clusterConcepts()},
		stubPlanner{path: clusterPath()},
		stubDiscoverer{candidates: []ai.ResourceCandidate{{Title: "Intro", URL: "https://example.com", Type: "article"}}})
	runPipeline(t, f, p, job)

	saved, err := f.roadmaps.GetByID(context.Background(), nil, roadmap.ID)
	if err != nil {
		t.Fatalf("reload roadmap: %v", err)
	}
	if saved.Status != roadmaps.StatusCompleted {
		t.Fatalf("status = %q, want completed", saved.Status)
	}
	steps, _ := saved.DecodeSteps()
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(steps))
	}
	// Sum of per-step estimates, not anything the planner reported in aggregate.
	if saved.TotalEstimatedDuration == nil || *saved.TotalEstimatedDuration != 270 {
		t.Fatalf("total duration = %v, want 270", saved.TotalEstimatedDuration)
	}
	if saved.RecommendedPace != "steady" {
		t.Fatalf("pace = %q, want steady", saved.RecommendedPace)
	}

	reloadedJob, err := f.jobRuns.GetByID(context.Background(), nil, job.ID)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if reloadedJob.Status != jobs.StatusSucceeded || reloadedJob.Stage != roadmaps.StageDone {
		t.Fatalf("job = %s/%s, want succeeded/done", reloadedJob.Status, reloadedJob.Stage)
	}

	stored, err := f.resources.GetByRoadmapID(context.Background(), nil, roadmap.ID)
	if err != nil {
		t.Fatalf("resources: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("got %d resources, want one per step", len(stored))
	}
}

func TestRunZeroConceptsCompletesEmpty(t *testing.T) {
	f := newFixture(t)
	log := testutil.Logger(t)
	roadmap := f.seedRoadmap(t)
	job := f.seedJob(t, roadmap.ID, "complete gibberish")

	p := New(f.db, log, f.roadmaps, f.resources, stubGraph{}, stubTopics{}, stubPlanner{}, stubDiscoverer{})
	runPipeline(t, f, p, job)

	saved, err := f.roadmaps.GetByID(context.Background(), nil, roadmap.ID)
	if err != nil {
		t.Fatalf("reload roadmap: %v", err)
	}
	if saved.Status != roadmaps.StatusCompleted {
		t.Fatalf("status = %q, want completed (zero concepts is success)", saved.Status)
	}
	if saved.Description == "" {
		t.Fatal("description empty, want an explanatory message")
	}
	steps, _ := saved.DecodeSteps()
	if len(steps) != 0 {
		t.Fatalf("got %d steps, want 0", len(steps))
	}

	reloadedJob, _ := f.jobRuns.GetByID(context.Background(), nil, job.ID)
	if reloadedJob.Status != jobs.StatusSucceeded {
		t.Fatalf("job status = %q, want succeeded", reloadedJob.Status)
	}
}

func TestRunResourceFailureDoesNotFailRoadmap(t *testing.T) {
	f := newFixture(t)
	log := testutil.Logger(t)
	roadmap := f.seedRoadmap(t)
	job := f.seedJob(t, roadmap.ID, "kubernetes")

	p := New(f.db, log, f.roadmaps, f.resources, stubGraph{},
		stubTopics{result: clusterConcepts()},
		stubPlanner{path: clusterPath()},
		stubDiscoverer{err: fmt.Errorf("discovery upstream down")})
	runPipeline(t, f, p, job)

	saved, _ := f.roadmaps.GetByID(context.Background(), nil, roadmap.ID)
	if saved.Status != roadmaps.StatusCompleted {
		t.Fatalf("status = %q, want completed despite resource failure", saved.Status)
	}
	stored, _ := f.resources.GetByRoadmapID(context.Background(), nil, roadmap.ID)
	if len(stored) != 0 {
		t.Fatalf("got %d resources, want 0", len(stored))
	}
	reloadedJob, _ := f.jobRuns.GetByID(context.Background(), nil, job.ID)
	if reloadedJob.Status != jobs.StatusSucceeded {
		t.Fatalf("job status = %q, want succeeded", reloadedJob.Status)
	}
}

func TestRunPlannerFailureFailsRoadmapAndJob(t *testing.T) {
	f := newFixture(t)
	log := testutil.Logger(t)
	roadmap := f.seedRoadmap(t)
	job := f.seedJob(t, roadmap.ID, "kubernetes")

	p := New(f.db, log, f.roadmaps, f.resources, stubGraph{},
		stubTopics{result: clusterConcepts()},
		stubPlanner{err: fmt.Errorf("planner timeout")},
		stubDiscoverer{})
	runPipeline(t, f, p, job)

	saved, _ := f.roadmaps.GetByID(context.Background(), nil, roadmap.ID)
	if saved.Status != roadmaps.StatusFailed {
		t.Fatalf("status = %q, want failed", saved.Status)
	}
	if saved.Error == "" {
		t.Fatal("roadmap error empty, want captured message")
	}

	reloadedJob, _ := f.jobRuns.GetByID(context.Background(), nil, job.ID)
	if reloadedJob.Status != jobs.StatusFailed {
		t.Fatalf("job status = %q, want failed", reloadedJob.Status)
	}
	if reloadedJob.Stage != roadmaps.StageLearningPath {
		t.Fatalf("job stage = %q, want frozen at learning-path", reloadedJob.Stage)
	}
}

func TestRunMissingPayloadFailsValidation(t *testing.T) {
	f := newFixture(t)
	log := testutil.Logger(t)
	job := &types.JobRun{
		OwnerUserID: uuid.New(),
		JobType:     jobs.JobTypeRoadmapGenerate,
		Status:      jobs.StatusRunning,
		Stage:       roadmaps.StageConcepts,
		Payload:     datatypes.JSON([]byte(`{}`)),
	}
	created, err := f.jobRuns.Create(context.Background(), nil, []*types.JobRun{job})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	p := New(f.db, log, f.roadmaps, f.resources, stubGraph{}, stubTopics{}, stubPlanner{}, stubDiscoverer{})
	runPipeline(t, f, p, created[0])

	reloaded, _ := f.jobRuns.GetByID(context.Background(), nil, created[0].ID)
	if reloaded.Status != jobs.StatusFailed || reloaded.Stage != "validate" {
		t.Fatalf("job = %s/%s, want failed/validate", reloaded.Status, reloaded.Stage)
	}
}
