package roadmap_generate

import (
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/repos"
)

type Pipeline struct {
	db        *gorm.DB
	log       *logger.Logger
	roadmaps  repos.RoadmapRepo
	resources repos.ResourceRepo
	graph     graph.ConceptStore
	topics    ai.TopicConceptGenerator
	planner   ai.LearningPathPlanner
	discover  ai.ResourceDiscoverer
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	roadmaps repos.RoadmapRepo,
	resources repos.ResourceRepo,
	conceptGraph graph.ConceptStore,
	topics ai.TopicConceptGenerator,
	planner ai.LearningPathPlanner,
	discover ai.ResourceDiscoverer,
) *Pipeline {
	return &Pipeline{
		db:        db,
		log:       baseLog.With("job", types.JobTypeRoadmapGenerate),
		roadmaps:  roadmaps,
		resources: resources,
		graph:     conceptGraph,
		topics:    topics,
		planner:   planner,
		discover:  discover,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeRoadmapGenerate }
