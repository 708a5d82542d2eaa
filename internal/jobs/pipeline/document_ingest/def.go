package document_ingest

import (
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/gcp"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/repos"
)

type Pipeline struct {
	db        *gorm.DB
	log       *logger.Logger
	documents repos.DocumentRepo
	summaries repos.DocumentSummaryRepo
	quizzes   repos.QuizRepo
	graph     graph.ConceptStore
	storage   gcp.BucketService
	extractor ai.ConceptExtractor
	analyzer  ai.DocumentAnalyzer
	quizGen   ai.QuizGenerator
	vision    ai.VisionDescriber
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	documents repos.DocumentRepo,
	summaries repos.DocumentSummaryRepo,
	quizzes repos.QuizRepo,
	conceptGraph graph.ConceptStore,
	storage gcp.BucketService,
	extractor ai.ConceptExtractor,
	analyzer ai.DocumentAnalyzer,
	quizGen ai.QuizGenerator,
	vision ai.VisionDescriber,
) *Pipeline {
	return &Pipeline{
		db:        db,
		log:       baseLog.With("job", types.JobTypeDocumentIngest),
		documents: documents,
		summaries: summaries,
		quizzes:   quizzes,
		graph:     conceptGraph,
		storage:   storage,
		extractor: extractor,
		analyzer:  analyzer,
		quizGen:   quizGen,
		vision:    vision,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeDocumentIngest }
