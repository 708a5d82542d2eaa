// Package ai defines the narrow AI collaborator contracts consumed by the
// ingestion and roadmap pipelines, plus adapters backed by the OpenAI
// structured-output client. Pipelines depend on these interfaces only, so
// tests substitute deterministic fakes.
package ai

import "context"

// UserContext carries optional personalization hints for generation calls.
type UserContext struct {
	Goal            string `json:"goal,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
	TimeBudget      string `json:"time_budget,omitempty"`
	LearningStyle   string `json:"learning_style,omitempty"`
}

func (uc UserContext) IsZero() bool {
	return uc.Goal == "" && uc.ExperienceLevel == "" && uc.TimeBudget == "" && uc.LearningStyle == ""
}

// ExtractedRelationship names a related concept by display name; the caller
// reconciles names back to ids before persisting edges.
type ExtractedRelationship struct {
	TargetName string `json:"target_name"`
	Type       string `json:"type"`
}

type ExtractedConcept struct {
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	Relationships []ExtractedRelationship `json:"relationships"`
}

type ConceptExtractor interface {
	ExtractConcepts(ctx context.Context, text string) ([]ExtractedConcept, error)
}

type DocumentAnalysis struct {
	Overview   string   `json:"overview"`
	KeyPoints  []string `json:"key_points"`
	TopicArea  string   `json:"topic_area"`
	Difficulty string   `json:"difficulty"`
}

type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, text string) (DocumentAnalysis, error)
}

type QuizOptionDraft struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type QuizQuestionDraft struct {
	Type        string            `json:"type"`
	Text        string            `json:"text"`
	Options     []QuizOptionDraft `json:"options"`
	Explanation string            `json:"explanation"`
	Difficulty  string            `json:"difficulty"`
}

type QuizOptions struct {
	QuestionCount int
	Difficulty    string
}

type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, text string, conceptNames []string, opts QuizOptions) ([]QuizQuestionDraft, error)
}

type GeneratedConcept struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GeneratedRelationship struct {
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
	Type   string `json:"type"`
}

type TopicConcepts struct {
	Concepts      []GeneratedConcept      `json:"concepts"`
	Relationships []GeneratedRelationship `json:"relationships"`
}

type TopicConceptGenerator interface {
	GenerateConceptsFromTopic(ctx context.Context, topic string, userCtx UserContext) (TopicConcepts, error)
}

type OrderedConcept struct {
	ConceptID         string `json:"concept_id"`
	Order             int    `json:"order"`
	LearningObjective string `json:"learning_objective"`
	EstimatedDuration int    `json:"estimated_duration"`
	Difficulty        string `json:"difficulty"`
	Rationale         string `json:"rationale"`
}

type LearningPath struct {
	OrderedConcepts []OrderedConcept `json:"ordered_concepts"`
	Description     string           `json:"description"`
	RecommendedPace string           `json:"recommended_pace"`
}

type LearningPathPlanner interface {
	GenerateLearningPath(ctx context.Context, concepts []GeneratedConcept, relationships []GeneratedRelationship, userCtx UserContext) (LearningPath, error)
}

type ResourceCandidate struct {
	Title             string `json:"title"`
	URL               string `json:"url"`
	Type              string `json:"type"`
	Description       string `json:"description"`
	Provider          string `json:"provider"`
	EstimatedDuration string `json:"estimated_duration"`
	Difficulty        string `json:"difficulty"`
}

type ResourceOptions struct {
	MaxResults int
	Difficulty string
}

type ResourceDiscoverer interface {
	DiscoverResourcesForConcept(ctx context.Context, name, description string, opts ResourceOptions) ([]ResourceCandidate, error)
}

type SubConcept struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	LearningObjective string `json:"learning_objective"`
	EstimatedDuration int    `json:"estimated_duration"`
	Difficulty        string `json:"difficulty"`
}

type ConceptExpander interface {
	ExpandConcept(ctx context.Context, name, description string, siblingNames []string, userCtx UserContext) ([]SubConcept, error)
}

// VisionDescriber turns an image into text so image uploads can flow through
// the same ingestion path as text documents.
type VisionDescriber interface {
	DescribeImage(ctx context.Context, imageURL string) (string, error)
}
