package roadmap

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pathwise/pathwise-backend/internal/ai"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/domain/roadmaps"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/repos"
)

const (
	// QuizAttemptQuestionCount is how many questions one attempt carries.
	QuizAttemptQuestionCount = 3
	// QuizPassThreshold is the minimum correct answers to pass. Kept as its
	// own constant: it does not scale with the question count, so changing
	// one without the other changes the pass rate.
	QuizPassThreshold = 2
)

// QuizService owns step-quiz attempts. Passing an attempt is the only path
// by which a roadmap step reaches completed.
type QuizService struct {
	log      *logger.Logger
	roadmaps repos.RoadmapRepo
	quizzes  repos.QuizRepo
	attempts repos.QuizAttemptRepo
	progress *ProgressService
	quizGen  ai.QuizGenerator
}

func NewQuizService(
	baseLog *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	quizRepo repos.QuizRepo,
	attemptRepo repos.QuizAttemptRepo,
	progress *ProgressService,
	quizGen ai.QuizGenerator,
) *QuizService {
	return &QuizService{
		log:      baseLog.With("service", "QuizService"),
		roadmaps: roadmapRepo,
		quizzes:  quizRepo,
		attempts: attemptRepo,
		progress: progress,
		quizGen:  quizGen,
	}
}

// SubmitResult is the graded outcome of one attempt.
type SubmitResult struct {
	Attempt      *types.QuizAttempt   `json:"attempt"`
	CorrectCount int                  `json:"correct_count"`
	Score        int                  `json:"score"`
	Passed       bool                 `json:"passed"`
	Summary      *types.ProgressSummary `json:"summary,omitempty"`
}

// StartAttempt creates a new attempt for one roadmap step, sampling up to
// QuizAttemptQuestionCount stored questions for the concept and generating a
// fresh set when none exist yet. Returns the attempt plus its questions.
func (s *QuizService) StartAttempt(ctx context.Context, userID, roadmapID uuid.UUID, conceptID string) (*types.QuizAttempt, []*types.QuizQuestion, error) {
	roadmap, err := s.roadmaps.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, nil, err
	}
	steps, err := roadmap.DecodeSteps()
	if err != nil {
		return nil, nil, fmt.Errorf("decode steps: %w", err)
	}
	var step *types.RoadmapStep
	for i := range steps {
		if steps[i].ConceptID == conceptID {
			step = &steps[i]
			break
		}
	}
	if step == nil {
		return nil, nil, fmt.Errorf("%w: concept %s is not a step of roadmap %s", apperr.ErrNotFound, conceptID, roadmapID)
	}

	questions, err := s.quizzes.GetQuestionsByConceptID(ctx, nil, conceptID, QuizAttemptQuestionCount)
	if err != nil {
		return nil, nil, err
	}
	if len(questions) == 0 {
		questions, err = s.generateQuestions(ctx, roadmap, step)
		if err != nil {
			return nil, nil, err
		}
	}
	if len(questions) == 0 {
		return nil, nil, fmt.Errorf("%w: no quiz questions available for concept %s", apperr.ErrNotFound, conceptID)
	}

	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID.String())
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, nil, err
	}

	attempt := &types.QuizAttempt{
		UserID:      userID,
		RoadmapID:   roadmapID,
		ConceptID:   conceptID,
		QuestionIDs: datatypes.JSON(idsJSON),
	}
	created, err := s.attempts.Create(ctx, nil, attempt)
	if err != nil {
		return nil, nil, err
	}
	return created, questions, nil
}

// SubmitAttempt grades one attempt. Answers map question id to the submitted
// option label; an absent answer grades as incorrect. A passed attempt marks
// the step completed through the progress aggregator, which is the only
// route to a completed step.
func (s *QuizService) SubmitAttempt(ctx context.Context, userID, attemptID uuid.UUID, answers map[string]string) (*SubmitResult, error) {
	attempt, err := s.attempts.GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: attempt belongs to another user", apperr.ErrUnauthorized)
	}
	if attempt.CompletedAt != nil {
		return nil, fmt.Errorf("%w: attempt already completed", apperr.ErrConflict)
	}

	var idStrings []string
	if err := json.Unmarshal(attempt.QuestionIDs, &idStrings); err != nil {
		return nil, fmt.Errorf("decode question ids: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(idStrings))
	for _, raw := range idStrings {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("decode question ids: %w", err)
		}
		ids = append(ids, id)
	}
	questions, err := s.quizzes.GetQuestionsByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: attempt has no questions", apperr.ErrNotFound)
	}

	correct := 0
	for _, q := range questions {
		label, ok := answers[q.ID.String()]
		if !ok {
			continue
		}
		if want := correctLabel(q); want != "" && want == label {
			correct++
		}
	}
	score := int(math.Round(float64(correct) / float64(len(questions)) * 100))
	passed := correct >= QuizPassThreshold

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.attempts.UpdateFields(ctx, nil, attempt.ID, map[string]interface{}{
		"answers":       datatypes.JSON(answersJSON),
		"score":         score,
		"correct_count": correct,
		"passed":        passed,
		"completed_at":  now,
	}); err != nil {
		return nil, err
	}
	attempt.Answers = datatypes.JSON(answersJSON)
	attempt.Score = score
	attempt.CorrectCount = correct
	attempt.Passed = passed
	attempt.CompletedAt = &now

	result := &SubmitResult{
		Attempt:      attempt,
		CorrectCount: correct,
		Score:        score,
		Passed:       passed,
	}
	if passed && s.progress != nil {
		_, summary, err := s.progress.Upsert(ctx, userID, attempt.RoadmapID, attempt.ConceptID, roadmaps.StepCompleted)
		if err != nil {
			return nil, fmt.Errorf("record step completion: %w", err)
		}
		result.Summary = summary
	}
	return result, nil
}

// generateQuestions builds an on-demand concept quiz when ingestion never
// produced questions for this concept (topic roadmaps have no source
// document at all).
func (s *QuizService) generateQuestions(ctx context.Context, roadmap *types.Roadmap, step *types.RoadmapStep) ([]*types.QuizQuestion, error) {
	if s.quizGen == nil {
		return nil, nil
	}
	prompt := step.ConceptName
	if step.LearningObjective != "" {
		prompt = fmt.Sprintf("%s\n\nLearning objective: %s", step.ConceptName, step.LearningObjective)
	}
	drafts, err := s.quizGen.GenerateQuiz(ctx, prompt, []string{step.ConceptName}, ai.QuizOptions{
		QuestionCount: QuizAttemptQuestionCount,
		Difficulty:    step.Difficulty,
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	if len(drafts) == 0 {
		return nil, nil
	}
	if len(drafts) > QuizAttemptQuestionCount {
		drafts = drafts[:QuizAttemptQuestionCount]
	}

	quiz := &types.Quiz{
		RoadmapID: &roadmap.ID,
		ConceptID: step.ConceptID,
		Title:     fmt.Sprintf("%s quiz", step.ConceptName),
	}
	questions := make([]*types.QuizQuestion, 0, len(drafts))
	for i, d := range drafts {
		opts, err := json.Marshal(d.Options)
		if err != nil {
			return nil, err
		}
		qType := d.Type
		if qType == "" {
			qType = "multiple_choice"
		}
		questions = append(questions, &types.QuizQuestion{
			ConceptID:   step.ConceptID,
			Type:        qType,
			Text:        d.Text,
			Options:     datatypes.JSON(opts),
			Explanation: d.Explanation,
			Difficulty:  d.Difficulty,
			SortIndex:   i,
		})
	}
	if _, err := s.quizzes.CreateForConcept(ctx, nil, quiz, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// correctLabel returns the label of the option flagged correct, or "" when
// the options are malformed.
func correctLabel(q *types.QuizQuestion) string {
	var opts []types.QuizOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return ""
	}
	for _, o := range opts {
		if o.IsCorrect {
			return o.Label
		}
	}
	return ""
}
