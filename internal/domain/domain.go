package domain

import (
	"github.com/pathwise/pathwise-backend/internal/domain/documents"
	"github.com/pathwise/pathwise-backend/internal/domain/jobs"
	"github.com/pathwise/pathwise-backend/internal/domain/quizzes"
	"github.com/pathwise/pathwise-backend/internal/domain/roadmaps"
)

type Document = documents.Document
type DocumentSummary = documents.DocumentSummary

type Roadmap = roadmaps.Roadmap
type RoadmapStep = roadmaps.Step
type Resource = roadmaps.Resource
type UserRoadmapProgress = roadmaps.UserRoadmapProgress
type ProgressSummary = roadmaps.ProgressSummary

type Quiz = quizzes.Quiz
type QuizQuestion = quizzes.QuizQuestion
type QuizOption = quizzes.Option
type QuizAttempt = quizzes.QuizAttempt

type JobRun = jobs.JobRun

const (
	JobTypeDocumentIngest  = jobs.JobTypeDocumentIngest
	JobTypeRoadmapGenerate = jobs.JobTypeRoadmapGenerate

	JobStatusQueued    = jobs.StatusQueued
	JobStatusRunning   = jobs.StatusRunning
	JobStatusSucceeded = jobs.StatusSucceeded
	JobStatusFailed    = jobs.StatusFailed
	JobStatusCanceled  = jobs.StatusCanceled
)
