package document_ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/domain/documents"
	jobrt "github.com/pathwise/pathwise-backend/internal/jobs/runtime"
	"github.com/pathwise/pathwise-backend/internal/modules/ingestion"
)

// Run drives one document through parsing -> analyzing -> ready. Any failure
// after the first transition marks the document failed with the captured
// error and freezes the stage where it happened; the job row's retry policy
// then decides whether to re-run.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}

	documentID, ok := jc.PayloadUUID("document_id")
	if !ok || documentID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing document_id"))
		return nil
	}
	storagePath := jc.PayloadString("storage_path")
	filename := jc.PayloadString("filename")
	mimeType := jc.PayloadString("mime_type")
	if storagePath == "" {
		jc.Fail("validate", fmt.Errorf("missing storage_path"))
		return nil
	}

	if err := p.documents.UpdateFields(jc.Ctx, nil, documentID, map[string]interface{}{
		"status": documents.StatusProcessing,
		"stage":  documents.StageParsing,
		"error":  "",
	}); err != nil {
		jc.Fail(documents.StageParsing, err)
		return nil
	}
	jc.Progress(documents.StageParsing, 10, "Extracting text")

	text, err := ingestion.Extract(jc.Ctx, ingestion.ExtractDeps{
		Log:     p.log,
		Storage: p.storage,
		Vision:  p.vision,
	}, ingestion.ExtractInput{
		DocumentID:  documentID,
		StoragePath: storagePath,
		Filename:    filename,
		MimeType:    mimeType,
	})
	if err != nil {
		p.failDocument(jc, documentID, documents.StageParsing, err)
		return nil
	}

	if err := p.documents.UpdateFields(jc.Ctx, nil, documentID, map[string]interface{}{
		"stage": documents.StageAnalyzing,
	}); err != nil {
		p.failDocument(jc, documentID, documents.StageAnalyzing, err)
		return nil
	}
	jc.Progress(documents.StageAnalyzing, 40, "Analyzing content")

	analysis, err := ingestion.Analyze(jc.Ctx, ingestion.AnalyzeDeps{
		Log:       p.log,
		Extractor: p.extractor,
		Analyzer:  p.analyzer,
		QuizGen:   p.quizGen,
	}, text)
	if err != nil {
		p.failDocument(jc, documentID, documents.StageAnalyzing, err)
		return nil
	}

	persisted, err := ingestion.Persist(jc.Ctx, ingestion.PersistDeps{
		DB:        p.db,
		Log:       p.log,
		Graph:     p.graph,
		Summaries: p.summaries,
		Quizzes:   p.quizzes,
	}, ingestion.PersistInput{
		DocumentID: documentID,
		Analysis:   analysis,
	})
	if err != nil {
		p.failDocument(jc, documentID, documents.StageAnalyzing, err)
		return nil
	}

	if err := p.documents.UpdateFields(jc.Ctx, nil, documentID, map[string]interface{}{
		"status":        documents.StatusCompleted,
		"stage":         documents.StageReady,
		"concept_count": persisted.ConceptCount,
	}); err != nil {
		p.failDocument(jc, documentID, documents.StageReady, err)
		return nil
	}

	jc.Succeed(documents.StageReady, map[string]any{
		"document_id":   documentID.String(),
		"concept_count": persisted.ConceptCount,
	})
	return nil
}

// failDocument records the failure on the document row (status only; the
// stage stays frozen where the error happened) then fails the job run.
func (p *Pipeline) failDocument(jc *jobrt.Context, documentID uuid.UUID, stage string, cause error) {
	now := time.Now()
	if err := p.documents.UpdateFields(jc.Ctx, nil, documentID, map[string]interface{}{
		"status":     documents.StatusFailed,
		"error":      cause.Error(),
		"updated_at": now,
	}); err != nil {
		p.log.Error("Failed to record document failure", "document_id", documentID, "error", err)
	}
	jc.Fail(stage, cause)
}
