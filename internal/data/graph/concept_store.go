package graph

import (
	"context"

	"github.com/google/uuid"
)

// Relationship types carried on concept edges. Edges are idempotently
// upserted; re-creating one never duplicates it.
const (
	RelDependsOn     = "DEPENDS_ON"
	RelNextStep      = "NEXT_STEP"
	RelRelatedTo     = "RELATED_TO"
	RelHasSubconcept = "HAS_SUBCONCEPT"
	RelContains      = "CONTAINS"
)

// Concept is an atomic unit of learnable knowledge. Immutable once created;
// its lifecycle is tied to the document or roadmap that produced it.
type Concept struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DocumentID  string `json:"document_id,omitempty"`
}

type Edge struct {
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
	Type   string `json:"type"`
}

type DocumentGraph struct {
	Nodes []Concept `json:"nodes"`
	Edges []Edge    `json:"edges"`
}

// ConceptStore is the node/edge store holding concepts and typed directed
// relationships between them. Both pipelines write through it.
type ConceptStore interface {
	SaveConcept(ctx context.Context, c Concept) error
	SaveConcepts(ctx context.Context, concepts []Concept) error
	FindConceptByID(ctx context.Context, id string) (*Concept, error)
	AddRelation(ctx context.Context, fromID, toID, relType string) error
	AddSubConceptRelation(ctx context.Context, parentID, childID string) error
	// LinkDocument records document ownership of a concept via a CONTAINS edge.
	LinkDocument(ctx context.Context, documentID uuid.UUID, conceptID string) error
	GetGraphByDocumentID(ctx context.Context, documentID uuid.UUID) (*DocumentGraph, error)
}
