package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/neo4jdb"
)

// Relationship types are interpolated into Cypher, so only known types are
// accepted.
var allowedRelTypes = map[string]bool{
	RelDependsOn:     true,
	RelNextStep:      true,
	RelRelatedTo:     true,
	RelHasSubconcept: true,
	RelContains:      true,
}

type neo4jConceptStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jConceptStore(client *neo4jdb.Client, baseLog *logger.Logger) ConceptStore {
	return &neo4jConceptStore{
		client: client,
		log:    baseLog.With("store", "Neo4jConceptStore"),
	}
}

func (s *neo4jConceptStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.client.Database,
	})
}

func (s *neo4jConceptStore) ensureSchema(ctx context.Context, session neo4j.SessionWithContext) {
	// Best-effort; may fail for restricted users.
	res, err := session.Run(ctx, `CREATE CONSTRAINT concept_id_unique IF NOT EXISTS FOR (c:Concept) REQUIRE c.id IS UNIQUE`, nil)
	if err != nil {
		s.log.Warn("neo4j schema init failed (continuing)", "error", err)
		return
	}
	_, _ = res.Consume(ctx)
}

func (s *neo4jConceptStore) SaveConcept(ctx context.Context, c Concept) error {
	return s.SaveConcepts(ctx, []Concept{c})
}

func (s *neo4jConceptStore) SaveConcepts(ctx context.Context, concepts []Concept) error {
	if s.client == nil || s.client.Driver == nil {
		return nil
	}
	if len(concepts) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	nodes := make([]map[string]any, 0, len(concepts))
	for _, c := range concepts {
		if c.ID == "" {
			return fmt.Errorf("graph: save concept: missing id")
		}
		nodes = append(nodes, map[string]any{
			"id":          c.ID,
			"name":        c.Name,
			"description": c.Description,
			"document_id": c.DocumentID,
			"synced_at":   now,
		})
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	s.ensureSchema(ctx, session)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (c:Concept {id: n.id})
SET c += n
`, map[string]any{"nodes": nodes})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph: save concepts: %w", err)
	}
	return nil
}

func (s *neo4jConceptStore) FindConceptByID(ctx context.Context, id string) (*Concept, error) {
	if s.client == nil || s.client.Driver == nil {
		return nil, apperr.ErrNotFound
	}
	if id == "" {
		return nil, apperr.ErrInvalidArgument
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (c:Concept {id: $id})
RETURN c.id AS id, c.name AS name, c.description AS description, c.document_id AS document_id
`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return conceptFromRecord(rec), nil
	})
	if err != nil {
		if neo4j.IsNeo4jError(err) {
			return nil, fmt.Errorf("graph: find concept: %w", err)
		}
		// Single() errors when no row matched.
		return nil, apperr.ErrNotFound
	}
	c, _ := out.(*Concept)
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

func (s *neo4jConceptStore) AddRelation(ctx context.Context, fromID, toID, relType string) error {
	if s.client == nil || s.client.Driver == nil {
		return nil
	}
	if fromID == "" || toID == "" {
		return fmt.Errorf("graph: add relation: missing endpoint")
	}
	if !allowedRelTypes[relType] {
		return fmt.Errorf("graph: add relation: unknown type %q", relType)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	query := fmt.Sprintf(`
MATCH (a:Concept {id: $from_id})
MATCH (b:Concept {id: $to_id})
MERGE (a)-[e:%s]->(b)
SET e.synced_at = $synced_at
`, relType)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"from_id":   fromID,
			"to_id":     toID,
			"synced_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph: add relation %s: %w", relType, err)
	}
	return nil
}

func (s *neo4jConceptStore) AddSubConceptRelation(ctx context.Context, parentID, childID string) error {
	return s.AddRelation(ctx, parentID, childID, RelHasSubconcept)
}

func (s *neo4jConceptStore) LinkDocument(ctx context.Context, documentID uuid.UUID, conceptID string) error {
	if s.client == nil || s.client.Driver == nil {
		return nil
	}
	if documentID == uuid.Nil || conceptID == "" {
		return fmt.Errorf("graph: link document: missing id")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (d:Document {id: $document_id})
WITH d
MATCH (c:Concept {id: $concept_id})
MERGE (d)-[e:CONTAINS]->(c)
SET e.synced_at = $synced_at
`, map[string]any{
			"document_id": documentID.String(),
			"concept_id":  conceptID,
			"synced_at":   time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph: link document: %w", err)
	}
	return nil
}

func (s *neo4jConceptStore) GetGraphByDocumentID(ctx context.Context, documentID uuid.UUID) (*DocumentGraph, error) {
	if s.client == nil || s.client.Driver == nil {
		return &DocumentGraph{Nodes: []Concept{}, Edges: []Edge{}}, nil
	}
	if documentID == uuid.Nil {
		return nil, apperr.ErrInvalidArgument
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		g := &DocumentGraph{Nodes: []Concept{}, Edges: []Edge{}}

		res, err := tx.Run(ctx, `
MATCH (d:Document {id: $document_id})-[:CONTAINS]->(c:Concept)
RETURN c.id AS id, c.name AS name, c.description AS description, c.document_id AS document_id
`, map[string]any{"document_id": documentID.String()})
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			if c := conceptFromRecord(res.Record()); c != nil {
				g.Nodes = append(g.Nodes, *c)
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, `
MATCH (d:Document {id: $document_id})-[:CONTAINS]->(a:Concept)
MATCH (d)-[:CONTAINS]->(b:Concept)
MATCH (a)-[e]->(b)
RETURN a.id AS from_id, b.id AS to_id, type(e) AS type
`, map[string]any{"document_id": documentID.String()})
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			g.Edges = append(g.Edges, Edge{
				FromID: stringValue(rec, "from_id"),
				ToID:   stringValue(rec, "to_id"),
				Type:   stringValue(rec, "type"),
			})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return g, nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: get document graph: %w", err)
	}
	return out.(*DocumentGraph), nil
}

func conceptFromRecord(rec *neo4j.Record) *Concept {
	if rec == nil {
		return nil
	}
	return &Concept{
		ID:          stringValue(rec, "id"),
		Name:        stringValue(rec, "name"),
		Description: stringValue(rec, "description"),
		DocumentID:  stringValue(rec, "document_id"),
	}
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
