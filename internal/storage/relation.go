package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Relation represents a stored character relation
type Relation struct {
	ID              uuid.UUID
	AnalysisID      uuid.UUID
	CharacterA      string
	CharacterB      string
	Cooccurrence    int
	Proximity       int
	RelationTypes   []string
	PrimaryRelation string
	Confidence      float64
	Strength        float64
	CreatedAt       time.Time
}

// RelationRepository defines the interface for relation storage operations
type RelationRepository interface {
	CreateBatch(ctx context.Context, relations []*Relation) error
	GetByAnalysisID(ctx context.Context, analysisID uuid.UUID) ([]*Relation, error)
	DeleteByAnalysisID(ctx context.Context, analysisID uuid.UUID) error
}

// PostgresRelationRepository implements RelationRepository using PostgreSQL
type PostgresRelationRepository struct {
	db *sql.DB
}

// NewPostgresRelationRepository creates a new PostgresRelationRepository
func NewPostgresRelationRepository(db *sql.DB) *PostgresRelationRepository {
	return &PostgresRelationRepository{db: db}
}

// CreateBatch inserts multiple relations in a single transaction
func (r *PostgresRelationRepository) CreateBatch(ctx context.Context, relations []*Relation) error {
	if len(relations) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relations (id, analysis_id, character_a, character_b, cooccurrence, proximity,
							   relation_types, primary_relation, confidence, strength, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, rel := range relations {
		if rel.ID == uuid.Nil {
			rel.ID = uuid.New()
		}
		if rel.CreatedAt.IsZero() {
			rel.CreatedAt = now
		}

		_, err := stmt.ExecContext(ctx,
			rel.ID,
			rel.AnalysisID,
			rel.CharacterA,
			rel.CharacterB,
			rel.Cooccurrence,
			rel.Proximity,
			pq.Array(rel.RelationTypes),
			rel.PrimaryRelation,
			rel.Confidence,
			rel.Strength,
			rel.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByAnalysisID retrieves all relations for a specific analysis
func (r *PostgresRelationRepository) GetByAnalysisID(ctx context.Context, analysisID uuid.UUID) ([]*Relation, error) {
	query := `
		SELECT id, analysis_id, character_a, character_b, cooccurrence, proximity,
			   relation_types, primary_relation, confidence, strength, created_at
		FROM relations
		WHERE analysis_id = $1
		ORDER BY strength DESC, character_a ASC, character_b ASC
	`

	rows, err := r.db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []*Relation
	for rows.Next() {
		relation := &Relation{}
		err := rows.Scan(
			&relation.ID,
			&relation.AnalysisID,
			&relation.CharacterA,
			&relation.CharacterB,
			&relation.Cooccurrence,
			&relation.Proximity,
			pq.Array(&relation.RelationTypes),
			&relation.PrimaryRelation,
			&relation.Confidence,
			&relation.Strength,
			&relation.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		relations = append(relations, relation)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return relations, nil
}

// DeleteByAnalysisID removes all relations for an analysis
func (r *PostgresRelationRepository) DeleteByAnalysisID(ctx context.Context, analysisID uuid.UUID) error {
	query := `DELETE FROM relations WHERE analysis_id = $1`
	_, err := r.db.ExecContext(ctx, query, analysisID)
	return err
}
