package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Character represents a stored character with its context profile
// vector used for cross-analysis similarity search.
type Character struct {
	ID           uuid.UUID
	AnalysisID   uuid.UUID
	Name         string
	Aliases      []string
	MentionCount int
	Profile      pgvector.Vector
	CreatedAt    time.Time
}

// CharacterRepository defines the interface for character storage operations
type CharacterRepository interface {
	CreateBatch(ctx context.Context, characters []*Character) error
	GetByAnalysisID(ctx context.Context, analysisID uuid.UUID) ([]*Character, error)
	FindSimilar(ctx context.Context, profile pgvector.Vector, limit int, threshold float64) ([]*CharacterWithSimilarity, error)
	DeleteByAnalysisID(ctx context.Context, analysisID uuid.UUID) error
}

// CharacterWithSimilarity represents a character with its similarity score
type CharacterWithSimilarity struct {
	Character  *Character
	Similarity float64
}

// PostgresCharacterRepository implements CharacterRepository using PostgreSQL with pgvector
type PostgresCharacterRepository struct {
	db *sql.DB
}

// NewPostgresCharacterRepository creates a new PostgresCharacterRepository
func NewPostgresCharacterRepository(db *sql.DB) *PostgresCharacterRepository {
	return &PostgresCharacterRepository{db: db}
}

// CreateBatch inserts multiple characters in a single transaction
func (r *PostgresCharacterRepository) CreateBatch(ctx context.Context, characters []*Character) error {
	if len(characters) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO characters (id, analysis_id, name, aliases, mention_count, profile, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range characters {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}

		_, err := stmt.ExecContext(ctx,
			c.ID,
			c.AnalysisID,
			c.Name,
			pq.Array(c.Aliases),
			c.MentionCount,
			c.Profile,
			c.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByAnalysisID retrieves all characters for a specific analysis
func (r *PostgresCharacterRepository) GetByAnalysisID(ctx context.Context, analysisID uuid.UUID) ([]*Character, error) {
	query := `
		SELECT id, analysis_id, name, aliases, mention_count, profile, created_at
		FROM characters
		WHERE analysis_id = $1
		ORDER BY mention_count DESC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var characters []*Character
	for rows.Next() {
		character := &Character{}
		err := rows.Scan(
			&character.ID,
			&character.AnalysisID,
			&character.Name,
			pq.Array(&character.Aliases),
			&character.MentionCount,
			&character.Profile,
			&character.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		characters = append(characters, character)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return characters, nil
}

// FindSimilar finds characters with similar context profiles using pgvector cosine distance
func (r *PostgresCharacterRepository) FindSimilar(ctx context.Context, profile pgvector.Vector, limit int, threshold float64) ([]*CharacterWithSimilarity, error) {
	if limit <= 0 {
		limit = 10
	}
	if threshold <= 0 {
		threshold = 0.6
	}

	// Cosine distance is 1 - cosine_similarity, so similarity >= threshold
	// means distance <= 1 - threshold.
	query := `
		SELECT id, analysis_id, name, aliases, mention_count, profile, created_at,
			   1 - (profile <=> $1) as similarity
		FROM characters
		WHERE 1 - (profile <=> $1) >= $2
		ORDER BY profile <=> $1
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, profile, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*CharacterWithSimilarity
	for rows.Next() {
		character := &Character{}
		var similarity float64
		err := rows.Scan(
			&character.ID,
			&character.AnalysisID,
			&character.Name,
			pq.Array(&character.Aliases),
			&character.MentionCount,
			&character.Profile,
			&character.CreatedAt,
			&similarity,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &CharacterWithSimilarity{
			Character:  character,
			Similarity: similarity,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// DeleteByAnalysisID removes all characters for an analysis
func (r *PostgresCharacterRepository) DeleteByAnalysisID(ctx context.Context, analysisID uuid.UUID) error {
	query := `DELETE FROM characters WHERE analysis_id = $1`
	_, err := r.db.ExecContext(ctx, query, analysisID)
	return err
}
