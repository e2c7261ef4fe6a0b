package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Analysis represents a stored document analysis. Result holds the
// canonical JSON report produced by the pipeline.
type Analysis struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Filename      string
	Content       string
	SentenceCount int
	Result        []byte
	CreatedAt     time.Time
}

// AnalysisRepository defines the interface for analysis storage operations
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Analysis, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresAnalysisRepository implements AnalysisRepository using PostgreSQL
type PostgresAnalysisRepository struct {
	db *sql.DB
}

// NewPostgresAnalysisRepository creates a new PostgresAnalysisRepository
func NewPostgresAnalysisRepository(db *sql.DB) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

// Create inserts a new analysis into the database
func (r *PostgresAnalysisRepository) Create(ctx context.Context, analysis *Analysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO analyses (id, owner_id, filename, content, sentence_count, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.OwnerID,
		analysis.Filename,
		analysis.Content,
		analysis.SentenceCount,
		analysis.Result,
		analysis.CreatedAt,
	)

	return err
}

// GetByID retrieves an analysis by its ID
func (r *PostgresAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	query := `
		SELECT id, owner_id, filename, content, sentence_count, result, created_at
		FROM analyses
		WHERE id = $1
	`

	analysis := &Analysis{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&analysis.ID,
		&analysis.OwnerID,
		&analysis.Filename,
		&analysis.Content,
		&analysis.SentenceCount,
		&analysis.Result,
		&analysis.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return analysis, nil
}

// GetByOwnerID retrieves all analyses owned by a user
func (r *PostgresAnalysisRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Analysis, error) {
	query := `
		SELECT id, owner_id, filename, content, sentence_count, result, created_at
		FROM analyses
		WHERE owner_id = $1
		ORDER BY created_at DESC, filename ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*Analysis
	for rows.Next() {
		analysis := &Analysis{}
		err := rows.Scan(
			&analysis.ID,
			&analysis.OwnerID,
			&analysis.Filename,
			&analysis.Content,
			&analysis.SentenceCount,
			&analysis.Result,
			&analysis.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return analyses, nil
}

// Delete removes an analysis from the database
func (r *PostgresAnalysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM analyses WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
