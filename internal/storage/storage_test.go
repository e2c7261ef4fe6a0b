package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestPostgresAnalysisRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresAnalysisRepository(db)

	analysis := &Analysis{
		OwnerID:       uuid.New(),
		Filename:      "magi.txt",
		Content:       "One dollar and eighty-seven cents.",
		SentenceCount: 1,
		Result:        []byte(`{"filename":"magi.txt"}`),
	}

	mock.ExpectExec("INSERT INTO analyses").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), analysis)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if analysis.ID == uuid.Nil {
		t.Error("expected analysis ID to be generated")
	}

	if analysis.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresAnalysisRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresAnalysisRepository(db)

	id := uuid.New()
	ownerID := uuid.New()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"id", "owner_id", "filename", "content", "sentence_count", "result", "created_at"}).
		AddRow(id, ownerID, "magi.txt", "text", 42, []byte(`{}`), createdAt)

	mock.ExpectQuery("SELECT (.+) FROM analyses WHERE id").
		WithArgs(id).
		WillReturnRows(rows)

	analysis, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if analysis == nil {
		t.Fatal("expected analysis to be returned")
	}

	if analysis.Filename != "magi.txt" {
		t.Errorf("expected filename magi.txt, got %s", analysis.Filename)
	}

	if analysis.SentenceCount != 42 {
		t.Errorf("expected 42 sentences, got %d", analysis.SentenceCount)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresAnalysisRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresAnalysisRepository(db)

	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM analyses WHERE id").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	analysis, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if analysis != nil {
		t.Error("expected nil analysis")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresRelationRepository_CreateBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRelationRepository(db)

	analysisID := uuid.New()
	relations := []*Relation{
		{
			AnalysisID:      analysisID,
			CharacterA:      "Della",
			CharacterB:      "Jim",
			Cooccurrence:    3,
			RelationTypes:   []string{"spouse"},
			PrimaryRelation: "spouse",
			Confidence:      0.8,
			Strength:        0.76,
		},
		{
			AnalysisID:      analysisID,
			CharacterA:      "Della",
			CharacterB:      "Sofronie",
			Cooccurrence:    2,
			RelationTypes:   []string{"acquaintances"},
			PrimaryRelation: "acquaintances",
			Confidence:      0.4,
			Strength:        0.67,
		},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO relations")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = repo.CreateBatch(context.Background(), relations)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	for _, rel := range relations {
		if rel.ID == uuid.Nil {
			t.Error("expected relation ID to be generated")
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresRelationRepository_CreateBatch_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRelationRepository(db)

	relations := []*Relation{
		{AnalysisID: uuid.New(), CharacterA: "Della", CharacterB: "Jim"},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO relations")
	prep.ExpectExec().WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err = repo.CreateBatch(context.Background(), relations)
	if err == nil {
		t.Error("expected error from failed insert")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresCharacterRepository_CreateBatch_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresCharacterRepository(db)

	if err := repo.CreateBatch(context.Background(), nil); err != nil {
		t.Errorf("expected no error for empty batch, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
