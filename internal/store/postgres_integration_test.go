package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"idsexport/internal/export"
)

func openTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := strings.TrimSpace(os.Getenv("IDSEXPORT_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("IDSEXPORT_TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := resetPublicSchema(ctx, db); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	if err := ApplyMigrations(ctx, db, filepath.Join("..", "..", "db", "migrations")); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return NewPostgresStore(db)
}

func TestPostgresStoreJobLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetJob(ctx, "job_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetJob before insert = %v, want ErrNotFound", err)
	}

	job := sampleJob(export.StateIdle)
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}
	job.State = export.StateFailed
	job.Error = "host operation failed: export pdf"
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob update failed: %v", err)
	}
	if err := s.AddArtifact(ctx, job.ID, "s3://exports/job_1/brochure.pdf"); err != nil {
		t.Fatalf("AddArtifact failed: %v", err)
	}
	if err := s.AddArtifact(ctx, "job_missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddArtifact for unknown job = %v, want ErrNotFound", err)
	}

	got, err := s.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.State != export.StateFailed || got.Error != job.Error || got.Format != export.FormatPDF {
		t.Errorf("record = %+v", got)
	}
	if !got.CreatedAt.Equal(job.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, job.CreatedAt)
	}
	if len(got.Artifacts) != 1 {
		t.Errorf("artifacts = %v", got.Artifacts)
	}
}

// TestPostgresStoreRejectsUnknownState verifies the state CHECK constraint.
func TestPostgresStoreRejectsUnknownState(t *testing.T) {
	s := openTestStore(t)
	err := s.SaveJob(context.Background(), sampleJob(export.State("paused")))
	if err == nil {
		t.Fatal("expected unknown state to be rejected")
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected PgError, got %T: %v", err, err)
	}
	if pgErr.Code != "23514" || pgErr.ConstraintName != "export_jobs_state_check" {
		t.Errorf("code = %s constraint = %s", pgErr.Code, pgErr.ConstraintName)
	}
}
