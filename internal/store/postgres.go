package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"idsexport/internal/export"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveJob inserts job or overwrites the stored row with the same id.
func (s *PostgresStore) SaveJob(ctx context.Context, job export.Job) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO export_jobs (id, format, source, destination, preset_name, state, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			preset_name = EXCLUDED.preset_name,
			state = EXCLUDED.state,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`, job.ID, string(job.Format), job.Source, job.Destination, job.PresetName, string(job.State), job.Error, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (JobRecord, error) {
	var rec JobRecord
	var format, state string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, format, source, destination, preset_name, state, error, created_at, updated_at
		FROM export_jobs WHERE id=$1
	`, id).Scan(&rec.ID, &format, &rec.Source, &rec.Destination, &rec.PresetName, &state, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return JobRecord{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return JobRecord{}, fmt.Errorf("lookup job %s: %w", id, err)
	}
	rec.Format = export.Format(format)
	rec.State = export.State(state)

	rows, err := s.db.QueryContext(ctx, `SELECT location FROM export_artifacts WHERE job_id=$1 ORDER BY published_at, location`, id)
	if err != nil {
		return JobRecord{}, fmt.Errorf("list artifacts %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return JobRecord{}, fmt.Errorf("scan artifact: %w", err)
		}
		rec.Artifacts = append(rec.Artifacts, loc)
	}
	if err := rows.Err(); err != nil {
		return JobRecord{}, fmt.Errorf("list artifacts %s: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) AddArtifact(ctx context.Context, id, location string) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO export_artifacts (job_id, location)
		SELECT id, $2 FROM export_jobs WHERE id=$1
		ON CONFLICT (job_id, location) DO NOTHING
	`, id, location)
	if err != nil {
		return fmt.Errorf("add artifact %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := s.GetJob(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

var _ Ledger = (*PostgresStore)(nil)
