// Package store persists the export job ledger.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"idsexport/internal/export"
)

// ErrNotFound is returned for unknown job ids.
var ErrNotFound = errors.New("not found")

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("job %s %s", e.ID, ErrNotFound) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// JobRecord is a job as stored, plus where its outputs were published.
type JobRecord struct {
	export.Job
	Artifacts []string `json:"artifacts,omitempty"`
}

// Ledger records jobs and their published artifacts.
type Ledger interface {
	SaveJob(ctx context.Context, job export.Job) error
	GetJob(ctx context.Context, id string) (JobRecord, error)
	AddArtifact(ctx context.Context, id, location string) error
	Ping(ctx context.Context) error
}

// Recorder adapts a Ledger to export.Observer.
type Recorder struct {
	Ledger  Ledger
	Timeout time.Duration
	Logger  *log.Logger
}

func (r Recorder) JobChanged(job export.Job) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := r.Ledger.SaveJob(ctx, job); err != nil {
		if r.Logger != nil {
			r.Logger.Warn("record job", "job", job.ID, "state", job.State, "err", err)
		}
		return err
	}
	return nil
}

// MemoryStore keeps the ledger in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]JobRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: map[string]JobRecord{}}
}

func (s *MemoryStore) SaveJob(_ context.Context, job export.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.jobs[job.ID]
	rec.Job = job
	s.jobs[job.ID] = rec
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.jobs[id]
	if !ok {
		return JobRecord{}, &NotFoundError{ID: id}
	}
	rec.Artifacts = slices.Clone(rec.Artifacts)
	return rec, nil
}

func (s *MemoryStore) AddArtifact(_ context.Context, id, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	if !slices.Contains(rec.Artifacts, location) {
		rec.Artifacts = append(rec.Artifacts, location)
	}
	s.jobs[id] = rec
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

var (
	_ Ledger          = (*MemoryStore)(nil)
	_ export.Observer = Recorder{}
)
