package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"idsexport/internal/artifact"
	"idsexport/internal/export"
	"idsexport/internal/hostlock"
	"idsexport/internal/options"
	"idsexport/internal/store"
)

// Runner executes export requests against the host. *export.Service
// implements it.
type Runner interface {
	Run(ctx context.Context, req export.Request) (*export.Result, error)
	Environment(ctx context.Context) (export.Environment, error)
}

type Deps struct {
	Exports Runner
	Ledger  store.Ledger
	Locker  hostlock.Locker
	// Sink is optional; outputs are only published when set.
	Sink artifact.Sink
	// HostName identifies the leased server, usually its URL.
	HostName  string
	LeaseWait time.Duration
	// Paths confines request paths; the zero value rejects every path.
	Paths  PathPolicy
	Logger *log.Logger
}

type Service struct {
	exports   Runner
	ledger    store.Ledger
	locker    hostlock.Locker
	sink      artifact.Sink
	hostName  string
	leaseWait time.Duration
	paths     PathPolicy
	logger    *log.Logger
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	if d.Ledger == nil {
		d.Ledger = store.NewMemoryStore()
	}
	if d.Locker == nil {
		d.Locker = hostlock.NewLocalLocker()
	}
	return &Service{
		exports:   d.Exports,
		ledger:    d.Ledger,
		locker:    d.Locker,
		sink:      d.Sink,
		hostName:  d.HostName,
		leaseWait: d.LeaseWait,
		paths:     d.Paths,
		logger:    d.Logger,
	}
}

type ExportInput struct {
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Format      string        `json:"format"`
	Options     options.Store `json:"options"`
}

// Request converts the input, inferring the format from the destination
// when none is given.
func (in ExportInput) Request() export.Request {
	format := export.Format(strings.ToLower(strings.TrimSpace(in.Format)))
	if format == "" {
		format = export.FormatForPath(in.Destination)
	}
	return export.Request{
		Format:      format,
		Source:      strings.TrimSpace(in.Source),
		Destination: strings.TrimSpace(in.Destination),
		Options:     in.Options,
	}
}

// Export runs one request while holding the host lease and publishes the
// output on success. The returned record is populated whenever a job was
// created, including when err is non-nil.
func (s *Service) Export(ctx context.Context, in ExportInput) (store.JobRecord, error) {
	req := in.Request()
	if err := req.Format.Validate(); err != nil {
		return store.JobRecord{}, err
	}
	req, err := s.paths.apply(req)
	if err != nil {
		return store.JobRecord{}, err
	}

	lease, err := s.locker.Acquire(ctx, s.hostName, s.leaseWait)
	if err != nil {
		return store.JobRecord{}, err
	}
	res, runErr := s.exports.Run(ctx, req)
	if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("release host lease", "request_id", RequestID(ctx), "host", s.hostName, "err", err)
	}
	if res == nil {
		return store.JobRecord{}, runErr
	}

	rec := store.JobRecord{Job: res.Job}
	if runErr == nil && s.sink != nil {
		loc, err := s.sink.Publish(ctx, res.Job.ID, res.Output)
		if err != nil {
			s.logger.Error("publish output", "request_id", RequestID(ctx), "job", res.Job.ID, "output", res.Output, "err", err)
			return rec, domainError(http.StatusBadGateway, "PUBLISH_FAILED", err.Error(), map[string]any{"job": res.Job})
		}
		if err := s.ledger.AddArtifact(ctx, res.Job.ID, loc); err != nil {
			s.logger.Warn("record artifact", "job", res.Job.ID, "err", err)
		}
		rec.Artifacts = append(rec.Artifacts, loc)
	}

	if stored, err := s.ledger.GetJob(ctx, res.Job.ID); err == nil {
		rec = stored
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("lookup job", "job", res.Job.ID, "err", err)
	}
	return rec, runErr
}

// Presets reports the host environment. The host is queried under the lease
// so the call never interleaves with a running export.
func (s *Service) Presets(ctx context.Context) (export.Environment, error) {
	lease, err := s.locker.Acquire(ctx, s.hostName, s.leaseWait)
	if err != nil {
		return export.Environment{}, err
	}
	env, err := s.exports.Environment(ctx)
	if rerr := lease.Release(context.WithoutCancel(ctx)); rerr != nil {
		s.logger.Warn("release host lease", "request_id", RequestID(ctx), "host", s.hostName, "err", rerr)
	}
	return env, err
}

func (s *Service) Job(ctx context.Context, id string) (store.JobRecord, error) {
	return s.ledger.GetJob(ctx, id)
}

// Ready reports per-dependency health.
func (s *Service) Ready(ctx context.Context) map[string]error {
	return map[string]error{
		"ledger": s.ledger.Ping(ctx),
		"lease":  s.locker.Ping(ctx),
	}
}
