package export

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/charmbracelet/log"
)

// Service resolves requests and runs them against a Host, one at a time.
type Service struct {
	host     Host
	resolver Resolver
	observer Observer
	logger   *log.Logger

	// Now and NewID are replaceable in tests.
	Now   func() time.Time
	NewID func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithObserver registers o for job state changes.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// WithLogger sets the logger used by the service and its resolver.
func WithLogger(l *log.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
		s.resolver.Logger = l
	}
}

// NewService creates a new export service
func NewService(host Host, opts ...ServiceOption) *Service {
	s := &Service{
		host:   host,
		logger: log.Default(),
		Now:    time.Now,
		NewID:  newJobID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newJobID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return "job_" + hex.EncodeToString(b)
}

// Environment asks the host for its version, capabilities and installed
// presets without opening a document.
func (s *Service) Environment(ctx context.Context) (Environment, error) {
	env, err := s.host.Environment(ctx)
	if err != nil {
		return Environment{}, hostError("environment", err)
	}
	return env, nil
}

// plan is the outcome of resolution: everything the invoke phase needs.
type plan struct {
	preset      string
	pdf         *PDFSettings
	packaging   *PackagingParams
	updateLinks bool
}

// Run resolves req and dispatches it to the host. The returned Result is
// non-nil whenever a job was created, including on failure, so callers can
// report the job id alongside the error.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	now := s.Now()
	job := Job{
		ID:          s.NewID(),
		Format:      req.Format,
		Source:      req.Source,
		Destination: req.Destination,
		State:       StateIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res := &Result{Job: job, Output: req.Destination, MimeType: req.Format.MimeType()}
	s.notify(job)

	s.transition(&job, StateResolving)
	p, err := s.resolve(req)
	if err != nil {
		return s.fail(res, &job, err)
	}
	job.PresetName = p.preset
	s.transition(&job, StateInvoking)

	links, err := s.invoke(ctx, req, p)
	res.LinksUpdate = links
	res.PresetName = p.preset
	res.PDF = p.pdf
	res.Packaging = p.packaging
	if err != nil {
		return s.fail(res, &job, err)
	}

	s.transition(&job, StateDone)
	res.Job = job
	s.logger.Info("export finished", "job", job.ID, "format", job.Format, "output", res.Output)
	return res, nil
}

// Resolve runs only the resolution phase and returns what would be sent to
// the host. Nothing is opened.
func (s *Service) Resolve(req Request) (*Result, error) {
	p, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	return &Result{
		Job:        Job{Format: req.Format, Source: req.Source, Destination: req.Destination, PresetName: p.preset},
		Output:     req.Destination,
		MimeType:   req.Format.MimeType(),
		PresetName: p.preset,
		PDF:        p.pdf,
		Packaging:  p.packaging,
	}, nil
}

func (s *Service) resolve(req Request) (plan, error) {
	if err := req.Format.Validate(); err != nil {
		return plan{}, err
	}
	if req.Source == "" {
		return plan{}, &MissingRequiredOptionError{Field: "source"}
	}
	if req.Destination == "" {
		return plan{}, &MissingRequiredOptionError{Field: "destination"}
	}

	var p plan
	switch req.Format {
	case FormatPDF:
		if name, ok := PresetName(req.Options); ok {
			p.preset = name
			return p, nil
		}
		settings, err := s.resolver.ResolvePDF(req.Options)
		if err != nil {
			return plan{}, err
		}
		p.pdf = settings
		p.updateLinks = settings.UpdateLinks
	case FormatJPEG, FormatIDML:
		p.updateLinks = req.Options.Bool(OptUpdateLinks, false)
	case FormatPackaging:
		params := s.resolver.ResolvePackaging(req.Options)
		p.packaging = &params
	case FormatSaveAs:
		p.updateLinks = true
	}
	return p, nil
}

// invoke opens the source, performs the operation and always closes the
// document once it was opened.
func (s *Service) invoke(ctx context.Context, req Request, p plan) (updated int, err error) {
	doc, err := s.host.Open(ctx, req.Source)
	if err != nil {
		return 0, hostError("open", err)
	}
	defer func() {
		if cerr := doc.Close(context.WithoutCancel(ctx)); cerr != nil {
			err = errors.Join(err, hostError("close", cerr))
		}
	}()

	if p.pdf != nil {
		env, err := s.host.Environment(ctx)
		if err != nil {
			return 0, hostError("environment", err)
		}
		if err := Finalize(p.pdf, env); err != nil {
			return 0, err
		}
	}

	if p.updateLinks {
		if updated, err = UpdateOutOfDateLinks(ctx, doc); err != nil {
			return updated, err
		}
	}

	switch req.Format {
	case FormatPDF:
		if p.preset != "" {
			return updated, hostError("export pdf preset", doc.ExportPDFPreset(ctx, req.Destination, p.preset))
		}
		return updated, hostError("export pdf", doc.ExportPDF(ctx, req.Destination, p.pdf))
	case FormatJPEG, FormatIDML:
		return updated, hostError("export "+string(req.Format), doc.Export(ctx, req.Format, req.Destination))
	case FormatPackaging:
		return updated, hostError("package", doc.PackageForPrint(ctx, req.Destination, *p.packaging))
	case FormatSaveAs:
		return updated, hostError("save", doc.Save(ctx, req.Destination))
	default:
		return updated, &InvalidFormatError{Value: string(req.Format)}
	}
}

// UpdateOutOfDateLinks refreshes every link the host reports as out of
// date and returns how many were updated.
func UpdateOutOfDateLinks(ctx context.Context, doc Document) (int, error) {
	links, err := doc.Links(ctx)
	if err != nil {
		return 0, hostError("links", err)
	}
	updated := 0
	for _, l := range links {
		if l.Status() != LinkOutOfDate {
			continue
		}
		if err := l.Update(ctx); err != nil {
			return updated, hostError("update link "+l.Name(), err)
		}
		updated++
	}
	return updated, nil
}

func (s *Service) fail(res *Result, job *Job, err error) (*Result, error) {
	job.Error = err.Error()
	s.transition(job, StateFailed)
	res.Job = *job
	s.logger.Error("export failed", "job", job.ID, "format", job.Format, "err", err)
	return res, err
}

func (s *Service) transition(job *Job, next State) {
	if err := job.advance(next, s.Now()); err != nil {
		s.logger.Error("job state", "err", err)
		return
	}
	s.notify(*job)
}

func (s *Service) notify(job Job) {
	if s.observer == nil {
		return
	}
	if err := s.observer.JobChanged(job); err != nil {
		s.logger.Warn("job observer failed", "job", job.ID, "state", job.State, "err", err)
	}
}
