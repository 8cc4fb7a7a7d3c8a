package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"idsexport/internal/artifact"
	"idsexport/internal/auth"
	"idsexport/internal/config"
	"idsexport/internal/export"
	"idsexport/internal/hostlock"
	"idsexport/internal/indesign"
	"idsexport/internal/store"
)

// NewHost connects an InDesign host to runner using the server settings.
// A nil runner talks SOAP to cfg.Server.URL.
func NewHost(cfg config.Config, runner indesign.ScriptRunner, fs afero.Fs, logger *log.Logger) (*indesign.Host, error) {
	style, err := indesign.ParsePathStyle(cfg.Server.PathStyle)
	if err != nil {
		return nil, err
	}
	if runner == nil {
		runner = indesign.NewClient(cfg.Server.URL, cfg.Server.Timeout, logger)
	}
	return indesign.NewHost(runner, indesign.Config{
		ClientWorkdir: cfg.Server.ClientWorkdir,
		ServerWorkdir: cfg.Server.ServerWorkdir,
		ServerStyle:   style,
		KeepWorkdir:   cfg.Server.KeepWorkdir,
	}, fs, fs, logger), nil
}

// NewSink builds the configured publishing target, or nil when publishing
// is off.
func NewSink(cfg config.PublishConfig, fs afero.Fs) (artifact.Sink, error) {
	switch cfg.Kind {
	case "":
		return nil, nil
	case "local":
		return artifact.NewLocalSink(fs, fs, cfg.Dir), nil
	case "s3":
		sink, err := artifact.NewS3Sink(artifact.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		}, fs)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown publish kind %q", cfg.Kind)
	}
}

// NewKeyring parses the configured "name:hash" API keys.
func NewKeyring(entries []string) (*auth.Keyring, error) {
	keys := make([]auth.Key, 0, len(entries))
	for _, entry := range entries {
		key, err := auth.ParseKey(entry)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return auth.NewKeyring(keys), nil
}

// Runtime is the fully wired export service with the resources it owns.
type Runtime struct {
	Service *Service
	Keys    *auth.Keyring
	closers []func() error
}

// Build wires the service from cfg: Postgres ledger and Redis lease when
// configured, in-memory otherwise.
func Build(ctx context.Context, cfg config.Config, logger *log.Logger) (*Runtime, error) {
	rt := &Runtime{}
	fail := func(err error) (*Runtime, error) {
		return nil, errors.Join(err, rt.Close())
	}

	var ledger store.Ledger = store.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fail(err)
		}
		rt.closers = append(rt.closers, db.Close)
		applied, err := store.Migrate(ctx, db, afero.NewOsFs(), cfg.MigrationsDir)
		if err != nil {
			return fail(err)
		}
		if len(applied) > 0 {
			logger.Info("applied migrations", "versions", applied)
		}
		ledger = store.NewPostgresStore(db)
	} else {
		logger.Warn("no database configured; job ledger is kept in memory")
	}

	var locker hostlock.Locker = hostlock.NewLocalLocker()
	if cfg.Lease.RedisURL != "" {
		redisLocker, err := hostlock.NewRedisLocker(cfg.Lease.RedisURL, cfg.Lease.TTL)
		if err != nil {
			return fail(err)
		}
		rt.closers = append(rt.closers, redisLocker.Close)
		locker = redisLocker
	}

	fs := afero.NewOsFs()
	host, err := NewHost(cfg, nil, fs, logger)
	if err != nil {
		return fail(err)
	}
	sink, err := NewSink(cfg.Publish, fs)
	if err != nil {
		return fail(err)
	}
	keys, err := NewKeyring(cfg.APIKeys)
	if err != nil {
		return fail(err)
	}

	exports := export.NewService(host,
		export.WithLogger(logger),
		export.WithObserver(store.Recorder{Ledger: ledger, Logger: logger}),
	)
	rt.Keys = keys
	rt.Service = NewService(Deps{
		Exports:   exports,
		Ledger:    ledger,
		Locker:    locker,
		Sink:      sink,
		HostName:  cfg.Server.URL,
		LeaseWait: cfg.Lease.Wait,
		Paths: PathPolicy{
			SourceRoot: cfg.Paths.SourceRoot,
			OutputRoot: cfg.Paths.OutputRoot,
		},
		Logger: logger,
	})
	return rt, nil
}

func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	return errors.Join(errs...)
}
