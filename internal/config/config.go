// Package config loads service and CLI settings from defaults, an optional
// CUE file and IDSEXPORT_* environment variables, in increasing priority.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const EnvPrefix = "IDSEXPORT"

//go:embed config_schema.cue
var configSchema string

type Config struct {
	Addr          string        `mapstructure:"addr"`
	LogLevel      string        `mapstructure:"log_level"`
	DatabaseURL   string        `mapstructure:"database_url"`
	MigrationsDir string        `mapstructure:"migrations_dir"`
	CORSOrigin    string        `mapstructure:"cors_origin"`
	APIKeys       []string      `mapstructure:"api_keys"`
	Server        ServerConfig  `mapstructure:"server"`
	Lease         LeaseConfig   `mapstructure:"lease"`
	Publish       PublishConfig `mapstructure:"publish"`
	Paths         PathsConfig   `mapstructure:"paths"`
}

// PathsConfig bounds the files API callers may name.
type PathsConfig struct {
	SourceRoot string `mapstructure:"source_root"`
	OutputRoot string `mapstructure:"output_root"`
}

// ServerConfig addresses the InDesign Server and its shared working directory.
type ServerConfig struct {
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ClientWorkdir string        `mapstructure:"client_workdir"`
	// ServerWorkdir defaults to ClientWorkdir when the server shares this
	// machine's view of the filesystem.
	ServerWorkdir string `mapstructure:"server_workdir"`
	PathStyle     string `mapstructure:"path_style"`
	KeepWorkdir   bool   `mapstructure:"keep_workdir"`
}

type LeaseConfig struct {
	// RedisURL enables cross-process leases; empty keeps them in process.
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
	Wait     time.Duration `mapstructure:"wait"`
}

type PublishConfig struct {
	// Kind is "", "local" or "s3".
	Kind string   `mapstructure:"kind"`
	Dir  string   `mapstructure:"dir"`
	S3   S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

func Default() Config {
	return Config{
		Addr:          ":8787",
		LogLevel:      "info",
		MigrationsDir: "./db/migrations",
		CORSOrigin:    "*",
		APIKeys:       []string{},
		Server: ServerConfig{
			URL:           "http://localhost:12345/",
			Timeout:       10 * time.Minute,
			ClientWorkdir: "/var/tmp/idsexport",
			PathStyle:     "posix",
		},
		Lease: LeaseConfig{
			TTL:  15 * time.Minute,
			Wait: 30 * time.Second,
		},
		Publish: PublishConfig{
			S3: S3Config{Region: "us-east-1", UseSSL: true},
		},
		Paths: PathsConfig{
			SourceRoot: "/srv/idsexport/in",
			OutputRoot: "/srv/idsexport/out",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("migrations_dir", d.MigrationsDir)
	v.SetDefault("cors_origin", d.CORSOrigin)
	v.SetDefault("api_keys", d.APIKeys)
	v.SetDefault("server.url", d.Server.URL)
	v.SetDefault("server.timeout", d.Server.Timeout)
	v.SetDefault("server.client_workdir", d.Server.ClientWorkdir)
	v.SetDefault("server.server_workdir", d.Server.ServerWorkdir)
	v.SetDefault("server.path_style", d.Server.PathStyle)
	v.SetDefault("server.keep_workdir", d.Server.KeepWorkdir)
	v.SetDefault("lease.redis_url", d.Lease.RedisURL)
	v.SetDefault("lease.ttl", d.Lease.TTL)
	v.SetDefault("lease.wait", d.Lease.Wait)
	v.SetDefault("publish.kind", d.Publish.Kind)
	v.SetDefault("publish.dir", d.Publish.Dir)
	v.SetDefault("publish.s3.endpoint", d.Publish.S3.Endpoint)
	v.SetDefault("publish.s3.region", d.Publish.S3.Region)
	v.SetDefault("publish.s3.bucket", d.Publish.S3.Bucket)
	v.SetDefault("publish.s3.prefix", d.Publish.S3.Prefix)
	v.SetDefault("publish.s3.access_key", d.Publish.S3.AccessKey)
	v.SetDefault("publish.s3.secret_key", d.Publish.S3.SecretKey)
	v.SetDefault("publish.s3.use_ssl", d.Publish.S3.UseSSL)
	v.SetDefault("paths.source_root", d.Paths.SourceRoot)
	v.SetDefault("paths.output_root", d.Paths.OutputRoot)
}

// Load builds the configuration. path names an optional CUE file; when it
// is empty only defaults and the environment apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Server.ServerWorkdir == "" {
		cfg.Server.ServerWorkdir = cfg.Server.ClientWorkdir
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks constraints that span several fields.
func (c Config) Validate() error {
	var errs []error
	switch c.Server.PathStyle {
	case "posix", "windows":
	default:
		errs = append(errs, fmt.Errorf("server.path_style: unknown style %q", c.Server.PathStyle))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, errors.New("server.timeout must be positive"))
	}
	for name, root := range map[string]string{"paths.source_root": c.Paths.SourceRoot, "paths.output_root": c.Paths.OutputRoot} {
		if !filepath.IsAbs(root) {
			errs = append(errs, fmt.Errorf("%s must be an absolute path, got %q", name, root))
		}
	}
	switch c.Publish.Kind {
	case "":
	case "local":
		if c.Publish.Dir == "" {
			errs = append(errs, errors.New("publish.dir is required for local publishing"))
		}
	case "s3":
		if c.Publish.S3.Endpoint == "" || c.Publish.S3.Bucket == "" {
			errs = append(errs, errors.New("publish.s3.endpoint and publish.s3.bucket are required for s3 publishing"))
		}
	default:
		errs = append(errs, fmt.Errorf("publish.kind: unknown kind %q", c.Publish.Kind))
	}
	return errors.Join(errs...)
}

func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return userValue.Err()
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return err
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("merge config: %w", err)
	}
	return nil
}
