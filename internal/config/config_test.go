package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "idsexport.cue")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":8787" || cfg.Server.PathStyle != "posix" || cfg.Server.Timeout != 10*time.Minute {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Server.ServerWorkdir != cfg.Server.ClientWorkdir {
		t.Errorf("server workdir = %q, want client workdir %q", cfg.Server.ServerWorkdir, cfg.Server.ClientWorkdir)
	}
	if cfg.Publish.Kind != "" || cfg.Lease.RedisURL != "" {
		t.Errorf("optional backends should be off by default: %+v", cfg)
	}
}

func TestLoadCUEFile(t *testing.T) {
	path := writeConfig(t, `
addr: ":9000"
log_level: "debug"
server: {
	url:            "http://ids.internal:18383/"
	timeout:        "90s"
	client_workdir: "/mnt/ids"
	server_workdir: "D:\\shared"
	path_style:     "windows"
}
lease: redis_url: "redis://cache:6379/2"
publish: {
	kind: "s3"
	s3: {
		endpoint: "minio:9000"
		bucket:   "exports"
	}
}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":9000" || cfg.LogLevel != "debug" {
		t.Errorf("top level = %q %q", cfg.Addr, cfg.LogLevel)
	}
	if cfg.Server.Timeout != 90*time.Second || cfg.Server.ServerWorkdir != `D:\shared` || cfg.Server.PathStyle != "windows" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Lease.RedisURL != "redis://cache:6379/2" || cfg.Lease.Wait != 30*time.Second {
		t.Errorf("lease = %+v", cfg.Lease)
	}
	if cfg.Publish.S3.Bucket != "exports" || cfg.Publish.S3.Region != "us-east-1" || !cfg.Publish.S3.UseSSL {
		t.Errorf("publish = %+v", cfg.Publish)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `server: url: "http://from-file:12345/"`)
	t.Setenv("IDSEXPORT_SERVER_URL", "http://from-env:12345/")
	t.Setenv("IDSEXPORT_SERVER_KEEP_WORKDIR", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.URL != "http://from-env:12345/" {
		t.Errorf("server.url = %q, want env value", cfg.Server.URL)
	}
	if !cfg.Server.KeepWorkdir {
		t.Error("server.keep_workdir should come from the environment")
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", `colour: "blue"`},
		{"bad path style", `server: path_style: "vms"`},
		{"bad duration", `server: timeout: "soon"`},
		{"bad log level", `log_level: "loud"`},
		{"bad api key", `api_keys: ["ci-plaintext-secret"]`},
		{"syntax", `server: {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatal("expected Load() to fail")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.cue")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Publish.Kind = "local"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "publish.dir") {
		t.Fatalf("Validate() = %v, want publish.dir error", err)
	}

	cfg.Publish.Kind = "ftp"
	cfg.Server.PathStyle = "mac"
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "publish.kind") || !strings.Contains(err.Error(), "path_style") {
		t.Fatalf("Validate() = %v, want both errors", err)
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadPathRoots(t *testing.T) {
	path := writeConfig(t, `
paths: {
	source_root: "/data/jobs/in"
	output_root: "/data/jobs/out"
}
`)
	t.Setenv("IDSEXPORT_PATHS_OUTPUT_ROOT", "/mnt/exports")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Paths.SourceRoot != "/data/jobs/in" || cfg.Paths.OutputRoot != "/mnt/exports" {
		t.Errorf("paths = %+v", cfg.Paths)
	}

	cfg = Default()
	cfg.Paths.SourceRoot = "relative/in"
	cfg.Paths.OutputRoot = ""
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "paths.source_root") || !strings.Contains(err.Error(), "paths.output_root") {
		t.Fatalf("Validate() = %v, want both path root errors", err)
	}
}
