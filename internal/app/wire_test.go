package app

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"idsexport/internal/artifact"
	"idsexport/internal/config"
)

func TestBuildWithRedisLease(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Server.ServerWorkdir = cfg.Server.ClientWorkdir
	cfg.Lease.RedisURL = "redis://" + s.Addr()

	rt, err := Build(context.Background(), cfg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer rt.Close()

	for name, err := range rt.Service.Ready(context.Background()) {
		if err != nil {
			t.Errorf("%s not ready: %v", name, err)
		}
	}
	if rt.Keys.Enabled() {
		t.Error("no keys configured, keyring should be disabled")
	}

	s.Close()
	if err := rt.Service.Ready(context.Background())["lease"]; err == nil {
		t.Error("expected lease check to fail once redis is gone")
	}
}

func TestBuildRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.PathStyle = "vms"
	if _, err := Build(context.Background(), cfg, log.New(io.Discard)); err == nil {
		t.Fatal("expected error for unknown path style")
	}

	cfg = config.Default()
	cfg.APIKeys = []string{"ci:plaintext"}
	if _, err := Build(context.Background(), cfg, log.New(io.Discard)); err == nil {
		t.Fatal("expected error for unhashed api key")
	}
}

func TestNewKeyring(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("prepress-secret-0001"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	keys, err := NewKeyring([]string{"prepress:" + string(hash)})
	if err != nil {
		t.Fatalf("NewKeyring() error = %v", err)
	}
	if name, err := keys.Verify("prepress-secret-0001"); err != nil || name != "prepress" {
		t.Errorf("Verify() = %q, %v", name, err)
	}
}

func TestNewSink(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink, err := NewSink(config.PublishConfig{}, fs)
	if err != nil || sink != nil {
		t.Fatalf("disabled publishing = %v, %v", sink, err)
	}

	sink, err = NewSink(config.PublishConfig{Kind: "local", Dir: "/published"}, fs)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sink.(*artifact.LocalSink); !ok {
		t.Errorf("local sink = %T", sink)
	}

	sink, err = NewSink(config.PublishConfig{Kind: "s3", S3: config.S3Config{Endpoint: "minio:9000", Bucket: "exports"}}, fs)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sink.(*artifact.S3Sink); !ok {
		t.Errorf("s3 sink = %T", sink)
	}

	if _, err := NewSink(config.PublishConfig{Kind: "ftp"}, fs); err == nil {
		t.Error("expected error for unknown kind")
	}
}
