// Package artifact publishes finished export outputs.
package artifact

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/afero"
)

// Sink stores an output file and returns where it ended up.
type Sink interface {
	Publish(ctx context.Context, jobID, file string) (string, error)
}

// Key is the object name of file published for jobID under prefix.
func Key(prefix, jobID, file string) string {
	return path.Join(strings.Trim(prefix, "/"), jobID, filepath.Base(file))
}

func contentType(file string) string {
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// LocalSink copies outputs into a directory tree.
type LocalSink struct {
	src  afero.Fs
	dst  afero.Fs
	root string
}

func NewLocalSink(src, dst afero.Fs, root string) *LocalSink {
	return &LocalSink{src: src, dst: dst, root: root}
}

func (s *LocalSink) Publish(ctx context.Context, jobID, file string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(s.root, filepath.FromSlash(Key("", jobID, file)))
	if err := s.dst.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("publish %s: %w", file, err)
	}

	in, err := s.src.Open(file)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", file, err)
	}
	defer in.Close()
	out, err := s.dst.Create(target)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", file, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("publish %s: %w", file, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("publish %s: %w", file, err)
	}
	return target, nil
}

// S3Config addresses an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Sink uploads outputs to a bucket.
type S3Sink struct {
	client *minio.Client
	src    afero.Fs
	cfg    S3Config
}

func NewS3Sink(cfg S3Config, src afero.Fs) (*S3Sink, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &S3Sink{client: client, src: src, cfg: cfg}, nil
}

func (s *S3Sink) Publish(ctx context.Context, jobID, file string) (string, error) {
	f, err := s.src.Open(file)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", file, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", file, err)
	}

	key := Key(s.cfg.Prefix, jobID, file)
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: contentType(file),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return "s3://" + s.cfg.Bucket + "/" + key, nil
}

var (
	_ Sink = (*LocalSink)(nil)
	_ Sink = (*S3Sink)(nil)
)
