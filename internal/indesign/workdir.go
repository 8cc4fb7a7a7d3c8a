package indesign

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Workdir is a per-document directory visible to both this process
// (client path on Shared) and the server (server path).
type Workdir struct {
	local  afero.Fs
	shared afero.Fs
	client string
	server string
	style  PathStyle
}

// NewWorkdir creates a unique sub-directory of clientRoot on shared.
func NewWorkdir(local, shared afero.Fs, clientRoot, serverRoot string, style PathStyle) (*Workdir, error) {
	if err := shared.MkdirAll(clientRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create workdir root: %w", err)
	}
	dir, err := afero.TempDir(shared, clientRoot, "ids-")
	if err != nil {
		return nil, fmt.Errorf("create workdir: %w", err)
	}
	return &Workdir{
		local:  local,
		shared: shared,
		client: dir,
		server: style.Join(serverRoot, filepath.Base(dir)),
		style:  style,
	}, nil
}

// ClientPath returns the path of name inside the workdir as seen locally.
func (w *Workdir) ClientPath(name string) string { return filepath.Join(w.client, name) }

// ServerPath returns the path of name inside the workdir as seen by the server.
func (w *Workdir) ServerPath(name string) string { return w.style.Join(w.server, name) }

// StageIn copies src from the local filesystem into the workdir and returns
// the staged base name.
func (w *Workdir) StageIn(src string) (string, error) {
	name := filepath.Base(src)
	if err := copyFile(w.local, src, w.shared, w.ClientPath(name)); err != nil {
		return "", fmt.Errorf("stage %s: %w", src, err)
	}
	return name, nil
}

// Collect copies the workdir file name to dest on the local filesystem.
func (w *Workdir) Collect(name, dest string) error {
	if err := w.local.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("collect %s: %w", name, err)
	}
	if err := copyFile(w.shared, w.ClientPath(name), w.local, dest); err != nil {
		return fmt.Errorf("collect %s: %w", name, err)
	}
	return nil
}

// CollectZip archives the workdir directory name into dest. Entry names
// are relative to that directory and use forward slashes.
func (w *Workdir) CollectZip(name, dest string) (err error) {
	root := w.ClientPath(name)
	if ok, err := afero.DirExists(w.shared, root); err != nil || !ok {
		return fmt.Errorf("collect %s: package directory missing", name)
	}
	if err := w.local.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("collect %s: %w", name, err)
	}
	out, err := w.local.Create(dest)
	if err != nil {
		return fmt.Errorf("collect %s: %w", name, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(out)
	walkErr := afero.Walk(w.shared, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = strings.ReplaceAll(rel, string(filepath.Separator), "/")
		hdr.Method = zip.Deflate
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := w.shared.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(fw, f)
		return err
	})
	if walkErr != nil {
		_ = zw.Close()
		return fmt.Errorf("zip %s: %w", name, walkErr)
	}
	return zw.Close()
}

// Remove deletes the workdir and everything in it.
func (w *Workdir) Remove() error {
	return w.shared.RemoveAll(w.client)
}

func copyFile(srcFs afero.Fs, src string, dstFs afero.Fs, dst string) error {
	in, err := srcFs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := dstFs.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
