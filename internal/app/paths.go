package app

import (
	"path/filepath"
	"strings"

	"idsexport/internal/export"
)

// PathPolicy confines request paths to the configured roots. Relative paths
// are taken relative to their root; an empty root admits nothing.
type PathPolicy struct {
	SourceRoot string
	OutputRoot string
}

func (p PathPolicy) apply(req export.Request) (export.Request, error) {
	var err error
	if req.Source, err = confine("source", p.SourceRoot, req.Source); err != nil {
		return req, err
	}
	if req.Destination, err = confine("destination", p.OutputRoot, req.Destination); err != nil {
		return req, err
	}
	return req, nil
}

// confine returns the cleaned absolute form of path when it lies strictly
// below root, both as written and after resolving symlinks that exist.
func confine(field, root, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if root == "" {
		return "", &PathError{Field: field, Path: path}
	}
	root = filepath.Clean(root)
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, full)
	}
	full = filepath.Clean(full)

	if !within(root, full) || !within(evalExisting(root), evalExisting(full)) {
		return "", &PathError{Field: field, Path: path, Root: root}
	}
	return full, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// evalExisting resolves symlinks in p, or in its parent when p itself does
// not exist yet. Paths with no existing prefix are returned unchanged.
func evalExisting(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil {
		return filepath.Join(resolved, filepath.Base(p))
	}
	return p
}
