package options

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Destination is one output target of a multi-destination command line:
// "/path/out.pdf|colorSpace=CMYK,cropMarks;/path/out.jpeg".
type Destination struct {
	Path    string
	Options Store
}

// Ext returns the lower-cased destination extension without the dot.
func (d Destination) Ext() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(d.Path), "."))
}

// ParseDestinations splits a ";"-separated destination list. Each entry is
// a path optionally followed by "|" and an option list.
func ParseDestinations(arg string) ([]Destination, error) {
	var out []Destination
	for _, entry := range strings.Split(arg, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		path, rawOpts, _ := strings.Cut(entry, "|")
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, fmt.Errorf("parse destination %q: empty path", entry)
		}
		opts, err := Parse(rawOpts)
		if err != nil {
			return nil, fmt.Errorf("parse destination %q: %w", path, err)
		}
		out = append(out, Destination{Path: path, Options: opts})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parse destinations: no destination given")
	}
	return out, nil
}
