package indesign

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PathStyle is the path syntax of the machine running InDesign Server.
type PathStyle string

const (
	PathStylePosix   PathStyle = "posix"
	PathStyleWindows PathStyle = "windows"
)

// ParsePathStyle validates s. An empty string selects posix.
func ParsePathStyle(s string) (PathStyle, error) {
	switch PathStyle(strings.ToLower(s)) {
	case "", PathStylePosix:
		return PathStylePosix, nil
	case PathStyleWindows:
		return PathStyleWindows, nil
	default:
		return "", fmt.Errorf("invalid server path style %q (want posix or windows)", s)
	}
}

// Join joins elements with the separator of the style. Names are
// NFC-normalised: files staged from macOS clients arrive decomposed.
func (st PathStyle) Join(elem ...string) string {
	for i, e := range elem {
		elem[i] = norm.NFC.String(e)
	}
	if st != PathStyleWindows {
		return path.Join(elem...)
	}

	parts := make([]string, 0, len(elem))
	for i, e := range elem {
		e = strings.ReplaceAll(e, "/", `\`)
		if i > 0 {
			e = strings.Trim(e, `\`)
		} else {
			e = strings.TrimRight(e, `\`)
		}
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, `\`)
}
