// Package export resolves caller options into typed host export settings and
// dispatches export, packaging and save-as requests to the document host.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"idsexport/internal/options"
)

// Format represents the requested output kind
type Format string

const (
	FormatPDF       Format = "pdf"
	FormatJPEG      Format = "jpeg"
	FormatIDML      Format = "idml"
	FormatPackaging Format = "packaging"
	FormatSaveAs    Format = "saveas"
)

// Formats lists every supported format in dispatch order.
var Formats = []Format{FormatPDF, FormatJPEG, FormatIDML, FormatPackaging, FormatSaveAs}

// Validate returns an InvalidFormatError for unknown formats.
func (f Format) Validate() error {
	for _, known := range Formats {
		if f == known {
			return nil
		}
	}
	return &InvalidFormatError{Value: string(f)}
}

// MimeType returns the content type of the artifact a format produces.
// Packaging output is shipped as a zip archive of the package directory.
func (f Format) MimeType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatJPEG:
		return "image/jpeg"
	case FormatIDML:
		return "application/vnd.adobe.indesign-idml-package"
	case FormatPackaging:
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// FormatForPath infers the format from a destination file name: .pdf, .jpg/.jpeg
// and .idml export, .zip packages, anything else is a save-as.
func FormatForPath(path string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "pdf":
		return FormatPDF
	case "jpg", "jpeg":
		return FormatJPEG
	case "idml":
		return FormatIDML
	case "zip":
		return FormatPackaging
	default:
		return FormatSaveAs
	}
}

// Request contains parameters for one export operation
type Request struct {
	Format      Format
	Source      string
	Destination string
	Options     options.Store
}

// Result contains the outcome of a completed request
type Result struct {
	Job         Job
	Output      string
	MimeType    string
	PresetName  string           `json:",omitempty"`
	PDF         *PDFSettings     `json:",omitempty"`
	Packaging   *PackagingParams `json:",omitempty"`
	LinksUpdate int
}

var (
	// ErrUnknownOptionValue indicates a supplied code has no lookup table entry.
	ErrUnknownOptionValue = errors.New("unknown option value")
	// ErrMissingRequiredOption indicates a field without a default was not supplied.
	// Store.Require failures match it as well.
	ErrMissingRequiredOption = options.ErrMissing
	// ErrInvalidFormat indicates an unrecognized output format.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrHostOperationFailed indicates the document host reported a failure.
	ErrHostOperationFailed = errors.New("host operation failed")
	// ErrPresetNotFound indicates a named preset is absent from the host.
	ErrPresetNotFound = errors.New("preset not found")
)

// UnknownOptionValueError is returned when a code is not present in its lookup table.
type UnknownOptionValueError struct {
	Field string
	Code  string
	Valid []string
}

func (e *UnknownOptionValueError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("%s: %q is not a valid value", e.Field, e.Code)
	}
	return fmt.Sprintf("%s: %q is not a valid value (want one of %s)", e.Field, e.Code, strings.Join(e.Valid, ", "))
}

func (e *UnknownOptionValueError) Unwrap() error { return ErrUnknownOptionValue }

// MissingRequiredOptionError is returned when a required option is undefined.
type MissingRequiredOptionError struct {
	Field string
}

func (e *MissingRequiredOptionError) Error() string {
	return fmt.Sprintf("%s: option is required", e.Field)
}

func (e *MissingRequiredOptionError) Unwrap() error { return ErrMissingRequiredOption }

// InvalidFormatError is returned for a format outside Formats.
type InvalidFormatError struct {
	Value string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format %q", e.Value)
}

func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// HostOperationError names the host call that failed.
type HostOperationError struct {
	Op  string
	Err error
}

func (e *HostOperationError) Error() string {
	return fmt.Sprintf("host %s: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *HostOperationError) Unwrap() []error { return []error{ErrHostOperationFailed, e.Err} }

// PresetNotFoundError is returned when a named preset is absent from the host.
type PresetNotFoundError struct {
	Kind string
	Name string
}

func (e *PresetNotFoundError) Error() string {
	return fmt.Sprintf("%s preset %q not found", e.Kind, e.Name)
}

func (e *PresetNotFoundError) Unwrap() error { return ErrPresetNotFound }

// hostError wraps err as a HostOperationError unless it already is one or
// already reports a missing preset.
func hostError(op string, err error) error {
	if err == nil {
		return nil
	}
	var hostErr *HostOperationError
	if errors.As(err, &hostErr) || errors.Is(err, ErrPresetNotFound) {
		return err
	}
	return &HostOperationError{Op: op, Err: err}
}
