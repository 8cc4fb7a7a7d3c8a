package app

import (
	"errors"
	"fmt"
	"net/http"

	"idsexport/internal/auth"
	"idsexport/internal/export"
	"idsexport/internal/hostlock"
	"idsexport/internal/store"
)

// ErrPathNotAllowed is wrapped by PathError.
var ErrPathNotAllowed = errors.New("path not allowed")

// PathError reports a request path outside its configured root.
type PathError struct {
	Field string
	Path  string
	Root  string
}

func (e *PathError) Error() string {
	if e.Root == "" {
		return fmt.Sprintf("%s %q: no root is configured", e.Field, e.Path)
	}
	return fmt.Sprintf("%s %q: must be inside %s", e.Field, e.Path, e.Root)
}

func (e *PathError) Unwrap() error { return ErrPathNotAllowed }

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// mapError translates the export error taxonomy into an HTTP response.
func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}

	var unknown *export.UnknownOptionValueError
	if errors.As(err, &unknown) {
		var fields []map[string]any
		for _, e := range unwrapAll(err) {
			if u, ok := e.(*export.UnknownOptionValueError); ok {
				fields = append(fields, map[string]any{"field": u.Field, "value": u.Code, "valid": u.Valid})
			}
		}
		return http.StatusUnprocessableEntity, "UNKNOWN_OPTION_VALUE", err.Error(), fields
	}
	var pathErr *PathError
	if errors.As(err, &pathErr) {
		return http.StatusUnprocessableEntity, "PATH_NOT_ALLOWED", err.Error(), map[string]any{"field": pathErr.Field}
	}
	switch {
	case errors.Is(err, export.ErrInvalidFormat):
		return http.StatusUnprocessableEntity, "INVALID_FORMAT", err.Error(), nil
	case errors.Is(err, export.ErrPresetNotFound):
		return http.StatusUnprocessableEntity, "PRESET_NOT_FOUND", err.Error(), nil
	case errors.Is(err, export.ErrMissingRequiredOption):
		return http.StatusBadRequest, "MISSING_REQUIRED_OPTION", err.Error(), nil
	case errors.Is(err, export.ErrHostOperationFailed):
		var hostErr *export.HostOperationError
		var op any
		if errors.As(err, &hostErr) {
			op = map[string]any{"operation": hostErr.Op}
		}
		return http.StatusBadGateway, "HOST_OPERATION_FAILED", err.Error(), op
	case errors.Is(err, hostlock.ErrBusy):
		return http.StatusConflict, "HOST_BUSY", "Host is busy", nil
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	case errors.Is(err, auth.ErrMissingKey), errors.Is(err, auth.ErrInvalidKey):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}

// unwrapAll flattens joined errors.
func unwrapAll(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, unwrapAll(e)...)
		}
		return out
	}
	return []error{err}
}
