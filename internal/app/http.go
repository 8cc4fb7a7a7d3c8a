package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"idsexport/internal/auth"
)

type HTTPServer struct {
	service    *Service
	keys       *auth.Keyring
	corsOrigin string
	logger     *log.Logger
}

func NewHTTPServer(service *Service, keys *auth.Keyring, corsOrigin string, logger *log.Logger) *HTTPServer {
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPServer{service: service, keys: keys, corsOrigin: corsOrigin, logger: logger}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		s.handleReady(w, r)
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) == 2 && parts[0] == "api" && parts[1] == "presets" {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		if _, ok := s.requireKey(w, r); ok {
			s.handlePresets(w, r)
		}
		return
	}
	if len(parts) < 2 || parts[0] != "api" || parts[1] != "exports" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	client, ok := s.requireKey(w, r)
	if !ok {
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodPost:
		s.handleCreateExport(w, r, client)
	case len(parts) == 3 && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		s.handleGetExport(w, r, parts[2])
	case len(parts) <= 3:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{}
	for name, err := range s.service.Ready(ctx) {
		if err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks[name] = map[string]any{"status": "error", "error": err.Error()}
			continue
		}
		checks[name] = map[string]any{"status": "ok"}
	}

	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handleCreateExport(w http.ResponseWriter, r *http.Request, client string) {
	var body ExportInput
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}

	rec, err := s.service.Export(r.Context(), body)
	if err != nil {
		status, code, message, details := mapError(err)
		if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
			s.logger.Error("export failed", "request_id", RequestID(r.Context()), "client", client, "err", err)
		}
		if rec.ID != "" && details == nil {
			details = map[string]any{"job": rec}
		} else if rec.ID != "" {
			details = map[string]any{"job": rec, "cause": details}
		}
		writeError(w, status, code, message, details)
		return
	}
	s.logger.Info("export accepted", "request_id", RequestID(r.Context()), "client", client, "job", rec.ID, "format", rec.Format)
	writeJSON(w, http.StatusOK, rec)
}

func (s *HTTPServer) handlePresets(w http.ResponseWriter, r *http.Request) {
	env, err := s.service.Presets(r.Context())
	if err != nil {
		status, code, message, details := mapError(err)
		if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
			s.logger.Error("list presets", "request_id", RequestID(r.Context()), "err", err)
		}
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *HTTPServer) handleGetExport(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.service.Job(r.Context(), id)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// requireKey checks the bearer API key when keys are configured and returns
// the client name ("anonymous" otherwise).
func (s *HTTPServer) requireKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !s.keys.Enabled() {
		return "anonymous", true
	}
	name, err := s.keys.Verify(bearerToken(r))
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer realm="idsexport"`)
		status, code, message, _ := mapError(err)
		writeError(w, status, code, message, nil)
		return "", false
	}
	return name, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		s.logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", writer.status,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
