package app

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"idsexport/internal/auth"
)

func newKeyedServer(t *testing.T) (*HTTPServer, *testRig) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("prepress-secret-0001"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	keys := auth.NewKeyring([]auth.Key{{Name: "prepress", Hash: string(hash)}})
	r := newTestRig(false)
	return NewHTTPServer(r.svc, keys, "*", log.New(io.Discard)), r
}

func TestExportsRequireAPIKey(t *testing.T) {
	server, rig := newKeyedServer(t)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer not-the-secret-000", http.StatusUnauthorized},
		{"wrong scheme", "Basic prepress-secret-0001", http.StatusUnauthorized},
		{"valid", "Bearer prepress-secret-0001", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/exports", bytes.NewBufferString(`{"source":"/in/a.indd","destination":"/out/a.pdf"}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			server.Handler().ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d body=%s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if tt.wantCode == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}

	if got := len(rig.runner.requests); got != 1 {
		t.Errorf("runner called %d times, want 1", got)
	}
}

func TestHealthDoesNotRequireAPIKey(t *testing.T) {
	server, _ := newKeyedServer(t)
	for _, path := range []string{"/api/health", "/api/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		server.Handler().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, rr.Code)
		}
	}
}
