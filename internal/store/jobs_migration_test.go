package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"idsexport/internal/export"
)

func TestJobsMigrationAllowsEveryState(t *testing.T) {
	sqlBytes, err := os.ReadFile(filepath.Join("..", "..", "db", "migrations", "0001_export_jobs.up.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sqlText := string(sqlBytes)

	for _, state := range []export.State{export.StateIdle, export.StateResolving, export.StateInvoking, export.StateDone, export.StateFailed} {
		if !strings.Contains(sqlText, "'"+string(state)+"'") {
			t.Errorf("state check is missing %q", state)
		}
	}
	if !strings.Contains(sqlText, "CONSTRAINT export_jobs_state_check") {
		t.Error("expected a named state check constraint")
	}
}
