package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestMigrationsRoundTripPostgres(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("IDSEXPORT_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("IDSEXPORT_TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer db.Close()

	if err := resetPublicSchema(ctx, db); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	fs := afero.NewOsFs()
	dir := filepath.Join("..", "..", "db", "migrations")
	all, err := LoadMigrations(fs, dir)
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}

	applied, err := Migrate(ctx, db, fs, dir)
	if err != nil {
		t.Fatalf("migrate (pass 1): %v", err)
	}
	if len(applied) != len(all) {
		t.Fatalf("pass 1 applied %d migrations, want %d", len(applied), len(all))
	}

	again, err := Migrate(ctx, db, fs, dir)
	if err != nil {
		t.Fatalf("migrate (repeat): %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("repeat applied %v, want nothing", again)
	}

	reverted, err := Rollback(ctx, db, fs, dir)
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if len(reverted) != len(all) || reverted[0] != all[len(all)-1].Version {
		t.Fatalf("rollback reverted %v, want newest first", reverted)
	}
	if tableExists(ctx, t, db, "export_jobs") {
		t.Fatal("export_jobs still exists after rollback")
	}

	if err := ApplyMigrations(ctx, db, dir); err != nil {
		t.Fatalf("migrate (pass 2): %v", err)
	}
	if !tableExists(ctx, t, db, "export_artifacts") {
		t.Fatal("export_artifacts missing after pass 2")
	}
}

func resetPublicSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`)
	return err
}

func tableExists(ctx context.Context, t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var ok bool
	if err := db.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+name).Scan(&ok); err != nil {
		t.Fatalf("check table %s: %v", name, err)
	}
	return ok
}
