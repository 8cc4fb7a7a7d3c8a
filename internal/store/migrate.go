package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Migration is one numbered schema change. Version is the file name of the
// up script and is what schema_migrations records.
type Migration struct {
	Number  string
	Version string
	Up      string
	Down    string
}

var migrationFile = regexp.MustCompile(`^(\d+)_[A-Za-z0-9_]+\.(up|down)\.sql$`)

// LoadMigrations reads dir and pairs every up script with its down script,
// ordered by number.
func LoadMigrations(fsys afero.Fs, dir string) ([]Migration, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	byNumber := map[string]*Migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		match := migrationFile.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		contents, err := afero.ReadFile(fsys, filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		m := byNumber[match[1]]
		if m == nil {
			m = &Migration{Number: match[1]}
			byNumber[match[1]] = m
		}
		switch match[2] {
		case "up":
			if m.Version != "" {
				return nil, fmt.Errorf("migration %s: duplicate up script", m.Number)
			}
			m.Version = name
			m.Up = string(contents)
		case "down":
			if m.Down != "" {
				return nil, fmt.Errorf("migration %s: duplicate down script", m.Number)
			}
			m.Down = string(contents)
		}
	}

	out := make([]Migration, 0, len(byNumber))
	for _, m := range byNumber {
		if m.Version == "" {
			return nil, fmt.Errorf("migration %s: down script without up script", m.Number)
		}
		if strings.TrimSpace(m.Down) == "" {
			return nil, fmt.Errorf("migration %s: missing down script", m.Number)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// ApplyMigrations runs every pending up script from migrationsDir on the
// local filesystem.
func ApplyMigrations(ctx context.Context, db *sql.DB, migrationsDir string) error {
	_, err := Migrate(ctx, db, afero.NewOsFs(), migrationsDir)
	return err
}

// Migrate applies pending migrations in order, each in its own transaction,
// and returns the versions it applied.
func Migrate(ctx context.Context, db *sql.DB, fsys afero.Fs, dir string) ([]string, error) {
	migrations, err := LoadMigrations(fsys, dir)
	if err != nil {
		return nil, err
	}
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range migrations {
		done, err := isMigrated(ctx, db, m.Version)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		err = inTx(ctx, db, m.Version, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.Up); err != nil {
				return fmt.Errorf("execute migration %s: %w", m.Version, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES($1)`, m.Version); err != nil {
				return fmt.Errorf("record migration %s: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

// Rollback reverts every applied migration, newest first.
func Rollback(ctx context.Context, db *sql.DB, fsys afero.Fs, dir string) ([]string, error) {
	migrations, err := LoadMigrations(fsys, dir)
	if err != nil {
		return nil, err
	}
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, err
	}

	var reverted []string
	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		done, err := isMigrated(ctx, db, m.Version)
		if err != nil {
			return reverted, err
		}
		if !done {
			continue
		}
		err = inTx(ctx, db, m.Version, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.Down); err != nil {
				return fmt.Errorf("revert migration %s: %w", m.Version, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version=$1`, m.Version); err != nil {
				return fmt.Errorf("unrecord migration %s: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return reverted, err
		}
		reverted = append(reverted, m.Version)
	}
	return reverted, nil
}

func inTx(ctx context.Context, db *sql.DB, version string, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx %s: %w", version, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func isMigrated(ctx context.Context, db *sql.DB, version string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return exists, nil
}
