package store

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestRepositoryMigrationsLoad(t *testing.T) {
	migrations, err := LoadMigrations(afero.NewOsFs(), filepath.Join("..", "..", "db", "migrations"))
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no migrations discovered")
	}
	for i, m := range migrations {
		if strings.TrimSpace(m.Up) == "" {
			t.Errorf("%s has an empty up script", m.Version)
		}
		if i > 0 && migrations[i-1].Number >= m.Number {
			t.Errorf("migrations out of order: %s before %s", migrations[i-1].Version, m.Version)
		}
	}
}

func TestLoadMigrations(t *testing.T) {
	write := func(t *testing.T, fs afero.Fs, files map[string]string) {
		t.Helper()
		for name, body := range files {
			if err := afero.WriteFile(fs, filepath.Join("m", name), []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}

	tests := []struct {
		name    string
		files   map[string]string
		want    []string
		wantErr string
	}{
		{
			name: "pairs and orders",
			files: map[string]string{
				"0002_b.up.sql":   "CREATE TABLE b();",
				"0002_b.down.sql": "DROP TABLE b;",
				"0001_a.up.sql":   "CREATE TABLE a();",
				"0001_a.down.sql": "DROP TABLE a;",
				"README.md":       "ignored",
			},
			want: []string{"0001_a.up.sql", "0002_b.up.sql"},
		},
		{
			name:    "missing down",
			files:   map[string]string{"0001_a.up.sql": "CREATE TABLE a();"},
			wantErr: "missing down script",
		},
		{
			name:    "orphan down",
			files:   map[string]string{"0001_a.down.sql": "DROP TABLE a;"},
			wantErr: "down script without up script",
		},
		{
			name: "duplicate up",
			files: map[string]string{
				"0001_a.up.sql":   "CREATE TABLE a();",
				"0001_b.up.sql":   "CREATE TABLE b();",
				"0001_a.down.sql": "DROP TABLE a;",
			},
			wantErr: "duplicate up script",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			write(t, fs, tt.files)

			got, err := LoadMigrations(fs, "m")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("LoadMigrations() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadMigrations() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d migrations, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if m.Version != tt.want[i] {
					t.Errorf("migration %d = %s, want %s", i, m.Version, tt.want[i])
				}
			}
		})
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	if _, err := LoadMigrations(afero.NewMemMapFs(), "nope"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
