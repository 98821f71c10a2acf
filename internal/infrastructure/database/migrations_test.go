package database

import (
	"context"
	"embed"
	"testing"
	"time"
)

// testMigrationsDir is the directory containing test migration files.
const testMigrationsDir = "testdata"

//go:embed testdata/*.sql
var testMigrationsFS embed.FS

// useTestMigrations swaps the package-level migration FS for the test set
// and restores it on cleanup.
func useTestMigrations(t *testing.T) {
	t.Helper()
	origFS := MigrationsFS
	origDir := MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})
	MigrationsFS = testMigrationsFS
	MigrationsDir = testMigrationsDir
}

func TestMigrate(t *testing.T) {
	useTestMigrations(t)

	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Verify table was created
	var tableName string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='test_robots'",
	).Scan(&tableName)
	if err != nil {
		t.Fatalf("table test_robots not created: %v", err)
	}

	// Verify migration was recorded
	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("getAppliedMigrations() error = %v", err)
	}
	if len(applied) != 1 {
		t.Errorf("expected 1 applied migration, got %d", len(applied))
	}

	// Running again should be idempotent
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	useTestMigrations(t)

	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	// Table should be gone
	var tableName string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='test_robots'",
	).Scan(&tableName)
	if err == nil {
		t.Error("table test_robots still exists after rollback")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{
			name:        "valid up migration",
			filename:    "20260301_120000_initial_schema.up.sql",
			wantVersion: "20260301_120000",
			wantUp:      true,
			wantOK:      true,
		},
		{
			name:        "valid down migration",
			filename:    "20260301_120000_initial_schema.down.sql",
			wantVersion: "20260301_120000",
			wantUp:      false,
			wantOK:      true,
		},
		{name: "not sql", filename: "readme.md", wantOK: false},
		{name: "no direction suffix", filename: "20260301_120000_x.sql", wantOK: false},
		{name: "no version", filename: "schema.up.sql", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("parseMigrationFilename(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if isUp != tt.wantUp {
				t.Errorf("isUp = %v, want %v", isUp, tt.wantUp)
			}
		})
	}
}
