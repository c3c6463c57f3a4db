package migrations

import (
	"database/sql"
	"io"
	"os"
	"strings"
	"testing"

	_ "github.com/lib/pq"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	src, err := Source()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		t.Fatalf("first migration: %v", err)
	}

	var seen []uint
	for {
		seen = append(seen, version)

		up, _, err := src.ReadUp(version)
		if err != nil {
			t.Fatalf("read up %d: %v", version, err)
		}
		body, _ := io.ReadAll(up)
		up.Close()
		if !strings.Contains(string(body), "CREATE TABLE") {
			t.Fatalf("migration %d up does not create a table", version)
		}

		down, _, err := src.ReadDown(version)
		if err != nil {
			t.Fatalf("migration %d has no down file: %v", version, err)
		}
		down.Close()

		next, err := src.Next(version)
		if err != nil {
			break
		}
		version = next
	}

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("unexpected migration versions %v", seen)
	}
}

func TestUpDownIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping migration integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("up: %v", err)
	}
	// second run is a no-op
	if err := Up(db); err != nil {
		t.Fatalf("repeat up: %v", err)
	}

	version, dirty, ok, err := Version(db)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !ok || dirty || version != 2 {
		t.Fatalf("unexpected version %d dirty=%v ok=%v", version, dirty, ok)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("shared pool closed by migrator: %v", err)
	}
}
