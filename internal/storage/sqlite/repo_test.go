package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/WhirlyFan/large-data-parser/internal/storage"
)

// openRepo builds a file-backed repository in a temp directory and registers
// cleanup. It returns the repository and the database path for independent
// verification.
func openRepo(t *testing.T) (*Repository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	repo, closeFn, err := NewRepository(context.Background(), Config{DSN: path})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(closeFn)
	return repo, path
}

// queryInt runs a single-value query against the database file with an
// independent connection.
func queryInt(t *testing.T, path, query string) int64 {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int64
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}

// TestNewRepositoryEmptyDSN checks the guard against a missing DSN.
func TestNewRepositoryEmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

/*
TestCopyFrom covers the bulk insert path:
 1. a committed batch is visible to an independent connection,
 2. the synthesized key auto-increments across batches,
 3. a malformed row rolls the whole batch back,
 4. an empty batch is a no-op.
*/
func TestCopyFrom(t *testing.T) {
	t.Parallel()

	repo, path := openRepo(t)
	ctx := context.Background()

	ddl := `CREATE TABLE "customers" (
  "id" INTEGER PRIMARY KEY AUTOINCREMENT,
  "index" INTEGER NOT NULL,
  "name" TEXT NOT NULL
);`
	if err := repo.Exec(ctx, ddl); err != nil {
		t.Fatalf("Exec DDL: %v", err)
	}

	cols := []string{"index", "name"}

	n, err := repo.CopyFrom(ctx, "customers", cols, [][]any{
		{int64(1), "Alice"},
		{int64(2), "Bob"},
	})
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted=%d; want 2", n)
	}
	if got := queryInt(t, path, `SELECT COUNT(*) FROM "customers"`); got != 2 {
		t.Errorf("count=%d; want 2", got)
	}

	// Second batch: keys continue, nothing is overwritten.
	if _, err := repo.CopyFrom(ctx, "customers", cols, [][]any{{int64(3), "Carol"}}); err != nil {
		t.Fatalf("second CopyFrom: %v", err)
	}
	if got := queryInt(t, path, `SELECT MAX("id") FROM "customers"`); got != 3 {
		t.Errorf("max id=%d; want 3", got)
	}

	// A short row poisons the whole batch; the earlier rows stay intact.
	_, err = repo.CopyFrom(ctx, "customers", cols, [][]any{
		{int64(4), "Dave"},
		{int64(5)},
	})
	if err == nil || !strings.Contains(err.Error(), "row length") {
		t.Fatalf("err=%v; want row length error", err)
	}
	if got := queryInt(t, path, `SELECT COUNT(*) FROM "customers"`); got != 3 {
		t.Errorf("count=%d after rollback; want 3", got)
	}

	// Empty batch.
	n, err = repo.CopyFrom(ctx, "customers", cols, nil)
	if err != nil || n != 0 {
		t.Errorf("empty batch: n=%d err=%v; want 0, nil", n, err)
	}
}

// TestCopyFromArgumentGuards covers the trivial argument checks.
func TestCopyFromArgumentGuards(t *testing.T) {
	t.Parallel()

	repo, _ := openRepo(t)
	ctx := context.Background()

	if _, err := repo.CopyFrom(ctx, "", []string{"a"}, [][]any{{1}}); err == nil {
		t.Error("expected error for empty table")
	}
	if _, err := repo.CopyFrom(ctx, "t", nil, [][]any{{1}}); err == nil {
		t.Error("expected error for empty columns")
	}
}

// TestExec checks DDL execution, the empty-statement no-op, and error
// surfacing for bad SQL.
func TestExec(t *testing.T) {
	t.Parallel()

	repo, path := openRepo(t)
	ctx := context.Background()

	if err := repo.Exec(ctx, ""); err != nil {
		t.Errorf("empty statement: %v", err)
	}
	if err := repo.Exec(ctx, `CREATE TABLE "t" ("x" TEXT NOT NULL);`); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if got := queryInt(t, path, `SELECT COUNT(*) FROM sqlite_master WHERE name = 't'`); got != 1 {
		t.Errorf("table not created")
	}
	if err := repo.Exec(ctx, "NOT REAL SQL"); err == nil {
		t.Error("expected error for invalid SQL")
	}
}

// TestFactoryRegistration checks that importing this package makes the
// "sqlite" kind constructible through the storage factory.
func TestFactoryRegistration(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "factory.db")
	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: path})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	if err := repo.Exec(context.Background(), `CREATE TABLE "t" ("x" TEXT NOT NULL);`); err != nil {
		t.Fatalf("Exec through factory repo: %v", err)
	}
}
