package manifest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// Force single connection so PRAGMA changes are visible to all callers.
	db.SetMaxOpenConns(1)

	s, err := NewStore(db)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndResults(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.BeginRun(ctx, "run_1"); err != nil {
		t.Fatal(err)
	}

	results := []Result{
		{Entry: "beta", Status: StatusDegraded, Bytes: 10, Duration: 15 * time.Second},
		{Entry: "alpha", Status: StatusRendered, Bytes: 512, Duration: 2 * time.Second},
		{Entry: "gamma", Status: StatusFailed, Error: "navigate: timeout"},
	}
	for _, r := range results {
		if err := s.Record(ctx, "run_1", r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Results(ctx, "run_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	if got[0].Entry != "alpha" || got[1].Entry != "beta" || got[2].Entry != "gamma" {
		t.Errorf("order = %s, %s, %s", got[0].Entry, got[1].Entry, got[2].Entry)
	}
	if got[0].Status != StatusRendered || got[0].Bytes != 512 {
		t.Errorf("alpha = %+v", got[0])
	}
	if got[1].Status != StatusDegraded {
		t.Errorf("beta status = %s", got[1].Status)
	}
	if got[2].Status != StatusFailed || got[2].Error == "" {
		t.Errorf("gamma = %+v", got[2])
	}

	if err := s.FinishRun(ctx, "run_1"); err != nil {
		t.Fatal(err)
	}
}

func TestRecordUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.BeginRun(ctx, "r"); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, "r", Result{Entry: "a", Status: StatusFailed, Error: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, "r", Result{Entry: "a", Status: StatusRendered, Bytes: 9}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Results(ctx, "r")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Status != StatusRendered || got[0].Error != "" {
		t.Errorf("result = %+v, want rerecorded", got[0])
	}
}

func TestOpenCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "manifest.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.BeginRun(context.Background(), "r"); err != nil {
		t.Fatal(err)
	}
}
