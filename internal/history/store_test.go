package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"docforge/internal/report"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRecord(started time.Time) BatchRecord {
	return BatchRecord{
		BatchID:    uuid.NewString(),
		Operation:  report.OpDecrypt,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Summary: report.Summary{
			Total:         2,
			Succeeded:     1,
			Failed:        1,
			LastOutputDir: "/out",
		},
		Results: []report.JobResult{
			{Index: 0, InputPath: "/in/a.pdf", Status: report.StatusSuccess, OutputPath: "/out/a.pdf", Message: "decrypted using common password"},
			{Index: 1, InputPath: "/in/b.pdf", Status: report.StatusFailed, Message: "incorrect password"},
		},
	}
}

func TestStoreRecordAndLoadBatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := sampleRecord(time.Now().UTC())
	if err := store.RecordBatch(ctx, rec); err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}

	recent, err := store.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("got %d batches, want 1", len(recent))
	}
	got := recent[0]
	if got.BatchID != rec.BatchID || got.Operation != rec.Operation {
		t.Fatalf("loaded batch = %+v", got)
	}
	if got.Summary != rec.Summary {
		t.Fatalf("summary = %+v, want %+v", got.Summary, rec.Summary)
	}
	if got.Duration() != 3*time.Second {
		t.Fatalf("duration = %s, want 3s", got.Duration())
	}

	results, err := store.BatchResults(ctx, rec.BatchID)
	if err != nil {
		t.Fatalf("BatchResults() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Fatalf("result %d carries index %d", i, res.Index)
		}
	}
	if results[1].Status != report.StatusFailed || results[1].Message != "incorrect password" {
		t.Fatalf("result 1 = %+v", results[1])
	}
}

func TestStoreListRecentOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		rec := sampleRecord(base.Add(time.Duration(i) * time.Minute))
		rec.Results = nil
		ids = append(ids, rec.BatchID)
		if err := store.RecordBatch(ctx, rec); err != nil {
			t.Fatalf("RecordBatch() error = %v", err)
		}
	}

	recent, err := store.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d batches, want limit of 2", len(recent))
	}
	if recent[0].BatchID != ids[2] || recent[1].BatchID != ids[1] {
		t.Fatal("batches are not ordered newest first")
	}
}

func TestStorePruneCascadesToResults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	old := sampleRecord(time.Now().UTC().Add(-48 * time.Hour))
	fresh := sampleRecord(time.Now().UTC())
	if err := store.RecordBatch(ctx, old); err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}
	if err := store.RecordBatch(ctx, fresh); err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}

	deleted, err := store.Prune(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("pruned %d batches, want 1", deleted)
	}

	if results, err := store.BatchResults(ctx, old.BatchID); err != nil || len(results) != 0 {
		t.Fatalf("old results survived prune: %v, %d", err, len(results))
	}
	if results, err := store.BatchResults(ctx, fresh.BatchID); err != nil || len(results) != 2 {
		t.Fatalf("fresh results missing after prune: %v, %d", err, len(results))
	}
}

func TestStoreRejectsSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Fatal("Open() accepted a mismatched schema version")
	}
}
