package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	inputs := []Entry{
		{Pinyin: "tiandi", Output: "天地。", Status: "ok", CreatedAt: base, Duration: 120 * time.Millisecond},
		{Pinyin: "abc", Output: "", Status: "generation_failed", CreatedAt: base.Add(time.Second)},
		{Pinyin: "hangkong", Output: "航空。", Status: "ok", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range inputs {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Pinyin != "hangkong" || got[1].Pinyin != "abc" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].ID == "" {
		t.Fatal("expected generated id")
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("unexpected created_at: %v", got[0].CreatedAt)
	}

	all, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(all) != 3 || all[2].Duration != 120*time.Millisecond {
		t.Fatalf("unexpected entries: %+v", all)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
