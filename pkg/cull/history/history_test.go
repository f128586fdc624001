package history

import (
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("/photos", "in-place")
	if rec.ID == "" {
		t.Error("ID should be generated")
	}
	if rec.Source != "/photos" || rec.Mode != "in-place" {
		t.Errorf("record = %+v", rec)
	}
	if rec.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}

	other := NewRecord("/photos", "in-place")
	if other.ID == rec.ID {
		t.Error("records should have unique IDs")
	}
}

func TestStore_AppendAndList(t *testing.T) {
	store := openStore(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := NewRecord("/photos", "in-place")
		rec.StartedAt = base.Add(time.Duration(i) * time.Hour)
		rec.FilesDeleted = int64(i)
		if err := store.Append(rec); err != nil {
			t.Fatalf("Append error = %v", err)
		}
	}

	records, err := store.List(0)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("List returned %d records, want 3", len(records))
	}

	// Newest first.
	for i := 1; i < len(records); i++ {
		if records[i].StartedAt.After(records[i-1].StartedAt) {
			t.Errorf("records out of order at %d: %v after %v",
				i, records[i].StartedAt, records[i-1].StartedAt)
		}
	}
	if records[0].FilesDeleted != 2 {
		t.Errorf("newest record FilesDeleted = %d, want 2", records[0].FilesDeleted)
	}
}

func TestStore_ListLimit(t *testing.T) {
	store := openStore(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := NewRecord("/photos", "copy")
		rec.StartedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Append(rec); err != nil {
			t.Fatalf("Append error = %v", err)
		}
	}

	records, err := store.List(2)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("List(2) returned %d records", len(records))
	}
}

func TestStore_ListEmpty(t *testing.T) {
	store := openStore(t)

	records, err := store.List(10)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List on empty store = %v, want none", records)
	}
}

func TestStore_RoundtripFields(t *testing.T) {
	store := openStore(t)

	rec := NewRecord("/media/vacation", "copy")
	rec.FinishedAt = rec.StartedAt.Add(5 * time.Minute)
	rec.QueueLength = 42
	rec.FilesKept = 30
	rec.FilesDeleted = 10
	rec.FilesSkipped = 2
	rec.BytesDeleted = 1 << 30
	rec.BytesQueued = 5 << 30

	if err := store.Append(rec); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	records, err := store.List(1)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("List returned %d records", len(records))
	}

	got := records[0]
	if got.ID != rec.ID || got.QueueLength != 42 || got.BytesDeleted != 1<<30 {
		t.Errorf("roundtrip record = %+v, want %+v", got, rec)
	}
}
