package sqldb

import (
	"context"
	"testing"
	"time"
)

func TestStore_Record(t *testing.T) {
	store, err := New("file:audit1?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	rec := &AuditRecord{
		RequestID: "req-1",
		Method:    "GET",
		Path:      "/hello",
		Status:    200,
		Duration:  42 * time.Millisecond,
	}
	if err := store.Record(context.Background(), rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Recent() returned %d records, want 1", len(got))
	}
	if got[0].RequestID != "req-1" || got[0].Path != "/hello" || got[0].Status != 200 {
		t.Errorf("Recent() = %+v", got[0])
	}
	if got[0].Duration != 42*time.Millisecond {
		t.Errorf("Duration = %v, want 42ms", got[0].Duration)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped on insert")
	}
}

func TestStore_RecentLimit(t *testing.T) {
	store, err := New("file:audit2?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		rec := &AuditRecord{
			RequestID: string(rune('a' + i)),
			Method:    "GET",
			Path:      "/x",
			Status:    200,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.Record(context.Background(), rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := store.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d records", len(got))
	}
	// Newest first.
	if got[0].RequestID != "e" || got[1].RequestID != "d" {
		t.Errorf("Recent(2) order = %s, %s; want e, d", got[0].RequestID, got[1].RequestID)
	}
}
