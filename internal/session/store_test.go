package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/henkan/internal/models"
)

func TestStoreCreateGetRemove(t *testing.T) {
	store, err := NewStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	up, err := store.Create("book.xlsx", models.UploadKindExcel)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if up.ID == "" {
		t.Fatal("empty session ID")
	}
	if _, err := os.Stat(store.Dir(up.ID)); err != nil {
		t.Fatalf("session dir missing: %v", err)
	}

	got, err := store.Get(up.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Filename != "book.xlsx" || got.Kind != models.UploadKindExcel {
		t.Errorf("got %+v", got)
	}
	if store.Count() != 1 {
		t.Errorf("count: got %d", store.Count())
	}

	if err := store.Remove(up.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.Get(up.ID); err != ErrNotFound {
		t.Errorf("Get after remove: got %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(store.Dir(up.ID)); !os.IsNotExist(err) {
		t.Errorf("session dir should be gone, stat err: %v", err)
	}
}

func TestStoreSetDatabase(t *testing.T) {
	store, err := NewStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	up, err := store.Create("book.xlsx", models.UploadKindExcel)
	if err != nil {
		t.Fatal(err)
	}

	// Get hands out snapshots: writing to one must not leak into the store.
	snap, err := store.Get(up.ID)
	if err != nil {
		t.Fatal(err)
	}
	snap.DatabaseName = "rogue.db"
	fresh, err := store.Get(up.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.DatabaseName != "" {
		t.Errorf("snapshot write leaked into store: %q", fresh.DatabaseName)
	}

	if err := store.SetDatabase(up.ID, "/tmp/x/book.db", "book.db"); err != nil {
		t.Fatalf("SetDatabase: %v", err)
	}
	got, err := store.Get(up.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DatabasePath != "/tmp/x/book.db" || got.DatabaseName != "book.db" {
		t.Errorf("got %+v", got)
	}

	if err := store.SetDatabase("nope", "p", "n"); err != ErrNotFound {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestStoreRemoveUnknown(t *testing.T) {
	store, err := NewStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Remove("nope"); err != ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStoreReap(t *testing.T) {
	store, err := NewStore(t.TempDir(), 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	up, err := store.Create("old.pdf", models.UploadKindPDF)
	if err != nil {
		t.Fatal(err)
	}
	up.CreatedAt = time.Now().Add(-time.Hour)

	store.reap()
	if store.Count() != 0 {
		t.Errorf("count after reap: got %d", store.Count())
	}
	if _, err := os.Stat(store.Dir(up.ID)); !os.IsNotExist(err) {
		t.Errorf("expired session dir should be gone, stat err: %v", err)
	}
}

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), make([]byte, 100), 0600); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b"), make([]byte, 50), 0600); err != nil {
		t.Fatal(err)
	}

	n, err := DiskUsageBytes(dir, "", "/does/not/exist")
	if err != nil {
		t.Fatalf("DiskUsageBytes: %v", err)
	}
	if n != 150 {
		t.Errorf("bytes: got %d, want 150", n)
	}
}
