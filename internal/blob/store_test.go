package blob

import (
	"io"
	"strings"
	"testing"
)

func TestSaveOpenDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	path, size, err := store.Save("session.wav", strings.NewReader("audio bytes"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if size != int64(len("audio bytes")) {
		t.Errorf("size = %d, want %d", size, len("audio bytes"))
	}
	if !strings.HasSuffix(path, "_session.wav") {
		t.Errorf("path = %q, want UUID-prefixed original name", path)
	}

	r, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "audio bytes" {
		t.Errorf("content = %q, want original bytes", data)
	}

	if err := store.Delete(path); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// Deleting a missing blob is tolerated.
	if err := store.Delete(path); err != nil {
		t.Errorf("Delete() of missing blob error = %v, want nil", err)
	}
	if _, err := store.Open(path); err == nil {
		t.Error("Open() after delete should fail")
	}
}

func TestSaveStripsClientPaths(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	path, _, err := store.Save("../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if strings.Contains(path, "..") {
		t.Errorf("path %q escapes the blob root", path)
	}
	if !strings.HasSuffix(path, "_passwd") {
		t.Errorf("path = %q, want base name only", path)
	}
}

func TestTwoSavesNeverCollide(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	p1, _, err := store.Save("same.wav", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	p2, _, err := store.Save("same.wav", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if p1 == p2 {
		t.Errorf("both saves returned %q", p1)
	}
}
