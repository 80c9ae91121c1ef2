package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScreenshotName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	got := ScreenshotName(at, "john.doe@mail com", "configure:entry_amount_not_found:49")
	want := "fail-1700000000123-john.doe_mail_com-configure_entry_amount_not_found_49.png"
	if got != want {
		t.Fatalf("ScreenshotName = %q, want %q", got, want)
	}
}

func TestStoreSaveListPrune(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screens")
	s := New(dir)

	base := time.UnixMilli(1700000000000)
	for i, id := range []string{"c", "a", "b"} {
		if _, err := s.SaveScreenshot(base.Add(time.Duration(i)*time.Second), id, "init", []byte("png")); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	names := s.Screenshots()
	if len(names) != 3 {
		t.Fatalf("expected three screenshots, got %v", names)
	}
	if names[0] != "fail-1700000000000-c-init.png" {
		t.Fatalf("expected oldest first, got %v", names)
	}
	data, err := s.Read(names[2])
	if err != nil || string(data) != "png" {
		t.Fatalf("read: %q %v", data, err)
	}

	removed, err := s.Prune(1)
	if err != nil || removed != 2 {
		t.Fatalf("prune: removed=%d err=%v", removed, err)
	}
	if left := s.Screenshots(); len(left) != 1 || left[0] != "fail-1700000002000-b-init.png" {
		t.Fatalf("unexpected remaining %v", left)
	}
}
