package metadata

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRead_NonPDF(t *testing.T) {
	path := writeFile(t, "Master Agreement.txt", "I. DEFINITIONS 1\n")

	md, err := Read(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md.PageCount != 1 {
		t.Errorf("expected page count 1, got %d", md.PageCount)
	}
	if md.FileSize != 17 {
		t.Errorf("expected size 17, got %d", md.FileSize)
	}
	if md.Title != "Master Agreement" {
		t.Errorf("expected title %q, got %q", "Master Agreement", md.Title)
	}
	if md.Creator != DefaultCreator || md.Producer != DefaultProducer {
		t.Errorf("expected default creator/producer, got %q/%q", md.Creator, md.Producer)
	}
	if md.ModificationDate.IsZero() || md.CreationDate.IsZero() {
		t.Error("expected file dates to be set")
	}
}

func TestRead_NotFull(t *testing.T) {
	path := writeFile(t, "deal.txt", "abc")

	md, err := Read(path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md.Title != "" || md.Creator != "" {
		t.Errorf("expected descriptive fields empty, got %+v", md)
	}
	if md.FileSize != 3 || md.PageCount != 1 {
		t.Errorf("expected size 3 and 1 page, got %d and %d", md.FileSize, md.PageCount)
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "gone.pdf"), true); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRead_CorruptPDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", "this is not a pdf")
	if _, err := Read(path, true); err == nil {
		t.Error("expected error for unreadable PDF")
	}
}
