package debitnote

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileDelivererWritesArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notes")
	d := FileDeliverer{Dir: dir}

	err := d.Deliver(context.Background(), Artifact{
		Name:        "DebitNote_KAA123A_07-03-2025.pdf",
		ContentType: ContentTypePDF,
		Body:        pdfBytes,
	})
	if err != nil {
		t.Fatalf("Deliver error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "DebitNote_KAA123A_07-03-2025.pdf"))
	if err != nil {
		t.Fatalf("read delivered file: %v", err)
	}
	if string(got) != string(pdfBytes) {
		t.Errorf("content: got %q", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, found %d", len(entries))
	}
}

func TestFileDelivererReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	d := FileDeliverer{Dir: dir}
	ctx := context.Background()

	d.Deliver(ctx, Artifact{Name: "a.pdf", Body: []byte("old")})
	if err := d.Deliver(ctx, Artifact{Name: "a.pdf", Body: []byte("new")}); err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(filepath.Join(dir, "a.pdf"))
	if string(got) != "new" {
		t.Errorf("content: got %q, want new", got)
	}
}

func TestFileDelivererCancelledContext(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := (FileDeliverer{Dir: dir}).Deliver(ctx, Artifact{Name: "a.pdf", Body: pdfBytes}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("no file should be written, found %d", len(entries))
	}
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"DebitNote_KAA123A_07-03-2025.pdf":  "DebitNote_KAA123A_07-03-2025.pdf",
		"DebitNote_KAA/123A_07-03-2025.pdf": "DebitNote_KAA-123A_07-03-2025.pdf",
		`DebitNote_..\x_07-03-2025.pdf`:     "DebitNote_..-x_07-03-2025.pdf",
		"..":                                "DebitNote.pdf",
		"":                                  "DebitNote.pdf",
	}
	for in, want := range tests {
		if got := SafeName(in); got != want {
			t.Errorf("SafeName(%q) = %q, want %q", in, got, want)
		}
	}
}
