package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestText_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := Text(path)
	if err == nil {
		t.Fatal("Text() error = nil, want unsupported file type")
	}
	if !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("Text() error = %v, want unsupported file type", err)
	}
}

func TestText_ExtensionCaseInsensitive(t *testing.T) {
	// A garbage .PDF must reach the PDF parser rather than be rejected
	// as an unsupported type.
	path := filepath.Join(t.TempDir(), "report.PDF")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := Text(path)
	if err == nil {
		t.Fatal("Text() error = nil, want parse failure")
	}
	if strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("Text() error = %v, want parser error, not dispatch rejection", err)
	}
}

func TestSupportedExtensions(t *testing.T) {
	for _, ext := range []string{".pdf", ".docx"} {
		if !SupportedExtensions[ext] {
			t.Errorf("SupportedExtensions[%q] = false, want true", ext)
		}
	}
	if SupportedExtensions[".txt"] {
		t.Error("SupportedExtensions[\".txt\"] = true, want false")
	}
}
