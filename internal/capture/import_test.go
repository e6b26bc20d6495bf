package capture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rmarin/voznota/internal/wavio"
)

func TestImportFilesFiltersBatch(t *testing.T) {
	dir := t.TempDir()

	wavData, err := wavio.Encode(make([]int16, 1600), 16000)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	writeFile(t, filepath.Join(dir, "good.wav"), wavData)
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("not audio"))
	writeFile(t, filepath.Join(dir, "corrupt.wav"), []byte("RIFFgarbage"))

	accepted, rejected, err := ImportFiles(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatalf("ImportFiles: %v", err)
	}
	if len(accepted) != 1 || accepted[0].Name != "good.wav" {
		t.Errorf("accepted = %v, want just good.wav", accepted)
	}
	if len(rejected) != 2 {
		t.Errorf("rejected = %v, want 2 entries", rejected)
	}
	if accepted[0].MIME != "audio/wav" {
		t.Errorf("MIME = %q", accepted[0].MIME)
	}
}

func TestImportFilesNoMatch(t *testing.T) {
	if _, _, err := ImportFiles(filepath.Join(t.TempDir(), "nothing-*")); err == nil {
		t.Error("expected an error for a pattern with no matches")
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
