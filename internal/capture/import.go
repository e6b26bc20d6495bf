package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmarin/voznota/internal/wavio"
)

// ImportedFile is an accepted audio file ready for the store.
type ImportedFile struct {
	Name string
	Data []byte
	MIME string
}

// Rejection names a file that was filtered out and why. One bad file never
// sinks the rest of the batch.
type Rejection struct {
	Name   string
	Reason string
}

// ImportFiles expands a glob pattern (or plain path) and loads every
// matching WAV file. Non-audio and unsupported files are rejected per file.
func ImportFiles(pattern string) ([]ImportedFile, []Rejection, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("bad file pattern: %w", err)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no files match %q", pattern)
	}

	var accepted []ImportedFile
	var rejected []Rejection
	for _, path := range paths {
		name := filepath.Base(path)
		if ext := strings.ToLower(filepath.Ext(path)); ext != ".wav" {
			rejected = append(rejected, Rejection{Name: name, Reason: "not a wav audio file"})
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			rejected = append(rejected, Rejection{Name: name, Reason: err.Error()})
			continue
		}
		if _, err := wavio.Probe(data); err != nil {
			rejected = append(rejected, Rejection{Name: name, Reason: "unreadable audio data"})
			continue
		}
		accepted = append(accepted, ImportedFile{Name: name, Data: data, MIME: "audio/wav"})
	}
	return accepted, rejected, nil
}
