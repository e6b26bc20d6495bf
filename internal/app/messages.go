package app

import (
	"time"

	"github.com/rmarin/voznota/internal/capture"
	"github.com/rmarin/voznota/internal/wavio"
)

// ClipLoadedMsg delivers a decoded clip for the load tagged with ID.
type ClipLoadedMsg struct {
	ID   int64
	Clip *wavio.Clip
}

// ClipLoadErrorMsg is sent when decoding a recording's audio fails.
type ClipLoadErrorMsg struct {
	ID  int64
	Err error
}

// CaptureStartedMsg reports the outcome of opening the input device.
type CaptureStartedMsg struct {
	Err error
}

// CaptureStoppedMsg carries a finished capture ready for the list.
type CaptureStoppedMsg struct {
	Data     []byte
	Duration time.Duration
	Err      error
}

// ImportedMsg carries the outcome of a file import batch.
type ImportedMsg struct {
	Accepted []capture.ImportedFile
	Rejected []capture.Rejection
	Err      error
}

// TranscriptMsg delivers the transcription result for one recording.
type TranscriptMsg struct {
	ID   int64
	Text string
	Err  error
}

// ExportedMsg reports the outcome of writing a recording to disk.
type ExportedMsg struct {
	Path string
	Err  error
}

// TickMsg drives position display, the level meter, and end-of-playback
// detection.
type TickMsg time.Time

// ClearStatusMsg clears a transient status or error after a timeout.
type ClearStatusMsg struct{}
