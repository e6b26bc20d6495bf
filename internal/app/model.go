// Package app is the root bubbletea model for the voznota TUI: a recording
// list with a single shared playback engine, microphone capture, and
// on-demand transcription.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rmarin/voznota/internal/capture"
	"github.com/rmarin/voznota/internal/player"
	"github.com/rmarin/voznota/internal/prefs"
	"github.com/rmarin/voznota/internal/store"
	"github.com/rmarin/voznota/internal/transcribe"
	"github.com/rmarin/voznota/internal/ui"
	"github.com/rmarin/voznota/internal/wavio"
)

const tickInterval = 100 * time.Millisecond

// Model is the root bubbletea model.
type Model struct {
	recs     *store.Store
	engine   *player.Engine
	recorder *capture.Recorder
	client   *transcribe.Client

	prefsStore *prefs.Store
	prefs      prefs.Prefs
	theme      ui.Theme
	keys       keyMap
	help       help.Model

	cursor int
	width  int
	height int

	statusText     string
	errorMessage   string
	errorTransient bool

	// Transcriptions in flight, keyed by recording id. A second request for
	// the same recording is ignored until the first resolves.
	inflight map[int64]bool

	// Import prompt
	importing   bool
	importInput textinput.Model

	// Bindings panel
	bindingsOpen  bool
	bindingCursor int
	listening     bool
}

// New assembles the model from its collaborators. The preferences store may
// be nil, in which case defaults apply and nothing persists.
func New(recs *store.Store, engine *player.Engine, recorder *capture.Recorder,
	client *transcribe.Client, prefsStore *prefs.Store) Model {

	p := prefs.Defaults()
	theme := ui.Dark()
	if prefsStore != nil {
		if loaded, err := prefsStore.Load(); err == nil {
			p = loaded
		}
		theme = ui.ByName(prefsStore.Theme())
	}
	recs.SortInsertion(p.SortDesc)
	engine.SetSpeed(p.Speed)

	input := textinput.New()
	input.Placeholder = "path or glob, e.g. ~/audio/*.wav"
	input.CharLimit = 256

	return Model{
		recs:        recs,
		engine:      engine,
		recorder:    recorder,
		client:      client,
		prefsStore:  prefsStore,
		prefs:       p,
		theme:       theme,
		keys:        newKeyMap(p),
		help:        help.New(),
		inflight:    make(map[int64]bool),
		importInput: input,
		statusText:  "Press " + keyLabel(p.Bindings[prefs.ActionRecord]) + " to record",
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd schedules the next UI tick.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// loadClipCmd decodes a recording's audio off the event loop. The id tags
// the completion so stale loads can be discarded.
func loadClipCmd(id int64, data []byte) tea.Cmd {
	return func() tea.Msg {
		clip, err := wavio.Decode(data)
		if err != nil {
			return ClipLoadErrorMsg{ID: id, Err: err}
		}
		return ClipLoadedMsg{ID: id, Clip: clip}
	}
}

// startCaptureCmd opens the input device.
func startCaptureCmd(r *capture.Recorder) tea.Cmd {
	return func() tea.Msg {
		return CaptureStartedMsg{Err: r.Start()}
	}
}

// stopCaptureCmd finalizes the capture and encodes it.
func stopCaptureCmd(r *capture.Recorder) tea.Cmd {
	return func() tea.Msg {
		data, dur, err := r.Stop()
		return CaptureStoppedMsg{Data: data, Duration: dur, Err: err}
	}
}

// importCmd loads files matching the pattern.
func importCmd(pattern string) tea.Cmd {
	return func() tea.Msg {
		accepted, rejected, err := capture.ImportFiles(pattern)
		return ImportedMsg{Accepted: accepted, Rejected: rejected, Err: err}
	}
}

// transcribeCmd posts a recording's audio to the transcription proxy.
func transcribeCmd(client *transcribe.Client, id int64, data []byte, mime string) tea.Cmd {
	return func() tea.Msg {
		text, err := client.Transcribe(context.Background(), data, mime)
		return TranscriptMsg{ID: id, Text: text, Err: err}
	}
}

// exportCmd writes a recording's bytes to a file in the working directory.
func exportCmd(name string, data []byte) tea.Cmd {
	return func() tea.Msg {
		path := exportFileName(name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return ExportedMsg{Err: err}
		}
		return ExportedMsg{Path: path}
	}
}

// savePrefsCmd persists preferences in the background.
func savePrefsCmd(s *prefs.Store, p prefs.Prefs) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		s.Save(p)
		return nil
	}
}

// clearStatusCmd fires after a delay to clear transient messages.
func clearStatusCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

func exportFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, base)
	if base == "" {
		base = "recording"
	}
	return base + ".wav"
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if endedID, ended := m.engine.Tick(); ended {
			return m.applyRepeatPolicy(endedID)
		}
		return m, tickCmd()

	case ClipLoadedMsg:
		m.engine.CompleteLoad(msg.ID, msg.Clip, nil)
		return m, nil

	case ClipLoadErrorMsg:
		if m.engine.CompleteLoad(msg.ID, nil, msg.Err) {
			m.errorMessage = "Could not play recording: " + msg.Err.Error()
			m.errorTransient = true
			return m, clearStatusCmd()
		}
		return m, nil

	case CaptureStartedMsg:
		if msg.Err != nil {
			m.errorMessage = "Microphone unavailable: " + msg.Err.Error()
			m.errorTransient = true
			return m, clearStatusCmd()
		}
		m.statusText = "Recording..."
		return m, nil

	case CaptureStoppedMsg:
		if msg.Err != nil {
			m.errorMessage = "Recording failed: " + msg.Err.Error()
			m.errorTransient = true
			return m, clearStatusCmd()
		}
		rec := m.recs.Add(newRecordingName(time.Now()), msg.Data, "audio/wav")
		m.recs.SetDuration(rec.ID, msg.Duration)
		m.cursor = m.recs.IndexOf(rec.ID)
		m.statusText = fmt.Sprintf("Saved %s (%s)", rec.Name, formatDuration(msg.Duration))
		return m, clearStatusCmd()

	case ImportedMsg:
		return m.applyImport(msg)

	case TranscriptMsg:
		delete(m.inflight, msg.ID)
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
			m.errorTransient = true
			return m, clearStatusCmd()
		}
		text := msg.Text
		if strings.TrimSpace(text) == "" {
			text = "(no speech detected)"
		}
		m.recs.SetTranscript(msg.ID, text)
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.errorMessage = "Export failed: " + msg.Err.Error()
			m.errorTransient = true
		} else {
			m.statusText = "Exported " + msg.Path
		}
		return m, clearStatusCmd()

	case ClearStatusMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		m.statusText = ""
		return m, nil
	}

	return m, nil
}

// applyRepeatPolicy decides what follows a natural end of playback.
func (m Model) applyRepeatPolicy(endedID int64) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	cmds = append(cmds, tickCmd())

	switch m.prefs.Repeat {
	case prefs.RepeatOne:
		if m.engine.SelectAndPlay(endedID) {
			if rec := m.recs.Get(endedID); rec != nil {
				cmds = append(cmds, loadClipCmd(rec.ID, rec.Data))
			}
		}
	case prefs.RepeatAll:
		if next, ok := m.recs.Next(endedID, true); ok {
			if m.engine.SelectAndPlay(next) {
				if rec := m.recs.Get(next); rec != nil {
					cmds = append(cmds, loadClipCmd(rec.ID, rec.Data))
				}
			}
		} else {
			m.engine.Deactivate()
		}
	default:
		m.engine.Deactivate()
	}
	return m, tea.Batch(cmds...)
}

// applyImport merges an import batch into the list.
func (m Model) applyImport(msg ImportedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.errorMessage = msg.Err.Error()
		m.errorTransient = true
		return m, clearStatusCmd()
	}
	for _, f := range msg.Accepted {
		rec := m.recs.Add(f.Name, f.Data, f.MIME)
		if d, err := wavio.Probe(f.Data); err == nil {
			m.recs.SetDuration(rec.ID, d)
		}
	}
	if len(msg.Rejected) > 0 {
		names := make([]string, 0, len(msg.Rejected))
		for _, r := range msg.Rejected {
			names = append(names, r.Name)
		}
		m.statusText = fmt.Sprintf("Imported %d, skipped: %s",
			len(msg.Accepted), strings.Join(names, ", "))
	} else {
		m.statusText = fmt.Sprintf("Imported %d file(s)", len(msg.Accepted))
	}
	return m, clearStatusCmd()
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	if k == KeyCtrlC {
		return m.quit()
	}

	// Key capture for the bindings panel swallows everything except escape.
	// Fixed keys and digits stay dispatched before bindings, so accepting
	// one here would produce a binding that never fires.
	if m.listening {
		m.listening = false
		if k == KeyEscape {
			return m, nil
		}
		if reservedKey(k) {
			m.errorMessage = fmt.Sprintf("%q is reserved and cannot be bound", keyLabel(k))
			m.errorTransient = true
			return m, clearStatusCmd()
		}
		action := prefs.Actions[m.bindingCursor]
		m.prefs.Bind(action, k)
		m.keys = newKeyMap(m.prefs)
		return m, savePrefsCmd(m.prefsStore, m.prefs)
	}

	if m.importing {
		return m.handleImportKey(msg)
	}

	if m.bindingsOpen {
		return m.handleBindingsKey(k)
	}

	switch k {
	case KeyQuit:
		return m.quit()

	case KeyUp, KeyK:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case KeyDown, KeyJ:
		if m.cursor < m.recs.Len()-1 {
			m.cursor++
		}
		return m, nil

	case KeyMoveUp:
		m.cursor = m.recs.Move(m.cursor, -1)
		return m, nil

	case KeyMoveDown:
		m.cursor = m.recs.Move(m.cursor, 1)
		return m, nil

	case KeySort:
		var keep int64
		if rec := m.recs.At(m.cursor); rec != nil {
			keep = rec.ID
		}
		m.prefs.SortDesc = !m.recs.SortDesc()
		m.recs.SortInsertion(m.prefs.SortDesc)
		if i := m.recs.IndexOf(keep); i >= 0 {
			m.cursor = i
		}
		return m, savePrefsCmd(m.prefsStore, m.prefs)

	case KeyImport:
		m.importing = true
		m.importInput.SetValue("")
		return m, m.importInput.Focus()

	case KeyBindings:
		m.bindingsOpen = true
		m.bindingCursor = 0
		return m, nil

	case KeyRepeat:
		m.prefs.Repeat = m.prefs.Repeat.Cycle()
		m.statusText = "Repeat: " + string(m.prefs.Repeat)
		return m, tea.Batch(savePrefsCmd(m.prefsStore, m.prefs), clearStatusCmd())

	case KeySpeed:
		m.prefs.Speed = prefs.NextSpeed(m.prefs.Speed)
		m.engine.SetSpeed(m.prefs.Speed)
		m.statusText = fmt.Sprintf("Speed: %gx", m.prefs.Speed)
		return m, tea.Batch(savePrefsCmd(m.prefsStore, m.prefs), clearStatusCmd())

	case KeyTheme:
		if m.theme.Name == "dark" {
			m.theme = ui.Light()
		} else {
			m.theme = ui.Dark()
		}
		if m.prefsStore != nil {
			m.prefsStore.SaveTheme(m.theme.Name)
		}
		return m, nil

	case KeyClearAll:
		m.engine.Deactivate()
		m.recs.Clear()
		m.cursor = 0
		m.statusText = "All recordings cleared"
		return m, clearStatusCmd()

	case KeyPauseRecord:
		if m.recorder.Recording() {
			if m.recorder.Paused() {
				m.recorder.Resume()
				m.statusText = "Recording..."
			} else {
				m.recorder.Pause()
				m.statusText = "Recording paused"
			}
		}
		return m, nil

	case KeyHelp:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	// Digit keys seek the selected recording to a fraction of its length.
	if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
		if rec := m.recs.At(m.cursor); rec != nil {
			frac := float64(k[0]-'0') / 10
			if m.engine.Seek(rec.ID, frac) {
				return m, loadClipCmd(rec.ID, rec.Data)
			}
		}
		return m, nil
	}

	if action, ok := m.prefs.ActionFor(k); ok {
		return m.handleAction(action)
	}
	return m, nil
}

// handleAction dispatches a rebindable action.
func (m Model) handleAction(action string) (tea.Model, tea.Cmd) {
	switch action {
	case prefs.ActionRecord:
		if m.recorder.Recording() {
			return m, stopCaptureCmd(m.recorder)
		}
		return m, startCaptureCmd(m.recorder)

	case prefs.ActionPlayPause:
		var id, fallback int64
		if rec := m.recs.At(m.cursor); rec != nil {
			id = rec.ID
		}
		if first := m.recs.First(); first != nil {
			fallback = first.ID
		}
		needLoad, target := m.engine.TogglePlayPause(id, fallback)
		if needLoad {
			if rec := m.recs.Get(target); rec != nil {
				return m, loadClipCmd(rec.ID, rec.Data)
			}
		}
		return m, nil

	case prefs.ActionStop:
		if rec := m.recs.At(m.cursor); rec != nil {
			m.engine.Stop(rec.ID)
		} else {
			m.engine.Stop(0)
		}
		return m, nil

	case prefs.ActionRewind:
		m.engine.Rewind(time.Duration(m.prefs.RewindSecs) * time.Second)
		return m, nil

	case prefs.ActionForward:
		m.engine.Forward(time.Duration(m.prefs.RewindSecs) * time.Second)
		return m, nil

	case prefs.ActionNext:
		// Running off the end wraps only under repeat-all; previous never
		// wraps.
		wrap := m.prefs.Repeat == prefs.RepeatAll
		return m.stepActive(func(id int64) (int64, bool) {
			return m.recs.Next(id, wrap)
		})

	case prefs.ActionPrev:
		return m.stepActive(m.recs.Prev)

	case prefs.ActionTranscribe:
		return m.requestTranscript()

	case prefs.ActionDelete:
		rec := m.recs.At(m.cursor)
		if rec == nil {
			return m, nil
		}
		if m.engine.ActiveID() == rec.ID {
			m.engine.Deactivate()
		}
		delete(m.inflight, rec.ID)
		m.recs.Remove(rec.ID)
		if m.cursor >= m.recs.Len() && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case prefs.ActionExport:
		rec := m.recs.At(m.cursor)
		if rec == nil {
			return m, nil
		}
		return m, exportCmd(rec.Name, rec.Data)
	}
	return m, nil
}

// stepActive moves playback to a neighbor of the active recording, or of the
// cursor row when nothing is bound.
func (m Model) stepActive(step func(int64) (int64, bool)) (tea.Model, tea.Cmd) {
	base := m.engine.ActiveID()
	if base == 0 {
		if rec := m.recs.At(m.cursor); rec != nil {
			base = rec.ID
		}
	}
	if base == 0 {
		return m, nil
	}
	next, ok := step(base)
	if !ok {
		return m, nil
	}
	m.cursor = m.recs.IndexOf(next)
	if m.engine.SelectAndPlay(next) {
		if rec := m.recs.Get(next); rec != nil {
			return m, loadClipCmd(rec.ID, rec.Data)
		}
	}
	return m, nil
}

// requestTranscript starts transcription for the selected recording unless
// one already exists or is in flight.
func (m Model) requestTranscript() (tea.Model, tea.Cmd) {
	rec := m.recs.At(m.cursor)
	if rec == nil {
		return m, nil
	}
	if rec.Transcript != nil {
		m.statusText = "Already transcribed"
		return m, clearStatusCmd()
	}
	if m.inflight[rec.ID] {
		return m, nil
	}
	m.inflight[rec.ID] = true
	return m, transcribeCmd(m.client, rec.ID, rec.Data, rec.MIME)
}

// handleImportKey drives the import path prompt.
func (m Model) handleImportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEscape:
		m.importing = false
		m.importInput.Blur()
		return m, nil
	case "enter":
		pattern := strings.TrimSpace(m.importInput.Value())
		m.importing = false
		m.importInput.Blur()
		if pattern == "" {
			return m, nil
		}
		if strings.HasPrefix(pattern, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				pattern = filepath.Join(home, pattern[2:])
			}
		}
		return m, importCmd(pattern)
	}
	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}

// handleBindingsKey drives the key bindings panel.
func (m Model) handleBindingsKey(k string) (tea.Model, tea.Cmd) {
	switch k {
	case KeyEscape, KeyBindings, KeyQuit:
		m.bindingsOpen = false
		return m, nil
	case KeyUp, KeyK:
		if m.bindingCursor > 0 {
			m.bindingCursor--
		}
	case KeyDown, KeyJ:
		if m.bindingCursor < len(prefs.Actions)-1 {
			m.bindingCursor++
		}
	case "enter":
		m.listening = true
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.recorder.Recording() {
		m.recorder.Stop()
	}
	m.engine.Close()
	if m.prefsStore != nil {
		m.prefsStore.Close()
	}
	return m, tea.Quit
}

func newRecordingName(t time.Time) string {
	return "Recording " + t.Format("2006-01-02 15:04:05")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", mins, secs)
}
