package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/rmarin/voznota/internal/player"
	"github.com/rmarin/voznota/internal/prefs"
	"github.com/rmarin/voznota/internal/store"
)

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.bindingsOpen {
		return m.renderBindingsPanel()
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, m.theme.Divider.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderList())

	if m.importing {
		sections = append(sections, "")
		sections = append(sections, m.theme.Title.Render("Import: ")+m.importInput.View())
	}

	if m.errorMessage != "" {
		sections = append(sections,
			m.theme.Error.Render("Error: ")+m.theme.ErrorText.Render(m.errorMessage))
	} else if m.statusText != "" {
		sections = append(sections, m.theme.Dim.Render(m.statusText))
	}

	sections = append(sections, m.help.View(m.keys))

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("VOZNOTA")
	count := m.theme.Dim.Render(fmt.Sprintf(" — %d recording(s)", m.recs.Len()))

	var mode string
	if m.prefs.Repeat != prefs.RepeatNone {
		mode += m.theme.Badge.Render(" [repeat " + string(m.prefs.Repeat) + "]")
	}
	if m.prefs.Speed != 1.0 {
		mode += m.theme.Badge.Render(fmt.Sprintf(" [%gx]", m.prefs.Speed))
	}
	return title + count + mode
}

func (m Model) renderStatusBar() string {
	var dot, meter string
	switch {
	case m.recorder.Recording() && m.recorder.Paused():
		dot = m.theme.PausedDot.Render("● REC PAUSED " + formatDuration(m.recorder.Elapsed()))
	case m.recorder.Recording():
		dot = m.theme.RecordingDot.Render("● REC " + formatDuration(m.recorder.Elapsed()))
		meter = "  " + m.renderLevelMeter(m.recorder.Level())
	case m.engine.State() == player.Playing:
		dot = m.theme.Badge.Render("▶ PLAYING")
		meter = "  " + m.renderLevelMeter(m.engine.Level())
	case m.engine.State() == player.Paused:
		dot = m.theme.PausedDot.Render("⏸ PAUSED")
	case m.engine.State() == player.Loading:
		dot = m.theme.Pending.Render("⟳ LOADING")
	default:
		dot = m.theme.IdleDot.Render("○ IDLE")
	}
	return dot + meter
}

func (m Model) renderLevelMeter(level float64) string {
	const barLen = 12
	filled := int(level * barLen)
	if filled > barLen {
		filled = barLen
	}

	var bar strings.Builder
	for i := 0; i < barLen; i++ {
		if i < filled {
			if float64(i)/barLen > 0.7 {
				bar.WriteString(m.theme.LevelYellow.Render("█"))
			} else {
				bar.WriteString(m.theme.LevelGreen.Render("█"))
			}
		} else {
			bar.WriteString(m.theme.LevelGray.Render("░"))
		}
	}
	return bar.String()
}

func (m Model) renderList() string {
	if m.recs.Len() == 0 {
		return m.theme.Dim.Render("  No recordings yet.")
	}

	var lines []string
	for i := 0; i < m.recs.Len(); i++ {
		rec := m.recs.At(i)
		lines = append(lines, m.renderRow(i, rec))
		if i == m.cursor {
			lines = append(lines, m.renderTranscript(rec)...)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(i int, rec *store.Recording) string {
	marker := "  "
	if i == m.cursor {
		marker = m.theme.Selected.Render("> ")
	}

	active := m.engine.ActiveID() == rec.ID
	var icon string
	switch {
	case active && m.engine.State() == player.Playing:
		icon = m.theme.Badge.Render("▶ ")
	case active && m.engine.State() == player.Paused:
		icon = m.theme.PausedDot.Render("⏸ ")
	case active && m.engine.State() == player.Loading:
		icon = m.theme.Pending.Render("⟳ ")
	default:
		icon = "  "
	}

	pos, dur := rec.LastPos, rec.Duration
	if active && m.engine.Duration() > 0 {
		pos, dur = m.engine.Position(), m.engine.Duration()
	}

	name := rec.Name
	if i == m.cursor {
		name = m.theme.Selected.Render(name)
	} else {
		name = m.theme.Status.Render(name)
	}

	times := m.theme.Dim.Render(fmt.Sprintf(" %s/%s", formatDuration(pos), formatDuration(dur)))

	var note string
	if m.inflight[rec.ID] {
		note = m.theme.Pending.Render("  transcribing…")
	} else if rec.Transcript != nil {
		note = m.theme.Dim.Render("  ✎")
	}

	return marker + icon + name + times + "  " + m.renderProgress(pos, dur) + note
}

func (m Model) renderProgress(pos, dur time.Duration) string {
	const barLen = 20
	filled := 0
	if dur > 0 {
		filled = int(float64(pos) / float64(dur) * barLen)
		if filled > barLen {
			filled = barLen
		}
	}
	return m.theme.ProgressFilled.Render(strings.Repeat("━", filled)) +
		m.theme.ProgressEmpty.Render(strings.Repeat("─", barLen-filled))
}

func (m Model) renderTranscript(rec *store.Recording) []string {
	if rec.Transcript == nil {
		return nil
	}
	width := m.width - 8
	if width < 20 {
		width = 20
	}
	var lines []string
	for _, l := range wrapText(*rec.Transcript, width) {
		lines = append(lines, "      "+m.theme.Transcript.Render(l))
	}
	return lines
}

func (m Model) renderBindingsPanel() string {
	var lines []string
	lines = append(lines, m.theme.Title.Render("KEY BINDINGS"))
	lines = append(lines, "")

	for i, action := range prefs.Actions {
		label := actionLabel(action)
		bound, ok := m.prefs.Bindings[action]
		display := "(unbound)"
		if ok {
			display = keyLabel(bound)
		}

		row := fmt.Sprintf("%-20s %s", label, display)
		if i == m.bindingCursor {
			if m.listening {
				row = m.theme.Pending.Render("> " + fmt.Sprintf("%-20s ", label) + "press a key…")
			} else {
				row = m.theme.Selected.Render("> " + row)
			}
		} else {
			row = "  " + m.theme.Status.Render(row)
		}
		lines = append(lines, row)
	}

	lines = append(lines, "")
	lines = append(lines, m.theme.Dim.Render("enter rebind · esc/b back"))
	return strings.Join(lines, "\n")
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
