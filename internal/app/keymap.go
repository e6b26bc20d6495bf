package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/rmarin/voznota/internal/prefs"
)

// Fixed keys not subject to rebinding.
const (
	KeyQuit        = "q"
	KeyCtrlC       = "ctrl+c"
	KeyUp          = "up"
	KeyDown        = "down"
	KeyJ           = "j"
	KeyK           = "k"
	KeyMoveUp      = "shift+up"
	KeyMoveDown    = "shift+down"
	KeySort        = "s"
	KeyImport      = "i"
	KeyBindings    = "b"
	KeyRepeat      = "m"
	KeySpeed       = "]"
	KeyTheme       = "ctrl+t"
	KeyClearAll    = "ctrl+k"
	KeyPauseRecord = "ctrl+p"
	KeyHelp        = "?"
	KeyEscape      = "esc"
)

// reservedKey reports whether k is a fixed key that cannot be rebound.
// Digits are reserved for fractional seek.
func reservedKey(k string) bool {
	switch k {
	case KeyQuit, KeyCtrlC, KeyUp, KeyDown, KeyJ, KeyK,
		KeyMoveUp, KeyMoveDown, KeySort, KeyImport, KeyBindings,
		KeyRepeat, KeySpeed, KeyTheme, KeyClearAll, KeyPauseRecord,
		KeyHelp, KeyEscape:
		return true
	}
	return len(k) == 1 && k[0] >= '0' && k[0] <= '9'
}

// keyMap feeds the bubbles help component. The rebindable entries are
// rebuilt whenever the user changes a binding.
type keyMap struct {
	Record     key.Binding
	PlayPause  key.Binding
	Stop       key.Binding
	Seek       key.Binding
	NextPrev   key.Binding
	Transcribe key.Binding
	Delete     key.Binding
	Export     key.Binding
	Nav        key.Binding
	Reorder    key.Binding
	Sort       key.Binding
	Import     key.Binding
	Bindings   key.Binding
	Repeat     key.Binding
	Speed      key.Binding
	Theme      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func keyLabel(k string) string {
	switch k {
	case " ":
		return "space"
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "left":
		return "←"
	case "right":
		return "→"
	}
	return k
}

func newKeyMap(p prefs.Prefs) keyMap {
	b := func(action, desc string) key.Binding {
		k := p.Bindings[action]
		return key.NewBinding(
			key.WithKeys(k),
			key.WithHelp(keyLabel(k), desc),
		)
	}
	return keyMap{
		Record:     b(prefs.ActionRecord, "record"),
		PlayPause:  b(prefs.ActionPlayPause, "play/pause"),
		Stop:       b(prefs.ActionStop, "stop"),
		Seek: key.NewBinding(
			key.WithKeys(p.Bindings[prefs.ActionRewind], p.Bindings[prefs.ActionForward]),
			key.WithHelp(
				keyLabel(p.Bindings[prefs.ActionRewind])+"/"+keyLabel(p.Bindings[prefs.ActionForward]),
				"seek"),
		),
		NextPrev: key.NewBinding(
			key.WithKeys(p.Bindings[prefs.ActionNext], p.Bindings[prefs.ActionPrev]),
			key.WithHelp(
				keyLabel(p.Bindings[prefs.ActionNext])+"/"+keyLabel(p.Bindings[prefs.ActionPrev]),
				"next/prev"),
		),
		Transcribe: b(prefs.ActionTranscribe, "transcribe"),
		Delete:     b(prefs.ActionDelete, "delete"),
		Export:     b(prefs.ActionExport, "export"),
		Nav: key.NewBinding(
			key.WithKeys(KeyUp, KeyDown, KeyJ, KeyK),
			key.WithHelp("↑/↓", "navigate"),
		),
		Reorder: key.NewBinding(
			key.WithKeys(KeyMoveUp, KeyMoveDown),
			key.WithHelp("shift+↑/↓", "reorder"),
		),
		Sort: key.NewBinding(
			key.WithKeys(KeySort),
			key.WithHelp(KeySort, "sort"),
		),
		Import: key.NewBinding(
			key.WithKeys(KeyImport),
			key.WithHelp(KeyImport, "import"),
		),
		Bindings: key.NewBinding(
			key.WithKeys(KeyBindings),
			key.WithHelp(KeyBindings, "key bindings"),
		),
		Repeat: key.NewBinding(
			key.WithKeys(KeyRepeat),
			key.WithHelp(KeyRepeat, "repeat mode"),
		),
		Speed: key.NewBinding(
			key.WithKeys(KeySpeed),
			key.WithHelp(KeySpeed, "speed"),
		),
		Theme: key.NewBinding(
			key.WithKeys(KeyTheme),
			key.WithHelp("ctrl+t", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys(KeyHelp),
			key.WithHelp(KeyHelp, "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys(KeyQuit, KeyCtrlC),
			key.WithHelp(KeyQuit, "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.PlayPause, k.Transcribe, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Record, k.PlayPause, k.Stop, k.Seek, k.NextPrev},
		{k.Transcribe, k.Delete, k.Export, k.Nav, k.Reorder},
		{k.Sort, k.Import, k.Bindings, k.Repeat, k.Speed},
		{k.Theme, k.Help, k.Quit},
	}
}

// actionLabel is the human name for a rebindable action in the bindings
// panel.
func actionLabel(action string) string {
	switch action {
	case prefs.ActionRecord:
		return "Record"
	case prefs.ActionPlayPause:
		return "Play / Pause"
	case prefs.ActionStop:
		return "Stop"
	case prefs.ActionRewind:
		return "Rewind"
	case prefs.ActionForward:
		return "Forward"
	case prefs.ActionNext:
		return "Next recording"
	case prefs.ActionPrev:
		return "Previous recording"
	case prefs.ActionTranscribe:
		return "Transcribe"
	case prefs.ActionDelete:
		return "Delete"
	case prefs.ActionExport:
		return "Export to file"
	}
	return action
}
