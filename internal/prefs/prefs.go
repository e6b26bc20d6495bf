// Package prefs persists playback settings across sessions: one serialized
// preferences object and one theme flag, each under its own storage key.
package prefs

// Rebindable actions. The names are storage identifiers, so they never
// change even if the UI labels do.
const (
	ActionRecord     = "record"
	ActionPlayPause  = "playpause"
	ActionStop       = "stop"
	ActionRewind     = "rewind"
	ActionForward    = "forward"
	ActionNext       = "next"
	ActionPrev       = "prev"
	ActionTranscribe = "transcribe"
	ActionDelete     = "delete"
	ActionExport     = "export"
)

// Actions lists every rebindable action in display order.
var Actions = []string{
	ActionRecord,
	ActionPlayPause,
	ActionStop,
	ActionRewind,
	ActionForward,
	ActionNext,
	ActionPrev,
	ActionTranscribe,
	ActionDelete,
	ActionExport,
}

// RepeatMode controls what happens when a recording plays to its end.
type RepeatMode string

const (
	RepeatNone RepeatMode = "none"
	RepeatOne  RepeatMode = "one"
	RepeatAll  RepeatMode = "all"
)

// Cycle returns the next repeat mode.
func (m RepeatMode) Cycle() RepeatMode {
	switch m {
	case RepeatNone:
		return RepeatOne
	case RepeatOne:
		return RepeatAll
	default:
		return RepeatNone
	}
}

// Prefs is the serialized preferences object. New fields must carry
// sensible zero handling in Normalize so older stored blobs keep working.
type Prefs struct {
	Speed      float64           `json:"speed"`
	Repeat     RepeatMode        `json:"repeat"`
	RewindSecs int               `json:"rewindStepSeconds"`
	SortDesc   bool              `json:"sortDescending"`
	Bindings   map[string]string `json:"bindings"` // action -> physical key
}

// Defaults returns the first-run preferences.
func Defaults() Prefs {
	return Prefs{
		Speed:      1.0,
		Repeat:     RepeatNone,
		RewindSecs: 5,
		Bindings: map[string]string{
			ActionRecord:     " ",
			ActionPlayPause:  "enter",
			ActionStop:       "x",
			ActionRewind:     "left",
			ActionForward:    "right",
			ActionNext:       "n",
			ActionPrev:       "p",
			ActionTranscribe: "t",
			ActionDelete:     "d",
			ActionExport:     "w",
		},
	}
}

// Normalize fills anything a stored blob left missing or out of range.
func (p *Prefs) Normalize() {
	if p.Speed <= 0 {
		p.Speed = 1.0
	}
	switch p.Repeat {
	case RepeatNone, RepeatOne, RepeatAll:
	default:
		p.Repeat = RepeatNone
	}
	if p.RewindSecs <= 0 {
		p.RewindSecs = 5
	}
	if p.Bindings == nil {
		p.Bindings = map[string]string{}
	}
	for action, key := range Defaults().Bindings {
		if _, ok := p.Bindings[action]; !ok && !p.keyTaken(key) {
			p.Bindings[action] = key
		}
	}
}

func (p *Prefs) keyTaken(key string) bool {
	for _, k := range p.Bindings {
		if k == key {
			return true
		}
	}
	return false
}

// Bind maps a physical key to an action. A key maps to at most one action:
// whatever held the key before loses it.
func (p *Prefs) Bind(action, key string) {
	for a, k := range p.Bindings {
		if k == key && a != action {
			delete(p.Bindings, a)
		}
	}
	p.Bindings[action] = key
}

// ActionFor returns the action bound to a physical key, if any.
func (p *Prefs) ActionFor(key string) (string, bool) {
	for a, k := range p.Bindings {
		if k == key {
			return a, true
		}
	}
	return "", false
}

// Speeds a user can cycle through.
var Speeds = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

// NextSpeed returns the next speed in the cycle after current.
func NextSpeed(current float64) float64 {
	for i, s := range Speeds {
		if s == current {
			return Speeds[(i+1)%len(Speeds)]
		}
	}
	return 1.0
}
