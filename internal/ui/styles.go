// Package ui holds the lipgloss styles for the voznota TUI, grouped into
// switchable dark and light themes.
package ui

import "github.com/charmbracelet/lipgloss"

// Theme is a complete set of styles for one color scheme.
type Theme struct {
	Name string

	Title  Style
	Dim    Style
	Status Style

	RecordingDot Style
	PausedDot    Style
	IdleDot      Style

	Error     Style
	ErrorText Style

	Selected   Style
	Transcript Style
	Pending    Style

	ProgressFilled Style
	ProgressEmpty  Style

	LevelGreen  Style
	LevelYellow Style
	LevelGray   Style

	FooterKey  Style
	FooterDesc Style
	Divider    Style

	Badge Style
}

// Style aliases lipgloss.Style so callers only import this package.
type Style = lipgloss.Style

// Dark is the default theme.
func Dark() Theme {
	var (
		red     = lipgloss.Color("#FF5555")
		green   = lipgloss.Color("#50FA7B")
		yellow  = lipgloss.Color("#F1FA8C")
		cyan    = lipgloss.Color("#8BE9FD")
		gray    = lipgloss.Color("#6272A4")
		dimGray = lipgloss.Color("#44475A")
		white   = lipgloss.Color("#F8F8F2")
		magenta = lipgloss.Color("#FF79C6")
	)
	return Theme{
		Name: "dark",

		Title:  lipgloss.NewStyle().Bold(true).Foreground(cyan),
		Dim:    lipgloss.NewStyle().Foreground(gray),
		Status: lipgloss.NewStyle().Foreground(white),

		RecordingDot: lipgloss.NewStyle().Foreground(red).Bold(true),
		PausedDot:    lipgloss.NewStyle().Foreground(yellow).Bold(true),
		IdleDot:      lipgloss.NewStyle().Foreground(gray),

		Error:     lipgloss.NewStyle().Foreground(red).Bold(true),
		ErrorText: lipgloss.NewStyle().Foreground(red),

		Selected:   lipgloss.NewStyle().Foreground(cyan).Bold(true),
		Transcript: lipgloss.NewStyle().Foreground(white),
		Pending:    lipgloss.NewStyle().Foreground(magenta),

		ProgressFilled: lipgloss.NewStyle().Foreground(cyan),
		ProgressEmpty:  lipgloss.NewStyle().Foreground(dimGray),

		LevelGreen:  lipgloss.NewStyle().Foreground(green),
		LevelYellow: lipgloss.NewStyle().Foreground(yellow),
		LevelGray:   lipgloss.NewStyle().Foreground(dimGray),

		FooterKey:  lipgloss.NewStyle().Foreground(yellow).Bold(true),
		FooterDesc: lipgloss.NewStyle().Foreground(gray),
		Divider:    lipgloss.NewStyle().Foreground(dimGray),

		Badge: lipgloss.NewStyle().Foreground(green).Bold(true),
	}
}

// Light swaps the palette for bright terminal backgrounds.
func Light() Theme {
	var (
		red     = lipgloss.Color("#D70000")
		green   = lipgloss.Color("#008700")
		yellow  = lipgloss.Color("#AF8700")
		blue    = lipgloss.Color("#005FAF")
		gray    = lipgloss.Color("#878787")
		dimGray = lipgloss.Color("#D0D0D0")
		black   = lipgloss.Color("#262626")
		purple  = lipgloss.Color("#8700AF")
	)
	return Theme{
		Name: "light",

		Title:  lipgloss.NewStyle().Bold(true).Foreground(blue),
		Dim:    lipgloss.NewStyle().Foreground(gray),
		Status: lipgloss.NewStyle().Foreground(black),

		RecordingDot: lipgloss.NewStyle().Foreground(red).Bold(true),
		PausedDot:    lipgloss.NewStyle().Foreground(yellow).Bold(true),
		IdleDot:      lipgloss.NewStyle().Foreground(gray),

		Error:     lipgloss.NewStyle().Foreground(red).Bold(true),
		ErrorText: lipgloss.NewStyle().Foreground(red),

		Selected:   lipgloss.NewStyle().Foreground(blue).Bold(true),
		Transcript: lipgloss.NewStyle().Foreground(black),
		Pending:    lipgloss.NewStyle().Foreground(purple),

		ProgressFilled: lipgloss.NewStyle().Foreground(blue),
		ProgressEmpty:  lipgloss.NewStyle().Foreground(dimGray),

		LevelGreen:  lipgloss.NewStyle().Foreground(green),
		LevelYellow: lipgloss.NewStyle().Foreground(yellow),
		LevelGray:   lipgloss.NewStyle().Foreground(dimGray),

		FooterKey:  lipgloss.NewStyle().Foreground(yellow).Bold(true),
		FooterDesc: lipgloss.NewStyle().Foreground(gray),
		Divider:    lipgloss.NewStyle().Foreground(dimGray),

		Badge: lipgloss.NewStyle().Foreground(green).Bold(true),
	}
}

// ByName returns the theme for a stored flag, defaulting to dark.
func ByName(name string) Theme {
	if name == "light" {
		return Light()
	}
	return Dark()
}
