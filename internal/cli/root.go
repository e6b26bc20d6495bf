// Package cli wires the cobra command tree: the root command runs the TUI,
// serve runs the transcription proxy.
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rmarin/voznota/internal/app"
	"github.com/rmarin/voznota/internal/capture"
	"github.com/rmarin/voznota/internal/player"
	"github.com/rmarin/voznota/internal/prefs"
	"github.com/rmarin/voznota/internal/store"
	"github.com/rmarin/voznota/internal/transcribe"
	"github.com/rmarin/voznota/internal/version"
)

func NewRootCmd() *cobra.Command {
	var endpoint string

	rootCmd := &cobra.Command{
		Use:   "voznota",
		Short: "Record, play back, and transcribe voice notes in the terminal",
		Long: "voznota records audio from the microphone, keeps the session's " +
			"recordings in an ordered list with a single shared playback engine, " +
			"and transcribes recordings on demand through its companion proxy " +
			"(see: voznota serve).",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(endpoint)
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.Flags().StringVar(&endpoint, "endpoint", transcribe.DefaultEndpoint,
		"transcription proxy endpoint")

	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

func runTUI(endpoint string) error {
	out, err := player.NewDevice()
	if err != nil {
		return fmt.Errorf("opening audio output: %w", err)
	}

	recs := store.New()
	engine := player.New(out, recs)

	// A broken preferences database should not keep the app from starting.
	prefsStore, err := prefs.Open(prefs.DefaultDBPath())
	if err != nil {
		prefsStore = nil
	}

	m := app.New(recs, engine, capture.NewRecorder(), transcribe.NewClient(endpoint), prefsStore)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
