package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current version",
	// no config or logger setup needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ tstserve ] Serves really fast prefix completions!")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available commands")
		logger.Print("Github Repo", "gh", gh)
	},
}
