package main

import (
	"os"

	"github.com/bastiangx/tstserve/internal/cli"
	"github.com/bastiangx/tstserve/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var cliFlags struct {
	limit     int
	minPrefix int
	maxPrefix int
	noFilter  bool
}

// CLI would be mainly used for testing and dbg purposes.
var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Interactive completions on the terminal -- useful for testing and debugging",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig.CLI
		changed := cmd.Flags().Changed
		if changed("limit") {
			cfg.DefaultLimit = cliFlags.limit
		}
		if changed("prmin") {
			cfg.DefaultMinLen = cliFlags.minPrefix
		}
		if changed("prmax") {
			cfg.DefaultMaxLen = cliFlags.maxPrefix
		}
		if changed("no-filter") {
			cfg.DefaultNoFilter = cliFlags.noFilter
		}

		completer, err := newCompleter(appConfig, true)
		if err != nil {
			return err
		}

		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minPrefix", cfg.DefaultMinLen,
			"maxPrefix", cfg.DefaultMaxLen,
			"limit", cfg.DefaultLimit,
			"noFilter", cfg.DefaultNoFilter)

		handler := cli.NewInputHandler(completer, cfg.DefaultMinLen, cfg.DefaultMaxLen, cfg.DefaultLimit, cfg.DefaultNoFilter).
			WithSnapshot(snapshotPath(appConfig))
		return handler.Start(os.Stdin)
	},
}

func init() {
	defaults := config.DefaultConfig().CLI
	f := cliCmd.Flags()
	f.IntVar(&cliFlags.limit, "limit", defaults.DefaultLimit, "Number of suggestions to return")
	f.IntVar(&cliFlags.minPrefix, "prmin", defaults.DefaultMinLen, "Minimum prefix length for suggestions (1 < n <= prmax)")
	f.IntVar(&cliFlags.maxPrefix, "prmax", defaults.DefaultMaxLen, "Maximum prefix length for suggestions")
	f.BoolVar(&cliFlags.noFilter, "no-filter", defaults.DefaultNoFilter, "Disable input filtering (DBG only) - shows all raw dictionary entries (numbers, symbols, etc)")
}
