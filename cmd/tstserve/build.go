package main

import (
	"fmt"

	"github.com/bastiangx/tstserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <snapshot.tst>",
	Short: "Build the dictionary from --data and write it as a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		completer, err := newCompleter(appConfig, false)
		if err != nil {
			return err
		}
		if completer.Count() == 0 {
			log.Warn("Dictionary is empty, writing an empty snapshot")
		}
		if err := completer.Save(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s words to %s\n",
			utils.FormatWithCommas(completer.Count()), utils.GetAbsolutePath(args[0]))
		return nil
	},
}
