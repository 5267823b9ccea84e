package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/tstserve/pkg/server"
	"github.com/bastiangx/tstserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve completions as msgpack IPC over stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		if isatty.IsTerminal(os.Stdout.Fd()) {
			log.Warn("stdout is a terminal: serve speaks msgpack. Use `tstserve cli` to try completions by hand")
		}

		completer, err := newCompleter(appConfig, true)
		if err != nil {
			return err
		}
		snapshot := snapshotPath(appConfig)
		sigHandler(completer, snapshot)

		log.Debug("spawning IPC")
		srv := server.NewServer(completer, appConfig, snapshot)
		showStartupInfo(completer)

		err = srv.Start()
		saveOnExit(completer, snapshot)
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	},
}

// sigHandler saves on exit if configured and exits normally on SIGINT/SIGTERM.
func sigHandler(completer *suggest.Completer, snapshot string) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		saveOnExit(completer, snapshot)
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func saveOnExit(completer *suggest.Completer, snapshot string) {
	if !appConfig.Engine.SaveOnExit {
		return
	}
	if snapshot == "" {
		log.Warn("engine.save_on_exit is set but no snapshot path is configured")
		return
	}
	if err := completer.Save(snapshot); err != nil {
		log.Errorf("Failed to save snapshot: %v", err)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(completer *suggest.Completer) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Info("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("words: %d", completer.Count())
	log.Info("status: ready")
	log.Info("===========")

	log.SetLevel(currentLevel)
}
