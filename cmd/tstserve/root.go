package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bastiangx/tstserve/internal/logger"
	"github.com/bastiangx/tstserve/internal/utils"
	"github.com/bastiangx/tstserve/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0-beta"
	AppName = "tstserve"
	gh      = "https://github.com/bastiangx/tstserve"
)

// rootFlags are shared by every command.
type rootFlags struct {
	configPath string
	debug      bool
	logLevel   string
	logFile    string
	dataPath   string
	mapping    string
	snapshot   string
	maxWords   int
	chunkCount int
}

var (
	flags     rootFlags
	logCloser io.Closer
	resolver  *utils.PathResolver
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:           AppName,
	Short:         "Fast prefix completions from a ternary search tree",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCloser = logger.Setup(logger.Options{
			Level:      flags.logLevel,
			Debug:      flags.debug,
			File:       flags.logFile,
			MaxSizeMB:  10,
			MaxBackups: 3,
		})

		var err error
		resolver, err = utils.NewPathResolver()
		if err != nil {
			log.Error("Either env is not set or system is not supported")
			return fmt.Errorf("failed to initialize path resolver: %w", err)
		}

		configPath := flags.configPath
		if configPath == "" {
			configPath = resolver.GetConfigPath(config.FileName)
		}
		log.Debugf("Using config file: (%s)", configPath)

		appConfig, err = config.InitConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cmd, appConfig)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	defaults := config.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default is config.toml in the user config dir)")
	pf.BoolVarP(&flags.debug, "debug", "d", false, "Toggle debug mode")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	pf.StringVar(&flags.dataPath, "data", defaults.Dict.Path, "Chunk directory, .txt dictionary or .tst snapshot")
	pf.StringVar(&flags.mapping, "mapping", "", "Character mapping rules file")
	pf.StringVar(&flags.snapshot, "snapshot", "", "Snapshot to load from and save to")
	pf.IntVar(&flags.maxWords, "words", defaults.Dict.MaxWords, "Maximum number of words to load from chunks (use 0 for all words)")
	pf.IntVar(&flags.chunkCount, "chunks", defaults.Dict.ChunkCount, "Number of chunk files to read (use 0 for all)")

	rootCmd.AddCommand(serveCmd, cliCmd, buildCmd, versionCmd)
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("data") {
		cfg.Dict.Path = flags.dataPath
	}
	if changed("mapping") {
		cfg.Dict.Mapping = flags.mapping
	}
	if changed("snapshot") {
		cfg.Engine.Snapshot = flags.snapshot
	}
	if changed("words") {
		cfg.Dict.MaxWords = flags.maxWords
	}
	if changed("chunks") {
		cfg.Dict.ChunkCount = flags.chunkCount
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
