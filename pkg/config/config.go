/*
Package config manages TOML config for tstserve.
*/
package config

import (
	"fmt"
	"path/filepath"

	"github.com/bastiangx/tstserve/internal/utils"
	"github.com/charmbracelet/log"
)

// FileName is the default config file name inside the config dir.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Dict   DictConfig   `toml:"dict"`
	Engine EngineConfig `toml:"engine"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int  `toml:"max_limit"`
	DefaultLimit int  `toml:"default_limit"`
	MinPrefix    int  `toml:"min_prefix"`
	MaxPrefix    int  `toml:"max_prefix"`
	EnableFilter bool `toml:"enable_filter"`
}

// DictConfig says where the corpus comes from.
// Path may be a chunk directory, a .txt dictionary or a .tst snapshot.
type DictConfig struct {
	Path       string `toml:"path"`
	ChunkCount int    `toml:"chunk_count"`
	MaxWords   int    `toml:"max_words"`
	Mapping    string `toml:"mapping"`
}

// EngineConfig holds suggester options.
type EngineConfig struct {
	RankByWeight  bool   `toml:"rank_by_weight"`
	HotCacheSize  int    `toml:"hot_cache_size"`
	Snapshot      string `toml:"snapshot"`
	SaveOnExit    bool   `toml:"save_on_exit"`
	LowercaseKeys bool   `toml:"lowercase_keys"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	DefaultMinLen   int  `toml:"default_min_len"`
	DefaultMaxLen   int  `toml:"default_max_len"`
	DefaultNoFilter bool `toml:"default_no_filter"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:     64,
			DefaultLimit: 24,
			MinPrefix:    1,
			MaxPrefix:    60,
			EnableFilter: true,
		},
		Dict: DictConfig{
			Path:       "data/",
			ChunkCount: 0,
			MaxWords:   50000,
		},
		Engine: EngineConfig{
			RankByWeight:  true,
			HotCacheSize:  2048,
			Snapshot:      "",
			SaveOnExit:    false,
			LowercaseKeys: true,
		},
		CLI: CliConfig{
			DefaultLimit:    24,
			DefaultMinLen:   1,
			DefaultMaxLen:   24,
			DefaultNoFilter: false,
		},
	}
}

// Validate rejects settings the server cannot work with.
func (c *Config) Validate() error {
	if c.Server.MaxLimit < 1 {
		return fmt.Errorf("server.max_limit must be at least 1, got %d", c.Server.MaxLimit)
	}
	if c.Server.DefaultLimit < 1 || c.Server.DefaultLimit > c.Server.MaxLimit {
		return fmt.Errorf("server.default_limit must be within [1, %d], got %d", c.Server.MaxLimit, c.Server.DefaultLimit)
	}
	if c.Server.MinPrefix < 0 || c.Server.MaxPrefix < c.Server.MinPrefix {
		return fmt.Errorf("server prefix bounds [%d, %d] are invalid", c.Server.MinPrefix, c.Server.MaxPrefix)
	}
	if c.Dict.ChunkCount < 0 || c.Dict.MaxWords < 0 {
		return fmt.Errorf("dict.chunk_count and dict.max_words must not be negative")
	}
	if c.Engine.HotCacheSize < 0 {
		return fmt.Errorf("engine.hot_cache_size must not be negative, got %d", c.Engine.HotCacheSize)
	}
	return nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig loads from a TOML file. A file that does not fully decode is
// salvaged section by section; invalid values are an error.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config = tryPartialParse(configPath)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

// tryPartialParse salvages whatever fields of a TOML file have the right types
func tryPartialParse(configPath string) *Config {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		server.EnableFilter = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dict.Path = val
	}
	if val, ok := utils.ExtractInt64(data, "chunk_count"); ok {
		dict.ChunkCount = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		dict.MaxWords = val
	}
	if val, ok := utils.ExtractString(data, "mapping"); ok {
		dict.Mapping = val
	}
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractBool(data, "rank_by_weight"); ok {
		engine.RankByWeight = val
	}
	if val, ok := utils.ExtractInt64(data, "hot_cache_size"); ok {
		engine.HotCacheSize = val
	}
	if val, ok := utils.ExtractString(data, "snapshot"); ok {
		engine.Snapshot = val
	}
	if val, ok := utils.ExtractBool(data, "save_on_exit"); ok {
		engine.SaveOnExit = val
	}
	if val, ok := utils.ExtractBool(data, "lowercase_keys"); ok {
		engine.LowercaseKeys = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_min_len"); ok {
		cli.DefaultMinLen = val
	}
	if val, ok := utils.ExtractInt64(data, "default_max_len"); ok {
		cli.DefaultMaxLen = val
	}
	if val, ok := utils.ExtractBool(data, "default_no_filter"); ok {
		cli.DefaultNoFilter = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
