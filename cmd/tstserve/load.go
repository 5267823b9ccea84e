package main

import (
	"fmt"
	"time"

	"github.com/bastiangx/tstserve/internal/utils"
	"github.com/bastiangx/tstserve/pkg/config"
	"github.com/bastiangx/tstserve/pkg/dictionary"
	"github.com/bastiangx/tstserve/pkg/mapping"
	"github.com/bastiangx/tstserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// newCompleter creates a completer from cfg. With useSnapshot an existing
// engine snapshot is restored instead of reading dict.path.
func newCompleter(cfg *config.Config, useSnapshot bool) (*suggest.Completer, error) {
	var charMap *mapping.NormalizeCharMap
	if cfg.Dict.Mapping != "" {
		path := resolver.Resolve(cfg.Dict.Mapping)
		var err error
		charMap, err = mapping.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load mapping rules: %w", err)
		}
		log.Debugf("Loaded %d mapping rules from %s", charMap.Len(), path)
	}

	completer := suggest.NewCompleter(suggest.Options{
		RankByWeight:  cfg.Engine.RankByWeight,
		HotCacheSize:  cfg.Engine.HotCacheSize,
		CharMap:       charMap,
		LowercaseKeys: cfg.Engine.LowercaseKeys,
	})

	if snapshot := snapshotPath(cfg); useSnapshot && snapshot != "" && utils.FileExists(snapshot) {
		if err := completer.Restore(snapshot); err != nil {
			return nil, err
		}
		log.Debugf("Restored %s words from snapshot %s", utils.FormatWithCommas(completer.Count()), snapshot)
		return completer, nil
	}

	if err := loadDictionary(completer, resolver.Resolve(cfg.Dict.Path), cfg.Dict); err != nil {
		return nil, err
	}
	return completer, nil
}

// loadDictionary fills completer from a chunk dir, text file or snapshot.
func loadDictionary(completer *suggest.Completer, path string, dict config.DictConfig) error {
	if path == "" {
		log.Warn("No dictionary configured, running with empty dict...")
		return nil
	}
	log.Debugf("Using dictionary at: %s", path)
	log.Debugf("Init completer: maxWords=[%d], chunkCount=[%d]", dict.MaxWords, dict.ChunkCount)

	if format, err := dictionary.DetectFileFormat(path); err == nil && format == dictionary.FormatSnapshot {
		return completer.Restore(path)
	}

	it, closer, err := dictionary.OpenSource(path, dict.ChunkCount, dict.MaxWords)
	if err != nil {
		return err
	}
	defer closer.Close()

	start := time.Now()
	if err := completer.BuildFrom(it); err != nil {
		return fmt.Errorf("failed to build dictionary from %s: %w", path, err)
	}
	log.Debugf("Loaded %s words in %v", utils.FormatWithCommas(completer.Count()), time.Since(start))
	return nil
}

// snapshotPath resolves engine.snapshot; empty when none is configured.
func snapshotPath(cfg *config.Config) string {
	if cfg.Engine.Snapshot == "" {
		return ""
	}
	return resolver.Resolve(cfg.Engine.Snapshot)
}
