package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	defer Setup(Options{Level: "error"})

	Setup(Options{Level: "info"})
	assert.Equal(t, log.InfoLevel, log.GetLevel())

	Setup(Options{Level: "loud"})
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	Setup(Options{Level: "error", Debug: true})
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tstserve.log")

	closer := Setup(Options{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 1})
	log.Info("written to file", "key", "value")
	require.NoError(t, closer.Close())
	Setup(Options{Level: "error"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), "key=value")
}

func TestNewWithConfig(t *testing.T) {
	l := NewWithConfig(os.Stderr, "tst", log.ErrorLevel, false, false, log.TextFormatter)
	assert.Equal(t, log.ErrorLevel, l.GetLevel())
	assert.Equal(t, "tst", l.GetPrefix())
}
