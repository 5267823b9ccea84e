package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppDirName is the directory name used under the user's config dir.
const AppDirName = "tstserve"

// PathResolver resolves config, data and snapshot locations relative to
// the running binary and the user's config dir.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		homeDir:       homeDir,
		configDir:     configDirFor(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

// configDirFor returns the appropriate config directory for the platform
func configDirFor(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppDirName)
		}
		return filepath.Join(homeDir, ".config", AppDirName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDirName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppDirName)
	default:
		return filepath.Join(homeDir, ".config", AppDirName)
	}
}

// ConfigDir returns the config directory
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// GetConfigPath returns the full path for a config file, falling back to
// other writable locations when the config dir cannot be used.
func (pr *PathResolver) GetConfigPath(filename string) string {
	candidates := []string{
		pr.configDir,
		filepath.Join(pr.homeDir, "."+AppDirName),
		pr.executableDir,
	}
	for i, dir := range candidates {
		if isWritableDir(dir) {
			if i > 0 {
				log.Warnf("Using fallback config location: %s", dir)
			}
			return filepath.Join(dir, filename)
		}
	}
	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath
}

// Resolve returns path unchanged when absolute or when it exists relative
// to the working directory; otherwise it tries the executable dir and the
// config dir in turn. The working-directory form is returned if nothing exists.
func (pr *PathResolver) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || FileExists(path) {
		return path
	}
	for _, base := range []string{pr.executableDir, pr.configDir} {
		candidate := filepath.Join(base, path)
		if FileExists(candidate) {
			log.Debugf("Resolved %s to %s", path, candidate)
			return candidate
		}
	}
	return path
}

func isWritableDir(dir string) bool {
	if err := EnsureDir(dir); err != nil {
		log.Debugf("Cannot create directory %s: %v", dir, err)
		return false
	}
	testFile := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		log.Debugf("Directory %s is not writable: %v", dir, err)
		return false
	}
	os.Remove(testFile)
	return true
}
