// Package paths provides centralized path handling for modfuse.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for modfuse
	EnvConfigDir = "MODFUSE_CONFIG_DIR"

	// EnvDataDir overrides the XDG data directory for modfuse
	EnvDataDir = "MODFUSE_DATA_DIR"
)

// Default directories and files
const (
	// AppDirName is the directory name for modfuse-specific files
	AppDirName = "modfuse"

	// BackupsDirName is the subdirectory for transaction backups
	BackupsDirName = "backups"

	// StagingDirName is the subdirectory for atomic-replace staging
	StagingDirName = "staging"

	// PriorityDirName is the subdirectory for priority config files
	PriorityDirName = "priorities"

	// LogFileName is the name of the log file
	LogFileName = "modfuse.log"
)

// Paths provides centralized path management for modfuse
type Paths interface {
	ConfigDir() string
	DataDir() string
	StateDir() string
	BackupsDir() string
	StagingDir() string
	PriorityConfigPath(contextKey string) string
	LogFilePath() string
}

type paths struct {
	xdgConfig string
	xdgData   string
	xdgState  string
}

// New creates a Paths instance from the environment, honoring the
// MODFUSE_* overrides before the XDG defaults.
func New() Paths {
	p := &paths{
		xdgConfig: filepath.Join(xdg.ConfigHome, AppDirName),
		xdgData:   filepath.Join(xdg.DataHome, AppDirName),
		xdgState:  filepath.Join(xdg.StateHome, AppDirName),
	}
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.xdgConfig = dir
	}
	if dir := os.Getenv(EnvDataDir); dir != "" {
		p.xdgData = dir
	}
	return p
}

func (p *paths) ConfigDir() string { return p.xdgConfig }
func (p *paths) DataDir() string   { return p.xdgData }
func (p *paths) StateDir() string  { return p.xdgState }

func (p *paths) BackupsDir() string {
	return filepath.Join(p.xdgData, BackupsDirName)
}

func (p *paths) StagingDir() string {
	return filepath.Join(p.xdgData, StagingDirName)
}

// PriorityConfigPath returns the persisted priority configuration file
// for the given target context (one file per target installation).
func (p *paths) PriorityConfigPath(contextKey string) string {
	return filepath.Join(p.xdgConfig, PriorityDirName, sanitizeKey(contextKey)+".toml")
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// sanitizeKey makes a context key safe to use as a file name.
func sanitizeKey(key string) string {
	if key == "" {
		return "default"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "_")
	return strings.ToLower(replacer.Replace(key))
}
