// ABOUTME: Standard filesystem paths for portfolio-bot configuration
// ABOUTME: Resolves ~/.portfolio-bot/ for global and .portfolio-bot/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".portfolio-bot"
	projectDirName = ".portfolio-bot"
)

// GlobalDir returns the user-global config directory (~/.portfolio-bot/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory.
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), "config.json")
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "config.json")
}
