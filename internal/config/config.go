// ABOUTME: Settings loading with global + project config merge, .env and PORTFOLIO_BOT_* overrides
// ABOUTME: JSON files for persistent settings; environment wins so deployments need no file at all

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied after merging and environment overrides.
const (
	DefaultAddr        = ":8080"
	DefaultTypingMinMS = 350
	DefaultTypingMaxMS = 1800
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Settings holds the merged configuration.
type Settings struct {
	Addr           string   `json:"addr,omitempty"`
	CatalogPath    string   `json:"catalog_path,omitempty"`
	RepliesPath    string   `json:"replies_path,omitempty"`
	Threshold      float64  `json:"threshold,omitempty"`
	TypingMinMS    int      `json:"typing_min_ms,omitempty"`
	TypingMaxMS    int      `json:"typing_max_ms,omitempty"`
	LogLevel       string   `json:"log_level,omitempty"`
	LogFormat      string   `json:"log_format,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	Watch          bool     `json:"watch,omitempty"` // reload catalog/replies overrides on change
}

// Load reads and merges global and project-local settings, then applies a
// project .env file and PORTFOLIO_BOT_* environment overrides.
// Project settings override global settings.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	merged := merge(global, project)
	ResolveEnvVars(merged)
	applyEnv(merged)
	merged.applyDefaults()

	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return merged, nil
}

// loadFile reads a Settings from a JSON file. Returns zero Settings if file
// does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.Addr != "" {
		result.Addr = project.Addr
	}
	if project.CatalogPath != "" {
		result.CatalogPath = project.CatalogPath
	}
	if project.RepliesPath != "" {
		result.RepliesPath = project.RepliesPath
	}
	if project.Threshold != 0 {
		result.Threshold = project.Threshold
	}
	if project.TypingMinMS != 0 {
		result.TypingMinMS = project.TypingMinMS
	}
	if project.TypingMaxMS != 0 {
		result.TypingMaxMS = project.TypingMaxMS
	}
	if project.LogLevel != "" {
		result.LogLevel = project.LogLevel
	}
	if project.LogFormat != "" {
		result.LogFormat = project.LogFormat
	}
	if len(project.AllowedOrigins) > 0 {
		result.AllowedOrigins = append([]string(nil), project.AllowedOrigins...)
	}
	if project.Watch {
		result.Watch = true
	}

	return &result
}

func (s *Settings) applyDefaults() {
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	if s.TypingMinMS == 0 {
		s.TypingMinMS = DefaultTypingMinMS
	}
	if s.TypingMaxMS == 0 {
		s.TypingMaxMS = DefaultTypingMaxMS
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if s.LogFormat == "" {
		s.LogFormat = DefaultLogFormat
	}
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("addr cannot be empty")
	}
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("threshold %.2f must be in [0, 1]", s.Threshold)
	}
	if s.TypingMinMS < 0 || s.TypingMaxMS < s.TypingMinMS {
		return fmt.Errorf("typing delay range %d..%d ms is invalid", s.TypingMinMS, s.TypingMaxMS)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", s.LogFormat)
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", s.LogLevel)
	}
	return nil
}

// TypingRange returns the typing delay bounds.
func (s *Settings) TypingRange() (time.Duration, time.Duration) {
	return time.Duration(s.TypingMinMS) * time.Millisecond, time.Duration(s.TypingMaxMS) * time.Millisecond
}

// WatchPaths returns the override files worth watching.
func (s *Settings) WatchPaths() []string {
	var paths []string
	for _, p := range []string{s.CatalogPath, s.RepliesPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
