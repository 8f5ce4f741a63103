// ABOUTME: Environment handling: ${VAR} expansion in string fields and PORTFOLIO_BOT_* overrides
// ABOUTME: Malformed numeric or boolean overrides are ignored and the file value stays

package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PORTFOLIO_BOT_"

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings.
func ResolveEnvVars(s *Settings) {
	s.Addr = expandEnv(s.Addr)
	s.CatalogPath = expandEnv(s.CatalogPath)
	s.RepliesPath = expandEnv(s.RepliesPath)
	for i, o := range s.AllowedOrigins {
		s.AllowedOrigins[i] = expandEnv(o)
	}
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnv overlays PORTFOLIO_BOT_* variables onto s.
func applyEnv(s *Settings) {
	s.Addr = getEnv("ADDR", s.Addr)
	s.CatalogPath = getEnv("CATALOG", s.CatalogPath)
	s.RepliesPath = getEnv("REPLIES", s.RepliesPath)
	s.Threshold = getEnvFloat("THRESHOLD", s.Threshold)
	s.TypingMinMS = getEnvInt("TYPING_MIN_MS", s.TypingMinMS)
	s.TypingMaxMS = getEnvInt("TYPING_MAX_MS", s.TypingMaxMS)
	s.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", s.LogLevel))
	s.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", s.LogFormat))
	s.Watch = getEnvBool("WATCH", s.Watch)
	if v, ok := os.LookupEnv(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		s.AllowedOrigins = splitList(v)
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(EnvPrefix + key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
