// ABOUTME: Human-readable rendering of effective configuration
// ABOUTME: Used by the "config" CLI subcommand to show merged settings and where overrides come from

package config

import (
	"fmt"
	"strings"
)

// Explain renders a human-readable summary of the effective settings.
// Shows values grouped by section; empty overrides read as "builtin".
func Explain(s *Settings) string {
	if s == nil {
		s = &Settings{}
	}

	var b strings.Builder

	b.WriteString("=== Server ===\n")
	fmt.Fprintf(&b, "  Addr:           %s\n", s.Addr)
	if len(s.AllowedOrigins) > 0 {
		fmt.Fprintf(&b, "  AllowedOrigins: %s\n", strings.Join(s.AllowedOrigins, ", "))
	} else {
		b.WriteString("  AllowedOrigins: (same origin only)\n")
	}
	fmt.Fprintf(&b, "  Typing delay:   %d..%d ms\n", s.TypingMinMS, s.TypingMaxMS)
	b.WriteString("\n")

	b.WriteString("=== Engine ===\n")
	fmt.Fprintf(&b, "  Catalog:   %s\n", orBuiltin(s.CatalogPath))
	fmt.Fprintf(&b, "  Replies:   %s\n", orBuiltin(s.RepliesPath))
	if s.Threshold != 0 {
		fmt.Fprintf(&b, "  Threshold: %.2f\n", s.Threshold)
	} else {
		b.WriteString("  Threshold: catalog default\n")
	}
	if s.Watch {
		b.WriteString("  Watch:     true\n")
	}
	b.WriteString("\n")

	b.WriteString("=== Logging ===\n")
	fmt.Fprintf(&b, "  Level:  %s\n", s.LogLevel)
	fmt.Fprintf(&b, "  Format: %s\n", s.LogFormat)

	return b.String()
}

func orBuiltin(path string) string {
	if path == "" {
		return "builtin"
	}
	return path
}
