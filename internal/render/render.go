// ABOUTME: Safe rendering of bot replies: sanitized HTML for web widgets, glamour for terminals
// ABOUTME: User text is always escaped literally; only bot markdown is interpreted

package render

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	// goldmark without html.WithUnsafe drops raw HTML blocks and inline tags.
	md = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}

// HTML converts bot markdown to sanitized HTML.
func HTML(markdown string) string {
	if markdown == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "<p>" + html.EscapeString(markdown) + "</p>"
	}
	return strings.TrimSpace(policy.Sanitize(buf.String()))
}

// UserHTML renders text typed by a visitor. Nothing in it is interpreted.
func UserHTML(text string) string {
	return "<p>" + html.EscapeString(text) + "</p>"
}

// Terminal renders markdown for a terminal with glamour, caching results by
// content hash and width. Safe for concurrent use.
type Terminal struct {
	mu    sync.Mutex
	style string
	cache map[string]string // "hash:width" -> rendered
}

// NewTerminal creates a terminal renderer. An empty style picks glamour's
// auto style (dark/light detection); "notty" gives plain output.
func NewTerminal(style string) *Terminal {
	return &Terminal{style: style, cache: make(map[string]string)}
}

// Render returns the terminal-styled rendering of markdown wrapped at width.
// On a glamour failure the raw text is returned.
func (r *Terminal) Render(markdown string, width int) string {
	if markdown == "" {
		return ""
	}

	key := cacheKey(markdown, width)
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if r.style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(r.style))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	// glamour pads with margins and trailing newlines
	out = strings.Trim(out, "\n ")
	r.cache[key] = out
	return out
}

func cacheKey(content string, width int) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x:%d", h[:8], width)
}
