// ABOUTME: Builds an engine from optional catalog/replies override files and a threshold override
// ABOUTME: Empty paths fall back to the embedded data

package chatbot

import (
	"fmt"
	"sync/atomic"

	"github.com/mauromedda/portfolio-bot/internal/intent"
)

// Sources names where engine data comes from. Zero values mean builtin.
type Sources struct {
	CatalogPath string
	RepliesPath string
	Threshold   float64 // 0 keeps the catalog's own threshold
}

// Load builds an engine from src.
func Load(src Sources) (*Engine, error) {
	if src == (Sources{}) {
		return Default(), nil
	}

	var (
		c   *intent.Catalog
		r   *Replies
		err error
	)
	if src.CatalogPath != "" {
		c, err = intent.LoadCatalogFile(src.CatalogPath)
	} else {
		c, err = intent.BuiltinCatalog()
	}
	if err != nil {
		return nil, err
	}
	if src.Threshold != 0 {
		if c, err = c.WithThreshold(src.Threshold); err != nil {
			return nil, fmt.Errorf("threshold override: %w", err)
		}
	}

	if src.RepliesPath != "" {
		r, err = LoadRepliesFile(src.RepliesPath)
	} else {
		r, err = BuiltinReplies()
	}
	if err != nil {
		return nil, err
	}
	return New(c, r)
}

// Holder publishes the current engine to concurrent readers. Reloading
// swaps the pointer; conversations in flight keep the engine they started
// the turn with.
type Holder struct {
	p atomic.Pointer[Engine]
}

// NewHolder returns a holder serving e.
func NewHolder(e *Engine) *Holder {
	h := &Holder{}
	h.p.Store(e)
	return h
}

// Engine returns the engine currently served.
func (h *Holder) Engine() *Engine {
	return h.p.Load()
}

// Swap replaces the served engine. A nil engine is ignored.
func (h *Holder) Swap(e *Engine) {
	if e != nil {
		h.p.Store(e)
	}
}

// Reload rebuilds the engine from src and swaps it in. On error the current
// engine keeps serving.
func (h *Holder) Reload(src Sources) error {
	e, err := Load(src)
	if err != nil {
		return fmt.Errorf("reloading engine: %w", err)
	}
	h.Swap(e)
	return nil
}
