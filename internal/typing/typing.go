// ABOUTME: Simulated typing latency for chat surfaces: a length-based delay and a cancellable gate
// ABOUTME: Closing a chat cancels the gate so replies computed for stale requests are never shown

package typing

import (
	"context"
	"sync"
	"time"

	"github.com/rivo/uniseg"
)

// Pacer turns reply length into a typing delay clamped to [Min, Max].
type Pacer struct {
	Min      time.Duration
	Max      time.Duration
	PerGlyph time.Duration
}

// DefaultPacer is used when a surface has no configured range.
var DefaultPacer = Pacer{Min: 350 * time.Millisecond, Max: 1800 * time.Millisecond, PerGlyph: 12 * time.Millisecond}

// NewPacer returns a pacer over [lo, hi] with the default per-glyph rate.
func NewPacer(lo, hi time.Duration) Pacer {
	return Pacer{Min: lo, Max: hi, PerGlyph: DefaultPacer.PerGlyph}
}

// Delay returns how long to "type" text before showing it.
func (p Pacer) Delay(text string) time.Duration {
	d := p.Min + time.Duration(uniseg.GraphemeClusterCount(text))*p.PerGlyph
	if d > p.Max {
		d = p.Max
	}
	if d < p.Min {
		d = p.Min
	}
	return d
}

// Gate hands out tickets for pending replies. Cancel invalidates every
// ticket issued so far; tickets issued afterwards are valid again.
// Safe for concurrent use.
type Gate struct {
	mu     sync.Mutex
	gen    uint64
	cancel chan struct{}
}

// NewGate creates an open gate.
func NewGate() *Gate {
	return &Gate{cancel: make(chan struct{})}
}

// Ticket identifies one pending reply.
type Ticket struct {
	gate *Gate
	gen  uint64
	done <-chan struct{}
}

// Issue returns a ticket for a new pending reply.
func (g *Gate) Issue() Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Ticket{gate: g, gen: g.gen, done: g.cancel}
}

// Cancel invalidates every outstanding ticket and wakes their waiters.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	close(g.cancel)
	g.cancel = make(chan struct{})
}

// Valid reports whether the ticket's reply may still be shown.
func (t Ticket) Valid() bool {
	if t.gate == nil {
		return false
	}
	t.gate.mu.Lock()
	defer t.gate.mu.Unlock()
	return t.gen == t.gate.gen
}

// Done is closed when the ticket is cancelled.
func (t Ticket) Done() <-chan struct{} {
	return t.done
}

// Wait sleeps for d and reports whether the reply should be shown: false
// when the ticket was cancelled or ctx ended first.
func (t Ticket) Wait(ctx context.Context, d time.Duration) bool {
	if !t.Valid() {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return t.Valid()
	case <-t.done:
		return false
	case <-ctx.Done():
		return false
	}
}
