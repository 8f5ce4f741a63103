// ABOUTME: Public SDK for embedding the portfolio chatbot in other Go programs
// ABOUTME: Wraps the internal engine with functional options and a stateful conversation type

package sdk

import (
	"fmt"
	"sync"

	"github.com/mauromedda/portfolio-bot/internal/chatbot"
	"github.com/mauromedda/portfolio-bot/internal/session"
)

// Reply is one answer with the session to send back next turn.
type Reply = chatbot.Reply

// State is the per-conversation context a caller threads between turns.
type State = session.State

// Client answers questions. It is safe for concurrent use; conversation
// state lives in the State values callers pass in, or in a Session.
type Client struct {
	engine   *chatbot.Engine
	handlers []func(query string, r Reply)
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	engine *chatbot.Engine
	src    chatbot.Sources
}

// WithCatalogFile loads intent rules from a YAML file instead of the builtin catalog.
func WithCatalogFile(path string) Option {
	return func(c *clientConfig) {
		c.src.CatalogPath = path
	}
}

// WithRepliesFile loads reply templates from a YAML file instead of the builtin set.
func WithRepliesFile(path string) Option {
	return func(c *clientConfig) {
		c.src.RepliesPath = path
	}
}

// WithThreshold overrides the catalog's confidence threshold.
func WithThreshold(v float64) Option {
	return func(c *clientConfig) {
		c.src.Threshold = v
	}
}

// WithEngine uses e directly; file and threshold options are ignored.
func WithEngine(e *chatbot.Engine) Option {
	return func(c *clientConfig) {
		c.engine = e
	}
}

// New creates a client. With no options it serves the builtin profile.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	e := cfg.engine
	if e == nil {
		var err error
		if e, err = chatbot.Load(cfg.src); err != nil {
			return nil, fmt.Errorf("sdk: %w", err)
		}
	}
	return &Client{engine: e}, nil
}

// GetResponse answers query in the conversation described by s. A nil s
// starts a fresh conversation. The returned Reply.Session is the state for
// the next turn.
func (c *Client) GetResponse(query string, s *State) Reply {
	st := session.New()
	if s != nil {
		st = *s
	}
	r := c.engine.Respond(query, st)
	for _, h := range c.handlers {
		h(query, r)
	}
	return r
}

// OnReply registers a listener called after every answer. Register
// listeners before sharing the client between goroutines.
func (c *Client) OnReply(handler func(query string, r Reply)) {
	c.handlers = append(c.handlers, handler)
}

// Starters returns the prompts shown before a visitor has asked anything.
func (c *Client) Starters() []string {
	return c.engine.Starters()
}

// NewSession starts a conversation that threads its own state.
func (c *Client) NewSession() *Session {
	return &Session{client: c, state: session.New()}
}

// Session is one conversation. Safe for concurrent use; turns are
// serialized.
type Session struct {
	client *Client

	mu    sync.Mutex
	state State
}

// Ask answers query and advances the conversation.
func (s *Session) Ask(query string) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.client.GetResponse(query, &s.state)
	s.state = r.Session
	return r
}

// State returns a copy of the conversation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset forgets the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = session.New()
}
