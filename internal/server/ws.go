// ABOUTME: WebSocket chat: one session per connection, replies sent after a typing delay
// ABOUTME: A "close" frame cancels replies still typing and ends the conversation; "reset" also acks

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/mauromedda/portfolio-bot/internal/chatbot"
	"github.com/mauromedda/portfolio-bot/internal/session"
	"github.com/mauromedda/portfolio-bot/internal/typing"
)

// maxPendingReplies bounds questions waiting for their typing delay on one
// connection.
const maxPendingReplies = 8

const writeTimeout = 5 * time.Second

// Client frame types.
const (
	frameAsk   = "ask"
	frameClose = "close"
	frameReset = "reset"
)

// Server frame types.
const (
	frameTyping = "typing"
	frameReply  = "reply"
	frameError  = "error"
)

// ClientFrame is what a browser widget sends.
type ClientFrame struct {
	Type  string `json:"type"`
	Query string `json:"query,omitempty"`
}

// ServerFrame is what the server sends back.
type ServerFrame struct {
	Type  string             `json:"type"`
	Reply *AssistantResponse `json:"reply,omitempty"`
	Error string             `json:"error,omitempty"`
}

// job is a computed reply waiting to be "typed".
type job struct {
	ticket typing.Ticket
	delay  time.Duration
	frame  ServerFrame
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originHosts(s.origins),
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer ws.CloseNow()
	ws.SetReadLimit(MaxBodyBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &conn{
		ws:      ws,
		engines: s.engines,
		pacer:   s.pacer,
		gate:    typing.NewGate(),
		sess:    session.New(),
		jobs:    make(chan job, maxPendingReplies),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		c.writeLoop(ctx)
	}()

	err = c.readLoop(ctx)
	c.gate.Cancel()
	close(c.jobs)
	cancel()
	wg.Wait()

	switch {
	case err == nil, websocket.CloseStatus(err) != -1, errors.Is(err, context.Canceled):
		s.logger.Debug("websocket chat ended", "turns", c.sess.Turn)
		ws.Close(websocket.StatusNormalClosure, "")
	default:
		s.logger.Warn("websocket read error", "error", err)
	}
}

// conn is the state of one WebSocket conversation. sess is only touched by
// the read loop.
type conn struct {
	ws      *websocket.Conn
	engines *chatbot.Holder
	pacer   typing.Pacer
	gate    *typing.Gate
	sess    session.State
	jobs    chan job
}

func (c *conn) readLoop(ctx context.Context) error {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			return err
		}
		var f ClientFrame
		if err := json.Unmarshal(data, &f); err != nil {
			c.enqueueNow(ServerFrame{Type: frameError, Error: "invalid frame"})
			continue
		}

		switch f.Type {
		case frameAsk:
			c.ask(f.Query)
		case frameClose:
			c.gate.Cancel()
			c.sess = session.New()
		case frameReset:
			c.gate.Cancel()
			c.sess = session.New()
			c.enqueueNow(ServerFrame{Type: frameReset})
		default:
			c.enqueueNow(ServerFrame{Type: frameError, Error: "unknown frame type " + f.Type})
		}
	}
}

func (c *conn) ask(query string) {
	reply := c.engines.Engine().Respond(query, c.sess)
	resp := newResponse(query, reply)
	j := job{
		ticket: c.gate.Issue(),
		delay:  c.pacer.Delay(reply.Text),
		frame:  ServerFrame{Type: frameReply, Reply: &resp},
	}
	select {
	case c.jobs <- j:
		c.sess = reply.Session
	default:
		c.enqueueNow(ServerFrame{Type: frameError, Error: "too many pending questions"})
	}
}

// enqueueNow queues a frame with no typing delay behind pending replies.
// Dropped when the queue is full.
func (c *conn) enqueueNow(f ServerFrame) {
	select {
	case c.jobs <- job{ticket: c.gate.Issue(), frame: f}:
	default:
	}
}

// writeLoop sends replies in order. Each waits out its typing delay and is
// dropped if its ticket was cancelled meanwhile.
func (c *conn) writeLoop(ctx context.Context) {
	for j := range c.jobs {
		if !j.ticket.Valid() {
			continue
		}
		if j.delay > 0 {
			if err := c.write(ctx, ServerFrame{Type: frameTyping}); err != nil {
				return
			}
			if !j.ticket.Wait(ctx, j.delay) {
				continue
			}
		}
		if err := c.write(ctx, j.frame); err != nil {
			return
		}
	}
}

func (c *conn) write(ctx context.Context, f ServerFrame) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.ws, f)
}

// originHosts turns allowed origins into the host patterns the WebSocket
// handshake checks. Same-origin requests are always accepted.
func originHosts(origins []string) []string {
	var hosts []string
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}
