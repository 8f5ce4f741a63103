// ABOUTME: Root AppModel for the chat TUI: transcript, input, autocomplete, suggestion chips
// ABOUTME: Replies are shown after a typing delay; closing the chat cancels every pending reply

package interactive

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/mauromedda/portfolio-bot/internal/chatbot"
	"github.com/mauromedda/portfolio-bot/internal/render"
	"github.com/mauromedda/portfolio-bot/internal/session"
	"github.com/mauromedda/portfolio-bot/internal/typing"
)

// AppDeps bundles the dependencies of the chat TUI.
type AppDeps struct {
	Engines  *chatbot.Holder
	Pacer    typing.Pacer
	Renderer *render.Terminal // nil renders bot markdown as plain text
	Version  string
}

// speaker says who wrote a transcript entry.
type speaker int

const (
	fromUser speaker = iota
	fromBot
)

type entry struct {
	from speaker
	text string
}

// replyMsg delivers a computed reply once its typing delay has elapsed.
type replyMsg struct {
	ticket typing.Ticket
	reply  chatbot.Reply
}

// AppModel is the root Bubble Tea model for the chat.
type AppModel struct {
	deps AppDeps
	gate *typing.Gate

	open       bool
	sess       session.State
	transcript []entry
	chips      []string
	chipIdx    int
	pending    bool     // a reply is "typing"
	queue      []string // questions sent while a reply was typing
	history    []string
	histIdx    int

	input    InputModel
	complete CompleteModel

	width, height int
	name          string
}

// NewAppModel creates an open chat with a fresh session.
func NewAppModel(deps AppDeps) AppModel {
	e := deps.Engines.Engine()
	name := e.Profile()["name"]
	if name == "" {
		name = "bot"
	}
	m := AppModel{
		deps:     deps,
		gate:     typing.NewGate(),
		input:    NewInputModel("❯ ", " Ask about projects, skills, experience…"),
		complete: NewCompleteModel(e.Prompts()),
		name:     name,
	}
	return m.openChat()
}

// Init returns nil; the chat waits for the first question.
func (m AppModel) Init() tea.Cmd {
	return nil
}

// Update routes keys, window sizes, and delivered replies.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height}
		in, _ := m.input.Update(inner)
		m.input = in.(InputModel)
		c, _ := m.complete.Update(inner)
		m.complete = c.(CompleteModel)
		return m, nil
	case replyMsg:
		return m.deliver(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.gate.Cancel()
		return m, tea.Quit
	}

	if !m.open {
		if msg.Type == tea.KeyEnter {
			return m.openChat(), nil
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		if m.complete.Visible() {
			m.complete = m.complete.Close()
			return m, nil
		}
		return m.closeChat(), nil
	case tea.KeyCtrlR:
		return m.closeChat().openChat(), nil
	case tea.KeyEnter:
		text := m.input.Value()
		m.input = m.input.Reset()
		m.complete = m.complete.Close()
		return m.submit(text)
	case tea.KeyTab:
		return m.acceptCompletion(), nil
	case tea.KeyUp, tea.KeyDown:
		if m.complete.Visible() {
			c, _ := m.complete.Update(msg)
			m.complete = c.(CompleteModel)
			return m, nil
		}
		return m.recall(msg.Type == tea.KeyUp), nil
	}

	in, _ := m.input.Update(msg)
	m.input = in.(InputModel)
	m.complete = m.complete.SetFilter(m.input.Value())
	return m, nil
}

// acceptCompletion fills the input from the autocomplete selection or,
// on an empty input, cycles through the suggestion chips.
func (m AppModel) acceptCompletion() AppModel {
	if sel := m.complete.Selected(); sel != "" {
		m.input = m.input.SetValue(sel)
		m.complete = m.complete.Close()
		return m
	}
	if m.input.IsEmpty() && len(m.chips) > 0 {
		m.input = m.input.SetValue(m.chips[m.chipIdx%len(m.chips)])
		m.chipIdx++
	}
	return m
}

// recall walks the question history.
func (m AppModel) recall(older bool) AppModel {
	if len(m.history) == 0 {
		return m
	}
	if older {
		m.histIdx = max(m.histIdx-1, 0)
	} else {
		m.histIdx = min(m.histIdx+1, len(m.history))
	}
	if m.histIdx == len(m.history) {
		m.input = m.input.Reset()
	} else {
		m.input = m.input.SetValue(m.history[m.histIdx])
	}
	return m
}

// submit records the question and schedules the reply. While a reply is
// typing, further questions wait in the queue so each turn sees the
// session left by the previous one.
func (m AppModel) submit(text string) (AppModel, tea.Cmd) {
	text = strings.TrimSpace(text)
	if text == "" {
		return m, nil
	}
	m.history = append(m.history, text)
	m.histIdx = len(m.history)
	m.transcript = append(m.transcript, entry{from: fromUser, text: text})
	m.chips = nil

	if m.pending {
		m.queue = append(m.queue, text)
		return m, nil
	}
	return m.ask(text)
}

func (m AppModel) ask(text string) (AppModel, tea.Cmd) {
	r := m.deps.Engines.Engine().Respond(text, m.sess)
	m.pending = true
	ticket := m.gate.Issue()
	return m, tea.Tick(m.deps.Pacer.Delay(r.Text), func(time.Time) tea.Msg {
		return replyMsg{ticket: ticket, reply: r}
	})
}

// deliver shows a reply unless the chat was closed or reset after it was
// requested.
func (m AppModel) deliver(msg replyMsg) (AppModel, tea.Cmd) {
	if !m.open || !msg.ticket.Valid() {
		return m, nil
	}
	m.pending = false
	m.sess = msg.reply.Session
	m.transcript = append(m.transcript, entry{from: fromBot, text: msg.reply.Text})
	m.chips = msg.reply.Suggestions
	m.chipIdx = 0

	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.chips = nil
		return m.ask(next)
	}
	return m, nil
}

// closeChat discards the conversation and cancels replies still typing.
func (m AppModel) closeChat() AppModel {
	m.gate.Cancel()
	m.open = false
	m.pending = false
	m.queue = nil
	m.transcript = nil
	m.chips = nil
	m.sess = session.New()
	m.input = m.input.Reset()
	m.complete = m.complete.Close()
	return m
}

// openChat starts a new conversation on the current engine.
func (m AppModel) openChat() AppModel {
	e := m.deps.Engines.Engine()
	m.open = true
	m.sess = session.New()
	m.chips = e.Starters()
	m.chipIdx = 0
	m.complete = m.complete.SetPrompts(e.Prompts())
	return m
}

// View renders the chat, or the closed banner.
func (m AppModel) View() string {
	s := Styles()
	if !m.open {
		return s.Dim.Render("Chat closed. Press enter to start a new conversation, ctrl+c to quit.") + "\n"
	}

	var b strings.Builder
	title := fmt.Sprintf("Chat with %s", m.name)
	if m.deps.Version != "" {
		title += s.Dim.Render(" " + m.deps.Version)
	}
	b.WriteString(s.Title.Render(title) + "\n")
	b.WriteString(s.Border.Render(strings.Repeat("─", max(m.width, 20))) + "\n")

	body := m.transcriptView()
	if m.pending {
		body = append(body, s.Typing.Render(m.name+" is typing…"))
	}
	if h := m.height - 8; h > 0 && len(body) > h {
		body = body[len(body)-h:]
	}
	for _, line := range body {
		b.WriteString(line + "\n")
	}

	if chips := m.chipsView(); chips != "" {
		b.WriteString(chips + "\n")
	}
	b.WriteString(m.input.View() + "\n")
	if m.complete.Visible() {
		b.WriteString(m.complete.View() + "\n")
	}
	b.WriteString(s.Dim.Render("enter send · tab complete · ↑↓ history · esc close · ctrl+r restart · ctrl+c quit"))
	return b.String()
}

// transcriptView renders every entry as lines. Visitor text is shown
// literally; only bot replies are rendered as markdown.
func (m AppModel) transcriptView() []string {
	s := Styles()
	w := max(m.width-2, 20)
	var lines []string
	for _, e := range m.transcript {
		switch e.from {
		case fromUser:
			lines = append(lines, s.UserLabel.Render("you ")+s.UserText.Render(sanitize(e.text)))
		case fromBot:
			text := e.text
			if m.deps.Renderer != nil {
				text = m.deps.Renderer.Render(text, w)
			}
			lines = append(lines, s.BotLabel.Render(m.name))
			lines = append(lines, strings.Split(text, "\n")...)
		}
		lines = append(lines, "")
	}
	return lines
}

// chipsView renders suggestion chips on one row, dropping what does not fit.
func (m AppModel) chipsView() string {
	if len(m.chips) == 0 {
		return ""
	}
	s := Styles()
	parts := []string{s.ChipKey.Render("tab ")}
	used := runewidth.StringWidth("tab ")
	for i, c := range m.chips {
		label := runewidth.Truncate(c, 40, "…")
		cw := runewidth.StringWidth(label) + 4 // border and padding
		if m.width > 0 && used+cw > m.width && i > 0 {
			break
		}
		used += cw
		parts = append(parts, s.Chip.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// sanitize drops control characters so typed text cannot move the cursor
// or recolor the terminal.
func sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}
