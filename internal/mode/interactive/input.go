// ABOUTME: InputModel is a single-line Bubble Tea text input with cursor, kill and yank
// ABOUTME: Value semantics; the app owns focus and decides what Enter and Tab mean

package interactive

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// CursorMarker is the visible block cursor character.
const CursorMarker = "█"

// maxInputRunes bounds what a visitor can type into one question.
const maxInputRunes = 500

// InputModel is a single-line editor.
type InputModel struct {
	text        []rune
	col         int
	killed      string
	prompt      string
	placeholder string
	width       int
}

// NewInputModel creates an empty input with the given prompt.
func NewInputModel(prompt, placeholder string) InputModel {
	return InputModel{prompt: prompt, placeholder: placeholder}
}

// Init returns nil; no commands needed at startup.
func (m InputModel) Init() tea.Cmd {
	return nil
}

// Update handles editing keys and window-size messages.
func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.dispatchKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the prompt, the text, and the cursor. Long text keeps the
// cursor visible by scrolling horizontally.
func (m InputModel) View() string {
	s := Styles()
	if len(m.text) == 0 {
		return s.Prompt.Render(m.prompt) + CursorMarker + s.Dim.Render(m.placeholder)
	}

	before := string(m.text[:m.col])
	after := string(m.text[m.col:])
	if avail := m.width - runewidth.StringWidth(m.prompt) - 1; m.width > 0 && avail > 0 {
		if w := runewidth.StringWidth(before); w > avail {
			before = runewidth.TruncateLeft(before, w-avail+1, "…")
		}
		room := max(avail-runewidth.StringWidth(before), 0)
		after = runewidth.Truncate(after, room, "…")
	}
	return s.Prompt.Render(m.prompt) + before + CursorMarker + after
}

// Value returns the current text.
func (m InputModel) Value() string {
	return string(m.text)
}

// SetValue replaces the text and places the cursor at the end.
func (m InputModel) SetValue(s string) InputModel {
	m.text = []rune(s)
	if len(m.text) > maxInputRunes {
		m.text = m.text[:maxInputRunes]
	}
	m.col = len(m.text)
	return m
}

// Reset clears the text.
func (m InputModel) Reset() InputModel {
	return m.SetValue("")
}

// IsEmpty reports whether nothing has been typed.
func (m InputModel) IsEmpty() bool {
	return strings.TrimSpace(string(m.text)) == ""
}

func (m *InputModel) dispatchKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		m.insert(msg.Runes)
	case tea.KeySpace:
		m.insert([]rune{' '})
	case tea.KeyBackspace:
		if m.col > 0 {
			m.text = slices.Concat(m.text[:m.col-1], m.text[m.col:])
			m.col--
		}
	case tea.KeyDelete:
		if m.col < len(m.text) {
			m.text = slices.Concat(m.text[:m.col], m.text[m.col+1:])
		}
	case tea.KeyLeft:
		m.col = max(m.col-1, 0)
	case tea.KeyRight:
		m.col = min(m.col+1, len(m.text))
	case tea.KeyHome, tea.KeyCtrlA:
		m.col = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		m.col = len(m.text)
	case tea.KeyCtrlK:
		m.killed = string(m.text[m.col:])
		m.text = m.text[:m.col]
	case tea.KeyCtrlU:
		m.killed = string(m.text[:m.col])
		m.text = m.text[m.col:]
		m.col = 0
	case tea.KeyCtrlY:
		m.insert([]rune(m.killed))
	}
}

// insert adds runes at the cursor. Newlines from a paste become spaces.
func (m *InputModel) insert(rs []rune) {
	room := maxInputRunes - len(m.text)
	if room <= 0 || len(rs) == 0 {
		return
	}
	if len(rs) > room {
		rs = rs[:room]
	}
	clean := make([]rune, len(rs))
	for i, r := range rs {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		clean[i] = r
	}
	next := make([]rune, 0, len(m.text)+len(clean))
	next = append(next, m.text[:m.col]...)
	next = append(next, clean...)
	next = append(next, m.text[m.col:]...)
	m.text = next
	m.col += len(clean)
}
