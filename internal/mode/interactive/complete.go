// ABOUTME: CompleteModel fuzzy-filters the engine's example prompts as the visitor types
// ABOUTME: Backed by sahilm/fuzzy; Up/Down move the selection, the app accepts with Tab

package interactive

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// maxCompletions is how many matches the popup shows.
const maxCompletions = 4

// minFilterRunes keeps the popup closed for one-letter inputs, which match
// nearly every prompt.
const minFilterRunes = 2

// CompleteModel is a filterable list of prompts.
type CompleteModel struct {
	prompts  []string
	visible  []fuzzy.Match
	selected int
	width    int
}

// NewCompleteModel creates a completer over prompts.
func NewCompleteModel(prompts []string) CompleteModel {
	return CompleteModel{prompts: prompts}
}

// Init returns nil; no commands needed at startup.
func (m CompleteModel) Init() tea.Cmd {
	return nil
}

// Update moves the selection and tracks width.
func (m CompleteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
			}
		case tea.KeyDown:
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the matches with matched characters underlined.
func (m CompleteModel) View() string {
	if len(m.visible) == 0 {
		return ""
	}
	s := Styles()
	var b strings.Builder
	for i, match := range m.visible {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := "  " + highlight(match)
		if m.width > 0 && runewidth.StringWidth(match.Str)+2 > m.width {
			line = "  " + runewidth.Truncate(match.Str, m.width-2, "…")
		}
		if i == m.selected {
			line = s.Selection.Render(line)
		}
		b.WriteString(line)
	}
	return b.String()
}

// SetFilter refilters the prompts for the typed text.
func (m CompleteModel) SetFilter(text string) CompleteModel {
	m.selected = 0
	m.visible = nil
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minFilterRunes {
		return m
	}
	for _, match := range fuzzy.Find(text, m.prompts) {
		if strings.EqualFold(match.Str, text) {
			// already typed in full
			m.visible = nil
			return m
		}
		m.visible = append(m.visible, match)
		if len(m.visible) == maxCompletions {
			break
		}
	}
	return m
}

// SetPrompts replaces the prompt list, e.g. after an engine reload.
func (m CompleteModel) SetPrompts(prompts []string) CompleteModel {
	m.prompts = prompts
	m.visible = nil
	m.selected = 0
	return m
}

// Visible reports whether the popup has anything to show.
func (m CompleteModel) Visible() bool {
	return len(m.visible) > 0
}

// Selected returns the highlighted prompt, or "" when hidden.
func (m CompleteModel) Selected() string {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return ""
	}
	return m.visible[m.selected].Str
}

// Close hides the popup.
func (m CompleteModel) Close() CompleteModel {
	m.visible = nil
	m.selected = 0
	return m
}

func highlight(match fuzzy.Match) string {
	under := Styles().ChipKey.Underline(true)
	hit := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range match.Str {
		if hit[i] {
			b.WriteString(under.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
