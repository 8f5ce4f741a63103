// ABOUTME: Tests for the chat AppModel driven through Update with synthetic key messages
// ABOUTME: Covers reply delivery, follow-ups, stale replies after close/reopen, queueing, and completion

package interactive

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mauromedda/portfolio-bot/internal/chatbot"
	"github.com/mauromedda/portfolio-bot/internal/intent"
	"github.com/mauromedda/portfolio-bot/internal/typing"
)

func testDeps() AppDeps {
	return AppDeps{
		Engines: chatbot.NewHolder(chatbot.Default()),
		Pacer:   typing.Pacer{}, // no typing delay
		Version: "0.1.0-test",
	}
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	res, cmd := m.Update(msg)
	am, ok := res.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T; want AppModel", res)
	}
	return am, cmd
}

func typeText(t *testing.T, m AppModel, s string) AppModel {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(t *testing.T, m AppModel, k tea.KeyType) (AppModel, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: k})
}

// send types a question and presses enter, returning the pending reply command.
func send(t *testing.T, m AppModel, q string) (AppModel, tea.Cmd) {
	t.Helper()
	m = typeText(t, m, q)
	return press(t, m, tea.KeyEnter)
}

// deliver runs a reply command and feeds its message back into the model.
func deliver(t *testing.T, m AppModel, cmd tea.Cmd) (AppModel, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a pending reply command")
	}
	msg, ok := cmd().(replyMsg)
	if !ok {
		t.Fatalf("command produced %T; want replyMsg", msg)
	}
	return update(t, m, msg)
}

func ask(t *testing.T, m AppModel, q string) AppModel {
	t.Helper()
	m, cmd := send(t, m, q)
	m, _ = deliver(t, m, cmd)
	return m
}

func lastBot(m AppModel) string {
	for i := len(m.transcript) - 1; i >= 0; i-- {
		if m.transcript[i].from == fromBot {
			return m.transcript[i].text
		}
	}
	return ""
}

func TestNewAppModel(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	if !m.open {
		t.Error("chat should start open")
	}
	if m.name != "Sai" {
		t.Errorf("name = %q; want profile name", m.name)
	}
	if !slices.Equal(m.chips, chatbot.Default().Starters()) {
		t.Errorf("chips = %v; want starters", m.chips)
	}
	if m.sess.Turn != 0 || len(m.transcript) != 0 {
		t.Error("new chat must start with an empty conversation")
	}
}

func TestAppModel_AskShowsReplyAfterDelay(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m, cmd := send(t, m, "tell me about quantumpdf")
	if !m.pending {
		t.Error("reply should be pending until its typing delay elapses")
	}
	if len(m.transcript) != 1 || m.transcript[0].text != "tell me about quantumpdf" {
		t.Fatalf("transcript = %+v; want the question only", m.transcript)
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q; want cleared", m.input.Value())
	}

	m, _ = deliver(t, m, cmd)
	if m.pending {
		t.Error("pending should clear once the reply is shown")
	}
	if !strings.Contains(lastBot(m), "QuantumPDF") {
		t.Errorf("reply = %q; want the QuantumPDF answer", lastBot(m))
	}
	if m.sess.Turn != 1 || m.sess.LastEntity != "quantumPDF" {
		t.Errorf("session = %+v; want turn 1 on quantumPDF", m.sess)
	}
	if len(m.chips) == 0 {
		t.Error("reply suggestions should become chips")
	}
}

func TestAppModel_FollowUp(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m = ask(t, m, "tell me about quantumpdf")
	m = ask(t, m, "tell me more")
	if m.sess.LastIntent != intent.IntentProject || m.sess.LastEntity != "quantumPDF" {
		t.Errorf("after follow-up session = %+v; want project/quantumPDF", m.sess)
	}
}

func TestAppModel_CloseDropsPendingReply(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m, cmd := send(t, m, "what is your tech stack")

	m, _ = press(t, m, tea.KeyEsc) // close
	if m.open {
		t.Fatal("esc should close the chat")
	}
	m, _ = press(t, m, tea.KeyEnter) // reopen
	if !m.open {
		t.Fatal("enter should reopen the chat")
	}

	m, next := deliver(t, m, cmd)
	if next != nil {
		t.Error("stale reply must not schedule anything")
	}
	if len(m.transcript) != 0 {
		t.Errorf("transcript = %+v; stale reply replayed after reopen", m.transcript)
	}
	if m.pending || m.sess.Turn != 0 {
		t.Errorf("pending = %v, turn = %d; want a fresh conversation", m.pending, m.sess.Turn)
	}
}

func TestAppModel_ReplyWhileClosedIsDropped(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m, cmd := send(t, m, "hi")
	m, _ = press(t, m, tea.KeyEsc)
	m, _ = deliver(t, m, cmd)
	if m.open || len(m.transcript) != 0 {
		t.Error("reply delivered to a closed chat")
	}
	if !strings.Contains(m.View(), "Chat closed") {
		t.Errorf("View() = %q; want closed banner", m.View())
	}
}

func TestAppModel_RestartDropsPendingReply(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m, cmd := send(t, m, "where have you worked")
	m, _ = press(t, m, tea.KeyCtrlR)
	if !m.open || len(m.transcript) != 0 {
		t.Fatal("ctrl+r should start an empty conversation")
	}
	m, _ = deliver(t, m, cmd)
	if len(m.transcript) != 0 {
		t.Error("reply from before the restart was shown")
	}
}

func TestAppModel_QueuesWhileTyping(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m, first := send(t, m, "tell me about quantumpdf")
	m, none := send(t, m, "tell me more")
	if none != nil {
		t.Error("second question should wait for the first reply")
	}
	if len(m.queue) != 1 || len(m.transcript) != 2 {
		t.Fatalf("queue = %v, transcript = %d entries", m.queue, len(m.transcript))
	}

	m, second := deliver(t, m, first)
	if !m.pending || len(m.queue) != 0 {
		t.Fatal("first reply should release the queued question")
	}
	m, _ = deliver(t, m, second)
	if len(m.transcript) != 4 {
		t.Fatalf("transcript = %d entries; want 4", len(m.transcript))
	}
	if m.sess.Turn != 2 || m.sess.LastEntity != "quantumPDF" {
		t.Errorf("session = %+v; queued follow-up should see the first turn", m.sess)
	}
}

func TestAppModel_EmptySubmitIgnored(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m = typeText(t, m, "   ")
	m, cmd := press(t, m, tea.KeyEnter)
	if cmd != nil || len(m.transcript) != 0 {
		t.Error("blank input must not be sent")
	}
}

func TestAppModel_TabUsesChip(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m, _ = press(t, m, tea.KeyTab)
	if got, want := m.input.Value(), m.chips[0]; got != want {
		t.Errorf("input = %q; want first chip %q", got, want)
	}
}

func TestAppModel_Autocomplete(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m = typeText(t, m, "quant")
	if !m.complete.Visible() {
		t.Fatal("typing should open the completion popup")
	}
	if got := m.complete.Selected(); got != "Tell me about QuantumPDF" {
		t.Errorf("Selected() = %q", got)
	}

	m, _ = press(t, m, tea.KeyTab)
	if m.input.Value() != "Tell me about QuantumPDF" {
		t.Errorf("input = %q; want completed prompt", m.input.Value())
	}
	if m.complete.Visible() {
		t.Error("popup should close after accepting")
	}
}

func TestAppModel_EscClosesPopupFirst(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m = typeText(t, m, "quant")
	m, _ = press(t, m, tea.KeyEsc)
	if !m.open {
		t.Error("esc with the popup visible should only close the popup")
	}
	if m.complete.Visible() {
		t.Error("popup still visible")
	}
}

func TestAppModel_History(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m = ask(t, m, "hi")
	m = ask(t, m, "what are your hobbies")

	m, _ = press(t, m, tea.KeyUp)
	if m.input.Value() != "what are your hobbies" {
		t.Errorf("Up = %q", m.input.Value())
	}
	m, _ = press(t, m, tea.KeyUp)
	if m.input.Value() != "hi" {
		t.Errorf("Up Up = %q", m.input.Value())
	}
	m, _ = press(t, m, tea.KeyDown)
	m, _ = press(t, m, tea.KeyDown)
	if m.input.Value() != "" {
		t.Errorf("Down past newest = %q; want empty", m.input.Value())
	}
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m, pending := send(t, m, "hi")
	m, cmd := press(t, m, tea.KeyCtrlC)
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if msg := pending().(replyMsg); msg.ticket.Valid() {
		t.Error("quitting must cancel pending replies")
	}
}

func TestAppModel_View(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = ask(t, m, "<b>hello</b> **there**")

	v := m.View()
	for _, want := range []string{"Chat with Sai", "0.1.0-test", "<b>hello</b> **there**", "esc close"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestAppModel_ViewTyping(t *testing.T) {
	t.Parallel()

	m := NewAppModel(testDeps())
	m, _ = send(t, m, "hi")
	if !strings.Contains(m.View(), "Sai is typing") {
		t.Error("pending reply should show a typing indicator")
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	if got := sanitize("hi\x1b[31m there\a"); got != "hi[31m there" {
		t.Errorf("sanitize() = %q", got)
	}
}
