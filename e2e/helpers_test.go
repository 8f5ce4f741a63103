// ABOUTME: PTY harness for end-to-end tests: builds the binary once and drives it through a pseudo-terminal
// ABOUTME: Output is accumulated with ANSI sequences stripped so tests can wait for visible text

package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
)

// binary builds cmd/portfolio-bot into a temp dir, once per test run.
func binary(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "portfolio-bot-e2e")
		if err != nil {
			buildErr = err
			return
		}
		binPath = filepath.Join(dir, "portfolio-bot")
		out, err := exec.Command("go", "build", "-o", binPath, "../cmd/portfolio-bot").CombinedOutput()
		if err != nil {
			buildErr = &buildError{err: err, out: string(out)}
		}
	})
	if buildErr != nil {
		t.Fatalf("building binary: %v", buildErr)
	}
	return binPath
}

type buildError struct {
	err error
	out string
}

func (e *buildError) Error() string { return e.err.Error() + "\n" + e.out }

var ansiPattern = regexp.MustCompile(`\x1b(\[[0-9;?]*[ -/]*[@-~]|\][^\x07\x1b]*(\x07|\x1b\\)|[()][A-Z0-9]|[=>78])`)

type ptySession struct {
	cmd  *exec.Cmd
	tty  *os.File
	mu   sync.Mutex
	buf  bytes.Buffer
	done chan struct{}
}

// startChat launches "portfolio-bot chat" on a 120x40 pseudo-terminal with
// an empty HOME so no user config leaks in.
func startChat(t *testing.T, extraEnv ...string) *ptySession {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	cmd := exec.Command(binary(t), "chat")
	cmd.Dir = t.TempDir()
	cmd.Env = append([]string{
		"HOME=" + t.TempDir(),
		"TERM=xterm-256color",
		"PATH=" + os.Getenv("PATH"),
		"PORTFOLIO_BOT_TYPING_MIN_MS=10",
		"PORTFOLIO_BOT_TYPING_MAX_MS=20",
	}, extraEnv...)

	tty, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		t.Fatalf("starting pty: %v", err)
	}

	s := &ptySession{cmd: cmd, tty: tty, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		chunk := make([]byte, 4096)
		for {
			n, err := tty.Read(chunk)
			if n > 0 {
				s.mu.Lock()
				s.buf.Write(chunk[:n])
				s.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
	return s
}

// screen returns everything printed so far, without escape sequences.
func (s *ptySession) screen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ansiPattern.ReplaceAllString(s.buf.String(), "")
}

// mark returns an offset; expectAfter only looks at output printed after it.
func (s *ptySession) mark() int {
	return len(s.screen())
}

func (s *ptySession) expectStringTimeout(t *testing.T, want string, timeout time.Duration) {
	t.Helper()
	s.expectAfter(t, 0, want, timeout)
}

func (s *ptySession) expectAfter(t *testing.T, offset int, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if scr := s.screen(); len(scr) >= offset && strings.Contains(scr[offset:], want) {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q; screen:\n%s", want, s.screen())
}

func (s *ptySession) sendText(t *testing.T, text string) {
	t.Helper()
	if _, err := s.tty.Write([]byte(text)); err != nil {
		t.Fatalf("writing to pty: %v", err)
	}
}

// sendCtrl sends ctrl+<letter>.
func (s *ptySession) sendCtrl(t *testing.T, letter byte) {
	t.Helper()
	s.sendText(t, string([]byte{letter & 0x1f}))
}

func (s *ptySession) waitExit(t *testing.T, timeout time.Duration) {
	t.Helper()
	exited := make(chan error, 1)
	go func() { exited <- s.cmd.Wait() }()
	select {
	case err := <-exited:
		if err != nil {
			t.Errorf("exit: %v", err)
		}
	case <-time.After(timeout):
		t.Fatal("process did not exit")
	}
}

func (s *ptySession) close() {
	if s.cmd.ProcessState == nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_, _ = s.cmd.Process.Wait()
	}
	_ = s.tty.Close()
	<-s.done
}
