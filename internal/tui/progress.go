// Package tui renders a live view of a suite run with bubbletea.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const tailLines = 8

// LineMsg carries one line of run output.
type LineMsg string

// DoneMsg ends the view once the run returns.
type DoneMsg struct {
	Err error
}

type tickMsg time.Time

// Model is the bubbletea model of a suite run.
type Model struct {
	title    string
	current  string
	cases    int
	failures int
	warnings int
	tail     []string
	start    time.Time
	now      time.Time
	done     bool
	err      error
	quitting bool
	cancel   context.CancelFunc
}

// NewModel creates a model. cancel is called when the user quits early.
func NewModel(title string, cancel context.CancelFunc) *Model {
	now := time.Now()
	return &Model{title: title, start: now, now: now, cancel: cancel}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.now = time.Time(msg)
		return m, tick()

	case LineMsg:
		m.observe(string(msg))
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) observe(line string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "=== Testing "):
		m.current = strings.TrimSuffix(strings.TrimPrefix(trimmed, "=== Testing "), " ===")
		m.cases++
	case strings.HasPrefix(trimmed, "Testing ") && strings.HasSuffix(trimmed, "with alpha flag..."):
		m.current = strings.TrimSuffix(strings.TrimPrefix(trimmed, "Testing "), " with alpha flag...") + "+alpha"
		m.cases++
	case strings.HasPrefix(trimmed, "Test failed for "), strings.HasPrefix(trimmed, "Test with alpha failed for "):
		m.failures++
	case strings.HasPrefix(trimmed, "Note: "):
		m.warnings++
	}

	if trimmed == "" {
		return
	}
	m.tail = append(m.tail, trimmed)
	if len(m.tail) > tailLines {
		m.tail = m.tail[len(m.tail)-tailLines:]
	}
}

// View implements tea.Model
func (m *Model) View() string {
	header := HeaderStyle.Render(m.title)

	current := m.current
	if current == "" {
		current = "starting"
	}
	status := fmt.Sprintf("%s  %s  cases: %d  %s  %s  elapsed: %s",
		CaseStyle.Render(current),
		m.stateLabel(),
		m.cases,
		FailStyle.Render(fmt.Sprintf("failed: %d", m.failures)),
		WarnStyle.Render(fmt.Sprintf("notes: %d", m.warnings)),
		m.now.Sub(m.start).Truncate(time.Second),
	)

	body := MutedStyle.Render("waiting for output")
	if len(m.tail) > 0 {
		body = strings.Join(m.tail, "\n")
	}

	footer := MutedStyle.Render("q: stop after the current frame")
	if m.quitting {
		footer = WarnStyle.Render("stopping...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, status, PanelStyle.Render(body), footer) + "\n"
}

func (m *Model) stateLabel() string {
	switch {
	case m.done && m.err != nil:
		return FailStyle.Render("ERROR")
	case m.done:
		return PassStyle.Render("DONE")
	case m.quitting:
		return WarnStyle.Render("STOPPING")
	default:
		return PassStyle.Render("RUNNING")
	}
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// LineWriter splits written bytes into lines and hands each complete line
// to send.
type LineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	send func(tea.Msg)
}

// NewLineWriter creates a writer that delivers lines to send.
func NewLineWriter(send func(tea.Msg)) *LineWriter {
	return &LineWriter{send: send}
}

// Write implements io.Writer.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line, keep it for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			return len(p), nil
		}
		w.send(LineMsg(strings.TrimRight(line, "\r\n")))
	}
}

// Flush delivers any trailing partial line.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.send(LineMsg(w.buf.String()))
		w.buf.Reset()
	}
}

// Run shows the live view on out while work runs on its own goroutine with
// a writer feeding the view. It returns work's error.
func Run(title string, out io.Writer, cancel context.CancelFunc, work func(w io.Writer) error) error {
	model := NewModel(title, cancel)
	p := tea.NewProgram(model, tea.WithOutput(out))

	lw := NewLineWriter(p.Send)
	errCh := make(chan error, 1)
	go func() {
		err := work(lw)
		lw.Flush()
		errCh <- err
		p.Send(DoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		if cancel != nil {
			cancel()
		}
		<-errCh
		return fmt.Errorf("live view failed: %w", err)
	}
	return <-errCh
}
