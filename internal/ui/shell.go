// Package ui is the terminal chat shell. It owns all presentation state and
// hands every engine call to the bridge, collecting results when it pumps.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mcpchat/internal"
	"mcpchat/internal/ai"
	"mcpchat/internal/ai/tools"
	"mcpchat/internal/bridge"
	"mcpchat/internal/capture"
	"mcpchat/internal/logger"
)

const (
	speakerYou       = "You"
	speakerAssistant = "Assistant"
	speakerSystem    = "System"

	statusReady     = "Ready"
	statusQuery     = "Processing..."
	statusImage     = "Analyzing image..."
	statusCleared   = "Chat cleared"
	statusResetDone = "Conversation reset"

	imagePrefix = "image:"
)

// Conversation is the engine surface the shell drives.
type Conversation interface {
	ProcessQuery(ctx context.Context, query string) string
	ProcessImageQuery(ctx context.Context, image ai.ImagePayload, prompt string) string
	ResetConversation() string
	Status() map[string]interface{}
}

type Options struct {
	// Session names the conversation in the header and transcript logs.
	Session string
	BaseURL string
	// Capture grabs the screen when "image:" is submitted without a reference.
	Capture func() (string, error)
}

type line struct {
	speaker string
	text    string
}

// shellState is shared by every copy of the Model. Only the UI loop touches
// it, either directly in Update or from callbacks run by Pump.
type shellState struct {
	session string
	lines   []line
	status  string
}

func (s *shellState) add(speaker, text string) {
	s.lines = append(s.lines, line{speaker: speaker, text: text})
	logger.LogTranscript(s.session, speaker, text)
}

func (s *shellState) system(text string) {
	s.add(speakerSystem, text)
}

type pumpTickMsg time.Time

type readyMsg struct{}

type Model struct {
	ctx    context.Context
	conv   Conversation
	bridge *bridge.Bridge
	opts   Options
	state  *shellState

	width  int
	height int

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model

	theme uiTheme
}

func New(ctx context.Context, conv Conversation, br *bridge.Bridge, opts Options) Model {
	if opts.Capture == nil {
		opts.Capture = capture.Screen
	}
	if opts.Session == "" {
		opts.Session = internal.APP_NAME
	}

	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 8000
	input.Placeholder = "Ask something, image:<path> to describe an image, /help for commands"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true
	timeline.MouseWheelDelta = 4

	state := &shellState{session: opts.Session, status: statusReady}
	state.system(fmt.Sprintf("Welcome to %s %s. Connected to %s. Type /help for commands.",
		internal.APP_NAME, internal.APP_VERSION, opts.Session))

	m := Model{
		ctx:      ctx,
		conv:     conv,
		bridge:   br,
		opts:     opts,
		state:    state,
		input:    input,
		timeline: timeline,
		spinner:  sp,
		theme:    newTheme(),
	}
	m.renderTimeline()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		tickEvery(m.bridge.Interval()),
		waitReady(m.ctx, m.bridge),
	)
}

func tickEvery(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pumpTickMsg(t)
	})
}

// waitReady wakes the UI loop as soon as the bridge has completions, so
// results do not wait for the next tick.
func waitReady(ctx context.Context, br *bridge.Bridge) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-br.Ready():
			return readyMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case pumpTickMsg:
		m.bridge.Pump()
		cmds = append(cmds, tickEvery(m.bridge.Interval()))
	case readyMsg:
		m.bridge.Pump()
		cmds = append(cmds, waitReady(m.ctx, m.bridge))
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+t":
			m.submitQuery(internal.TOOLS_HELP_QUERY)
		case "ctrl+l":
			m.clearView()
		case "ctrl+r":
			m.submitReset()
		case "ctrl+o":
			if !strings.HasPrefix(m.input.Value(), imagePrefix) {
				m.input.SetValue(imagePrefix + m.input.Value())
			}
			m.input.CursorEnd()
		case "enter":
			text := m.input.Value()
			m.input.Reset()
			cmd := m.handleInput(text)
			m.renderTimeline()
			return m, cmd
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.timeline, cmd = m.timeline.Update(msg)
			cmds = append(cmds, cmd)
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.renderTimeline()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleInput(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil
	case strings.HasPrefix(text, "/"):
		return m.handleCommand(text)
	case strings.HasPrefix(text, imagePrefix):
		m.submitImage(strings.TrimSpace(strings.TrimPrefix(text, imagePrefix)))
		return nil
	default:
		m.submitQuery(text)
		return nil
	}
}

func (m *Model) submitQuery(query string) {
	st, br, conv := m.state, m.bridge, m.conv
	st.add(speakerYou, query)

	_, err := bridge.Submit(br, func(ctx context.Context) string {
		return conv.ProcessQuery(ctx, query)
	}, func(answer string) {
		st.add(speakerAssistant, orFailed(answer))
		settle(st, br, statusReady)
	})
	if err != nil {
		m.scheduleFailed(err)
		return
	}
	st.status = statusQuery
}

func (m *Model) submitImage(ref string) {
	st, br, conv, grab := m.state, m.bridge, m.conv, m.opts.Capture

	if ref == "" {
		st.add(speakerYou, "[screen capture]")
	} else {
		st.add(speakerYou, imagePrefix+" "+tools.TruncateString(ref, 60))
	}

	_, err := bridge.Submit(br, func(ctx context.Context) string {
		input := ref
		if input == "" {
			url, err := grab()
			if err != nil {
				logger.Warnf("Screen capture failed: %v", err)
				return ai.Display(fmt.Errorf("screen capture: %w", err))
			}
			input = url
		}
		return conv.ProcessImageQuery(ctx, ai.NewImagePayload(input), "")
	}, func(answer string) {
		st.add(speakerAssistant, orFailed(answer))
		settle(st, br, statusReady)
	})
	if err != nil {
		m.scheduleFailed(err)
		return
	}
	st.status = statusImage
}

// submitReset forgets the conversation on the work loop, then clears the view.
func (m *Model) submitReset() {
	st, br, conv := m.state, m.bridge, m.conv

	_, err := bridge.Submit(br, func(ctx context.Context) string {
		return conv.ResetConversation()
	}, func(notice string) {
		if notice == "" {
			st.system(taskFailed)
			settle(st, br, statusReady)
			return
		}
		st.lines = nil
		st.system(notice)
		settle(st, br, statusResetDone)
	})
	if err != nil {
		m.scheduleFailed(err)
	}
}

// clearView empties the transcript; the engine keeps its history.
func (m *Model) clearView() {
	m.state.lines = nil
	m.state.system("Chat view cleared. The conversation is kept; use /reset to forget it.")
	m.state.status = statusCleared
}

func (m *Model) scheduleFailed(err error) {
	logger.Errorf("Could not schedule task: %v", err)
	if errors.Is(err, bridge.ErrQueueFull) {
		m.state.system("Too many requests waiting, try again shortly.")
		return
	}
	m.state.system(ai.Display(err))
}

// taskFailed stands in for the answer of a task that ended without one.
var taskFailed = ai.Display(errors.New("request failed unexpectedly, see the error log"))

func orFailed(answer string) string {
	if answer == "" {
		return taskFailed
	}
	return answer
}

// settle sets the final status once nothing else is outstanding.
func settle(st *shellState, br *bridge.Bridge, status string) {
	if br.Pending() == 0 {
		st.status = status
	}
}

func (m *Model) resize() {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	m.timeline.Width = w
	m.timeline.Height = h
	m.input.Width = w - 4
	m.renderTimeline()
}

func (m *Model) renderTimeline() {
	width := m.timeline.Width
	var b strings.Builder
	for i, l := range m.state.lines {
		if i > 0 {
			b.WriteString("\n")
		}
		style, ok := m.theme.speaker[l.speaker]
		if !ok {
			style = m.theme.helpText
		}
		text := l.text
		if strings.HasPrefix(text, "[Error:") {
			text = m.theme.errorText.Render(text)
		}
		entry := style.Render(l.speaker+":") + " " + text
		if width > 0 {
			entry = lipgloss.NewStyle().Width(width).Render(entry)
		}
		b.WriteString(entry)
	}
	m.timeline.SetContent(b.String())
	m.timeline.GotoBottom()
}

func (m Model) View() string {
	header := m.theme.header.Render(fmt.Sprintf("%s · %s", internal.APP_NAME, m.opts.Session))
	timeline := m.theme.panel.Render(m.timeline.View())
	input := m.theme.inputPanel.Render(m.input.View())

	status := m.theme.status.Render(m.state.status)
	if m.bridge.Pending() > 0 {
		status = m.theme.busy.Render(m.spinner.View() + " " + m.state.status)
	}
	footer := m.theme.footer.Render(status + m.theme.helpText.Render("  ·  Ctrl+T tools  Ctrl+L clear  Ctrl+R reset  Ctrl+O image  Ctrl+C quit"))

	return lipgloss.JoinVertical(lipgloss.Left, header, timeline, input, footer)
}

// Transcript returns the visible transcript as "Speaker: text" lines.
func (m Model) Transcript() []string {
	out := make([]string, 0, len(m.state.lines))
	for _, l := range m.state.lines {
		out = append(out, l.speaker+": "+l.text)
	}
	return out
}

func (m Model) Status() string {
	return m.state.status
}

// Run shows the shell until the user quits or ctx ends. Console logging is
// muted while the shell owns the terminal.
func Run(ctx context.Context, conv Conversation, br *bridge.Bridge, opts Options) error {
	logger.SetConsoleOutput(io.Discard)
	defer logger.SetConsoleOutput(os.Stdout)

	p := tea.NewProgram(New(ctx, conv, br, opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run shell: %w", err)
	}
	return nil
}
