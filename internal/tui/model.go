// Package tui is the terminal chat screen for the inference API.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"katutubo-llm/pkg/llm"
)

const (
	Greeting       = "Anong maitutulong ko sa'yo ngayon?"
	FallbackAnswer = "Walang sagot 😅"
)

// Asker is the TUI-facing subset of the API client.
type Asker interface {
	Infer(ctx context.Context, prompt string, history llm.History) (llm.InferResponse, error)
}

type answerMsg struct {
	prompt string
	resp   llm.InferResponse
	err    error
}

// Model is the Bubble Tea model of one chat session. The history lives here
// and is sent with every prompt.
type Model struct {
	asker    Asker
	timeout  time.Duration
	input    textinput.Model
	viewport viewport.Model
	history  llm.History
	pending  string
	status   string
	busy     bool
	ready    bool
	width    int
	style    string
}

// New creates a chat model. style is a glamour standard style such as "dark"
// or "notty".
func New(asker Asker, timeout time.Duration, style string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What is up?"
	ti.Focus()
	ti.CharLimit = 0
	if style == "" {
		style = "dark"
	}
	return Model{
		asker:    asker,
		timeout:  timeout,
		input:    ti,
		viewport: viewport.New(0, 0),
		history:  llm.History{},
		status:   "Enter to send, Ctrl+C to quit.",
		width:    80,
		style:    style,
	}
}

// History returns a copy of the session history.
func (m Model) History() llm.History { return m.history.Clone() }

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input line, spacer
		m.width = max(20, msg.Width)
		m.viewport.Width = m.width
		m.viewport.Height = max(3, msg.Height-reserved)
		m.refresh()
		return m, nil
	case answerMsg:
		m.busy = false
		m.pending = ""
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			answer := msg.resp.Response
			if answer == "" {
				answer = FallbackAnswer
			}
			m.history = append(m.history, llm.ChatTurn{User: msg.prompt, Assistant: answer})
			m.status = "Enter to send, Ctrl+C to quit."
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			prompt := strings.TrimSpace(m.input.Value())
			if prompt == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			m.pending = prompt
			m.status = "Nag-iisip..."
			m.refresh()
			return m, m.ask(prompt, m.history.Clone())
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(prompt string, history llm.History) tea.Cmd {
	asker, timeout := m.asker, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := asker.Infer(ctx, prompt, history)
		return answerMsg{prompt: prompt, resp: resp, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Katutubo Bot")
	status := statusStyle.Render(m.status)
	if strings.HasPrefix(m.status, "Error:") {
		status = errorStyle.Render(m.status)
	}
	return header + "\n" + m.viewport.View() + "\n" + inputBoxStyle.Render(m.input.View()) + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

// transcript renders the greeting, every turn and the prompt in flight.
func (m Model) transcript() string {
	var sb strings.Builder
	sb.WriteString(assistantStyle.Render("assistant") + "\n")
	sb.WriteString(m.markdown(Greeting))
	for _, t := range m.history {
		sb.WriteString(userStyle.Render("user") + "\n")
		sb.WriteString(m.markdown(t.User))
		sb.WriteString(assistantStyle.Render("assistant") + "\n")
		sb.WriteString(m.markdown(t.Assistant))
	}
	if m.pending != "" {
		sb.WriteString(userStyle.Render("user") + "\n")
		sb.WriteString(m.markdown(m.pending))
	}
	return sb.String()
}

// markdown renders text with glamour, falling back to the raw text.
func (m Model) markdown(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(max(20, m.width-4)),
	)
	if err != nil {
		return text + "\n"
	}
	out, err := r.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
