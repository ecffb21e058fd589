// Package tui provides the full-screen chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/core/ports/driving"
)

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// turnDoneMsg carries a completed turn back into the update loop.
type turnDoneMsg struct {
	result domain.TurnResult
}

// turnFailedMsg carries a failed turn back into the update loop.
type turnFailedMsg struct {
	err error
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	assistant driving.AssistantService
	sessionID string

	input    textinput.Model
	viewport viewport.Model
	history  []domain.Message
	status   string
	thinking bool
	ready    bool
}

// New creates a chat model bound to one session.
func New(assistant driving.AssistantService, sessionID string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the indexed discussion"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		assistant: assistant,
		sessionID: sessionID,
		input:     ti,
		viewport:  viewport.New(0, 0),
		status:    fmt.Sprintf("Session %s. Enter to send, Ctrl-C to quit.", sessionID),
	}
}

// Run starts the chat interface and blocks until it exits.
func Run(assistant driving.AssistantService, sessionID string) error {
	program := tea.NewProgram(New(assistant, sessionID), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Init initializes the model.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and turn-completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		height := msg.Height - ch - ih - 3
		if height < 3 {
			height = 3
		}
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = height
		m.viewport.SetContent(m.renderHistory())
		return m, nil

	case turnDoneMsg:
		m.thinking = false
		m.history = msg.result.History
		if docs := len(msg.result.Documents); docs > 0 {
			m.status = statusStyle.Render(fmt.Sprintf("%d supporting documents", docs))
		} else {
			m.status = statusStyle.Render("No supporting documents")
		}
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case turnFailedMsg:
		m.thinking = false
		m.status = errorStyle.Render("Error: " + msg.err.Error())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.thinking {
				return m, nil
			}
			m.input.Reset()
			m.thinking = true
			m.status = statusStyle.Render("Thinking...")

			// Optimistically show the user message while the turn runs.
			pending := append(append([]domain.Message{}, m.history...), domain.Message{
				Role:    domain.RoleUser,
				Content: text,
			})
			m.viewport.SetContent(renderMessages(pending))
			m.viewport.GotoBottom()
			return m, m.runTurn(text)

		case "up":
			m.viewport.ScrollUp(1)
			return m, nil
		case "down":
			m.viewport.ScrollDown(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runTurn executes one dialogue turn off the update loop.
func (m Model) runTurn(text string) tea.Cmd {
	assistant := m.assistant
	sessionID := m.sessionID
	history := m.history
	return func() tea.Msg {
		result, err := assistant.Turn(context.Background(), sessionID, history, text)
		if err != nil {
			return turnFailedMsg{err: err}
		}
		return turnDoneMsg{result: result}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Agora")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	return header + "\n" + chat + "\n" + input + "\n" + m.status
}

func (m Model) renderHistory() string {
	return renderMessages(m.history)
}

func renderMessages(messages []domain.Message) string {
	if len(messages) == 0 {
		return "Ask a question about the indexed discussion to get started."
	}

	var b strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleUser:
			b.WriteString(userStyle.Render("You: "))
		case domain.RoleAssistant:
			b.WriteString(assistantStyle.Render("Agora: "))
		}
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
