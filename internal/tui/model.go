// Package tui provides the interactive question prompt.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// QueryFunc answers a single question against the loaded collection.
type QueryFunc func(ctx context.Context, question string) (string, error)

// answerMsg carries a finished answer back into the update loop.
type answerMsg struct {
	question string
	answer   string
	err      error
}

// Model is the Bubble Tea model for the interactive prompt.
type Model struct {
	queryFn    QueryFunc
	collection string
	input      textinput.Model
	viewport   viewport.Model
	spin       spinner.Model
	question   string
	answer     string
	waiting    bool
	status     string
	ready      bool
}

// New creates a new prompt model over the given query function.
func New(collection string, queryFn QueryFunc) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	vp := viewport.New(0, 0)

	return Model{
		queryFn:    queryFn,
		collection: collection,
		input:      ti,
		viewport:   vp,
		spin:       sp,
		status:     "Ready. Type a question, Esc or Ctrl+C to quit.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + collection line
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ah)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.waiting = true
			m.status = "Thinking..."
			m.input.SetValue("")
			return m, tea.Batch(m.spin.Tick, ask(m.queryFn, question))
		}

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.question = msg.question
		m.answer = msg.answer
		m.status = fmt.Sprintf("Answered %q", msg.question)
		m.viewport.SetContent(m.renderAnswer())
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the query off the update loop and reports back as a message.
func ask(queryFn QueryFunc, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := queryFn(context.Background(), question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// View renders the prompt layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("RAG Search")
	sub := subtleStyle.Render("collection: " + m.collection)
	answer := answerBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := m.status
	if m.waiting {
		status = m.spin.View() + status
	}
	return header + "\n" + sub + "\n" + answer + "\n" + input + "\n" + statusStyle.Render(status)
}

func (m Model) renderAnswer() string {
	if m.answer == "" {
		return "No answer yet. Ask about the indexed documents above."
	}
	return questionStyle.Render("Q: "+m.question) + "\n\n" + m.answer
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle  = lipgloss.NewStyle().Bold(true)
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Run starts the interactive prompt and blocks until the user quits.
func Run(collection string, queryFn QueryFunc) error {
	p := tea.NewProgram(New(collection, queryFn), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
