package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNotInteractive is returned when a prompt is needed but there is no
// terminal to ask on.
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal (use --yes)")

// ConfirmModel asks a yes/no question.
type ConfirmModel struct {
	question string
	details  []string
	choice   bool
	answered bool
}

// NewConfirmModel creates a prompt. def is the choice selected initially
// and taken on enter.
func NewConfirmModel(question string, details []string, def bool) ConfirmModel {
	return ConfirmModel{question: question, details: details, choice: def}
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.choice, m.answered = true, true
		return m, tea.Quit
	case "n", "N", "q", "esc", "ctrl+c":
		m.choice, m.answered = false, true
		return m, tea.Quit
	case "enter":
		m.answered = true
		return m, tea.Quit
	case "left", "right", "h", "l", "tab", "shift+tab":
		m.choice = !m.choice
	}
	return m, nil
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	if m.answered {
		return ""
	}

	var b strings.Builder
	b.WriteString(warningTextStyle.Render(m.question))
	b.WriteString("\n")
	for _, d := range m.details {
		b.WriteString(mutedTextStyle.Render("  " + d))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	yes, no := buttonStyle.Render("Yes"), buttonStyle.Render("No")
	if m.choice {
		yes = activeButtonStyle.Render("Yes")
	} else {
		no = activeButtonStyle.Render("No")
	}
	b.WriteString(yes + " " + no)
	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render("y/n, ←/→ to choose, enter to accept"))

	return promptBoxStyle.Render(b.String()) + "\n"
}

// Confirmed reports whether the user answered yes.
func (m ConfirmModel) Confirmed() bool {
	return m.answered && m.choice
}

// Confirm shows the prompt on out, reading keys from in.
func Confirm(in io.Reader, out io.Writer, question string, details []string, def bool) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(question, details, def), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("running prompt: %w", err)
	}
	m, ok := final.(ConfirmModel)
	if !ok {
		return false, nil
	}
	return m.Confirmed(), nil
}
