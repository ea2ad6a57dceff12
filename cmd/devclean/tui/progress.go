package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/devclean/pkg/devclean/logging"
)

// StepMsg reports progress. Total of 0 means the amount of work is unknown
// and a spinner is shown instead of a bar.
type StepMsg struct {
	Done   int
	Total  int
	Detail string
}

// doneMsg ends the progress display.
type doneMsg struct {
	err error
}

// ProgressModel shows a bar (known total) or a spinner (unknown total)
// with a one-line detail under it.
type ProgressModel struct {
	title   string
	bar     progress.Model
	spinner spinner.Model
	step    StepMsg
	start   time.Time
	width   int
	done    bool
	err     error
}

// NewProgressModel creates a progress display titled title.
func NewProgressModel(title string) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return ProgressModel{
		title:   title,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner: s,
		start:   time.Now(),
		width:   80,
	}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-10, 10), 60)
		return m, nil

	case StepMsg:
		m.step = msg
		return m, nil

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Percent returns the completed fraction, or 0 when the total is unknown.
func (m ProgressModel) Percent() float64 {
	if m.step.Total <= 0 {
		return 0
	}
	return min(float64(m.step.Done)/float64(m.step.Total), 1)
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(mutedTextStyle.Render(formatElapsed(time.Since(m.start))))
	b.WriteString("\n")

	if m.step.Total > 0 {
		b.WriteString(m.bar.ViewAs(m.Percent()))
		b.WriteString(fmt.Sprintf("  %d/%d", m.step.Done, m.step.Total))
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(fmt.Sprintf(" %d found", m.step.Done))
	}
	b.WriteString("\n")

	if m.step.Detail != "" {
		b.WriteString(pathStyle.Render(truncateLeft(m.step.Detail, max(m.width-4, 20))))
		b.WriteString("\n")
	}
	return b.String()
}

// Err returns the work function's error once finished.
func (m ProgressModel) Err() error {
	return m.err
}

// Reporter is handed to work functions to publish progress.
type Reporter func(StepMsg)

// RunProgress renders a progress display on out while work runs on another
// goroutine, and returns work's error. Interrupts are left to the caller's
// context; the display always waits for work to return.
func RunProgress(out io.Writer, title string, work func(report Reporter) error) error {
	p := tea.NewProgram(NewProgressModel(title),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	workErr := make(chan error, 1)
	go func() {
		err := work(func(s StepMsg) { p.Send(s) })
		workErr <- err
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		logging.Get("tui").Warn("progress display failed", "err", err)
	}
	return <-workErr
}

// formatElapsed renders d as m:ss.
func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// truncateLeft keeps the tail of s, which for paths is the informative end.
func truncateLeft(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return "…" + string(r[len(r)-width+1:])
}
