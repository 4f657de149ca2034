package audit

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobdigest/internal/pipeline"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type runDoneMsg struct {
	report pipeline.Report
	err    error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label  string
	runFn  func(ctx context.Context) (pipeline.Report, error)
	frame  int
	result pipeline.Report
	err    error
	done   bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doRun(), m.tick())
}

func (m loaderModel) doRun() tea.Cmd {
	runFn := m.runFn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		rep, err := runFn(ctx)
		return runDoneMsg{report: rep, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runDoneMsg:
		m.result = msg.report
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = fmt.Errorf("cancelled")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s %s...\n", spinner, m.label)
}

// RunLoader shows a spinner while a preview run executes. It renders inline
// (no alt screen).
func RunLoader(label string, runFn func(ctx context.Context) (pipeline.Report, error)) (pipeline.Report, error) {
	m := loaderModel{
		label: label,
		runFn: runFn,
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return pipeline.Report{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
