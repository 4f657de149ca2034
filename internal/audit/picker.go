package audit

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobdigest/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

// AllTiers is the picker choice that shows every digest listing.
const AllTiers = 0

type tierOption struct {
	tier  int
	label string
}

func tierOptions(d model.Digest) []tierOption {
	opts := []tierOption{{tier: AllTiers, label: fmt.Sprintf("All tiers (%d jobs)", d.Total)}}
	for _, g := range d.Tiers {
		opts = append(opts, tierOption{tier: g.Tier, label: fmt.Sprintf("%s (%d jobs)", g.Label, len(g.Jobs))})
	}
	return opts
}

type pickerModel struct {
	options []tierOption
	cursor  int
	chosen  int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Digest Audit: select a tier")
	s += "\n"

	for i, o := range m.options {
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+o.label) + "\n"
		} else {
			s += pickerItemStyle.Render(o.label) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

// RunTierPicker shows an interactive tier selector for d. It returns the
// chosen tier (AllTiers for every listing), or -1 if the user quit.
func RunTierPicker(d model.Digest) (int, error) {
	m := pickerModel{
		options: tierOptions(d),
		chosen:  -1,
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return -1, err
	}

	final := result.(pickerModel)
	if final.chosen < 0 {
		return -1, nil
	}
	return final.options[final.chosen].tier, nil
}

// JobsInTier returns the digest listings for tier, or all of them for AllTiers.
func JobsInTier(d model.Digest, tier int) []model.Job {
	var jobs []model.Job
	for _, g := range d.Tiers {
		if tier == AllTiers || g.Tier == tier {
			jobs = append(jobs, g.Jobs...)
		}
	}
	return jobs
}
