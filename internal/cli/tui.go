package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/git-ranked/gitranked/pkg/location"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// LocationListModel is the bubbletea model for picking one geocoded
// suggestion when a free-text location input is ambiguous.
type LocationListModel struct {
	Suggestions []location.Suggestion
	Cursor      int
	Selected    *location.Suggestion
}

// NewLocationListModel creates a suggestion picker.
func NewLocationListModel(suggestions []location.Suggestion) LocationListModel {
	return LocationListModel{Suggestions: suggestions}
}

func (m LocationListModel) Init() tea.Cmd {
	return nil
}

func (m LocationListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Suggestions)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = &m.Suggestions[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m LocationListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Which location did you mean?"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(m.Suggestions))
	for i, s := range m.Suggestions {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, s.Name, s.Type, s.Country}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Type", "Country").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Suggestions))))

	return b.String()
}

// pickLocation runs the interactive picker and returns the chosen
// suggestion, or nil when the user backed out.
func pickLocation(suggestions []location.Suggestion) (*location.Suggestion, error) {
	model, err := tea.NewProgram(NewLocationListModel(suggestions)).Run()
	if err != nil {
		return nil, err
	}
	final, ok := model.(LocationListModel)
	if !ok {
		return nil, fmt.Errorf("unexpected picker model %T", model)
	}
	return final.Selected, nil
}
