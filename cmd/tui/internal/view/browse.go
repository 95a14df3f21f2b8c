package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/txreport/internal/report"
)

// BrowseModel pages through the generated report files as tables.
type BrowseModel struct {
	CommonModel
	reportsDir string

	bundle  *report.Bundle
	active  int
	table   table.Model
	loading bool
	err     error
}

func NewBrowseModel(reportsDir string) BrowseModel {
	return BrowseModel{reportsDir: reportsDir, loading: true}
}

func (m BrowseModel) Title() string { return "Browse Reports" }
func (m BrowseModel) ShortHelp() string {
	return "Esc: back | tab/shift+tab: switch report | r: reload"
}

func (m BrowseModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBrowseMsg:
		m.loading = false
		m.err = msg.err
		m.bundle = msg.bundle

		if m.err == nil {
			m.active = 0
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.table.SetHeight(msg.Height - 8)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "tab":
			if m.bundle != nil {
				m.active = (m.active + 1) % len(m.bundle.Reports)
				m.refreshTable()
			}

			return m, nil
		case "shift+tab":
			if m.bundle != nil {
				m.active = (m.active + len(m.bundle.Reports) - 1) % len(m.bundle.Reports)
				m.refreshTable()
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BrowseModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading reports...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Could not load reports: %v\n\nGenerate them first.\n\nEsc: back", m.err),
		)
	}

	r := m.bundle.Reports[m.active]
	header := fmt.Sprintf("%s (%d/%d) — %d rows",
		r.Name, m.active+1, len(m.bundle.Reports), len(r.Rows))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Foreground(lipgloss.Color("205")).Render(header),
			tableView,
			lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
		),
	)
}

func (m *BrowseModel) refreshTable() {
	r := m.bundle.Reports[m.active]

	columns := make([]table.Column, 0, len(r.Header))
	for _, h := range r.Header {
		columns = append(columns, table.Column{Title: h, Width: columnWidth(h)})
	}

	rows := make([]table.Row, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, table.Row(row))
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m.table = t
}

func columnWidth(header string) int {
	switch header {
	case "timestamp", "period_start":
		return 20
	case "detail", "reason", "extra":
		return 40
	case "line", "overdrawn_count":
		return 8
	}

	return 16
}

// Messages

type loadBrowseMsg struct {
	bundle *report.Bundle
	err    error
}

func (m BrowseModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		bundle, err := report.Read(m.reportsDir)
		return loadBrowseMsg{bundle: bundle, err: err}
	}
}
