package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/txreport/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/txreport/internal/config"
	"github.com/MrJamesThe3rd/txreport/internal/extract"
	"github.com/MrJamesThe3rd/txreport/internal/metrics"
	"github.com/MrJamesThe3rd/txreport/internal/parser"
	"github.com/MrJamesThe3rd/txreport/internal/pipeline"
	"github.com/MrJamesThe3rd/txreport/internal/schema"
)

type model struct {
	currentView View

	runView    view.RunModel
	browseView view.BrowseModel
}

type View int

const (
	ViewMenu   View = 0
	ViewRun    View = 1
	ViewBrowse View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sch := schema.Default()
	if cfg.Schema.File != "" {
		sch, err = schema.Load(cfg.Schema.File)
		if err != nil {
			slog.Error("failed to load schema", "error", err)
			os.Exit(1)
		}
	}

	var (
		extractor   = extract.NewService(slog.Default())
		collector   = metrics.NewCollector(slog.Default())
		pipelineSvc = pipeline.NewService(parser.New(sch), collector, slog.Default())
	)

	return model{
		currentView: ViewMenu,
		runView: view.NewRunModel(extractor, pipelineSvc,
			cfg.Paths.Logs, cfg.Paths.Extracted, cfg.Paths.Reports),
		browseView: view.NewBrowseModel(cfg.Paths.Reports),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewRun
				return m, m.runView.Init()
			case "2":
				m.currentView = ViewBrowse
				return m, m.browseView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewRun:
		var newModel tea.Model
		newModel, cmd = m.runView.Update(msg)
		m.runView = newModel.(view.RunModel)
	case ViewBrowse:
		var newModel tea.Model
		newModel, cmd = m.browseView.Update(msg)
		m.browseView = newModel.(view.BrowseModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Transaction Log Reports\n\n" +
				"1. Generate Reports\n" +
				"2. Browse Reports\n\n" +
				"q. Quit",
		)
	case ViewRun:
		return m.runView.View()
	case ViewBrowse:
		return m.browseView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
