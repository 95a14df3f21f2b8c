package view

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/txreport/internal/extract"
	"github.com/MrJamesThe3rd/txreport/internal/pipeline"
	"github.com/MrJamesThe3rd/txreport/internal/report"
)

type runState int

const (
	runStateForm runState = iota
	runStateRunning
	runStateDone
)

// RunModel drives one full extract-and-report run from the TUI.
type RunModel struct {
	CommonModel
	extractor *extract.Service
	pipeline  *pipeline.Service

	state   runState
	form    *huh.Form
	summary *pipeline.Summary
	err     error

	// Form bindings
	logsDir      string
	extractedDir string
	reportsDir   string
}

func NewRunModel(extractor *extract.Service, p *pipeline.Service, logsDir, extractedDir, reportsDir string) RunModel {
	m := RunModel{
		extractor:    extractor,
		pipeline:     p,
		logsDir:      logsDir,
		extractedDir: extractedDir,
		reportsDir:   reportsDir,
	}
	m.form = m.newForm()

	return m
}

func (m RunModel) newForm() *huh.Form {
	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("directory cannot be empty")
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("logs").
				Title("Logs directory (.gz archives)").
				Value(&m.logsDir).
				Validate(required),

			huh.NewInput().
				Key("extracted").
				Title("Extracted logs directory").
				Value(&m.extractedDir).
				Validate(required),

			huh.NewInput().
				Key("reports").
				Title("Reports output directory").
				Value(&m.reportsDir).
				Validate(required),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m RunModel) Title() string { return "Generate Reports" }

func (m RunModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runDoneMsg:
		m.state = runStateDone
		m.summary = msg.summary
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.state != runStateRunning {
			return m, Back
		}

		if m.state == runStateDone && msg.String() == "r" {
			m.state = runStateForm
			m.summary = nil
			m.err = nil
			m.form = m.newForm()

			return m, m.form.Init()
		}
	}

	if m.state != runStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.logsDir = m.form.GetString("logs")
	m.extractedDir = m.form.GetString("extracted")
	m.reportsDir = m.form.GetString("reports")
	m.state = runStateRunning

	return m, m.runCmd()
}

func (m RunModel) View() string {
	switch m.state {
	case runStateRunning:
		return lipgloss.NewStyle().Padding(2).Render("Extracting archives and generating reports...")

	case runStateDone:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(2).Render(
				fmt.Sprintf("Run failed: %v\n\nNo reports were written.\n\nr: retry | Esc: back", m.err),
			)
		}

		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf(
			"Run %s complete\n\n"+
				"Files processed: %d\n"+
				"Records:         %d\n"+
				"Overdrawn:       %d\n"+
				"Anomalies:       %d\n"+
				"Duration:        %s\n\n"+
				"Reports written to %s\n\n"+
				"r: run again | Esc: back",
			m.summary.RunID, m.summary.Files, m.summary.Processed,
			m.summary.Overdrawn, m.summary.Anomalies, m.summary.Duration,
			m.reportsDir,
		))
	}

	return lipgloss.NewStyle().Padding(1).Render(
		"Generate Reports\n\n" + m.form.View() + "\nEsc: back",
	)
}

// Messages

type runDoneMsg struct {
	summary *pipeline.Summary
	err     error
}

func (m RunModel) runCmd() tea.Cmd {
	logsDir := m.logsDir
	extractedDir := m.extractedDir
	reportsDir := m.reportsDir

	return func() tea.Msg {
		if _, err := m.extractor.ExtractAll(logsDir, extractedDir); err != nil {
			return runDoneMsg{err: err}
		}

		sink, err := report.NewCSVSink(reportsDir)
		if err != nil {
			return runDoneMsg{err: err}
		}

		summary, err := m.pipeline.Run(context.Background(), extractedDir, sink)
		if err != nil {
			return runDoneMsg{err: err}
		}

		return runDoneMsg{summary: summary}
	}
}
