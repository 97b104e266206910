package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/export"
	"github.com/smartledger/smartledger/internal/transaction"
)

const exportTimeout = 2 * time.Minute

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

type exportFields struct {
	timeframeFields
	path string
}

// ExportModel asks for a timeframe and a destination file, then writes the
// owner's matching transactions there as CSV.
type ExportModel struct {
	CommonModel
	exportService *export.Service

	state   exportState
	fields  *exportFields
	form    *huh.Form
	spinner spinner.Model

	summary string
	err     error
}

func NewExportModel(owner uuid.UUID, svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ExportModel{
		CommonModel:   CommonModel{Owner: owner},
		exportService: svc,
		spinner:       s,
	}
	m.reset()

	return m
}

func (m *ExportModel) reset() {
	f := &exportFields{
		timeframeFields: timeframeFields{frame: TimeframeThisMonth},
		path:            fmt.Sprintf("transactions_%s.csv", time.Now().Format("20060102")),
	}

	groups := append(f.groups(), huh.NewGroup(
		huh.NewInput().
			Title("Output file").
			Description("Parent directories are created if missing").
			Value(&f.path).
			Validate(huh.ValidateNotEmpty()),
	))

	m.fields = f
	m.form = huh.NewForm(groups...).WithWidth(50).WithShowHelp(false)
	m.state = exportStateForm
	m.summary = ""
	m.err = nil
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		if m.state == exportStateExporting {
			return m, nil
		}

		return m, Back
	}

	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "n" {
			m.reset()
			return m, m.form.Init()
		}
	}

	return m, nil
}

func (m ExportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	var filter transaction.ListFilter
	if err := m.fields.apply(&filter, time.Now()); err != nil {
		m.state = exportStateResult
		m.err = err

		return m, nil
	}

	m.state = exportStateExporting

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(filter, strings.TrimSpace(m.fields.path)))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.summary = result.summary

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case exportStateForm:
		return style.Render("Export Transactions\n\n" + m.form.View())
	case exportStateExporting:
		return style.Render(fmt.Sprintf("%s Exporting transactions...", m.spinner.View()))
	}

	footer := lipgloss.NewStyle().Faint(true).Render("n: new export | Esc: back")

	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Error: "+errorText(m.err)) +
				"\n\n" + footer,
		)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Export Complete!")

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.summary, "", footer))
}

type exportResultMsg struct {
	summary string
	err     error
}

func (m ExportModel) runExportCmd(filter transaction.ListFilter, path string) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return exportResultMsg{err: err}
		}

		f, err := os.Create(path)
		if err != nil {
			return exportResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		n, err := m.exportService.Export(ctx, m.Owner, filter, f)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if err := f.Close(); err != nil {
			return exportResultMsg{err: err}
		}

		return exportResultMsg{summary: fmt.Sprintf("Wrote %d transactions to %s", n, path)}
	}
}
