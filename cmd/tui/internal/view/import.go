package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/importer"
)

const importTimeout = 2 * time.Minute

type importStep int

const (
	importStepPick importStep = iota
	importStepConfirm
	importStepRunning
	importStepDone
)

// ImportModel lets the user pick a CSV file, confirm it, and import every
// row of it for the owner in one batch.
type ImportModel struct {
	CommonModel
	importService *importer.Service

	step    importStep
	picker  filepicker.Model
	path    string
	confirm *huh.Form
	proceed *bool

	imported int
	err      error
}

func NewImportModel(owner uuid.UUID, svc *importer.Service) ImportModel {
	picker := filepicker.New()
	picker.CurrentDirectory, _ = os.Getwd()
	picker.AllowedTypes = []string{".csv"}
	picker.SetHeight(15)

	return ImportModel{
		CommonModel:   CommonModel{Owner: owner},
		importService: svc,
		picker:        picker,
		proceed:       new(true),
	}
}

func (m ImportModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(importResultMsg); ok {
		m.step = importStepDone
		m.imported = res.count
		m.err = res.err

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		switch m.step {
		case importStepPick:
			return m, Back
		case importStepRunning:
			return m, nil
		}

		m.step = importStepPick
		m.err = nil

		return m, m.picker.Init()
	}

	switch m.step {
	case importStepPick:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		if ok, path := m.picker.DidSelectFile(msg); ok {
			return m.askConfirm(path)
		}

		return m, cmd

	case importStepConfirm:
		form, cmd := m.confirm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.confirm = f
		}

		if m.confirm.State != huh.StateCompleted {
			return m, cmd
		}

		if !*m.proceed {
			m.step = importStepPick
			return m, m.picker.Init()
		}

		m.step = importStepRunning

		return m, m.importCmd(m.path)
	}

	return m, nil
}

func (m ImportModel) askConfirm(path string) (tea.Model, tea.Cmd) {
	*m.proceed = true
	m.path = path
	m.step = importStepConfirm
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Import %s?", filepath.Base(path))).
				Description("Every row must be valid. Nothing is saved if one is not.").
				Affirmative("Import").
				Negative("Cancel").
				Value(m.proceed),
		),
	).WithWidth(60).WithShowHelp(false)

	return m, m.confirm.Init()
}

func (m ImportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case importStepPick:
		return style.Render(
			"Select a CSV file with Date, Type, Category, Amount and Description columns:\n\n" + m.picker.View(),
		)
	case importStepConfirm:
		return style.Render(m.confirm.View())
	case importStepRunning:
		return style.Render(fmt.Sprintf("Importing %s...", m.path))
	}

	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Import failed: "+errorText(m.err)) +
				"\n\n(Esc to pick another file)",
		)
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(fmt.Sprintf("Imported %d transactions.", m.imported)) +
			"\n\n(Esc to pick another file)",
	)
}

type importResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		n, err := m.importService.Import(ctx, m.Owner, f)

		return importResultMsg{count: n, err: err}
	}
}
