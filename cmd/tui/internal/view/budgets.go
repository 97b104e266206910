package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/budget"
)

type budgetFields struct {
	category string
	limit    string
	month    string
	year     string
}

type BudgetsModel struct {
	CommonModel
	budgetService *budget.Service

	table   table.Model
	budgets []*budget.Budget
	form    *huh.Form
	fields  *budgetFields

	loading bool
	err     error
	status  string
}

func NewBudgetsModel(owner uuid.UUID, svc *budget.Service) BudgetsModel {
	columns := []table.Column{
		{Title: "Period", Width: 10},
		{Title: "Category", Width: 20},
		{Title: "Limit", Width: 12},
	}

	return BudgetsModel{
		CommonModel:   CommonModel{Owner: owner},
		budgetService: svc,
		table:         newTable(columns),
		loading:       true,
	}
}

func (m BudgetsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBudgetsMsg:
		m.loading = false
		m.err = msg.err
		m.budgets = msg.budgets
		m.refreshTable()

		return m, nil

	case budgetSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %s", errorText(msg.err))
		}

		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.openForm()
		case "d":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.budgets) {
				return m, m.deleteCmd(m.budgets[idx].ID)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BudgetsModel) openForm() (tea.Model, tea.Cmd) {
	now := time.Now()
	f := &budgetFields{
		month: strconv.Itoa(int(now.Month())),
		year:  strconv.Itoa(now.Year()),
	}

	m.fields = f
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Category").
				Value(&f.category).
				Validate(huh.ValidateNotEmpty()),
			huh.NewInput().
				Title("Monthly limit").
				Placeholder("0.00").
				Value(&f.limit).
				Validate(validateAmount),
			huh.NewInput().
				Title("Month").
				Value(&f.month).
				Validate(validateRange(1, 12)),
			huh.NewInput().
				Title("Year").
				Value(&f.year).
				Validate(validateRange(1000, 9999)),
		),
	).WithWidth(40).WithShowHelp(false)

	m.table.Blur()

	return m, m.form.Init()
}

func validateRange(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < lo || n > hi {
			return fmt.Errorf("must be a number between %d and %d", lo, hi)
		}

		return nil
	}
}

func (m BudgetsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m BudgetsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budgets...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %s\n\n(Esc to go back)", errorText(m.err)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingBottom(1).Render("Budgets"),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
		lipgloss.NewStyle().Faint(true).Render("a: add | d: delete | r: refresh | Esc: back"),
	)

	if m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(44).
			Render("New Budget\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BudgetsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.budgets))
	for _, b := range m.budgets {
		rows = append(rows, table.Row{
			fmt.Sprintf("%04d-%02d", b.Year, b.Month),
			b.Category,
			FormatAmount(b.Limit),
		})
	}

	m.table.SetRows(rows)
}

type loadBudgetsMsg struct {
	budgets []*budget.Budget
	err     error
}

func (m BudgetsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		budgets, err := m.budgetService.List(ctx, m.Owner, budget.ListFilter{})
		return loadBudgetsMsg{budgets: budgets, err: err}
	}
}

type budgetSaveMsg struct {
	status string
	err    error
}

func (m BudgetsModel) saveCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		limit, err := decimal.NewFromString(strings.TrimSpace(f.limit))
		if err != nil {
			return budgetSaveMsg{err: errors.New("limit must be a number")}
		}

		month, _ := strconv.Atoi(strings.TrimSpace(f.month))
		year, _ := strconv.Atoi(strings.TrimSpace(f.year))

		ctx, cancel := DbCtx()
		defer cancel()

		_, err = m.budgetService.Create(ctx, m.Owner, budget.Params{
			Category: f.category,
			Limit:    limit,
			Month:    month,
			Year:     year,
		})
		if err != nil {
			return budgetSaveMsg{err: err}
		}

		return budgetSaveMsg{status: "Budget added."}
	}
}

func (m BudgetsModel) deleteCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.budgetService.Delete(ctx, m.Owner, id); err != nil {
			return budgetSaveMsg{err: err}
		}

		return budgetSaveMsg{status: "Budget deleted."}
	}
}
