package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/matching"
	"github.com/smartledger/smartledger/internal/transaction"
)

type txState int

const (
	txStateBrowse txState = iota
	txStateEdit
)

var (
	typeFilterLabels = []string{"All", "Income", "Expense"}
	periodFilters    = []Timeframe{TimeframeAll, TimeframeThisMonth, TimeframeLastMonth, TimeframeLast90Days}
)

// txFields backs the add/edit form. It lives behind a pointer so the huh
// bindings survive model copies.
type txFields struct {
	id          uuid.UUID
	kind        transaction.Type
	category    string
	amount      string
	description string
	date        string
}

type TransactionsModel struct {
	CommonModel
	txService       *transaction.Service
	matchingService *matching.Service

	state  txState
	table  table.Model
	txs    []*transaction.Transaction
	form   *huh.Form
	fields *txFields

	typeFilterIdx   int
	periodFilterIdx int

	filter  transaction.ListFilter
	loading bool
	err     error
	status  string
}

func NewTransactionsModel(owner uuid.UUID, txSvc *transaction.Service, matchSvc *matching.Service) TransactionsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 8},
		{Title: "Category", Width: 16},
		{Title: "Amount", Width: 12},
		{Title: "Description", Width: 40},
	}

	return TransactionsModel{
		CommonModel:     CommonModel{Owner: owner},
		txService:       txSvc,
		matchingService: matchSvc,
		table:           newTable(columns),
		loading:         true,
	}
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
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

	return t
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case txSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %s", errorText(msg.err))
		}

		m.state = txStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == txStateEdit {
		return m.updateEdit(msg)
	}

	return m.updateBrowse(msg)
}

func (m TransactionsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "a":
			return m.enterEditMode(nil)
		case "e":
			if tx := m.selected(); tx != nil {
				return m.enterEditMode(tx)
			}

			return m, nil
		case "d":
			if tx := m.selected(); tx != nil {
				return m, m.deleteCmd(tx)
			}

			return m, nil
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % len(typeFilterLabels)
			m.applyFilter()

			return m, m.loadTxsCmd()
		case "p":
			m.periodFilterIdx = (m.periodFilterIdx + 1) % len(periodFilters)
			m.applyFilter()

			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

// enterEditMode opens the form for tx, or for a new transaction when tx is nil.
func (m TransactionsModel) enterEditMode(tx *transaction.Transaction) (tea.Model, tea.Cmd) {
	f := &txFields{
		kind: transaction.TypeExpense,
		date: FormatDate(time.Now()),
	}

	if tx != nil {
		f.id = tx.ID
		f.kind = tx.Type
		f.category = tx.Category
		f.amount = FormatAmount(tx.Amount)
		f.description = tx.Description
		f.date = FormatDate(tx.Date)
	}

	m.fields = f
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Type]().
				Title("Type").
				Options(
					huh.NewOption("Expense", transaction.TypeExpense),
					huh.NewOption("Income", transaction.TypeIncome),
				).
				Value(&f.kind),

			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&f.amount).
				Validate(validateAmount),

			huh.NewInput().
				Title("Description").
				Value(&f.description),

			huh.NewInput().
				Title("Category").
				Description("Leave empty to use a matching rule").
				Value(&f.category),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&f.date).
				Validate(validateDate),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = txStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("amount must be a number")
	}

	if !d.IsPositive() {
		return errors.New("amount must be greater than zero")
	}

	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return errors.New("date must be formatted YYYY-MM-DD")
	}

	return nil
}

func (m TransactionsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateBrowse
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

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %s\n\n(Esc to go back)", errorText(m.err)))
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [p] Period: %s",
		activeStyle(typeFilterLabels[m.typeFilterIdx]),
		activeStyle(periodFilters[m.periodFilterIdx].String()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().Faint(true).Render("a: add | e: edit | d: delete | r: refresh | Esc: back"),
	)

	if m.state == txStateEdit && m.form != nil {
		title := "New Transaction"
		if m.fields.id != uuid.Nil {
			title = "Edit Transaction"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *TransactionsModel) applyFilter() {
	switch m.typeFilterIdx {
	case 1:
		m.filter.Type = new(transaction.TypeIncome)
	case 2:
		m.filter.Type = new(transaction.TypeExpense)
	default:
		m.filter.Type = nil
	}

	period := timeframeFields{frame: periodFilters[m.periodFilterIdx]}
	_ = period.apply(&m.filter, time.Now()) // presets always resolve
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Type),
			tx.Category,
			FormatAmount(tx.Amount),
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, m.Owner, filter)
		return loadTxsMsg{txs: txs, err: err}
	}
}

type txSaveMsg struct {
	status string
	err    error
}

func (m TransactionsModel) saveCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
		if err != nil {
			return txSaveMsg{err: err}
		}

		date, err := time.Parse(time.DateOnly, strings.TrimSpace(f.date))
		if err != nil {
			return txSaveMsg{err: err}
		}

		params := transaction.CreateParams{
			Amount:      amount,
			Type:        f.kind,
			Category:    f.category,
			Description: f.description,
			Date:        date,
		}

		if strings.TrimSpace(params.Category) == "" {
			category, err := m.matchingService.Suggest(ctx, m.Owner, params.Description)
			if err != nil {
				return txSaveMsg{err: err}
			}

			params.Category = category
		}

		if f.id == uuid.Nil {
			if _, err := m.txService.Create(ctx, m.Owner, params); err != nil {
				return txSaveMsg{err: err}
			}

			return txSaveMsg{status: "Transaction added."}
		}

		if _, err := m.txService.Update(ctx, m.Owner, f.id, params); err != nil {
			return txSaveMsg{err: err}
		}

		return txSaveMsg{status: "Transaction updated."}
	}
}

func (m TransactionsModel) deleteCmd(tx *transaction.Transaction) tea.Cmd {
	id := tx.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, m.Owner, id); err != nil {
			return txSaveMsg{err: err}
		}

		return txSaveMsg{status: "Transaction deleted."}
	}
}
