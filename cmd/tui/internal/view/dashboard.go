package view

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/dashboard"
)

type DashboardModel struct {
	CommonModel
	dashboardService *dashboard.Service

	summary dashboard.Summary
	loading bool
	err     error
}

func NewDashboardModel(owner uuid.UUID, svc *dashboard.Service) DashboardModel {
	return DashboardModel{
		CommonModel:      CommonModel{Owner: owner},
		dashboardService: svc,
		loading:          true,
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSummaryMsg:
		m.loading = false
		m.summary = msg.summary
		m.err = msg.err

		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %s\n\n(Esc to go back)", errorText(m.err)))
	}

	label := lipgloss.NewStyle().Width(20).Faint(true)

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Dashboard") + "\n\n")
	fmt.Fprintf(&b, "%s%s\n", label.Render("Total balance"), FormatAmount(m.summary.TotalBalance))
	fmt.Fprintf(&b, "%s%s\n", label.Render("Income this month"), FormatAmount(m.summary.MonthlyIncome))
	fmt.Fprintf(&b, "%s%s\n", label.Render("Spent this month"), FormatAmount(m.summary.MonthlyExpenses))

	if len(m.summary.SpendingByCategory) > 0 {
		b.WriteString("\nSpending by category\n")

		for _, category := range slices.Sorted(maps.Keys(m.summary.SpendingByCategory)) {
			fmt.Fprintf(&b, "  %s%s\n", label.Render(category), FormatAmount(m.summary.SpendingByCategory[category]))
		}
	}

	b.WriteString("\nRecent transactions\n")

	if len(m.summary.Recent) == 0 {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("  none yet") + "\n")
	}

	for _, tx := range m.summary.Recent {
		fmt.Fprintf(&b, "  %s  %-7s  %10s  %s\n", FormatDate(tx.Date), tx.Type, FormatAmount(tx.Amount), tx.Category)
	}

	b.WriteString("\n(r to refresh, Esc to go back)")

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

type loadSummaryMsg struct {
	summary dashboard.Summary
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summary, err := m.dashboardService.Summary(ctx, m.Owner)
		return loadSummaryMsg{summary: summary, err: err}
	}
}
