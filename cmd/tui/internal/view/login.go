package view

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/user"
)

const (
	modeLogin    = "login"
	modeRegister = "register"
)

// LoggedInMsg is emitted once the user has signed in or registered.
type LoggedInMsg struct {
	User *user.User
}

type loginFields struct {
	mode     string
	email    string
	password string
	fullName string
}

type LoginModel struct {
	userService *user.Service

	fields *loginFields
	form   *huh.Form
	busy   bool
	err    error
}

func NewLoginModel(svc *user.Service) LoginModel {
	m := LoginModel{
		userService: svc,
		fields:      &loginFields{mode: modeLogin},
	}
	m.form = m.buildForm()

	return m
}

func (m LoginModel) buildForm() *huh.Form {
	f := m.fields

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("SmartLedger").
				Options(
					huh.NewOption("Sign in", modeLogin),
					huh.NewOption("Create account", modeRegister),
				).
				Value(&f.mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Full name").
				Value(&f.fullName).
				Validate(huh.ValidateNotEmpty()),
		).WithHideFunc(func() bool { return f.mode != modeRegister }),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&f.email).
				Validate(huh.ValidateNotEmpty()),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(huh.ValidateMinLength(6)),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(loginResultMsg); ok {
		m.busy = false
		if res.err != nil {
			m.err = res.err
			m.fields.password = ""
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{User: res.user} }
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true
	m.err = nil

	return m, m.submitCmd()
}

func (m LoginModel) View() string {
	if m.busy {
		return lipgloss.NewStyle().Padding(2).Render("Signing in...")
	}

	content := m.form.View()
	if m.err != nil {
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render(fmt.Sprintf("Error: %s", errorText(m.err))) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type loginResultMsg struct {
	user *user.User
	err  error
}

func (m LoginModel) submitCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var (
			session *user.Session
			err     error
		)

		if f.mode == modeRegister {
			session, err = m.userService.Register(ctx, user.RegisterParams{
				Email:    f.email,
				Password: f.password,
				FullName: f.fullName,
			})
		} else {
			session, err = m.userService.Login(ctx, f.email, f.password)
		}

		if err != nil {
			return loginResultMsg{err: err}
		}

		return loginResultMsg{user: session.User}
	}
}

// errorText prefers the client-facing message of a classified error.
func errorText(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return apperr.Message(err)
	}

	return err.Error()
}
