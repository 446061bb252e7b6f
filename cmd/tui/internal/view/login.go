package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bursar/internal/user"
)

type credentials struct {
	email    string
	password string
}

type LoginModel struct {
	CommonModel
	users *user.Service

	form  *huh.Form
	// Bound by the form; a pointer so model copies share it.
	creds *credentials

	loading bool
	err     error
}

func NewLoginModel(users *user.Service) LoginModel {
	m := LoginModel{users: users, creds: &credentials{}}
	m.form = m.buildForm()

	return m
}

func (m LoginModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Placeholder("student@bursar.local").
				Value(&m.creds.email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter an email address")
					}
					return nil
				}),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.creds.password),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Sign in" }
func (m LoginModel) ShortHelp() string { return "Enter: next | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		m.loading = false
		if result.err != nil {
			m.err = result.err
			m.creds.password = ""
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{User: result.user} }
	}

	if m.loading {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.loading = true
	m.err = nil

	return m, m.loginCmd(m.creds.email, m.creds.password)
}

func (m LoginModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Bursar Scholarship Portal")

	body := m.form.View()
	if m.loading {
		body = "Signing in..."
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, "", body)
	if m.err != nil {
		content += "\n" + errorStyle(m.err.Error())
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

type loginResultMsg struct {
	user *user.User
	err  error
}

func (m LoginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.users.Login(ctx, email, password)

		return loginResultMsg{user: u, err: err}
	}
}
