package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/bursar/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/bootstrap"
	"github.com/MrJamesThe3rd/bursar/internal/config"
	"github.com/MrJamesThe3rd/bursar/internal/user"
)

type View int

const (
	ViewLogin View = iota
	ViewMenu
	ViewScholarships
	ViewApplications
	ViewImport
	ViewExport
)

type menuItem struct {
	label string
	view  View
}

var menus = map[application.Role][]menuItem{
	application.RoleStudent: {
		{label: "Browse Scholarships", view: ViewScholarships},
		{label: "My Applications", view: ViewApplications},
	},
	application.RoleReviewer: {
		{label: "Review Queue", view: ViewApplications},
		{label: "Import Scholarship Catalog", view: ViewImport},
		{label: "Export Disbursements", view: ViewExport},
	},
	application.RoleFinance: {
		{label: "Payment Queue", view: ViewApplications},
		{label: "Export Disbursements", view: ViewExport},
	},
}

type model struct {
	services *bootstrap.Services
	user     *user.User

	currentView View
	active      view.View
	loginView   view.LoginModel
}

func initialModel(services *bootstrap.Services) model {
	return model{
		services:    services,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(services.Users),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) open(v View) (tea.Model, tea.Cmd) {
	switch v {
	case ViewScholarships:
		m.active = view.NewScholarshipsModel(m.services.Catalog, m.services.Applications, m.user)
	case ViewApplications:
		m.active = view.NewApplicationsModel(m.services.Applications, m.services.Reports, m.user)
	case ViewImport:
		m.active = view.NewImportModel(m.services.Catalog)
	case ViewExport:
		m.active = view.NewExportModel(m.services.Reports, m.user.Role)
	default:
		return m, nil
	}

	m.currentView = v

	return m, m.active.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch key := msg.String(); key {
			case "q":
				return m, tea.Quit
			case "l":
				m.user = nil
				m.currentView = ViewLogin
				m.loginView = view.NewLoginModel(m.services.Users)

				return m, m.loginView.Init()
			default:
				items := menus[m.user.Role]
				for i, item := range items {
					if key == fmt.Sprint(i+1) {
						return m.open(item.view)
					}
				}
			}

			return m, nil
		}
	case view.LoggedInMsg:
		m.user = msg.User
		m.currentView = ViewMenu
		slog.Info("signed in", "user_id", msg.User.ID, "role", msg.User.Role)

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewMenu:
	default:
		if m.active != nil {
			var newModel tea.Model
			newModel, cmd = m.active.Update(msg)
			m.active = newModel.(view.View)
		}
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return m.menuView()
	}

	if m.active == nil {
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(m.active.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(m.active.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, m.active.View(), help)
}

func (m model) menuView() string {
	s := fmt.Sprintf("Bursar - signed in as %s (%s)\n\n", m.user.FullName, m.user.Role)

	for i, item := range menus[m.user.Role] {
		s += fmt.Sprintf("%d. %s\n", i+1, item.label)
	}

	s += "\nl. Sign out\nq. Quit"

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := tea.LogToFile("bursar-tui.log", "bursar")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	services, err := bootstrap.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start services", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	p := tea.NewProgram(initialModel(services), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
