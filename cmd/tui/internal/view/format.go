package view

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/catalog"
)

const dbTimeout = 5 * time.Second

func FormatAmount(units int64) string {
	return catalog.FormatAmount(units)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format(time.DateOnly)
}

// FormatAge renders t relative to now, e.g. "3 days ago".
func FormatAge(t time.Time) string {
	return humanize.Time(t)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

var statusColors = map[application.Status]lipgloss.Color{
	application.StatusPendingSAG:        lipgloss.Color("214"),
	application.StatusApprovedBySAG:     lipgloss.Color("39"),
	application.StatusPendingFinance:    lipgloss.Color("39"),
	application.StatusPaid:              lipgloss.Color("46"),
	application.StatusRejectedBySAG:     lipgloss.Color("196"),
	application.StatusRejectedByFinance: lipgloss.Color("196"),
}

// StatusLabel is the human name of a status, as shown to students.
func StatusLabel(s application.Status) string {
	switch s {
	case application.StatusPendingSAG:
		return "Under review"
	case application.StatusApprovedBySAG:
		return "Approved"
	case application.StatusPendingFinance:
		return "Awaiting payment"
	case application.StatusPaid:
		return "Paid"
	case application.StatusRejectedBySAG, application.StatusRejectedByFinance:
		return "Rejected"
	}

	return string(s)
}

func statusStyle(s application.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(statusColors[s])
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
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

func boxed(s string) string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(s)
}
