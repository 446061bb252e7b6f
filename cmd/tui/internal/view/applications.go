package view

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/catalog"
	"github.com/MrJamesThe3rd/bursar/internal/report"
	"github.com/MrJamesThe3rd/bursar/internal/user"
)

type applicationsState int

const (
	applicationsStateBrowse applicationsState = iota
	applicationsStateAction
)

// actionDraft is bound by the transition form.
type actionDraft struct {
	remarks string
	amount  string
}

// ApplicationsModel lists the applications visible to the signed-in user.
// Students see their history; reviewers and finance get a queue they can act on.
type ApplicationsModel struct {
	CommonModel
	applications *application.Service
	reports      *report.Service
	viewer       *user.User

	state   applicationsState
	table   table.Model
	apps    []*application.Application
	summary *report.Summary

	// filters[0] is "all"; the rest cycle through single statuses.
	filters   [][]application.Status
	filterIdx int

	form   *huh.Form
	draft  *actionDraft
	action application.Action
	target *application.Application

	loading bool
	err     error
	status  string
}

func NewApplicationsModel(apps *application.Service, reports *report.Service, viewer *user.User) ApplicationsModel {
	columns := []table.Column{
		{Title: "URN", Width: 16},
		{Title: "Scholarship", Width: 34},
		{Title: "Amount", Width: 10},
		{Title: "Status", Width: 20},
		{Title: "Updated", Width: 16},
	}

	statuses := application.AllStatuses
	if scope := application.Scope(viewer.Role); scope != nil {
		statuses = scope
	}

	filters := [][]application.Status{nil}
	for _, s := range statuses {
		filters = append(filters, []application.Status{s})
	}

	m := ApplicationsModel{
		applications: apps,
		reports:      reports,
		viewer:       viewer,
		table:        newTable(columns),
		filters:      filters,
		loading:      true,
	}

	// Staff start on their work queue.
	switch viewer.Role {
	case application.RoleReviewer:
		m.filterIdx = m.filterIndex(application.StatusPendingSAG)
	case application.RoleFinance:
		m.filterIdx = m.filterIndex(application.StatusPendingFinance)
	}

	return m
}

func (m ApplicationsModel) filterIndex(s application.Status) int {
	for i, f := range m.filters {
		if slices.Equal(f, []application.Status{s}) {
			return i
		}
	}

	return 0
}

func (m ApplicationsModel) Title() string {
	if m.viewer.Role == application.RoleStudent {
		return "My Applications"
	}

	return "Application Queue"
}

func (m ApplicationsModel) ShortHelp() string {
	switch {
	case m.state == applicationsStateAction:
		return "Navigate form | Esc: cancel"
	case m.viewer.Role == application.RoleReviewer:
		return "Esc: back | a: approve | x: reject | s: status filter | r: refresh"
	case m.viewer.Role == application.RoleFinance:
		return "Esc: back | d: disburse | x: reject | s: status filter | r: refresh"
	}

	return "Esc: back | s: status filter | r: refresh"
}

func (m ApplicationsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ApplicationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadApplicationsMsg:
		m.loading = false
		m.err = msg.err
		m.apps = msg.apps
		m.summary = msg.summary
		m.refreshTable()

		return m, nil

	case transitionResultMsg:
		m.state = applicationsStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errorStyle(describeError(msg.err))
		} else {
			m.status = fmt.Sprintf("%s is now %s.", msg.app.URN, StatusLabel(msg.app.Status))
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 14)
		return m, nil
	}

	if m.state == applicationsStateAction {
		return m.updateAction(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.filterIdx = (m.filterIdx + 1) % len(m.filters)
			m.loading = true

			return m, m.loadCmd()
		case "a":
			return m.enterAction(application.ActionApprove)
		case "x":
			return m.enterAction(application.ActionReject)
		case "d":
			return m.enterAction(application.ActionDisburse)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ApplicationsModel) selected() *application.Application {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.apps) {
		return nil
	}

	return m.apps[idx]
}

func (m ApplicationsModel) enterAction(action application.Action) (tea.Model, tea.Cmd) {
	app := m.selected()
	if app == nil {
		return m, nil
	}

	if !slices.Contains(application.ActionsFor(app.Status, m.viewer.Role), action) {
		m.status = errorStyle(fmt.Sprintf("Cannot %s an application that is %s.", action, StatusLabel(app.Status)))
		return m, nil
	}

	m.target = app
	m.action = action
	m.draft = &actionDraft{amount: strconv.FormatInt(app.Amount, 10)}
	m.form = m.buildActionForm()
	m.state = applicationsStateAction
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func (m ApplicationsModel) buildActionForm() *huh.Form {
	remarks := huh.NewText().
		Title("Remarks").
		Value(&m.draft.remarks)

	switch m.action {
	case application.ActionReject:
		remarks = remarks.Description("Shown to the student").Validate(required("remarks"))
	case application.ActionDisburse:
		remarks = remarks.Placeholder(application.DefaultDisbursalRemarks)
	}

	fields := []huh.Field{remarks}

	if m.action == application.ActionDisburse {
		fields = append([]huh.Field{
			huh.NewInput().
				Title("Amount").
				Description(fmt.Sprintf("Awarded %s", FormatAmount(m.target.Amount))).
				Value(&m.draft.amount).
				Validate(func(s string) error {
					_, err := catalog.ParseAmount(s)
					return err
				}),
		}, fields...)
	}

	fields = append(fields, huh.NewConfirm().
		Title(fmt.Sprintf("%s %s?", capitalize(string(m.action)), m.target.URN)).
		Affirmative("Yes").
		Negative("No").
		Validate(func(ok bool) error {
			if !ok {
				return errors.New("press Esc to cancel")
			}
			return nil
		}))

	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(50).WithShowHelp(false)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

func (m ApplicationsModel) updateAction(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = applicationsStateBrowse
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

	return m, m.transitionCmd()
}

func (m ApplicationsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading applications...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	filterLabel := "All"
	if f := m.filters[m.filterIdx]; len(f) == 1 {
		filterLabel = string(f[0])
	}

	header := fmt.Sprintf("Filter: [s] Status: %s | %d applications", activeStyle(filterLabel), len(m.apps))

	parts := []string{lipgloss.NewStyle().PaddingBottom(1).Render(header)}
	if m.summary != nil {
		parts = append(parts, summaryPanel(m.summary))
	}

	body := boxed(m.table.View())

	side := ""
	if m.state == applicationsStateAction && m.form != nil {
		side = m.form.View()
	} else if app := m.selected(); app != nil {
		side = applicationPanel(app)
	}

	if side != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(52).
			Render(side))
	}

	parts = append(parts, body)

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func summaryPanel(sum *report.Summary) string {
	return lipgloss.NewStyle().PaddingBottom(1).Render(fmt.Sprintf(
		"Pending finance: %d (%s) | Paid: %d (%s) | Rejected: %d",
		sum.Counts[application.StatusPendingFinance], FormatAmount(sum.PendingFinanceTotal),
		sum.Counts[application.StatusPaid], FormatAmount(sum.DisbursedTotal),
		sum.Counts[application.StatusRejectedByFinance]+sum.Counts[application.StatusRejectedBySAG],
	))
}

func applicationPanel(app *application.Application) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n\n", lipgloss.NewStyle().Bold(true).Render(app.URN), app.ScholarshipTitle)
	fmt.Fprintf(&b, "Status:  %s\n", statusStyle(app.Status).Render(StatusLabel(app.Status)))
	fmt.Fprintf(&b, "Amount:  %s\n", FormatAmount(app.Amount))
	fmt.Fprintf(&b, "Student: %s <%s>\n", app.Form.FullName, app.Form.Email)
	fmt.Fprintf(&b, "Study:   %s, %s (GPA %s)\n", app.Form.Major, app.Form.University, app.Form.CurrentGPA)
	fmt.Fprintf(&b, "Applied: %s (%s)\n", FormatDate(app.AppliedDate), FormatAge(app.AppliedDate))

	if app.ReviewerRemarks != nil {
		fmt.Fprintf(&b, "\nReviewer: %s\n", *app.ReviewerRemarks)
	}

	if app.FinanceRemarks != nil {
		fmt.Fprintf(&b, "\nFinance: %s\n", *app.FinanceRemarks)
	}

	if app.PaymentReference != "" {
		fmt.Fprintf(&b, "\nPayment ref: %s\n", app.PaymentReference)
	}

	return b.String()
}

func describeError(err error) string {
	var (
		validation *application.ValidationError
		invalid    *application.InvalidTransitionError
		payment    *application.PaymentError
	)

	switch {
	case errors.As(err, &validation):
		return validation.Reason
	case errors.As(err, &invalid) && invalid.Reason == application.ReasonStale:
		return fmt.Sprintf("Someone else already moved this application (%s). Refreshed.", StatusLabel(invalid.From))
	case errors.As(err, &payment):
		return fmt.Sprintf("Payment failed, nothing was changed: %v", payment.Err)
	}

	return err.Error()
}

func (m *ApplicationsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.apps))
	for _, app := range m.apps {
		rows = append(rows, table.Row{
			app.URN,
			app.ScholarshipTitle,
			FormatAmount(app.Amount),
			string(app.Status),
			FormatAge(app.LastUpdated),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadApplicationsMsg struct {
	apps    []*application.Application
	summary *report.Summary
	err     error
}

func (m ApplicationsModel) listFilter() application.ListFilter {
	filter := application.ListFilter{
		Statuses: m.filters[m.filterIdx],
		Role:     m.viewer.Role,
	}

	if m.viewer.Role == application.RoleStudent {
		filter.StudentID = new(m.viewer.ID)
	}

	return filter
}

func (m ApplicationsModel) loadCmd() tea.Cmd {
	filter := m.listFilter()
	withSummary := m.viewer.Role == application.RoleFinance

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		apps, err := m.applications.List(ctx, filter)
		if err != nil {
			return loadApplicationsMsg{err: err}
		}

		msg := loadApplicationsMsg{apps: apps}

		if withSummary {
			msg.summary, msg.err = m.reports.Summary(ctx, application.ListFilter{Role: filter.Role})
		}

		return msg
	}
}

type transitionResultMsg struct {
	app *application.Application
	err error
}

func (m ApplicationsModel) transitionCmd() tea.Cmd {
	target := m.target
	draft := *m.draft
	action := m.action
	viewer := m.viewer

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		req := application.TransitionRequest{
			Action:         action,
			ActorRole:      viewer.Role,
			ActorID:        new(viewer.ID),
			Remarks:        draft.remarks,
			ExpectedStatus: new(target.Status),
		}

		if action == application.ActionDisburse {
			units, err := catalog.ParseAmount(draft.amount)
			if err != nil {
				return transitionResultMsg{err: err}
			}

			req.Amount = new(units)
		}

		app, err := m.applications.ApplyTransition(ctx, target.ID, req)

		return transitionResultMsg{app: app, err: err}
	}
}
