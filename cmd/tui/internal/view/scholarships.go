package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/catalog"
	"github.com/MrJamesThe3rd/bursar/internal/user"
)

type scholarshipState int

const (
	scholarshipStateBrowse scholarshipState = iota
	scholarshipStateApply
)

// applyDraft is bound by the apply form.
type applyDraft struct {
	form      application.Form
	documents []string
}

// ScholarshipsModel lets a student browse the catalog and apply.
type ScholarshipsModel struct {
	CommonModel
	catalog      *catalog.Service
	applications *application.Service
	student      *user.User

	state        scholarshipState
	table        table.Model
	scholarships []*catalog.Scholarship

	form    *huh.Form
	draft   *applyDraft
	applyTo *catalog.Scholarship

	loading bool
	err     error
	status  string
}

func NewScholarshipsModel(cat *catalog.Service, apps *application.Service, student *user.User) ScholarshipsModel {
	columns := []table.Column{
		{Title: "Scholarship", Width: 38},
		{Title: "Category", Width: 18},
		{Title: "Award", Width: 10},
		{Title: "Deadline", Width: 12},
		{Title: "", Width: 8},
	}

	return ScholarshipsModel{
		catalog:      cat,
		applications: apps,
		student:      student,
		table:        newTable(columns),
		loading:      true,
	}
}

func (m ScholarshipsModel) Title() string { return "Scholarships" }
func (m ScholarshipsModel) ShortHelp() string {
	if m.state == scholarshipStateApply {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | Enter: apply | r: refresh"
}

func (m ScholarshipsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ScholarshipsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadScholarshipsMsg:
		m.loading = false
		m.err = msg.err
		m.scholarships = msg.scholarships
		m.refreshTable()

		return m, nil

	case applyResultMsg:
		m.state = scholarshipStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errorStyle(fmt.Sprintf("Could not submit: %v", msg.err))
			return m, nil
		}

		m.status = fmt.Sprintf("Submitted %s for %s.", msg.app.URN, msg.app.ScholarshipTitle)

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == scholarshipStateApply {
		return m.updateApply(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			return m.enterApply()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ScholarshipsModel) enterApply() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.scholarships) {
		return m, nil
	}

	sch := m.scholarships[idx]
	if sch.Closed(time.Now()) {
		m.status = errorStyle(fmt.Sprintf("Applications for %s are closed.", sch.Title))
		return m, nil
	}

	m.applyTo = sch
	m.draft = &applyDraft{
		form: application.Form{
			FullName: m.student.FullName,
			Email:    m.student.Email,
			Phone:    m.student.ContactNumber,
			Address:  m.student.Address,
		},
		documents: make([]string, len(sch.RequiredDocuments)),
	}
	m.form = m.buildApplyForm(sch)
	m.state = scholarshipStateApply
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func (m ScholarshipsModel) buildApplyForm(sch *catalog.Scholarship) *huh.Form {
	f := &m.draft.form

	docInputs := make([]huh.Field, 0, len(sch.RequiredDocuments))
	for i, name := range sch.RequiredDocuments {
		docInputs = append(docInputs, huh.NewInput().
			Title(name).
			Placeholder("path or link to the file").
			Value(&m.draft.documents[i]).
			Validate(required(name)))
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().Title("Full name").Value(&f.FullName).Validate(required("full name")),
			huh.NewInput().Title("Email").Value(&f.Email).Validate(required("email")),
			huh.NewInput().Title("Phone").Value(&f.Phone),
			huh.NewInput().Title("Date of birth").Placeholder("YYYY-MM-DD").Value(&f.DateOfBirth),
		).Title(sch.Title),
		huh.NewGroup(
			huh.NewInput().Title("University").Value(&f.University).Validate(required("university")),
			huh.NewInput().Title("Major").Value(&f.Major).Validate(required("major")),
			huh.NewInput().Title("Current GPA").Value(&f.CurrentGPA).Validate(required("GPA")),
			huh.NewInput().Title("Expected graduation").Value(&f.ExpectedGraduation),
		).Title("Academics"),
		huh.NewGroup(
			huh.NewText().Title("Personal statement").Value(&f.PersonalStatement).Validate(required("personal statement")),
			huh.NewText().Title("Career goals").Value(&f.CareerGoals),
			huh.NewText().Title("Leadership and community service").Value(&f.LeadershipExperience),
		).Title("About you"),
	}

	if len(docInputs) > 0 {
		groups = append(groups, huh.NewGroup(docInputs...).Title("Required documents"))
	}

	return huh.NewForm(groups...).WithWidth(60).WithShowHelp(false)
}

func (m ScholarshipsModel) updateApply(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = scholarshipStateBrowse
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

	return m, m.applyCmd()
}

func (m ScholarshipsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading scholarships...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.state == scholarshipStateApply && m.form != nil {
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	content := boxed(m.table.View())

	idx := m.table.Cursor()
	if idx >= 0 && idx < len(m.scholarships) {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, scholarshipPanel(m.scholarships[idx]))
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func scholarshipPanel(s *catalog.Scholarship) string {
	docs := "none"
	if len(s.RequiredDocuments) > 0 {
		docs = "- " + strings.Join(s.RequiredDocuments, "\n- ")
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(50).
		Render(fmt.Sprintf("%s\n\n%s\n\nEligibility: %s\n\nDocuments:\n%s",
			lipgloss.NewStyle().Bold(true).Render(s.Title), s.Summary, s.Eligibility, docs))
}

func (m *ScholarshipsModel) refreshTable() {
	now := time.Now()

	rows := make([]table.Row, 0, len(m.scholarships))
	for _, s := range m.scholarships {
		state := "Open"
		if s.Closed(now) {
			state = "Closed"
		}

		rows = append(rows, table.Row{s.Title, s.Category, FormatAmount(s.Amount), FormatDate(s.Deadline), state})
	}

	m.table.SetRows(rows)
}

// Messages

type loadScholarshipsMsg struct {
	scholarships []*catalog.Scholarship
	err          error
}

func (m ScholarshipsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		scholarships, err := m.catalog.List(ctx, catalog.ListFilter{})

		return loadScholarshipsMsg{scholarships: scholarships, err: err}
	}
}

type applyResultMsg struct {
	app *application.Application
	err error
}

func (m ScholarshipsModel) applyCmd() tea.Cmd {
	sch := m.applyTo
	draft := m.draft
	studentID := m.student.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		docs := make(map[string]string, len(sch.RequiredDocuments))
		for i, name := range sch.RequiredDocuments {
			docs[name] = strings.TrimSpace(draft.documents[i])
		}

		app, err := m.applications.Create(ctx, application.CreateParams{
			ScholarshipID: sch.ID,
			StudentID:     studentID,
			Form:          draft.form,
			Documents:     docs,
		})

		return applyResultMsg{app: app, err: err}
	}
}
