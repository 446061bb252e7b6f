package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/bursar/internal/catalog"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStatePreview
	importStateImporting
	importStateResult
)

// ImportModel loads a catalog spreadsheet export, previews it and upserts it.
type ImportModel struct {
	CommonModel
	catalog *catalog.Service

	state       importState
	filePicker  filepicker.Model
	path        string
	parsed      []*catalog.Scholarship
	previewList list.Model

	status string
	err    error
}

func NewImportModel(cat *catalog.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		catalog:    cat,
		filePicker: fp,
	}
}

func (m ImportModel) Title() string { return "Import Scholarship Catalog" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Enter: import all | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			if msg.Type == tea.KeyEnter {
				m.state = importStateImporting
				m.status = fmt.Sprintf("Importing %d scholarships...", len(m.parsed))

				return m, m.confirmCmd()
			}

			var cmd tea.Cmd
			m.previewList, cmd = m.previewList.Update(msg)

			return m, cmd
		}

	case parseResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.scholarships) == 0 {
			m.state = importStateResult
			m.status = "The file has a header but no scholarships."

			return m, nil
		}

		m.parsed = msg.scholarships
		m.state = importStatePreview

		items := make([]list.Item, len(m.parsed))
		for i, s := range m.parsed {
			items[i] = scholarshipItem{s}
		}

		m.previewList = list.New(items, list.NewDefaultDelegate(), 80, 20)
		m.previewList.Title = fmt.Sprintf("%d scholarships in %s", len(items), m.path)
		m.previewList.SetShowStatusBar(false)
		m.previewList.SetFilteringEnabled(false)
		m.previewList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d scholarships.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.state = importStateImporting
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.parsed = nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a catalog CSV (title, amount, category, documents, deadline):\n\n" + m.filePicker.View(),
		)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.previewList.View())
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	}

	status := m.status
	if m.err != nil {
		status = errorStyle(status)
	}

	return lipgloss.NewStyle().Padding(2).Render(status + "\n\n(Esc to import another file)")
}

type scholarshipItem struct {
	s *catalog.Scholarship
}

func (i scholarshipItem) Title() string { return i.s.Title }

func (i scholarshipItem) Description() string {
	parts := []string{FormatAmount(i.s.Amount)}
	if i.s.Category != "" {
		parts = append(parts, i.s.Category)
	}

	if !i.s.Deadline.IsZero() {
		parts = append(parts, "closes "+FormatDate(i.s.Deadline))
	}

	return strings.Join(parts, " | ")
}

func (i scholarshipItem) FilterValue() string { return i.s.Title }

// Messages

type parseResultMsg struct {
	scholarships []*catalog.Scholarship
	err          error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parseResultMsg{err: err}
		}
		defer f.Close()

		scholarships, err := catalog.Parse(io.LimitReader(f, 10<<20))

		return parseResultMsg{scholarships: scholarships, err: err}
	}
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) confirmCmd() tea.Cmd {
	scholarships := m.parsed

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		if err := m.catalog.Seed(ctx, scholarships); err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(scholarships)}
	}
}
