package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"craftfolio/internal/draft"
	"craftfolio/internal/portfolio"
)

type projectsLoadedMsg struct {
	seq      int
	projects []portfolio.Project
}

type projectCreatedMsg struct {
	seq     int
	project portfolio.Project
}

const (
	createTitle = iota
	createSummary
	createCategory
	createLocation
	createBudget
	createSqf
	createHighlights
	createFieldCount
)

var createLabels = [createFieldCount]string{
	"Title", "Summary", "Category", "Location", "Budget", "Square feet", "Highlights",
}

// dashboardModel lists the user's projects plus the local draft, and hosts
// the inline create form. The draft row renders read-only and cannot be
// opened.
type dashboardModel struct {
	svc    Services
	styles Styles

	seq      int
	loading  bool
	busy     bool
	projects []portfolio.Project
	draft    *draft.Draft
	cursor   int

	creating bool
	inputs   [createFieldCount]textinput.Model
	focus    int
	isPublic bool
	notice   string

	width  int
	height int
}

func newDashboardModel(svc Services, styles Styles) dashboardModel {
	m := dashboardModel{svc: svc, styles: styles, isPublic: true}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = createLabels[i]
		m.inputs[i] = in
	}
	return m
}

func (m dashboardModel) typing() bool { return m.creating }

func (m *dashboardModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// load fetches the project list. The sequence number makes an answer from a
// superseded load fall on the floor instead of clobbering newer state.
func (m *dashboardModel) load() tea.Cmd {
	m.seq++
	m.loading = true
	seq := m.seq
	svc := m.svc.Projects
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		projects, err := svc.List(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return projectsLoadedMsg{seq: seq, projects: projects}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		username := m.svc.Session.Current().Username
		m.projects = portfolio.OwnedOrAll(msg.projects, username)
		if d, ok := m.svc.Drafts.Load(); ok {
			m.draft = &d
		} else {
			m.draft = nil
		}
		if m.cursor >= len(m.projects) {
			m.cursor = 0
		}
		return m, nil

	case projectCreatedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.busy = false
		m.creating = false
		m.notice = fmt.Sprintf("Created %q", msg.project.Title)
		m.clearForm()
		// The new project shows immediately; the reload replaces the list
		// with server truth when it lands.
		m.projects = append([]portfolio.Project{msg.project}, m.projects...)
		return m, m.load()

	case errMsg:
		m.busy = false
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	if m.creating {
		switch msg.String() {
		case "esc":
			m.creating = false
			m.inputs[m.focus].Blur()
			return m, nil
		case "tab", "shift+tab":
			step := 1
			if msg.String() == "shift+tab" {
				step = createFieldCount - 1
			}
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + step) % createFieldCount
			return m, m.inputs[m.focus].Focus()
		case "ctrl+p":
			m.isPublic = !m.isPublic
			return m, nil
		case "enter":
			if m.busy {
				return m, nil
			}
			return m, m.submitCreate()
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.projects)-1 {
			m.cursor++
		}
	case "n":
		m.creating = true
		m.notice = ""
		m.focus = 0
		return m, m.inputs[0].Focus()
	case "r":
		return m, m.load()
	case "enter":
		if m.cursor < len(m.projects) {
			project := m.projects[m.cursor]
			return m, func() tea.Msg { return openProjectMsg{project: project} }
		}
	}
	return m, nil
}

func (m *dashboardModel) clearForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.isPublic = true
	m.focus = 0
}

func (m *dashboardModel) submitCreate() tea.Cmd {
	m.busy = true
	seq := m.seq
	svc := m.svc.Projects
	form := portfolio.CreateProject{
		Title:      m.inputs[createTitle].Value(),
		Summary:    m.inputs[createSummary].Value(),
		Category:   m.inputs[createCategory].Value(),
		Location:   m.inputs[createLocation].Value(),
		Budget:     m.inputs[createBudget].Value(),
		SquareFeet: m.inputs[createSqf].Value(),
		Highlights: m.inputs[createHighlights].Value(),
		IsPublic:   m.isPublic,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		created, err := svc.Create(ctx, form, nil)
		if err != nil {
			return errMsg{err: err}
		}
		return projectCreatedMsg{seq: seq, project: created}
	}
}

func (m dashboardModel) View() string {
	body := m.styles.Title.Render("Projects") + "\n"
	if m.loading {
		body += m.styles.Muted.Render("Loading…")
		return body
	}

	if m.creating {
		body += m.styles.Label.Render("New project") + "\n"
		for i := range m.inputs {
			marker := "  "
			if i == m.focus {
				marker = m.styles.Prompt.Render("> ")
			}
			body += fmt.Sprintf("%s%s %s\n", marker, m.styles.Label.Render(createLabels[i]), m.inputs[i].View())
		}
		visibility := "public"
		if !m.isPublic {
			visibility = "private"
		}
		body += m.styles.Muted.Render("  visibility: "+visibility) + "\n"
		if m.busy {
			body += m.styles.Warning.Render("Creating…") + "\n"
		}
		body += "\n" + m.styles.Muted.Render("tab: next field   ctrl+p: toggle visibility   enter: create   esc: cancel")
		return body
	}

	if len(m.projects) == 0 && m.draft == nil {
		body += m.styles.Muted.Render("No projects yet.") + "\n"
		body += "\n" + m.styles.Muted.Render("n: new project   r: refresh")
		return body
	}

	for i, p := range m.projects {
		line := p.Title
		if p.Category != "" {
			line += m.styles.Muted.Render("  " + p.Category)
		}
		if p.IsJobPosting {
			line += "  " + m.styles.Warning.Render("job posting")
		}
		if !p.IsPublic {
			line += "  " + m.styles.Muted.Render("private")
		}
		if i == m.cursor {
			line = m.styles.Prompt.Render("> ") + line
		} else {
			line = "  " + line
		}
		body += line + "\n"
	}

	if m.draft != nil {
		title := m.draft.Title
		if title == "" {
			title = "(untitled)"
		}
		body += "\n" + m.styles.Muted.Render(fmt.Sprintf("  %s  draft, not submitted", title)) + "\n"
	}

	if m.notice != "" {
		body += "\n" + m.styles.Success.Render(m.notice)
	}
	body += "\n" + m.styles.Muted.Render("enter: open   n: new project   r: refresh")
	return body
}
