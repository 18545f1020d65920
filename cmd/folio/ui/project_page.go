package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"craftfolio/internal/portfolio"
)

type projectOpenedMsg struct {
	seq     int
	project portfolio.Project
	editor  *portfolio.GalleryEditor
	summary string
}

type galleryChangedMsg struct{ seq int }

type uploadDoneMsg struct {
	seq   int
	count int
}

type projectInputMode int

const (
	modeBrowse projectInputMode = iota
	modeCaption
	modeStagePath
)

// projectModel shows one project: summary rendered as markdown, the gallery
// with inline caption editing, and the pending upload queue.
type projectModel struct {
	svc    Services
	styles Styles

	seq     int
	loading bool
	busy    bool
	project portfolio.Project
	editor  *portfolio.GalleryEditor
	summary string

	cursor int
	mode   projectInputMode
	input  textinput.Model
	queue  portfolio.UploadQueue
	notice string

	width  int
	height int
}

func newProjectModel(svc Services, styles Styles) projectModel {
	input := textinput.New()
	return projectModel{svc: svc, styles: styles, input: input}
}

func (m *projectModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m projectModel) typing() bool { return m.mode != modeBrowse }

// open fetches the detail and gallery in one go.
func (m *projectModel) open(p portfolio.Project) tea.Cmd {
	m.seq++
	m.loading = true
	m.cursor = 0
	m.mode = modeBrowse
	m.notice = ""
	m.queue.Clear()
	seq := m.seq
	svc := m.svc
	width := m.width
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		project, images, err := svc.Projects.Detail(ctx, p.ID)
		if err != nil {
			return errMsg{err: err}
		}
		editor := portfolio.NewGalleryEditor(svc.Images, project.ID)
		editor.Reset(images)
		return projectOpenedMsg{
			seq:     seq,
			project: project,
			editor:  editor,
			summary: renderMarkdown(project.Summary, width),
		}
	}
}

// renderMarkdown formats the summary for the terminal; on failure the raw
// text shows instead.
func renderMarkdown(text string, width int) string {
	if text == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width-4, 100)),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (m projectModel) Update(msg tea.Msg) (projectModel, tea.Cmd) {
	switch msg := msg.(type) {
	case projectOpenedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.project = msg.project
		m.editor = msg.editor
		m.summary = msg.summary
		return m, nil

	case galleryChangedMsg:
		if msg.seq == m.seq {
			m.busy = false
			if m.editor != nil && m.cursor >= len(m.editor.Entries()) {
				m.cursor = 0
			}
		}
		return m, nil

	case uploadDoneMsg:
		if msg.seq == m.seq {
			m.busy = false
			// The command worked on a snapshot; the live queue clears here,
			// on the model Update actually keeps.
			m.queue.Clear()
			m.notice = fmt.Sprintf("Uploaded %d image(s)", msg.count)
			return m, m.reloadGallery()
		}
		return m, nil

	case errMsg:
		m.busy = false
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m projectModel) handleKey(msg tea.KeyMsg) (projectModel, tea.Cmd) {
	if m.mode != modeBrowse {
		switch msg.String() {
		case "esc":
			m.mode = modeBrowse
			m.input.Blur()
			return m, nil
		case "enter":
			return m.commitInput()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.editor == nil || m.busy {
		return m, nil
	}
	entries := m.editor.Entries()

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(entries)-1 {
			m.cursor++
		}
	case "e":
		if m.cursor < len(entries) {
			m.mode = modeCaption
			m.input.Placeholder = "caption"
			m.input.SetValue(entries[m.cursor].Draft)
			return m, m.input.Focus()
		}
	case "d":
		if m.cursor < len(entries) {
			return m, m.requestDelete()
		}
	case "a":
		m.mode = modeStagePath
		m.input.Placeholder = "path to image file"
		m.input.SetValue("")
		return m, m.input.Focus()
	case "u":
		if m.queue.Len() > 0 {
			return m, m.upload()
		}
	}
	return m, nil
}

func (m projectModel) commitInput() (projectModel, tea.Cmd) {
	value := m.input.Value()
	mode := m.mode
	m.mode = modeBrowse
	m.input.Blur()

	switch mode {
	case modeCaption:
		m.editor.SetDraft(m.cursor, value)
		return m, m.saveCaption()
	case modeStagePath:
		content, err := os.ReadFile(value)
		if err != nil {
			return m, func() tea.Msg { return errMsg{err: fmt.Errorf("read %s: %w", value, err)} }
		}
		m.queue.Add(value, content)
		m.notice = fmt.Sprintf("%d image(s) staged", m.queue.Len())
	}
	return m, nil
}

func (m *projectModel) saveCaption() tea.Cmd {
	m.busy = true
	seq := m.seq
	editor := m.editor
	index := m.cursor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := editor.SaveCaption(ctx, index); err != nil {
			return errMsg{err: err}
		}
		return galleryChangedMsg{seq: seq}
	}
}

// requestDelete routes through the shell's confirm modal; the destructive
// call only happens after an explicit yes. Declining must leave the page
// usable, so no busy flag is set here.
func (m *projectModel) requestDelete() tea.Cmd {
	seq := m.seq
	editor := m.editor
	index := m.cursor
	action := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		confirmed := portfolio.ConfirmFunc(func(string) bool { return true })
		if err := editor.Delete(ctx, index, confirmed); err != nil {
			return errMsg{err: err}
		}
		return galleryChangedMsg{seq: seq}
	}
	return func() tea.Msg {
		return confirmRequestMsg{prompt: "Delete this image?", action: action}
	}
}

func (m *projectModel) reloadGallery() tea.Cmd {
	seq := m.seq
	editor := m.editor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := editor.Load(ctx); err != nil {
			return errMsg{err: err}
		}
		return galleryChangedMsg{seq: seq}
	}
}

func (m *projectModel) upload() tea.Cmd {
	m.busy = true
	seq := m.seq
	svc := m.svc.Images
	projectID := m.project.ID
	// The command gets a snapshot: bubbletea copies the model, so a pointer
	// into it would go stale. Success clears the live queue in Update.
	staged := m.queue
	count := staged.Len()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := svc.Upload(ctx, projectID, &staged); err != nil {
			return errMsg{err: err}
		}
		return uploadDoneMsg{seq: seq, count: count}
	}
}

func (m projectModel) View() string {
	if m.loading {
		return m.styles.Muted.Render("Loading…")
	}

	p := m.project
	body := m.styles.Title.Render(p.Title) + "\n"

	meta := []string{}
	if p.Category != "" {
		meta = append(meta, p.Category)
	}
	if p.Location != "" {
		meta = append(meta, p.Location)
	}
	if p.Budget > 0 {
		meta = append(meta, fmt.Sprintf("$%.0f", float64(p.Budget)))
	}
	if p.SquareFeet > 0 {
		meta = append(meta, fmt.Sprintf("%.0f sqf", float64(p.SquareFeet)))
	}
	if len(meta) > 0 {
		body += m.styles.Muted.Render(strings.Join(meta, "  ·  ")) + "\n"
	}
	if m.summary != "" {
		body += m.summary + "\n"
	}
	if !p.CoverImage.IsZero() {
		body += m.styles.Muted.Render("cover: "+m.svc.Media.RefURL(p.CoverImage)) + "\n"
	}

	body += "\n" + m.styles.Label.Render("Gallery") + "\n"
	if m.editor == nil || len(m.editor.Entries()) == 0 {
		body += m.styles.Muted.Render("No images.") + "\n"
	} else {
		for i, entry := range m.editor.Entries() {
			line := m.svc.Media.RefURL(entry.Image.Ref)
			if entry.Draft != "" {
				line += m.styles.Muted.Render("  " + entry.Draft)
			}
			if entry.Saving {
				line += "  " + m.styles.Warning.Render("saving…")
			}
			if i == m.cursor {
				line = m.styles.Prompt.Render("> ") + line
			} else {
				line = "  " + line
			}
			body += line + "\n"
		}
	}

	if m.queue.Len() > 0 {
		body += "\n" + m.styles.Label.Render(fmt.Sprintf("Pending upload (%d)", m.queue.Len())) + "\n"
		for _, item := range m.queue.Items() {
			body += m.styles.Muted.Render("  "+item.Name) + "\n"
		}
	}

	if m.mode != modeBrowse {
		body += "\n" + m.input.View() + "\n"
	}
	if m.notice != "" {
		body += "\n" + m.styles.Success.Render(m.notice)
	}

	body += "\n" + m.styles.Muted.Render("e: caption   d: delete   a: stage file   u: upload   1: back")
	return body
}
