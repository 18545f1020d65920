package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"craftfolio/internal/account"
	"craftfolio/internal/draft"
	"craftfolio/internal/inbox"
	"craftfolio/internal/media"
	"craftfolio/internal/portfolio"
	"craftfolio/internal/session"
)

// Services bundles everything the pages talk to.
type Services struct {
	Session  *session.Store
	Projects *portfolio.Service
	Images   *portfolio.ImageService
	Profile  *account.ProfileService
	Inbox    *inbox.Service
	Drafts   *draft.Store
	Media    media.Normalizer
}

type page int

const (
	pageLogin page = iota
	pageDashboard
	pageProject
	pageProfile
	pageInbox
)

// requestTimeout bounds every network call issued from the UI.
const requestTimeout = 15 * time.Second

type errMsg struct{ err error }

type loggedInMsg struct{ sess session.Session }

type loggedOutMsg struct{}

type threadBadgeMsg struct {
	seq     int
	threads []inbox.Thread
}

// confirmState is a pending yes/no question blocking the rest of the UI.
type confirmState struct {
	prompt string
	action tea.Cmd
}

// Model is the top-level shell: it routes keys and messages to the active
// page and owns the cross-page chrome (header, unread badge, confirm modal).
type Model struct {
	svc    Services
	styles Styles

	active page
	width  int
	height int

	login     loginModel
	dashboard dashboardModel
	project   projectModel
	profile   profileModel
	inbox     inboxModel

	unread   int
	badgeSeq int

	confirm *confirmState
	status  string
	err     error
}

// NewModel builds the shell. The start page depends on whether a session
// already exists in storage.
func NewModel(svc Services) Model {
	styles := DefaultStyles()
	m := Model{
		svc:       svc,
		styles:    styles,
		login:     newLoginModel(svc, styles),
		dashboard: newDashboardModel(svc, styles),
		project:   newProjectModel(svc, styles),
		profile:   newProfileModel(svc, styles),
		inbox:     newInboxModel(svc, styles),
	}
	if svc.Session.Current().Authenticated() {
		m.active = pageDashboard
	} else {
		m.active = pageLogin
	}
	return m
}

// Init starts the first page's load.
func (m Model) Init() tea.Cmd {
	if m.active == pageDashboard {
		return tea.Batch(m.dashboard.load(), m.refreshBadge())
	}
	return m.login.Init()
}

// refreshBadge fetches the thread list for the header unread count.
func (m *Model) refreshBadge() tea.Cmd {
	m.badgeSeq++
	seq := m.badgeSeq
	svc := m.svc.Inbox
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		threads, err := svc.Threads(ctx)
		if err != nil {
			return threadBadgeMsg{seq: seq}
		}
		return threadBadgeMsg{seq: seq, threads: threads}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dashboard.setSize(msg.Width, msg.Height)
		m.project.setSize(msg.Width, msg.Height)
		m.inbox.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// A pending confirmation swallows every key until answered.
		if m.confirm != nil {
			switch msg.String() {
			case "y", "Y":
				action := m.confirm.action
				m.confirm = nil
				return m, action
			case "n", "N", "esc":
				m.confirm = nil
				return m, nil
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}

		if m.active != pageLogin && !m.typing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.switchTo(pageDashboard)
			case "2":
				return m.switchTo(pageProfile)
			case "3":
				return m.switchTo(pageInbox)
			}
		}

	case errMsg:
		// The footer shows the error; the active page still needs the
		// message to clear its busy/loading flags so the user can retry.
		m.err = msg.err
		return m.routeToActive(msg)

	case loggedInMsg:
		m.err = nil
		m.status = fmt.Sprintf("Signed in as %s", msg.sess.Username)
		m.active = pageDashboard
		return m, tea.Batch(m.dashboard.load(), m.refreshBadge())

	case loggedOutMsg:
		m.status = ""
		m.active = pageLogin
		m.login = newLoginModel(m.svc, m.styles)
		return m, m.login.Init()

	case threadBadgeMsg:
		// Stale answers from an earlier refresh are dropped.
		if msg.seq == m.badgeSeq {
			m.unread = inbox.UnreadTotal(msg.threads)
		}
		return m, nil

	case confirmRequestMsg:
		m.confirm = &confirmState{prompt: msg.prompt, action: msg.action}
		return m, nil

	case openProjectMsg:
		m.active = pageProject
		return m, m.project.open(msg.project)
	}

	return m.routeToActive(msg)
}

// confirmRequestMsg asks the shell to show the yes/no modal before running
// action.
type confirmRequestMsg struct {
	prompt string
	action tea.Cmd
}

// openProjectMsg navigates from the dashboard to a project detail page.
type openProjectMsg struct {
	project portfolio.Project
}

func (m Model) switchTo(p page) (tea.Model, tea.Cmd) {
	if m.active == p {
		return m, nil
	}
	if m.active == pageInbox {
		m.inbox.leave()
	}
	m.active = p
	m.err = nil
	switch p {
	case pageDashboard:
		return m, tea.Batch(m.dashboard.load(), m.refreshBadge())
	case pageProfile:
		return m, m.profile.load()
	case pageInbox:
		return m, m.inbox.enter()
	}
	return m, nil
}

// typing reports whether the active page has a focused text field, in which
// case plain letter keys belong to it.
func (m Model) typing() bool {
	switch m.active {
	case pageDashboard:
		return m.dashboard.typing()
	case pageProject:
		return m.project.typing()
	case pageProfile:
		return m.profile.typing()
	case pageInbox:
		return m.inbox.typing()
	}
	return false
}

func (m Model) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.active {
	case pageLogin:
		m.login, cmd = m.login.Update(msg)
	case pageDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case pageProject:
		m.project, cmd = m.project.Update(msg)
	case pageProfile:
		m.profile, cmd = m.profile.Update(msg)
	case pageInbox:
		m.inbox, cmd = m.inbox.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	header := m.header()
	body := ""
	switch m.active {
	case pageLogin:
		body = m.login.View()
	case pageDashboard:
		body = m.dashboard.View()
	case pageProject:
		body = m.project.View()
	case pageProfile:
		body = m.profile.View()
	case pageInbox:
		body = m.inbox.View()
	}

	if m.confirm != nil {
		modal := m.styles.Card.Render(
			m.styles.Title.Render(m.confirm.prompt) + "\n" +
				m.styles.Muted.Render("y: yes   n: no"))
		body = lipgloss.JoinVertical(lipgloss.Left, body, modal)
	}

	footer := m.footer()
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) header() string {
	title := m.styles.Header.Render("craftfolio")
	who := ""
	if sess := m.svc.Session.Current(); sess.Authenticated() {
		name := m.svc.Profile.CachedDisplayName()
		if name == "" {
			name = sess.Username
		}
		who = m.styles.Muted.Render(" " + name)
	}
	badge := ""
	if m.unread > 0 {
		label := fmt.Sprintf("%d", m.unread)
		if m.unread > 99 {
			label = "99+"
		}
		badge = " " + m.styles.Badge.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, who, badge)
}

func (m Model) footer() string {
	if m.err != nil {
		return m.styles.Error.Render(m.err.Error())
	}
	if m.status != "" {
		return m.styles.Success.Render(m.status)
	}
	if m.active == pageLogin {
		return m.styles.Footer.Render("tab: switch field   enter: submit   ctrl+c: quit")
	}
	return m.styles.Footer.Render("1: projects   2: profile   3: inbox   q: quit")
}
