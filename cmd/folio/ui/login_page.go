package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"craftfolio/internal/session"
)

// loginModel handles both sign-in and registration; ctrl+r flips between
// the two modes.
type loginModel struct {
	svc    Services
	styles Styles

	register bool
	inputs   []textinput.Model
	focus    int
	busy     bool
}

const (
	fieldUsername = iota
	fieldPassword
	fieldEmail
)

func newLoginModel(svc Services, styles Styles) loginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	email := textinput.New()
	email.Placeholder = "email"

	return loginModel{
		svc:    svc,
		styles: styles,
		inputs: []textinput.Model{username, password, email},
	}
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) fieldCount() int {
	if m.register {
		return 3
	}
	return 2
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.focus = (m.focus + 1) % m.fieldCount()
			return m.refocus()
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + m.fieldCount()) % m.fieldCount()
			return m.refocus()
		case "ctrl+r":
			m.register = !m.register
			if m.focus >= m.fieldCount() {
				m.focus = 0
			}
			return m.refocus()
		case "enter":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.submit()
		}
	case errMsg:
		m.busy = false
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) refocus() (loginModel, tea.Cmd) {
	var cmds []tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmds = append(cmds, m.inputs[i].Focus())
		} else {
			m.inputs[i].Blur()
		}
	}
	return m, tea.Batch(cmds...)
}

func (m loginModel) submit() tea.Cmd {
	svc := m.svc.Session
	username := m.inputs[fieldUsername].Value()
	password := m.inputs[fieldPassword].Value()
	email := m.inputs[fieldEmail].Value()
	register := m.register

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var (
			sess session.Session
			err  error
		)
		if register {
			sess, err = svc.Register(ctx, session.Registration{
				Username: username, Email: email, Password: password,
			})
		} else {
			sess, err = svc.Login(ctx, session.Credentials{
				Username: username, Password: password,
			})
		}
		if err != nil {
			return errMsg{err: err}
		}
		return loggedInMsg{sess: sess}
	}
}

func (m loginModel) View() string {
	title := "Sign in"
	hint := "ctrl+r: register instead"
	if m.register {
		title = "Create account"
		hint = "ctrl+r: sign in instead"
	}

	body := m.styles.Title.Render(title) + "\n"
	body += m.styles.Label.Render("Username") + "\n" + m.inputs[fieldUsername].View() + "\n"
	body += m.styles.Label.Render("Password") + "\n" + m.inputs[fieldPassword].View() + "\n"
	if m.register {
		body += m.styles.Label.Render("Email") + "\n" + m.inputs[fieldEmail].View() + "\n"
	}
	if m.busy {
		body += m.styles.Muted.Render("Signing in…") + "\n"
	}
	body += "\n" + m.styles.Muted.Render(hint)
	return m.styles.Card.Render(body)
}
