package ui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"craftfolio/internal/account"
)

type profileLoadedMsg struct {
	seq     int
	profile account.Profile
}

type profileSavedMsg struct {
	seq     int
	profile account.Profile
	notice  string
}

const (
	profDisplayName = iota
	profCompany
	profBio
	profLocation
	profWebsite
	profEmail
	profPhone
	profLogoPath
	profFieldCount
)

var profileLabels = [profFieldCount]string{
	"Display name", "Company", "Bio", "Location", "Website",
	"Contact email", "Contact phone", "Logo file",
}

// profileModel edits the signed-in user's profile.
type profileModel struct {
	svc    Services
	styles Styles

	seq     int
	loading bool
	busy    bool
	profile account.Profile

	inputs      [profFieldCount]textinput.Model
	focus       int
	editing     bool
	showContact bool
	notice      string
}

func newProfileModel(svc Services, styles Styles) profileModel {
	m := profileModel{svc: svc, styles: styles}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = profileLabels[i]
		m.inputs[i] = in
	}
	return m
}

func (m profileModel) typing() bool { return m.editing }

func (m *profileModel) load() tea.Cmd {
	m.seq++
	m.loading = true
	m.notice = ""
	seq := m.seq
	svc := m.svc.Profile
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		profile, err := svc.Me(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return profileLoadedMsg{seq: seq, profile: profile}
	}
}

func (m *profileModel) fill(p account.Profile) {
	m.profile = p
	m.inputs[profDisplayName].SetValue(p.DisplayName)
	m.inputs[profCompany].SetValue(p.Company)
	m.inputs[profBio].SetValue(p.Bio)
	m.inputs[profLocation].SetValue(p.Location)
	m.inputs[profWebsite].SetValue(p.Website)
	m.inputs[profEmail].SetValue(p.ContactEmail)
	m.inputs[profPhone].SetValue(p.ContactPhone)
	m.inputs[profLogoPath].SetValue("")
	m.showContact = p.ShowContactForm
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.fill(msg.profile)
		return m, nil

	case profileSavedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.busy = false
		m.notice = msg.notice
		m.fill(msg.profile)
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

func (m profileModel) handleKey(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "esc":
			m.editing = false
			m.inputs[m.focus].Blur()
			return m, nil
		case "enter", "tab":
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + 1) % profFieldCount
			return m, m.inputs[m.focus].Focus()
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "e":
		m.editing = true
		m.notice = ""
		return m, m.inputs[m.focus].Focus()
	case "up", "k":
		if m.focus > 0 {
			m.focus--
		}
	case "down", "j":
		if m.focus < profFieldCount-1 {
			m.focus++
		}
	case "c":
		m.showContact = !m.showContact
	case "s":
		return m, m.save()
	case "x":
		return m, m.removeLogo()
	case "r":
		return m, m.load()
	}
	return m, nil
}

func (m *profileModel) save() tea.Cmd {
	m.busy = true
	seq := m.seq
	svc := m.svc.Profile

	form := account.ProfileForm{
		DisplayName:     m.inputs[profDisplayName].Value(),
		Company:         m.inputs[profCompany].Value(),
		Bio:             m.inputs[profBio].Value(),
		Location:        m.inputs[profLocation].Value(),
		Website:         m.inputs[profWebsite].Value(),
		ContactEmail:    m.inputs[profEmail].Value(),
		ContactPhone:    m.inputs[profPhone].Value(),
		ShowContactForm: m.showContact,
	}
	logoPath := m.inputs[profLogoPath].Value()

	return func() tea.Msg {
		if logoPath != "" {
			content, err := os.ReadFile(logoPath)
			if err != nil {
				return errMsg{err: fmt.Errorf("read %s: %w", logoPath, err)}
			}
			form.LogoName = logoPath
			form.LogoContent = content
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		fresh, err := svc.Save(ctx, form)
		if err != nil {
			return errMsg{err: err}
		}
		return profileSavedMsg{seq: seq, profile: fresh, notice: "Profile saved."}
	}
}

func (m *profileModel) removeLogo() tea.Cmd {
	m.busy = true
	seq := m.seq
	svc := m.svc.Profile
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		fresh, err := svc.RemoveLogo(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return profileSavedMsg{seq: seq, profile: fresh, notice: "Logo removed."}
	}
}

func (m profileModel) View() string {
	if m.loading {
		return m.styles.Muted.Render("Loading…")
	}

	body := m.styles.Title.Render("Profile") + "\n"
	if logo := m.profile.LogoPath(); logo != "" {
		body += m.styles.Muted.Render("logo: "+m.svc.Media.ToURL(logo)) + "\n"
	}

	for i := range m.inputs {
		label := m.styles.Label.Render(profileLabels[i])
		marker := "  "
		if i == m.focus {
			marker = m.styles.Prompt.Render("> ")
		}
		body += fmt.Sprintf("%s%s %s\n", marker, label, m.inputs[i].View())
	}

	toggle := "off"
	if m.showContact {
		toggle = "on"
	}
	body += m.styles.Label.Render("  Contact form") + " " + toggle + "\n"

	if m.busy {
		body += m.styles.Warning.Render("Saving…") + "\n"
	}
	if m.notice != "" {
		body += m.styles.Success.Render(m.notice) + "\n"
	}

	body += "\n" + m.styles.Muted.Render("e: edit field   s: save   c: toggle contact form   x: remove logo   r: reload")
	return body
}
