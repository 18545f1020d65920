package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"craftfolio/internal/inbox"
)

type threadsLoadedMsg struct {
	seq     int
	threads []inbox.Thread
}

type messagesLoadedMsg struct {
	seq      int
	threadID int
	messages []inbox.Message
}

type pollTickMsg struct {
	seq      int
	threadID int
}

type messageSentMsg struct {
	seq      int
	threadID int
	messages []inbox.Message
}

type threadActedMsg struct{ seq int }

type threadStartedMsg struct {
	seq    int
	thread inbox.Thread
}

type inboxInputMode int

const (
	inboxBrowse inboxInputMode = iota
	inboxCompose
	inboxStartThread
)

// inboxModel shows the thread list on the left and the open conversation on
// the right. While a conversation is open it refreshes on a fixed tick; the
// tick chain carries a sequence number so leaving the page tears polling
// down deterministically.
type inboxModel struct {
	svc    Services
	styles Styles

	seq      int
	loading  bool
	threads  []inbox.Thread
	cursor   int
	active   *inbox.Thread
	messages []inbox.Message

	mode    inboxInputMode
	input   textinput.Model
	sending bool

	width  int
	height int
}

func newInboxModel(svc Services, styles Styles) inboxModel {
	input := textinput.New()
	return inboxModel{svc: svc, styles: styles, input: input}
}

func (m *inboxModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m inboxModel) typing() bool { return m.mode != inboxBrowse }

// enter loads the thread list when the page becomes active.
func (m *inboxModel) enter() tea.Cmd {
	m.seq++
	m.loading = true
	m.active = nil
	m.messages = nil
	return m.loadThreads()
}

// leave invalidates the sequence number: any in-flight fetch or pending
// tick belonging to this visit is dropped when it lands.
func (m *inboxModel) leave() {
	m.seq++
	m.active = nil
}

func (m *inboxModel) loadThreads() tea.Cmd {
	seq := m.seq
	svc := m.svc.Inbox
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		threads, err := svc.Threads(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return threadsLoadedMsg{seq: seq, threads: threads}
	}
}

func (m *inboxModel) loadMessages(threadID int, silent bool) tea.Cmd {
	seq := m.seq
	svc := m.svc.Inbox
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		messages, err := svc.Messages(ctx, threadID)
		if err != nil {
			if silent {
				// A failed background poll keeps the last good list.
				return pollTickMsg{seq: seq, threadID: threadID}
			}
			return errMsg{err: err}
		}
		return messagesLoadedMsg{seq: seq, threadID: threadID, messages: messages}
	}
}

func (m *inboxModel) nextTick(threadID int) tea.Cmd {
	seq := m.seq
	return tea.Tick(inbox.DefaultPollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{seq: seq, threadID: threadID}
	})
}

func (m inboxModel) Update(msg tea.Msg) (inboxModel, tea.Cmd) {
	switch msg := msg.(type) {
	case threadsLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.threads = msg.threads
		if m.cursor >= len(m.threads) {
			m.cursor = 0
		}
		return m, nil

	case messagesLoadedMsg:
		if msg.seq != m.seq || m.active == nil || m.active.ID != msg.threadID {
			return m, nil
		}
		m.messages = msg.messages
		return m, m.nextTick(msg.threadID)

	case pollTickMsg:
		// Stale ticks from a previous visit or thread end the chain here.
		if msg.seq != m.seq || m.active == nil || m.active.ID != msg.threadID {
			return m, nil
		}
		return m, m.loadMessages(msg.threadID, true)

	case messageSentMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.sending = false
		// Success clears the box; the fresh list arrived with the ack.
		m.input.SetValue("")
		if m.active != nil && m.active.ID == msg.threadID {
			m.messages = msg.messages
		}
		return m, nil

	case threadActedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.loadThreads()

	case threadStartedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		// The backend answered with the (new or existing) thread; open the
		// conversation right away instead of leaving the user on the list.
		t := msg.thread
		m.active = &t
		m.messages = nil
		return m, tea.Batch(m.loadThreads(), m.loadMessages(t.ID, false))

	case errMsg:
		m.sending = false
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m inboxModel) handleKey(msg tea.KeyMsg) (inboxModel, tea.Cmd) {
	if m.mode != inboxBrowse {
		switch msg.String() {
		case "esc":
			m.mode = inboxBrowse
			m.input.Blur()
			return m, nil
		case "enter":
			return m.commitInput()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.threads)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.threads) {
			t := m.threads[m.cursor]
			m.active = &t
			m.messages = nil
			return m, m.loadMessages(t.ID, false)
		}
	case "m":
		if m.active != nil {
			m.mode = inboxCompose
			m.input.Placeholder = "message"
			return m, m.input.Focus()
		}
	case "n":
		m.mode = inboxStartThread
		m.input.Placeholder = "username"
		m.input.SetValue("")
		return m, m.input.Focus()
	case "a":
		return m.act("accept")
	case "i":
		return m.act("ignore")
	case "b":
		return m.requestBlock()
	case "r":
		return m, m.loadThreads()
	}
	return m, nil
}

func (m inboxModel) commitInput() (inboxModel, tea.Cmd) {
	value := m.input.Value()
	mode := m.mode
	m.mode = inboxBrowse
	m.input.Blur()

	switch mode {
	case inboxCompose:
		if m.active == nil || m.sending {
			return m, nil
		}
		m.sending = true
		// The box is cleared only by messageSentMsg, so a failed send
		// keeps the text for a retry.
		m.input.SetValue(value)
		return m, m.send(m.active.ID, value)
	case inboxStartThread:
		if value == "" {
			return m, nil
		}
		return m, m.startThread(value)
	}
	return m, nil
}

func (m *inboxModel) send(threadID int, text string) tea.Cmd {
	seq := m.seq
	svc := m.svc.Inbox
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		composer := inbox.NewComposer(svc, threadID)
		composer.Text = text
		messages, err := composer.Send(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return messageSentMsg{seq: seq, threadID: threadID, messages: messages}
	}
}

func (m *inboxModel) startThread(username string) tea.Cmd {
	seq := m.seq
	svc := m.svc.Inbox
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		thread, err := svc.Start(ctx, username)
		if err != nil {
			return errMsg{err: err}
		}
		return threadStartedMsg{seq: seq, thread: thread}
	}
}

func (m inboxModel) act(action string) (inboxModel, tea.Cmd) {
	if m.cursor >= len(m.threads) {
		return m, nil
	}
	thread := m.threads[m.cursor]
	seq := m.seq
	svc := m.svc.Inbox
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var err error
		switch action {
		case "accept":
			_, err = svc.Accept(ctx, thread.ID)
		case "ignore":
			err = svc.Ignore(ctx, thread.ID)
		}
		if err != nil {
			return errMsg{err: err}
		}
		return threadActedMsg{seq: seq}
	}
}

// requestBlock goes through the shell's confirm modal.
func (m inboxModel) requestBlock() (inboxModel, tea.Cmd) {
	if m.cursor >= len(m.threads) {
		return m, nil
	}
	thread := m.threads[m.cursor]
	seq := m.seq
	svc := m.svc.Inbox
	action := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		confirmed := confirmAlways{}
		if err := svc.Block(ctx, thread.ID, confirmed); err != nil {
			return errMsg{err: err}
		}
		return threadActedMsg{seq: seq}
	}
	return m, func() tea.Msg {
		return confirmRequestMsg{prompt: "Block this user?", action: action}
	}
}

// confirmAlways satisfies inbox.Confirmer after the modal already asked.
type confirmAlways struct{}

func (confirmAlways) Confirm(string) bool { return true }

func (m inboxModel) View() string {
	body := m.styles.Title.Render("Inbox") + "\n"
	if m.loading {
		body += m.styles.Muted.Render("Loading…")
		return body
	}
	if len(m.threads) == 0 {
		body += m.styles.Muted.Render("No private conversations yet.") + "\n"
	}

	me := m.svc.Session.Current().Username
	for i, t := range m.threads {
		cp := t.Counterpart(me)
		line := cp.Label()
		if t.IsRequest {
			line += "  " + m.styles.Warning.Render("request")
		}
		if t.UnreadCount > 0 {
			line += "  " + m.styles.Badge.Render(fmt.Sprintf("%d", t.UnreadCount))
		}
		line += "  " + m.styles.Muted.Render(t.Preview())
		if i == m.cursor {
			line = m.styles.Prompt.Render("> ") + line
		} else {
			line = "  " + line
		}
		body += line + "\n"
	}

	if m.active != nil {
		cp := m.active.Counterpart(me)
		body += "\n" + m.styles.Label.Render("Conversation with "+cp.Label()) + "\n"
		if len(m.messages) == 0 {
			body += m.styles.Muted.Render("No messages yet.") + "\n"
		}
		for _, msg := range m.messages {
			prefix := cp.Label()
			if msg.Mine(me) {
				prefix = "you"
			}
			body += m.styles.Muted.Render(prefix+": ") + msg.Text + "\n"
		}
		if m.sending {
			body += m.styles.Warning.Render("Sending…") + "\n"
		}
	}

	if m.mode != inboxBrowse {
		body += "\n" + m.input.View() + "\n"
	}

	body += "\n" + m.styles.Muted.Render("enter: open   m: message   n: new   a: accept   i: ignore   b: block   r: refresh")
	return body
}
