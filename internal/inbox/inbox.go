// Package inbox implements private messaging: the thread list, message
// request actions, per-thread messages and the background poller that keeps
// an open conversation fresh.
package inbox

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"craftfolio/internal/api"
	"craftfolio/internal/logging"
	"craftfolio/internal/media"
)

// Participant is one side of a thread as the backend embeds it.
type Participant struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Logo        media.Ref `json:"logo"`
}

// Label returns the best display string for a participant.
func (p Participant) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Username != "" {
		return p.Username
	}
	return "User"
}

// Message is one chat message.
type Message struct {
	ID             int    `json:"id"`
	SenderUsername string `json:"sender_username"`
	Text           string `json:"text"`
	AttachmentName string `json:"attachment_name"`
	CreatedAt      string `json:"created_at"`
}

// Mine reports whether the message was sent by the given user.
func (m Message) Mine(username string) bool {
	return username != "" && strings.EqualFold(m.SenderUsername, username)
}

// Thread is one conversation between a project owner and a client.
type Thread struct {
	ID             int          `json:"id"`
	Project        int          `json:"project"`
	OwnerUsername  string       `json:"owner_username"`
	ClientUsername string       `json:"client_username"`
	OwnerProfile   *Participant `json:"owner_profile"`
	ClientProfile  *Participant `json:"client_profile"`
	LatestMessage  *Message     `json:"latest_message"`
	IsRequest      bool         `json:"is_request"`
	UnreadCount    int          `json:"unread_count"`
}

// Counterpart returns the other person in the thread from me's point of
// view. Usernames compare case-insensitively; when me matches neither side
// the client is assumed, which is the usual owner-inbox case. Missing
// profile objects fall back to the bare usernames.
func (t Thread) Counterpart(me string) Participant {
	owner := t.participant(t.OwnerProfile, t.OwnerUsername)
	client := t.participant(t.ClientProfile, t.ClientUsername)

	switch {
	case me != "" && strings.EqualFold(t.OwnerUsername, me):
		return client
	case me != "" && strings.EqualFold(t.ClientUsername, me):
		return owner
	default:
		return client
	}
}

func (t Thread) participant(p *Participant, username string) Participant {
	if p != nil {
		out := *p
		if out.Username == "" {
			out.Username = username
		}
		return out
	}
	return Participant{Username: username, DisplayName: username}
}

// Preview returns the one-line summary for the thread list.
func (t Thread) Preview() string {
	if t.LatestMessage != nil {
		if t.LatestMessage.Text != "" {
			return t.LatestMessage.Text
		}
		if t.LatestMessage.AttachmentName != "" {
			return t.LatestMessage.AttachmentName
		}
	}
	return "Open conversation"
}

// UnreadTotal sums unread counts across threads for the badge.
func UnreadTotal(threads []Thread) int {
	total := 0
	for _, t := range threads {
		total += t.UnreadCount
	}
	return total
}

// Confirmer gates destructive actions behind an interactive confirmation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Service talks to the inbox endpoints.
type Service struct {
	client *api.Client
	log    *zap.Logger
}

// NewService builds an inbox service.
func NewService(client *api.Client) *Service {
	return &Service{client: client, log: logging.Get(logging.CategoryInbox)}
}

// Threads fetches every conversation the user participates in.
func (s *Service) Threads(ctx context.Context) ([]Thread, error) {
	var threads []Thread
	if err := s.client.Get(ctx, "/inbox/threads/", &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// Start opens (or returns the existing) conversation with a user.
func (s *Service) Start(ctx context.Context, username string) (Thread, error) {
	var t Thread
	body := map[string]string{"username": username}
	if err := s.client.Post(ctx, "/inbox/threads/start/", body, &t); err != nil {
		return Thread{}, err
	}
	s.log.Info("thread started", zap.Int("thread_id", t.ID), zap.String("with", username))
	return t, nil
}

// Accept approves a message request; the updated thread comes back with the
// request flag cleared.
func (s *Service) Accept(ctx context.Context, threadID int) (Thread, error) {
	var t Thread
	if err := s.client.Post(ctx, fmt.Sprintf("/inbox/threads/%d/accept/", threadID), nil, &t); err != nil {
		return Thread{}, err
	}
	return t, nil
}

// Ignore dismisses a message request.
func (s *Service) Ignore(ctx context.Context, threadID int) error {
	return s.client.Post(ctx, fmt.Sprintf("/inbox/threads/%d/ignore/", threadID), nil, nil)
}

// Block blocks the counterpart after confirmation. Declining is a
// successful no-op.
func (s *Service) Block(ctx context.Context, threadID int, confirm Confirmer) error {
	if confirm != nil && !confirm.Confirm("Block this user?") {
		return nil
	}
	return s.client.Post(ctx, fmt.Sprintf("/inbox/threads/%d/block/", threadID), nil, nil)
}

// messagesPath builds the per-thread messages path. The project segment is
// ignored server-side and kept only for URL compatibility.
func messagesPath(threadID int) string {
	return fmt.Sprintf("/projects/0/threads/%d/messages/", threadID)
}

// Messages fetches the full message list for a thread.
func (s *Service) Messages(ctx context.Context, threadID int) ([]Message, error) {
	var messages []Message
	if err := s.client.Get(ctx, messagesPath(threadID), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Send posts one message to a thread.
func (s *Service) Send(ctx context.Context, threadID int, text string) error {
	body := map[string]string{"text": text}
	return s.client.Post(ctx, messagesPath(threadID), body, nil)
}
