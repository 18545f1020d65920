package inbox

import (
	"context"
	"strings"
)

// Composer holds the draft text for one open conversation and runs the send
// flow: a successful send clears the box and re-fetches immediately rather
// than waiting for the next poll; a failed send keeps the text so the user
// can retry.
type Composer struct {
	svc      *Service
	threadID int

	Text    string
	Sending bool
}

// NewComposer builds a composer bound to one thread.
func NewComposer(svc *Service, threadID int) *Composer {
	return &Composer{svc: svc, threadID: threadID}
}

// Send submits the current text. Blank text is a no-op that issues no
// request. On success the returned slice is the fresh message list.
func (c *Composer) Send(ctx context.Context) ([]Message, error) {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return nil, nil
	}

	c.Sending = true
	if err := c.svc.Send(ctx, c.threadID, text); err != nil {
		c.Sending = false
		return nil, err
	}
	c.Text = ""
	c.Sending = false

	return c.svc.Messages(ctx, c.threadID)
}
