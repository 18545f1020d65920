package inbox

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often an open conversation refreshes.
const DefaultPollInterval = 5 * time.Second

// Poller refreshes one thread's messages in the background. Updates are
// delivered only when the list actually changed, judged by length and last
// message id, so an unchanged poll causes no redraw.
type Poller struct {
	svc      *Service
	threadID int
	onUpdate func([]Message)

	// Interval may be shortened before Start; tests do.
	Interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	lastLen int
	lastID  int
}

// NewPoller builds a poller for one thread. onUpdate runs on the poller
// goroutine.
func NewPoller(svc *Service, threadID int, onUpdate func([]Message)) *Poller {
	return &Poller{
		svc:      svc,
		threadID: threadID,
		onUpdate: onUpdate,
		Interval: DefaultPollInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start fetches once immediately, then polls until Stop or ctx cancellation.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	p.poll(ctx)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll fetches silently: an error is logged and skipped, keeping the last
// good list on screen until the next tick.
func (p *Poller) poll(ctx context.Context) {
	messages, err := p.svc.Messages(ctx, p.threadID)
	if err != nil {
		p.svc.log.Debug("poll failed", zap.Int("thread_id", p.threadID), zap.Error(err))
		return
	}

	lastID := 0
	if len(messages) > 0 {
		lastID = messages[len(messages)-1].ID
	}
	if len(messages) == p.lastLen && lastID == p.lastID {
		return
	}
	p.lastLen = len(messages)
	p.lastID = lastID
	p.onUpdate(messages)
}

// Stop halts polling and waits for the poll goroutine to exit. Safe to call
// more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}
