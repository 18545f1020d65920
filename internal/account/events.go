// Package account covers the signed-in user's profile, password reset and
// the public profile surface other visitors see.
package account

import "sync"

// Event is a profile lifecycle notification.
type Event interface{ isEvent() }

// ProfileUpdating fires when a profile save starts; pages showing profile
// data can switch to a pending state.
type ProfileUpdating struct{}

// ProfileUpdated fires when a save attempt finishes, success or failure, so
// subscribers that went pending on ProfileUpdating always leave that state.
// Err is nil on success, in which case Profile holds the fresh data.
type ProfileUpdated struct {
	Profile Profile
	Err     error
}

func (ProfileUpdating) isEvent() {}
func (ProfileUpdated) isEvent()  {}

// Bus is a small in-process pub/sub for profile events. Subscribers are
// invoked synchronously on the publishing goroutine.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn for every future event. The returned func cancels
// the subscription.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers ev to every subscriber.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
