package inbox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"craftfolio/internal/api"
)

func TestPoller_DeliversOnlyChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	body := `[{"id": 1, "text": "a"}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Write([]byte(body))
	}))
	defer server.Close()
	svc := NewService(api.NewClient(server.URL, nil))

	updates := make(chan []Message, 16)
	p := NewPoller(svc, 12, func(ms []Message) { updates <- ms })
	p.Interval = 10 * time.Millisecond
	p.Start(context.Background())

	// Initial fetch delivers once.
	first := <-updates
	require.Len(t, first, 1)

	// Unchanged polls stay silent.
	select {
	case <-updates:
		t.Fatal("unchanged poll must not deliver an update")
	case <-time.After(50 * time.Millisecond):
	}

	// A new message comes through on the next tick.
	mu.Lock()
	body = `[{"id": 1, "text": "a"}, {"id": 2, "text": "b"}]`
	mu.Unlock()

	select {
	case second := <-updates:
		require.Len(t, second, 2)
		assert.Equal(t, 2, second[1].ID)
	case <-time.After(time.Second):
		t.Fatal("expected an update after the list changed")
	}

	p.Stop()
}

func TestPoller_StopIsDeterministic(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()
	svc := NewService(api.NewClient(server.URL, nil))

	p := NewPoller(svc, 12, func([]Message) {})
	p.Interval = 5 * time.Millisecond
	p.Start(context.Background())

	time.Sleep(20 * time.Millisecond)
	p.Stop()
	// Stop returned: the poll goroutine is gone, which goleak verifies.
	// A second Stop is a no-op, not a panic.
	p.Stop()
}

func TestPoller_PollErrorKeepsLastList(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	fail := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"id": 1, "text": "a"}]`))
	}))
	defer server.Close()
	svc := NewService(api.NewClient(server.URL, nil))

	updates := make(chan []Message, 16)
	p := NewPoller(svc, 12, func(ms []Message) { updates <- ms })
	p.Interval = 10 * time.Millisecond
	p.Start(context.Background())

	<-updates

	mu.Lock()
	fail = true
	mu.Unlock()

	// Errors are swallowed; no update and no panic.
	select {
	case <-updates:
		t.Fatal("a failed poll must not deliver an update")
	case <-time.After(50 * time.Millisecond):
	}

	p.Stop()
}
