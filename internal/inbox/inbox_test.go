package inbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftfolio/internal/api"
)

type confirmFunc func(string) bool

func (f confirmFunc) Confirm(prompt string) bool { return f(prompt) }

func newService(t *testing.T, handler http.Handler) (*Service, *[]string) {
	t.Helper()
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return NewService(api.NewClient(server.URL, nil)), &paths
}

func TestThread_Counterpart(t *testing.T) {
	thread := Thread{
		OwnerUsername:  "Mokko",
		ClientUsername: "artin",
		OwnerProfile:   &Participant{Username: "Mokko", DisplayName: "Mokko Woodworks"},
		ClientProfile:  &Participant{Username: "artin", DisplayName: "Artin"},
	}

	// Case differs between the session username and the thread field.
	assert.Equal(t, "Artin", thread.Counterpart("mokko").DisplayName)
	assert.Equal(t, "Mokko Woodworks", thread.Counterpart("ARTIN").DisplayName)

	// Unknown viewer: assume the owner's inbox, counterpart is the client.
	assert.Equal(t, "Artin", thread.Counterpart("someone-else").DisplayName)
}

func TestThread_CounterpartWithoutProfiles(t *testing.T) {
	thread := Thread{OwnerUsername: "mokko", ClientUsername: "artin"}
	cp := thread.Counterpart("mokko")
	assert.Equal(t, "artin", cp.Username)
	assert.Equal(t, "artin", cp.Label())
}

func TestThread_Preview(t *testing.T) {
	assert.Equal(t, "Open conversation", Thread{}.Preview())
	assert.Equal(t, "hi", Thread{LatestMessage: &Message{Text: "hi"}}.Preview())
	assert.Equal(t, "plans.pdf", Thread{LatestMessage: &Message{AttachmentName: "plans.pdf"}}.Preview())
}

func TestUnreadTotal(t *testing.T) {
	threads := []Thread{{UnreadCount: 2}, {UnreadCount: 0}, {UnreadCount: 1}}
	assert.Equal(t, 3, UnreadTotal(threads))
}

func TestStart_PostsUsername(t *testing.T) {
	svc, paths := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "mokko", body["username"])
		w.Write([]byte(`{"id": 12, "owner_username": "mokko", "client_username": "artin", "is_request": true}`))
	}))

	thread, err := svc.Start(context.Background(), "mokko")
	require.NoError(t, err)
	assert.Equal(t, 12, thread.ID)
	assert.True(t, thread.IsRequest)
	assert.Equal(t, []string{"POST /inbox/threads/start/"}, *paths)
}

func TestAccept_ClearsRequestFlag(t *testing.T) {
	svc, paths := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 12, "is_request": false}`))
	}))

	thread, err := svc.Accept(context.Background(), 12)
	require.NoError(t, err)
	assert.False(t, thread.IsRequest)
	assert.Equal(t, []string{"POST /inbox/threads/12/accept/"}, *paths)
}

func TestIgnore_PostsAction(t *testing.T) {
	svc, paths := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	require.NoError(t, svc.Ignore(context.Background(), 12))
	assert.Equal(t, []string{"POST /inbox/threads/12/ignore/"}, *paths)
}

func TestBlock_RequiresConfirmation(t *testing.T) {
	svc, paths := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	decline := confirmFunc(func(string) bool { return false })
	require.NoError(t, svc.Block(context.Background(), 12, decline))
	assert.Empty(t, *paths)

	accept := confirmFunc(func(string) bool { return true })
	require.NoError(t, svc.Block(context.Background(), 12, accept))
	assert.Equal(t, []string{"POST /inbox/threads/12/block/"}, *paths)
}

func TestMessages_UsesCompatibilityPath(t *testing.T) {
	svc, paths := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "sender_username": "mokko", "text": "hello"}]`))
	}))

	messages, err := svc.Messages(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].Mine("Mokko"))
	assert.Equal(t, []string{"GET /projects/0/threads/12/messages/"}, *paths)
}

func TestComposer_BlankTextIsNoOp(t *testing.T) {
	svc, paths := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewComposer(svc, 12)
	c.Text = "   "

	messages, err := c.Send(context.Background())
	require.NoError(t, err)
	assert.Nil(t, messages)
	assert.Empty(t, *paths)
}

func TestComposer_SendClearsTextAndRefetches(t *testing.T) {
	svc, paths := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "hello there", body["text"])
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			w.Write([]byte(`[{"id": 1, "text": "hello there"}]`))
		}
	}))

	c := NewComposer(svc, 12)
	c.Text = "  hello there  "

	messages, err := c.Send(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Empty(t, c.Text)
	assert.False(t, c.Sending)
	assert.Equal(t, []string{
		"POST /projects/0/threads/12/messages/",
		"GET /projects/0/threads/12/messages/",
	}, *paths)
}

func TestComposer_FailedSendKeepsText(t *testing.T) {
	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	c := NewComposer(svc, 12)
	c.Text = "hello"

	_, err := c.Send(context.Background())
	require.Error(t, err)
	assert.Equal(t, "hello", c.Text)
	assert.False(t, c.Sending)
}
