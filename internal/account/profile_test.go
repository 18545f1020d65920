package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftfolio/internal/api"
	"craftfolio/internal/storage"
)

func newProfileService(t *testing.T, handler http.Handler) (*ProfileService, *storage.Store, *Bus) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	kv := storage.NewMemory()
	bus := NewBus()
	return NewProfileService(api.NewClient(server.URL, nil), kv, bus), kv, bus
}

func TestMe_FallsBackToLegacyPathOnce(t *testing.T) {
	var paths []string
	svc, kv, _ := newProfileService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/auth/users/me/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"id": 1, "username": "alice", "display_name": "Alice B", "logo": "/media/logo.png"}`))
	}))

	profile, err := svc.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alice B", profile.DisplayName)
	assert.Equal(t, []string{"/auth/users/me/", "/users/me/"}, paths)

	// Display name and logo land in durable storage.
	assert.Equal(t, "Alice B", kv.Get(storage.KeyProfileDisplayName))
	assert.Equal(t, "/media/logo.png", kv.Get(storage.KeyProfileLogo))

	// The winner is remembered: no second probe of the primary path.
	_, err = svc.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/auth/users/me/", "/users/me/", "/users/me/"}, paths)
}

func TestMe_NonRoutingErrorDoesNotFallBack(t *testing.T) {
	var paths []string
	svc, _, _ := newProfileService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Authentication credentials were not provided."}`))
	}))

	_, err := svc.Me(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuth(err))
	assert.Equal(t, []string{"/auth/users/me/"}, paths)
}

func TestSave_PatchesThenRefetches(t *testing.T) {
	svc, _, bus := newProfileService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "Alice B", r.FormValue("display_name"))
			assert.Equal(t, "5551234567", r.FormValue("contact_phone"))
			assert.Equal(t, "true", r.FormValue("show_contact_form"))
			_, hasBio := r.MultipartForm.Value["bio"]
			assert.False(t, hasBio)
			w.Write([]byte(`{}`))
		case http.MethodGet:
			w.Write([]byte(`{"id": 1, "display_name": "Alice B"}`))
		}
	}))

	var events []Event
	cancel := bus.Subscribe(func(ev Event) { events = append(events, ev) })
	defer cancel()

	profile, err := svc.Save(context.Background(), ProfileForm{
		DisplayName:     "  Alice B  ",
		ContactPhone:    "(555) 123-4567",
		ShowContactForm: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", profile.DisplayName)

	require.Len(t, events, 2)
	assert.IsType(t, ProfileUpdating{}, events[0])
	updated, ok := events[1].(ProfileUpdated)
	require.True(t, ok)
	assert.Equal(t, "Alice B", updated.Profile.DisplayName)
}

func TestSave_PublishesCompletionOnFailure(t *testing.T) {
	svc, _, bus := newProfileService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	var events []Event
	cancel := bus.Subscribe(func(ev Event) { events = append(events, ev) })
	defer cancel()

	_, err := svc.Save(context.Background(), ProfileForm{DisplayName: "Alice"})
	require.Error(t, err)

	// A subscriber that went pending on ProfileUpdating must still see the
	// save finish.
	require.Len(t, events, 2)
	assert.IsType(t, ProfileUpdating{}, events[0])
	done, ok := events[1].(ProfileUpdated)
	require.True(t, ok)
	assert.Error(t, done.Err)
}

func TestSave_RejectsBadLogoBeforeNetwork(t *testing.T) {
	svc, _, _ := newProfileService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := svc.Save(context.Background(), ProfileForm{
		LogoName:    "logo.pdf",
		LogoContent: []byte("not an image"),
	})
	require.EqualError(t, err, "Please upload PNG/JPG/GIF/WEBP/SVG.")

	_, err = svc.Save(context.Background(), ProfileForm{
		LogoName:    "logo.png",
		LogoContent: make([]byte, MaxLogoBytes+1),
	})
	require.EqualError(t, err, "Image too large (max 5MB).")
}

func TestRemoveLogo_SendsExplicitNull(t *testing.T) {
	svc, kv, _ := newProfileService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			v, present := body["logo"]
			assert.True(t, present)
			assert.Nil(t, v)
			w.Write([]byte(`{}`))
		case http.MethodGet:
			w.Write([]byte(`{"id": 1, "display_name": "Alice"}`))
		}
	}))
	require.NoError(t, kv.Set(storage.KeyProfileLogo, "/media/logo.png"))

	profile, err := svc.RemoveLogo(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profile.LogoPath())
	assert.Empty(t, kv.Get(storage.KeyProfileLogo))
}

func TestConfirmPasswordReset_MismatchIsLocal(t *testing.T) {
	svc, _, _ := newProfileService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected on mismatch")
	}))

	err := svc.ConfirmPasswordReset(context.Background(), "uid", "tok", "newpw", "different")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestConfirmPasswordReset_SendsPayload(t *testing.T) {
	svc, _, _ := newProfileService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/password-reset-confirm/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"uid": "uid", "token": "tok", "new_password": "newpw"}, body)
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), "uid", "tok", "newpw", "newpw"))
}

func TestContact_PostsToUserMailbox(t *testing.T) {
	svc, _, _ := newProfileService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/contact/bob/send/", r.URL.Path)
		var msg ContactMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, "Quote request", msg.Subject)
		w.WriteHeader(http.StatusCreated)
	}))

	err := svc.Contact(context.Background(), "bob", ContactMessage{
		Name: "Alice", Email: "a@example.com", Subject: "Quote request", Message: "Hi",
	})
	require.NoError(t, err)
}
