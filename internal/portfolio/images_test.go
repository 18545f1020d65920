package portfolio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftfolio/internal/api"
)

type recordedRequest struct {
	method string
	path   string
}

func newImageService(t *testing.T, handler http.Handler) (*ImageService, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, recordedRequest{method: r.Method, path: r.URL.Path})
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return NewImageService(api.NewClient(server.URL, nil)), &seen
}

func galleryHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(body))
			return
		}
		w.Write([]byte(`{}`))
	})
}

func TestGalleryEditor_SaveCaption_UnchangedIsNoOp(t *testing.T) {
	svc, seen := newImageService(t, galleryHandler(`[{"id": 5, "url": "/media/a.jpg", "caption": "Before"}]`))
	editor := NewGalleryEditor(svc, 1)
	require.NoError(t, editor.Load(context.Background()))
	requests := len(*seen)

	// Draft equals the server caption: no request may go out.
	require.NoError(t, editor.SaveCaption(context.Background(), 0))
	assert.Len(t, *seen, requests)
}

func TestGalleryEditor_SaveCaption_PersistsDraft(t *testing.T) {
	svc, seen := newImageService(t, galleryHandler(`[{"id": 5, "url": "/media/a.jpg", "caption": "Before"}]`))
	editor := NewGalleryEditor(svc, 1)
	require.NoError(t, editor.Load(context.Background()))

	editor.SetDraft(0, "After")
	require.NoError(t, editor.SaveCaption(context.Background(), 0))

	entry := editor.Entries()[0]
	assert.Equal(t, "After", entry.Image.Caption)
	assert.False(t, entry.Saving)
	last := (*seen)[len(*seen)-1]
	assert.Equal(t, http.MethodPatch, last.method)
	assert.Equal(t, "/projects/1/images/5/", last.path)
}

func TestGalleryEditor_SaveCaption_FailureKeepsDraft(t *testing.T) {
	svc, _ := newImageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[{"id": 5, "url": "/media/a.jpg", "caption": "Before"}]`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	editor := NewGalleryEditor(svc, 1)
	require.NoError(t, editor.Load(context.Background()))

	editor.SetDraft(0, "After")
	require.Error(t, editor.SaveCaption(context.Background(), 0))

	// The saving flag rolls back; the typed text survives for a retry.
	entry := editor.Entries()[0]
	assert.False(t, entry.Saving)
	assert.Equal(t, "After", entry.Draft)
	assert.Equal(t, "Before", entry.Image.Caption)
}

func TestGalleryEditor_Delete_DeclinedConfirmationIsNoOp(t *testing.T) {
	svc, seen := newImageService(t, galleryHandler(`[{"id": 5, "url": "/media/a.jpg"}]`))
	editor := NewGalleryEditor(svc, 1)
	require.NoError(t, editor.Load(context.Background()))
	requests := len(*seen)

	decline := ConfirmFunc(func(string) bool { return false })
	require.NoError(t, editor.Delete(context.Background(), 0, decline))
	assert.Len(t, *seen, requests)
	assert.Len(t, editor.Entries(), 1)
}

func TestGalleryEditor_Delete_RefetchesGallery(t *testing.T) {
	deleted := false
	svc, seen := newImageService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			if deleted {
				w.Write([]byte(`[]`))
			} else {
				w.Write([]byte(`[{"id": 5, "url": "/media/a.jpg"}]`))
			}
		}
	}))
	editor := NewGalleryEditor(svc, 1)
	require.NoError(t, editor.Load(context.Background()))

	accept := ConfirmFunc(func(string) bool { return true })
	require.NoError(t, editor.Delete(context.Background(), 0, accept))

	// Local state reflects a re-fetch, not a local splice.
	assert.Empty(t, editor.Entries())
	last := (*seen)[len(*seen)-1]
	assert.Equal(t, http.MethodGet, last.method)
}

func TestGalleryEditor_RefusesEntriesWithoutID(t *testing.T) {
	svc, seen := newImageService(t, galleryHandler(`[{"url": "/media/a.jpg", "caption": "Before"}]`))
	editor := NewGalleryEditor(svc, 1)
	require.NoError(t, editor.Load(context.Background()))
	requests := len(*seen)

	// The entry has a URL but no id: caption save and delete must both be
	// rejected without a request rather than guessing an identifier.
	editor.SetDraft(0, "After")
	require.Error(t, editor.SaveCaption(context.Background(), 0))
	assert.Len(t, *seen, requests)

	accept := ConfirmFunc(func(string) bool { return true })
	require.Error(t, editor.Delete(context.Background(), 0, accept))
	assert.Len(t, *seen, requests)
}

func TestUpload_BatchesQueueIntoOneRequest(t *testing.T) {
	var posts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts++
		require.Equal(t, "/projects/2/images/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		captions := r.MultipartForm.Value["captions"]
		files := r.MultipartForm.File["images"]
		require.Len(t, captions, 2)
		require.Len(t, files, 2)

		// Captions line up with files by position.
		assert.Equal(t, []string{"Front", ""}, captions)
		assert.Equal(t, "front.jpg", files[0].Filename)
		assert.Equal(t, "side.jpg", files[1].Filename)

		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)
	svc := NewImageService(api.NewClient(server.URL, nil))

	var q UploadQueue
	q.Add("/tmp/staging/front.jpg", []byte("a"))
	q.Add("side.jpg", []byte("b"))
	q.SetCaption(0, "Front")

	require.NoError(t, svc.Upload(context.Background(), 2, &q))
	assert.Equal(t, 1, posts)
	assert.Zero(t, q.Len())
}

func TestUpload_FailureKeepsQueue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"images": ["Invalid image."]}`))
	}))
	t.Cleanup(server.Close)
	svc := NewImageService(api.NewClient(server.URL, nil))

	var q UploadQueue
	q.Add("front.jpg", []byte("a"))

	err := svc.Upload(context.Background(), 2, &q)
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Equal(t, 1, q.Len())
}

func TestUpload_EmptyQueueIssuesNoRequest(t *testing.T) {
	svc, seen := newImageService(t, galleryHandler(`[]`))
	var q UploadQueue
	require.NoError(t, svc.Upload(context.Background(), 2, &q))
	assert.Empty(t, *seen)
}
