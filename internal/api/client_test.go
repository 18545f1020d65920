package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, TokenFunc(func() string { return "tok-abc" }))
	require.NoError(t, client.Get(context.Background(), "/projects/", nil))
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var hadAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, TokenFunc(func() string { return "" }))
	require.NoError(t, client.Get(context.Background(), "/projects/", nil))
	assert.False(t, hadAuth)
}

func TestClient_DecodesAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/7/", r.URL.Path)
		w.Write([]byte(`{"id": 7, "title": "Deck"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	var out struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, client.Get(context.Background(), "/projects/7/", &out))
	assert.Equal(t, 7, out.ID)
	assert.Equal(t, "Deck", out.Title)
}

func TestClient_401IsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "No active account found with the given credentials"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	err := client.Post(context.Background(), "/auth/jwt/create", map[string]string{"username": "alice", "password": "wrong"}, nil)
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Contains(t, err.Error(), "No active account")
}

func TestClient_400IsValidationErrorWithFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"title": ["This field may not be blank."], "budget": ["A valid number is required."]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	err := client.Post(context.Background(), "/projects/", map[string]string{}, nil)
	require.Error(t, err)
	require.True(t, IsValidation(err))
	// Field errors render verbatim, field by field, joined into one message.
	assert.Equal(t, "budget: A valid number is required. | title: This field may not be blank.", err.Error())
}

func TestClient_404IsNotFoundOrMethodError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	err := client.Get(context.Background(), "/auth/users/me/", nil)
	assert.True(t, IsNotFoundOrMethod(err))
}

func TestClient_405IsNotFoundOrMethodError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	err := client.Get(context.Background(), "/auth/users/me/", nil)
	assert.True(t, IsNotFoundOrMethod(err))
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", nil)
	err := client.Get(context.Background(), "/projects/", nil)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	// User-facing text never exposes internals.
	assert.Equal(t, "something went wrong", err.Error())
}

func TestClient_Origin(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"http://localhost:8000", "http://localhost:8000"},
		{"http://127.0.0.1:8000/api", "http://127.0.0.1:8000"},
		{"https://example.com/api/", "https://example.com"},
	}
	for _, tc := range cases {
		client := NewClient(tc.base, nil)
		assert.Equal(t, tc.want, client.Origin(), "base %q", tc.base)
	}
}

func TestClient_MultipartFormFieldOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, []string{"Deck", "Outdoor"}, []string{r.FormValue("title"), r.FormValue("category")})
		assert.Equal(t, []string{"front", "back"}, r.MultipartForm.Value["captions"])
		assert.Len(t, r.MultipartForm.File["images"], 2)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 1}`))
	}))
	defer server.Close()

	form := NewForm().
		Add("title", "Deck").
		Add("category", "Outdoor").
		Add("captions", "front").
		Add("captions", "back").
		AddFileBytes("images", "a.jpg", []byte("aaa")).
		AddFileBytes("images", "b.jpg", []byte("bbb"))

	client := NewClient(server.URL, nil)
	var out struct {
		ID int `json:"id"`
	}
	require.NoError(t, client.PostForm(context.Background(), "/projects/1/images/", form, &out))
	assert.Equal(t, 1, out.ID)
}
