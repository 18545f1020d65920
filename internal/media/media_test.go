package media

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_ToURL(t *testing.T) {
	n := NewNormalizer("http://127.0.0.1:8000")

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"absolute http", "http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"absolute https mixed case", "HTTPS://cdn.example.com/a.jpg", "HTTPS://cdn.example.com/a.jpg"},
		{"rooted path", "/media/covers/deck.jpg", "http://127.0.0.1:8000/media/covers/deck.jpg"},
		{"bare path", "media/covers/deck.jpg", "http://127.0.0.1:8000/media/covers/deck.jpg"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, n.ToURL(tc.in))
		})
	}
}

func TestRef_UnmarshalLooseShapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain string", `"/media/a.jpg"`, "/media/a.jpg"},
		{"url key", `{"url": "/media/a.jpg"}`, "/media/a.jpg"},
		{"image key", `{"image": "/media/b.jpg"}`, "/media/b.jpg"},
		{"src key", `{"src": "/media/c.jpg"}`, "/media/c.jpg"},
		{"file key", `{"file": "/media/d.jpg"}`, "/media/d.jpg"},
		{"url wins over file", `{"file": "/f.jpg", "url": "/u.jpg"}`, "/u.jpg"},
		{"null", `null`, ""},
		{"empty object", `{}`, ""},
		{"number is no media", `42`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var r Ref
			require.NoError(t, json.Unmarshal([]byte(tc.in), &r))
			assert.Equal(t, tc.want, r.Path)
			assert.Equal(t, tc.want == "", r.IsZero())
		})
	}
}

func TestRef_KeepsCaption(t *testing.T) {
	var r Ref
	require.NoError(t, json.Unmarshal([]byte(`{"image": "/media/a.jpg", "caption": "Front porch"}`), &r))
	assert.Equal(t, "Front porch", r.Caption)
	assert.Equal(t, "/media/a.jpg", r.Path)
}
