package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.APIBase)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &Config{APIBase: "https://api.example.com", Theme: "dark"}
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestAPIBaseURL_EnvWins(t *testing.T) {
	t.Setenv(EnvAPIBase, "https://env.example.com/")
	got := APIBaseURL(&Config{APIBase: "https://file.example.com"})
	assert.Equal(t, "https://env.example.com", got)
}

func TestAPIBaseURL_Fallback(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	got := APIBaseURL(nil)
	assert.Equal(t, DefaultAPIBase, got)
}
