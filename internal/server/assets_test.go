package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surepl/commit-census/cfg"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, _ := loader.Load()
	s, err := NewServer(nopLogger{}, config, config.Server.Port)
	require.NoError(t, err)
	return s
}

func withAssets(t *testing.T, assets map[string]string) {
	t.Helper()
	saved := playerAssets
	playerAssets = assets
	t.Cleanup(func() { playerAssets = saved })
}

func TestEnsureAssetsDownloadsMissingFiles(t *testing.T) {
	var hits int64
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte("bundle " + r.URL.Path))
	}))
	defer cdn.Close()

	dir := t.TempDir()
	withAssets(t, map[string]string{
		"player.min.js": cdn.URL + "/player.min.js",
		"player.css":    cdn.URL + "/player.css",
	})

	s := newTestServer(t)
	s.EnsureAssets(context.Background(), dir)

	assert.EqualValues(t, 2, atomic.LoadInt64(&hits))
	for _, name := range []string{"player.min.js", "player.css"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "bundle /"+name, string(data))
	}
}

func TestEnsureAssetsSkipsExistingFiles(t *testing.T) {
	var hits int64
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
	}))
	defer cdn.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "player.css"), []byte("custom"), 0644))
	withAssets(t, map[string]string{"player.css": cdn.URL + "/player.css"})

	s := newTestServer(t)
	s.EnsureAssets(context.Background(), dir)

	assert.Zero(t, atomic.LoadInt64(&hits))
	data, _ := os.ReadFile(filepath.Join(dir, "player.css"))
	assert.Equal(t, "custom", string(data), "existing assets are never overwritten")
}

func TestEnsureAssetsToleratesDownloadFailure(t *testing.T) {
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer cdn.Close()

	dir := t.TempDir()
	withAssets(t, map[string]string{"player.css": cdn.URL + "/player.css"})

	s := newTestServer(t)
	s.EnsureAssets(context.Background(), dir)

	_, err := os.Stat(filepath.Join(dir, "player.css"))
	assert.True(t, os.IsNotExist(err), "failed downloads leave nothing behind")
}

func TestEnsureAssetsToleratesUnreachableCDN(t *testing.T) {
	dir := t.TempDir()
	withAssets(t, map[string]string{"player.css": "http://127.0.0.1:1/player.css"})

	s := newTestServer(t)
	s.EnsureAssets(context.Background(), dir)

	_, err := os.Stat(filepath.Join(dir, "player.css"))
	assert.True(t, os.IsNotExist(err))
}
