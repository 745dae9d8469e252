package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// playerAssets maps the on-disk asset names to their CDN locations.
// The player page references both by relative path.
var playerAssets = map[string]string{
	"asciinema-player.min.js": "https://cdn.jsdelivr.net/npm/asciinema-player@3.14.0/dist/bundle/asciinema-player.min.js",
	"asciinema-player.css":    "https://cdn.jsdelivr.net/npm/asciinema-player@3.14.0/dist/bundle/asciinema-player.css",
}

// EnsureAssets downloads the player bundle into dir unless the files
// are already there. A failed download only logs a warning; the server
// still starts and serves whatever is on disk.
func (s *Server) EnsureAssets(ctx context.Context, dir string) {
	client := &http.Client{Timeout: 20 * time.Second}
	for name, url := range playerAssets {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		s.Logger.Info(ctx, "Downloading %s...", name)
		if err := download(ctx, client, url, path); err != nil {
			s.Logger.Warn(ctx, "failed to download %s: %v", name, err)
			continue
		}
		s.Logger.Info(ctx, "Saved %s", name)
	}
}

func download(ctx context.Context, client *http.Client, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
