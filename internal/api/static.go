package api

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// StaticAssets manages static file serving with content-hash cache busting.
// Files are served with a version query parameter; when the hash matches,
// responses carry immutable cache headers, and changed files get a new
// hash that forces browsers to refetch.
type StaticAssets struct {
	mu     sync.RWMutex
	hashes map[string]string // path -> content hash
	dir    string
}

// NewStaticAssets creates a StaticAssets manager that scans the given directory.
func NewStaticAssets(dir string, logger *slog.Logger) *StaticAssets {
	sa := &StaticAssets{
		hashes: make(map[string]string),
		dir:    dir,
	}
	sa.scan(logger)
	return sa
}

// Path returns a cache-busted URL for a static file.
// Example: Path("/css/styles.css") returns "/static/css/styles.css?v=a1b2c3d4"
func (sa *StaticAssets) Path(filePath string) string {
	sa.mu.RLock()
	hash, ok := sa.hashes[filePath]
	sa.mu.RUnlock()

	if !ok {
		return "/static" + filePath
	}
	return "/static" + filePath + "?v=" + hash[:12]
}

// Handler returns an HTTP handler that serves static files with appropriate cache headers.
func (sa *StaticAssets) Handler(basePath string) http.Handler {
	fileServer := http.FileServer(http.Dir(sa.dir))
	stripped := http.StripPrefix(basePath+"/static/", fileServer)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v := r.URL.Query().Get("v"); v != "" {
			relativePath := strings.TrimPrefix(r.URL.Path, basePath+"/static")
			sa.mu.RLock()
			expectedHash, exists := sa.hashes[relativePath]
			sa.mu.RUnlock()

			if exists && strings.HasPrefix(expectedHash, v) {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			} else {
				// Hash mismatch - serve but don't cache aggressively
				w.Header().Set("Cache-Control", "public, max-age=3600")
			}
		} else {
			// No version parameter - short cache to allow updates
			w.Header().Set("Cache-Control", "public, max-age=300")
		}

		stripped.ServeHTTP(w, r)
	})
}

func (sa *StaticAssets) scan(logger *slog.Logger) {
	hashes := make(map[string]string)

	filepath.WalkDir(sa.dir, func(path string, d fs.DirEntry, err error) error { //nolint:errcheck
		if err != nil || d.IsDir() {
			return nil
		}

		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the configured static dir
		if err != nil {
			logger.Warn("failed to hash static file", "path", path, "error", err)
			return nil
		}

		h := sha256.Sum256(data)
		relativePath := "/" + strings.ReplaceAll(strings.TrimPrefix(path, sa.dir), "\\", "/")
		relativePath = strings.TrimPrefix(relativePath, "/")
		relativePath = "/" + relativePath
		hashes[relativePath] = hex.EncodeToString(h[:])

		return nil
	})

	sa.mu.Lock()
	sa.hashes = hashes
	sa.mu.Unlock()

	logger.Info("static assets scanned", slog.Int("files", len(hashes)))
}
