// spa/spa.go

/* The spa package mounts the frontend on every non-API path. In production it
serves the built bundle from a directory, falling back to index.html on
unknown paths so the client-side router owns them. In development it reverse
proxies to the frontend dev server instead, keeping API and UI on one origin
so the browser needs no CORS story. */

package spa

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// NewHandler returns the handler for non-API paths. A non-empty devProxyURL
// wins over staticDir.
func NewHandler(staticDir, devProxyURL string, sugar *zap.SugaredLogger) (http.Handler, error) {
	if devProxyURL != "" {
		return newDevProxy(devProxyURL, sugar)
	}
	return &staticHandler{dir: staticDir, sugar: sugar}, nil
}

func newDevProxy(rawURL string, sugar *zap.SugaredLogger) (http.Handler, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid dev proxy URL %q: %w", rawURL, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("dev proxy URL %q must use http or https", rawURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		sugar.Warnw("Dev proxy request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "frontend dev server unreachable", http.StatusBadGateway)
	}
	sugar.Infow("Proxying non-API paths to frontend dev server", "target", target.String())
	return proxy, nil
}

// staticHandler serves files from dir, answering index.html for any path that
// does not name a real file.
type staticHandler struct {
	dir   string
	sugar *zap.SugaredLogger
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if path, ok := safeJoin(h.dir, r.URL.Path); ok {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			h.serveFile(w, r, path)
			return
		}
	}
	h.serveFile(w, r, filepath.Join(h.dir, "index.html"))
}

// serveFile answers with the file at path. ServeContent is used instead of
// ServeFile so the handler controls path resolution itself.
func (h *staticHandler) serveFile(w http.ResponseWriter, r *http.Request, path string) {
	file, err := os.Open(path)
	if err != nil {
		h.sugar.Debugw("Static file unavailable", "path", path, "error", err)
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

// safeJoin resolves requestPath inside baseDir, refusing paths that would
// escape it.
func safeJoin(baseDir, requestPath string) (string, bool) {
	trimmed := strings.TrimPrefix(requestPath, "/")
	cleaned := filepath.Clean(trimmed)
	if cleaned == "." {
		return filepath.Join(baseDir, "index.html"), true
	}
	if strings.HasPrefix(cleaned, "..") {
		return "", false
	}
	return filepath.Join(baseDir, cleaned), true
}
