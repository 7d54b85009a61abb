package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// ContentHandler serves a static page bundle from a directory, falling back
// to its index file for unknown paths.
type ContentHandler struct {
	staticDir string
	indexFile string
}

func NewContentHandler(staticDir, indexFile string) *ContentHandler {
	if indexFile == "" {
		indexFile = "index.html"
	}
	return &ContentHandler{
		staticDir: staticDir,
		indexFile: indexFile,
	}
}

func (h *ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Get the wildcard path from Chi router context
	rel := r.URL.Path
	if chi.RouteContext(r.Context()) != nil {
		rel = chi.URLParam(r, "*")
	}

	// Cleaning against "/" keeps the result inside staticDir.
	filePath := filepath.Join(h.staticDir, filepath.FromSlash(path.Clean("/"+rel)))

	info, err := os.Stat(filePath)
	if err == nil && !info.IsDir() {
		http.ServeFile(w, r, filePath)
		return
	}

	indexPath := filepath.Join(h.staticDir, h.indexFile)
	if _, err := os.Stat(indexPath); err != nil {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, indexPath)
}
