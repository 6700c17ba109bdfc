package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// WithSPA serves the single-page frontend alongside the API. Paths under
// /api/ go to the router, real files under webDir are served with caching
// disabled, and everything else falls back to index.html so client-side
// routes survive a reload.
func WithSPA(apiHandler http.Handler, webDir string) http.Handler {
	static := http.FileServer(http.Dir(webDir))
	indexPath := filepath.Join(webDir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if rel != "" && rel != "." {
			if info, err := os.Stat(filepath.Join(webDir, rel)); err == nil && !info.IsDir() {
				static.ServeHTTP(w, r)
				return
			}
		}
		if _, err := os.Stat(indexPath); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, indexPath)
	})
}
