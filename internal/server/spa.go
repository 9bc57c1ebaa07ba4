package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// handleSPA serves the engine front-end bundles from dir. Each top-level
// directory is one bundle (dir/quiz, dir/sentence-order); a path that is not
// a real file falls back to the bundle's index.html, then to dir/index.html.
func handleSPA(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))

	return func(w http.ResponseWriter, r *http.Request) {
		clean := path.Clean("/" + r.URL.Path)
		if isFile(filepath.Join(dir, filepath.FromSlash(clean))) {
			fileServer.ServeHTTP(w, r)
			return
		}

		bundle, _, _ := strings.Cut(strings.TrimPrefix(clean, "/"), "/")
		if bundle != "" {
			if index := filepath.Join(dir, bundle, "index.html"); isFile(index) {
				http.ServeFile(w, r, index)
				return
			}
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
