package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

var mimeTypes = map[string]string{
	".html":  "text/html",
	".js":    "text/javascript",
	".css":   "text/css",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".eot":   "application/vnd.ms-fontobject",
}

// MimeType returns the content type for a file name, defaulting to text/plain.
func MimeType(name string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return "text/plain"
}

// resolveStatic maps a request path into root. ok is false when the result
// would fall outside root.
func resolveStatic(root, urlPath string) (string, bool) {
	if urlPath == "/" || urlPath == "" {
		urlPath = "/index.html"
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	target, err := filepath.Abs(filepath.Join(absRoot, strings.TrimLeft(urlPath, "/")))
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

func (s *Server) handleStatic(c echo.Context) error {
	if !s.cfg.Production {
		return c.String(http.StatusNotFound, "Not found (development mode - use Vite dev server)")
	}

	target, ok := resolveStatic(s.cfg.ServeDir, c.Request().URL.Path)
	if !ok {
		return c.String(http.StatusForbidden, "Forbidden")
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return c.String(http.StatusNotFound, "File not found")
	}
	return c.Blob(http.StatusOK, MimeType(target), data)
}
