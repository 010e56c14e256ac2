// Package web embeds the site's page markup. The pages are static shells
// carrying data-role mount points; the widget layer fills them in.
package web

import (
	"embed"
	"fmt"
	"net/http"
	"path"

	"github.com/pawsteps/platform/pkg/logging"
)

//go:embed templates/*.html
var templates embed.FS

// Routes maps URL paths to template names.
var Routes = map[string]string{
	"/":         "index",
	"/services": "services",
	"/about":    "about",
	"/contact":  "contact",
	"/book":     "book",
	"/admin":    "admin",
}

// Page returns the raw markup for a template name.
func Page(name string) ([]byte, error) {
	raw, err := templates.ReadFile(path.Join("templates", name+".html"))
	if err != nil {
		return nil, fmt.Errorf("web: read page %q: %w", name, err)
	}
	return raw, nil
}

// PageNames returns every routable template name.
func PageNames() []string {
	names := make([]string, 0, len(Routes))
	for _, name := range Routes {
		names = append(names, name)
	}
	return names
}

// Handler serves the embedded pages at their routes.
func Handler(logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, ok := Routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		raw, err := Page(name)
		if err != nil {
			logger.Error("page read failed", "page", name, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(raw)
	})
}
