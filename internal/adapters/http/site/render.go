package site

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/okian/arcade/internal/domain/ranking"
	"github.com/okian/arcade/pkg/logger"
)

var pageNames = []string{"home", "leaderboard", "submit", "vote", "mission", "instructions"}

type pages map[string]*template.Template

var funcs = template.FuncMap{
	"pad": ranking.PadPoints,
	"temp": func(f float64) string {
		return fmt.Sprintf("%.1f", f)
	},
}

func parsePages() (pages, error) {
	p := make(pages, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		p[name] = t
	}
	return p, nil
}

// render writes a page. Output is buffered so a template failure yields a
// clean 500 instead of a truncated page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data page) {
	t, ok := h.pages[name]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.log.Error(r.Context(), "render page", logger.String("page", name), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
