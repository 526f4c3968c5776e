package handler

import (
	"html/template"
	"net/http"

	"github.com/teleperson/demo-generator/web"
)

// pageCache maps a page name to its compiled template.
var pageCache = map[string]*template.Template{
	"index.html": template.Must(template.ParseFS(web.TemplateFS, "templates/index.html")),
}

// render executes a full-page template.
func render(w http.ResponseWriter, tmpl string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	t, ok := pageCache[tmpl]
	if !ok {
		http.Error(w, "template not found: "+tmpl, http.StatusInternalServerError)
		return
	}
	if err := t.Execute(w, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
	}
}
