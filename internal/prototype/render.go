// Package prototype renders the branded demo page that hosts the chat widget.
package prototype

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/teleperson/demo-generator/web"
)

// DefaultColor is used when the researched brand color is missing or not a
// plain CSS color.
const DefaultColor = "#4F46E5"

// ChatEndpoint is where the widget posts chat turns.
const ChatEndpoint = "/chat"

var (
	tmpl = template.Must(template.ParseFS(web.TemplateFS, "templates/prototype.html"))

	hexColor   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]{3,24}$`)
	funcColor  = regexp.MustCompile(`^(?:rgb|rgba|hsl|hsla)\(\s*[0-9.]+%?\s*(?:,\s*[0-9.]+%?\s*){2,3}\)$`)
)

// Page is the data a demo page is rendered from.
type Page struct {
	CompanyName  string
	Slug         string
	PrimaryColor string
	Services     string
	PromptName   string
}

type view struct {
	CompanyName  string
	Slug         string
	PrimaryColor template.CSS
	Services     string
	PromptName   string
	ChatEndpoint string
}

// Render returns the complete HTML document for p. Every value is escaped for
// the context it lands in; the brand color is only emitted once it has been
// checked against the accepted color forms.
func Render(p Page) (string, error) {
	v := view{
		CompanyName:  p.CompanyName,
		Slug:         p.Slug,
		PrimaryColor: template.CSS(Color(p.PrimaryColor)),
		Services:     p.Services,
		PromptName:   p.PromptName,
		ChatEndpoint: ChatEndpoint,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render prototype %s: %w", p.Slug, err)
	}
	return buf.String(), nil
}

// Color returns c when it is a hex, named, or rgb/hsl functional color, and
// DefaultColor otherwise.
func Color(c string) string {
	c = strings.TrimSpace(c)
	switch {
	case hexColor.MatchString(c), namedColor.MatchString(c), funcColor.MatchString(c):
		return c
	default:
		return DefaultColor
	}
}
