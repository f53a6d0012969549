package mailservice

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrUnknownTemplate = errors.New("unknown mail template")

// loadTemplates parses every named file under templates/ once. Each file must define the
// subject, plainBody and htmlBody blocks.
func loadTemplates(names ...string) (*Templates, error) {
	set := make(map[string]*template.Template, len(names))

	for _, name := range names {
		t, err := template.New(name).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("could not parse template %s: %w", name, err)
		}

		for _, block := range []string{"subject", "plainBody", "htmlBody"} {
			if t.Lookup(block) == nil {
				return nil, fmt.Errorf("template %s does not define %q", name, block)
			}
		}

		set[name] = t
	}

	return &Templates{set: set}, nil
}

// Render executes the parsed template with the notification data.
func (tp *Templates) Render(name string, data map[string]string) (*Rendered, error) {
	t, ok := tp.set[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var out Rendered
	parts := []struct {
		block string
		dst   *string
	}{
		{"subject", &out.Subject},
		{"plainBody", &out.Plain},
		{"htmlBody", &out.HTML},
	}

	for _, p := range parts {
		var b strings.Builder
		if err := t.ExecuteTemplate(&b, p.block, data); err != nil {
			return nil, fmt.Errorf("could not render %s of %s: %w", p.block, name, err)
		}
		*p.dst = strings.TrimSpace(b.String())
	}

	return &out, nil
}
