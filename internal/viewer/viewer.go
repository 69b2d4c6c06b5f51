// Package viewer renders a document session into a standalone HTML page:
// translated pages as HTML fragments, failed pages as inline error boxes,
// and pages still in flight as their rasterized originals.
package viewer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/pagelingo/pagelingo/internal/session"
)

var pageTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 52rem; margin: 0 auto; padding: 1rem; background: #f5f5f0; color: #1a1a1a; }
.page { background: #fff; border: 1px solid #ddd; border-radius: 4px; padding: 2rem; margin-bottom: 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.page-header { font-size: .75rem; color: #999; text-transform: uppercase; letter-spacing: .08em; margin-bottom: 1rem; }
.page img { max-width: 100%; }
.page table { border-collapse: collapse; width: 100%; }
.page td, .page th { border: 1px solid #ccc; padding: .3rem .5rem; }
.page-error { background: #fdf2f2; border: 1px solid #e0b4b4; color: #9f3a38; padding: 1rem; border-radius: 4px; }
.page-pending { color: #999; font-style: italic; }
.doc-error { background: #fdf2f2; border: 1px solid #e0b4b4; color: #9f3a38; padding: 2rem; border-radius: 4px; text-align: center; }
.no-content { color: #999; font-style: italic; }
</style>
</head>
<body>
{{- if .DocError}}
<div class="doc-error">
<p>Document processing failed: {{.DocError}}</p>
<p>Upload the document again to retry.</p>
</div>
{{- end}}
{{- range .Pages}}
<div class="page" id="page-{{.Number}}">
<div class="page-header">Page {{.Number}} of {{$.Total}}</div>
{{.Body}}
</div>
{{- end}}
</body>
</html>
`))

type pageView struct {
	Number int
	Body   template.HTML
}

type documentView struct {
	Title    string
	Total    int
	DocError string
	Pages    []pageView
}

// RenderDocument produces a self-contained HTML view of the session.
func RenderDocument(snap session.Snapshot) (string, error) {
	view := documentView{
		Title: "Translated Document",
		Total: snap.TotalPages,
	}
	if snap.State == session.StateError {
		view.DocError = snap.Error
	}

	for _, page := range snap.Pages {
		view.Pages = append(view.Pages, pageView{
			Number: page.PageNumber,
			Body:   renderPage(page),
		})
	}

	var buf strings.Builder
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render document view: %w", err)
	}
	return buf.String(), nil
}

// renderPage picks the body for one page. Completed HTML comes straight
// from the backend and is trusted; everything else is escaped.
func renderPage(page session.PageResult) template.HTML {
	switch page.Status {
	case session.StatusCompleted:
		return template.HTML(page.HTML)
	case session.StatusFailed:
		return template.HTML(fmt.Sprintf(
			`<div class="page-error">Translation failed: %s</div>`,
			template.HTMLEscapeString(page.Error),
		))
	default:
		if page.ImageDataURL != "" {
			return template.HTML(fmt.Sprintf(
				`<img src="%s" alt="Page %d, translation in progress">`,
				template.HTMLEscapeString(page.ImageDataURL), page.PageNumber,
			))
		}
		return template.HTML(`<p class="page-pending">Waiting for translation.</p>`)
	}
}
