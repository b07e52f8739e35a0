package dashboard

import (
	"embed"
	"html/template"
)

//go:embed templates/*.template
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/page.html.template"))
