package cli

import (
	"fmt"
	"text/template"
	"time"

	"github.com/iudanet/facialanalyzer/internal/client/iocli"
	"github.com/iudanet/facialanalyzer/internal/client/storage"
)

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string { return t.Local().Format("2006-01-02 15:04:05") },
}

var userTemplate = template.Must(template.New("user").Funcs(funcs).Parse(`
=== Account ===

ID:       {{.ID}}
Email:    {{.Email}}{{if .IsEmailVerified}} (verified){{else}} (not verified){{end}}
Name:     {{.Name}}
{{- with .CreatedAt}}
Created:  {{datetime .}}
{{- end}}
{{- with .Profile}}
{{- if .Age}}
Age:      {{.Age}}
{{- end}}
{{- if .Gender}}
Gender:   {{.Gender}}
{{- end}}
{{- if .SkinType}}
Skin:     {{.SkinType}}
{{- end}}
{{- end}}
`))

var statusTemplate = template.Must(template.New("status").Funcs(funcs).Parse(`
=== Authentication Status ===

Status:   Authenticated
Server:   {{.Session.ServerURL}}
Email:    {{.Session.Email}}{{if not .Session.EmailVerified}} (not verified){{end}}
Name:     {{.Session.Name}}
Access token expires: {{datetime .Session.AccessExpiresAt}}
{{- if gt .Remaining 0}}
Time remaining: {{.Remaining}}
{{- else}}
Access token has expired, it will be refreshed on the next request.
{{- end}}
`))

type statusView struct {
	Session   *storage.SessionData
	Remaining time.Duration
}

func render(io iocli.IO, tmpl *template.Template, data any) error {
	if err := tmpl.Execute(io, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return nil
}
