package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title    string
	Heading  string
	CTALabel string
	CTAURL   string
}

type quotationSentEmailData struct {
	baseEmailData
	ContactName string
	OrderRef    string
	Total       string
	Message     string
}

type quotationRevisedEmailData struct {
	baseEmailData
	ContactName string
	OrderRef    string
	Total       string
	Notes       string
}

type quotationCounteredEmailData struct {
	baseEmailData
	ContactName string
	OrderRef    string
	Total       string
	Notes       string
}

type quotationFollowUpEmailData struct {
	baseEmailData
	ContactName string
	OrderRef    string
}

type quotationAcceptedEmailData struct {
	baseEmailData
	ContactName string
	OrderRef    string
	Total       string
}

type quotationRejectedEmailData struct {
	baseEmailData
	ContactName string
	OrderRef    string
	Reason      string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
