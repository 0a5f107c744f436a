// Package web embeds the dashboard host page and its assets and turns the
// page template into a document the widgets can draw into.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/goodsign/monday"

	"finboard/internal/view"
)

// PageTemplate is the host page every dashboard is drawn into.
const PageTemplate = "dashboard.html"

// Page is the data the host page template is executed with.
type Page struct {
	// DashboardID is the session tab clicks are posted to. Empty for
	// offline renders, which disables the click handler.
	DashboardID string
	Title       string
	Anchors     view.Anchors
	Locale      monday.Locale
	Generated   time.Time
	// Standalone inlines the page script and stylesheet so the file works
	// without the server.
	Standalone bool
}

// GeneratedLabel is the localized render date shown in the page header.
func (p Page) GeneratedLabel() string {
	if p.Generated.IsZero() {
		return ""
	}
	return monday.Format(p.Generated, "2 January 2006 15:04", p.Locale)
}

// Lang is the page language derived from the locale, e.g. "it" for it_IT.
func (p Page) Lang() string {
	if len(p.Locale) < 2 {
		return "en"
	}
	return string(p.Locale)[:2]
}

// InlineCSS is the embedded stylesheet for standalone pages.
func (p Page) InlineCSS() template.CSS {
	b, _ := StaticFS.ReadFile("static/dashboard.css")
	return template.CSS(b)
}

// InlineJS is the embedded page script for standalone pages.
func (p Page) InlineJS() template.JS {
	b, _ := StaticFS.ReadFile("static/dashboard.js")
	return template.JS(b)
}

// Shell renders host pages from the embedded template.
type Shell struct {
	tmpl *template.Template
}

// NewShell parses the embedded templates.
func NewShell() (*Shell, error) {
	t, err := template.ParseFS(TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Shell{tmpl: t}, nil
}

// Document executes the host page and parses it into a node tree.
func (s *Shell) Document(p Page) (*view.Document, error) {
	if p.Title == "" {
		p.Title = "Financial Dashboard"
	}
	if p.Locale == "" {
		p.Locale = monday.LocaleEnUS
	}
	p.Anchors = view.DefaultAnchors().Merge(p.Anchors)

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, PageTemplate, p); err != nil {
		return nil, fmt.Errorf("execute %s: %w", PageTemplate, err)
	}
	doc, err := view.Parse(&buf)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", PageTemplate, err)
	}
	return doc, nil
}
