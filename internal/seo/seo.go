package seo

import "html/template"

// OpenGraph carries og: tag values for the page head.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
}

// Meta is the per-page head metadata rendered by the base layout.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
	JSONLD      []template.JS
}
