// Package fastview implements server-pushed html views: a ViewComponent
// nests its template under a parent page template and emits a stream of
// EleUpdates as its underlying data changes; Client publishes one
// component's updates over a websocket. Adapted from
// tabular/server/fastview/models.go and client.go; EleUpdate/Op/
// ViewComponent are kept verbatim since they are already domain-agnostic.
package fastview

import (
	"html/template"
)

// EleUpdate is an element identifier and a set of operations to apply to
// its attributes/content.
type EleUpdate struct {
	// EleId is the id by which to find the element.
	EleId string
	// Ops are attrib keys or 'textContent', paired with the strings to set
	// them to. ("textContent", "#") means ele.textContent = "#".
	Ops []Op
}

// Op is a key and value, e.g. an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// ViewComponent is a server-pushed view: Parse adds its template to a
// parent template (so multiple views can nest under one page), and
// Updates exposes the channel of ele-updates it emits as new data arrives.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	Parse(*template.Template) (name string, err error)
}
