// Package web holds the static assets served by the API process.
package web

import (
	_ "embed"
	"html/template"
	"io"
)

//go:embed index.html
var indexHTML string

//go:embed openapi.json
var OpenAPI []byte

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// RenderIndex writes the dashboard page wired to the push channel at hubPath.
func RenderIndex(w io.Writer, hubPath string) error {
	return indexTemplate.Execute(w, struct{ HubPath string }{HubPath: hubPath})
}
