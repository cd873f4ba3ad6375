package server

import (
	_ "embed"
	"net/http"
)

const (
	openAPIPath = "/openapi.yaml"
	docsPath    = "/docs"
)

// openAPISpec is the API description served at openAPIPath
//
//go:embed openapi.yaml
var openAPISpec []byte

// docsPage renders openAPISpec with Redoc
var docsPage = []byte(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>bobvalue API</title>
  </head>
  <body>
    <redoc spec-url="` + openAPIPath + `"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
  </body>
</html>`)

// OpenAPI serves the embedded OpenAPI description
func (s *Server) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	writeStatic(w, "application/yaml; charset=utf-8", openAPISpec)
}

// Redoc serves the API documentation page
func (s *Server) Redoc(w http.ResponseWriter, _ *http.Request) {
	writeStatic(w, "text/html; charset=utf-8", docsPage)
}

// writeStatic writes a body that only changes between releases
func writeStatic(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(body) //nolint:errcheck // Fine to ignore
}
