package httpapi

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// OpenAPIPath serves the hand-maintained API description.
const OpenAPIPath = "/api-docs/openapi.json"

//go:embed docs/openapi.json
var openAPIDocument []byte

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Light API - Swagger UI</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: %q, dom_id: "#swagger-ui" });
  </script>
</body>
</html>
`

const redocPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Light API - ReDoc</title>
</head>
<body>
  <redoc spec-url=%q></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>
`

const rapidocPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Light API - RapiDoc</title>
  <script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>
</head>
<body>
  <rapi-doc spec-url=%q render-style="read"></rapi-doc>
</body>
</html>
`

func registerDocs(r *mux.Router) {
	r.HandleFunc(OpenAPIPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAPIDocument)
	}).Methods(http.MethodGet)

	pages := map[string]string{
		"/swagger-ui": swaggerUIPage,
		"/redoc":      redocPage,
		"/rapidoc":    rapidocPage,
	}
	for path, tmpl := range pages {
		body := []byte(fmt.Sprintf(tmpl, OpenAPIPath))
		page := func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
		}
		r.HandleFunc(path, page).Methods(http.MethodGet)
		r.HandleFunc(path+"/", page).Methods(http.MethodGet)
	}
}
