// Package openapi serves Swagger UI for the OpenAPI 3.1 document that huma
// generates for the gateway.
package openapi

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/labstack/echo/v4"
)

// SpecPath is where huma serves the JSON document with its default config.
const SpecPath = "/openapi.json"

var uiTemplate = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}} {{.Version}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: {{.SpecURL}},
      dom_id: "#swagger-ui",
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: "BaseLayout",
      tryItOutEnabled: true,
    });
  </script>
</body>
</html>`))

type page struct {
	Title   string
	Version string
	SpecURL string
}

// RegisterRoutes adds Swagger UI routes for api to the Echo instance. The
// page is rendered once from the API's info block.
func RegisterRoutes(e *echo.Echo, api huma.API) error {
	p := page{Title: "API", SpecURL: SpecPath}
	if info := api.OpenAPI().Info; info != nil {
		p.Title = info.Title
		p.Version = info.Version
	}

	var buf bytes.Buffer
	if err := uiTemplate.Execute(&buf, p); err != nil {
		return fmt.Errorf("rendering swagger UI: %w", err)
	}
	html := buf.String()

	e.GET("/swagger/index.html", func(c echo.Context) error {
		return c.HTML(http.StatusOK, html)
	})
	e.GET("/swagger", redirectToUI)
	e.GET("/swagger/", redirectToUI)
	return nil
}

func redirectToUI(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
}
