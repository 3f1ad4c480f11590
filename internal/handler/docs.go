package handler

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Minimal HTML that loads Swagger UI from a CDN and points to /openapi.yaml.
// The OpenAPI document and page are compiled in, so the binary serves them from any working directory.
//
//go:embed docs/openapi.yaml docs/swagger.html
var docsFS embed.FS

// RegisterDocs mounts documentation endpoints at the root:
//   - GET /openapi.yaml: raw OpenAPI document
//   - GET /docs: Swagger UI rendering of it
func RegisterDocs(r *gin.Engine) {
	r.GET("/openapi.yaml", func(c *gin.Context) {
		serveDoc(c, "docs/openapi.yaml", "application/yaml; charset=utf-8")
	})
	r.GET("/docs", func(c *gin.Context) {
		serveDoc(c, "docs/swagger.html", "text/html; charset=utf-8")
	})
}

func serveDoc(c *gin.Context, name, contentType string) {
	data, err := docsFS.ReadFile(name)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to read %s: %v", name, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
