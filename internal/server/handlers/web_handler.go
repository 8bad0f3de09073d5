package handlers

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html web/script.js
var webFS embed.FS

// WebHandler serves the single-page pantry UI.
type WebHandler struct{}

// NewWebHandler constructs the UI handler.
func NewWebHandler() *WebHandler {
	return &WebHandler{}
}

// Home serves the HTML page.
func (h *WebHandler) Home(c *gin.Context) {
	serveEmbedded(c, "web/index.html", "text/html; charset=utf-8")
}

// Script serves the page script.
func (h *WebHandler) Script(c *gin.Context) {
	serveEmbedded(c, "web/script.js", "application/javascript; charset=utf-8")
}

func serveEmbedded(c *gin.Context, name, contentType string) {
	body, err := webFS.ReadFile(name)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, contentType, body)
}
