package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed *.html layouts/*.html
var files embed.FS

// Engine returns the template engine over the embedded page templates.
func Engine() *html.Engine {
	return html.NewFileSystem(http.FS(files), ".html")
}
