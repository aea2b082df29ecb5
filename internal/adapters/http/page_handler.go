package http

import (
	"embed"
	"html/template"
	"net/http"

	"authform/internal/logger"
)

//go:embed web/index.html
var webFS embed.FS

var indexTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

type PageHandler struct {
	log logger.Logger
}

func NewPageHandler(log logger.Logger) *PageHandler {
	return &PageHandler{log: log}
}

type pageData struct {
	Title string
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, pageData{Title: "Login"}); err != nil {
		h.log.Error("http: failed to render page", "error", err)
	}
}
