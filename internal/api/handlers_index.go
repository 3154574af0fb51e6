package api

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/upload"
)

//go:embed web/index.html
var webFS embed.FS

var indexTemplate = template.Must(template.ParseFS(webFS, "web/index.html"))

type indexPage struct {
	MaxUpload     string
	Accept        string
	PasswordField bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	exts := make([]string, 0, len(s.cfg.AllowedExtensions))
	for _, e := range s.cfg.AllowedExtensions {
		exts = append(exts, "."+strings.TrimPrefix(strings.ToLower(e), "."))
	}
	page := indexPage{
		MaxUpload:     upload.HumanBytes(s.cfg.MaxUploadBytes),
		Accept:        strings.Join(exts, ","),
		PasswordField: s.cfg.PasswordFieldEnabled,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		s.log.Error("render index", "error", err)
	}
}
