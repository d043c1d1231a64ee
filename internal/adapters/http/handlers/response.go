package handlers

import (
	"embed"
	"html/template"
)

const errorTemplate = "error.tmpl"

//go:embed templates/*.tmpl
var templateFS embed.FS

type Response struct {
	Message string `json:"message" example:"success"`
	Data    any    `json:"data"`
}

type ErrorResponse struct {
	Message string `json:"message" example:"Internal Server Error"`
	Error   string `json:"error,omitempty"`
}

// Templates returns the views used by the error chain.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))
}
