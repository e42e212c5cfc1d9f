// Package web provides the HTTP front door for go-ttsweb
package web

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"path"
	"path/filepath"
	texttemplate "text/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-ttsweb/internal/config"
)

const htmlContentType = "text/html; charset=utf-8"

// ErrorPageData feeds the embedded error page
type ErrorPageData struct {
	TemplateData
	StatusCode int
	StatusText string
	Error      string
	Detail     string // debug mode only
	Stack      string // debug mode only, set for recovered panics
}

// GetPort returns the listening port from the config
func (s *WebServer) GetPort() int {
	return s.Config.ListenPort
}

// getBaseTemplateData creates the TemplateData common to all pages
func (s *WebServer) getBaseTemplateData() TemplateData {
	return TemplateData{
		AppVersion:  config.AppVersion,
		CurrentTime: time.Now().Format("2006-01-02 15:04:05"),
		Port:        s.GetPort(),
		Debug:       s.Config.Debug,
	}
}

// templateFuncs are the helpers page templates may call
func (s *WebServer) templateFuncs() texttemplate.FuncMap {
	return texttemplate.FuncMap{
		// {{ static "js/tts.js" }} -> /static/js/tts.js
		"static": func(name string) string {
			return path.Join("/static", name)
		},
		"livereload": func() string {
			if s.Reload == nil {
				return ""
			}
			return `<script src="/__reload/client.js" defer></script>`
		},
	}
}

// renderTemplate parses templateName from the template directory and renders it.
// Page templates go through text/template: literal markup, comments and inline
// scripts included, is written out byte for byte. Output is buffered so a
// failing template still yields a clean error page.
func (s *WebServer) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	file := filepath.Join(s.Config.TemplateDir, templateName)
	base := filepath.Base(file)

	tmpl, err := texttemplate.New(base).Funcs(s.templateFuncs()).ParseFiles(file)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Template error", err.Error())
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, base, data); err != nil {
		log.Printf("[WEB]: Error rendering template %s: %v", templateName, err)
		s.renderError(c, http.StatusInternalServerError, "Template error", err.Error())
		return
	}
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

// renderError renders an error page
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	s.writeErrorPage(c, statusCode, message, errstring, nil)
}

func (s *WebServer) writeErrorPage(c *gin.Context, statusCode int, message string, errstring string, stack []byte) {
	log.Printf("[WEB]: Error %d: %s - %s", statusCode, message, errstring)

	errorData := ErrorPageData{
		TemplateData: s.getBaseTemplateData(),
		StatusCode:   statusCode,
		StatusText:   http.StatusText(statusCode),
		Error:        message,
	}
	if s.Config.Debug {
		errorData.Detail = errstring
		errorData.Stack = string(stack)
	}

	tmpl, err := template.ParseFS(EmbeddedStaticFS, "static/error.html")
	if err != nil {
		log.Printf("[WEB]: Error loading error template: %v", err)
		c.String(statusCode, "Error: %s", message)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "error.html", errorData); err != nil {
		log.Printf("[WEB]: Error rendering error template: %v", err)
		c.String(statusCode, "Error: %s", message)
		return
	}
	c.Data(statusCode, htmlContentType, buf.Bytes())
}
