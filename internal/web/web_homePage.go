// Package web provides the HTTP front door for go-ttsweb
package web

import (
	"github.com/gin-gonic/gin"
)

// homePage renders the index template. The file is read and parsed on every
// request, so edits show up without a restart.
func (s *WebServer) homePage(c *gin.Context) {
	s.renderTemplate(c, s.Config.IndexTemplate, s.getBaseTemplateData())
}
