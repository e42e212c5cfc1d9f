// Package config provides configuration management for go-ttsweb.
package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"
)

var AppVersion = "-unset-" // will be set at build time

const (
	DefaultListenHost      = "127.0.0.1"
	DefaultListenPort      = 5000
	DefaultTemplateDir     = "templates"
	DefaultStaticDir       = "static"
	DefaultIndexTemplate   = "tts.html"
	DefaultShutdownTimeout = 5 * time.Second
)

// WebConfig holds web server configuration
type WebConfig struct {
	ListenHost    string `json:"listen_host"`
	ListenPort    int    `json:"listen_port"`
	Debug         bool   `json:"debug"` // gin debug mode, detailed error pages, browser reload
	SSL           bool   `json:"ssl"`
	CertFile      string `json:"cert_file,omitempty"`
	KeyFile       string `json:"key_file,omitempty"`
	TemplateDir   string `json:"template_dir"`
	StaticDir     string `json:"static_dir"`
	IndexTemplate string `json:"index_template"` // file name inside TemplateDir rendered on "/"
	PprofAddr     string `json:"pprof_addr,omitempty"`

	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// NewDefaultConfig returns the fixed development setup: 127.0.0.1:5000 with debug on
func NewDefaultConfig() *WebConfig {
	return &WebConfig{
		ListenHost:      DefaultListenHost,
		ListenPort:      DefaultListenPort,
		Debug:           true,
		TemplateDir:     DefaultTemplateDir,
		StaticDir:       DefaultStaticDir,
		IndexTemplate:   DefaultIndexTemplate,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Addr returns the listen address in host:port form
func (c *WebConfig) Addr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.ListenPort))
}

// Protocol returns "https" when SSL is enabled, "http" otherwise
func (c *WebConfig) Protocol() string {
	if c.SSL {
		return "https"
	}
	return "http"
}

// IndexTemplatePath returns the on-disk path of the index template
func (c *WebConfig) IndexTemplatePath() string {
	return filepath.Join(c.TemplateDir, c.IndexTemplate)
}

// Validate checks the configuration for values the server cannot start with
func (c *WebConfig) Validate() error {
	// port 0 is rejected too: the bootstrap always binds a fixed port
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", c.ListenPort)
	}
	if c.TemplateDir == "" {
		return errors.New("template directory not set")
	}
	if c.IndexTemplate == "" {
		return errors.New("index template not set")
	}
	if !filepath.IsLocal(c.IndexTemplate) {
		return fmt.Errorf("index template %q must be a path inside %q", c.IndexTemplate, c.TemplateDir)
	}
	if c.SSL && (c.CertFile == "" || c.KeyFile == "") {
		return errors.New("SSL enabled but cert_file or key_file not specified")
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %s", c.ShutdownTimeout)
	}
	return nil
}
