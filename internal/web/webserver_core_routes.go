// Package web provides the HTTP front door for go-ttsweb
package web

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-ttsweb/internal/config"
	"github.com/go-while/go-ttsweb/internal/reload"
)

// WebServer represents the web server
type WebServer struct {
	Router    *gin.Engine
	Config    *config.WebConfig
	Reload    *reload.Hub // nil unless Config.Debug
	StartTime time.Time   // Track server start time for uptime calculations

	mux        sync.Mutex
	listener   net.Listener
	httpServer *http.Server
	watcher    *reload.Watcher
	closed     bool
}

// TemplateData is handed to every page template. Templates without actions
// never look at it and render verbatim.
type TemplateData struct {
	AppVersion  string
	CurrentTime string
	Port        int
	Debug       bool
}

// NewServer creates a new web server instance
func NewServer(webconfig *config.WebConfig) *WebServer {
	if webconfig.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// POST / answers 405 instead of 404
	router.HandleMethodNotAllowed = true

	server := &WebServer{
		Router: router,
		Config: webconfig,
	}

	router.Use(server.ApacheLogFormat())
	router.Use(gin.CustomRecovery(server.recoverPanic))

	// Configure security headers based on SSL setup
	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	if webconfig.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}
	router.Use(secure.New(secureConfig))

	if webconfig.Debug {
		server.Reload = reload.NewHub()
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	if s.Config.StaticDir != "" {
		s.Router.Static("/static", s.Config.StaticDir)
	}

	s.Router.GET("/", s.homePage)
	s.Router.HEAD("/", s.homePage)

	if s.Reload != nil {
		s.Router.GET("/__reload/ws", s.Reload.ServeWS)
		s.Router.GET("/__reload/client.js", EmbeddedFileHandler("static/reload.js"))
	}
}

// Listen binds the listener without serving yet. A port that is already
// taken is reported here.
func (s *WebServer) Listen() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.closed {
		return http.ErrServerClosed
	}
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.Config.Addr())
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.Config.Addr(), err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *WebServer) Addr() net.Addr {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds (if needed) and serves until Shutdown. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *WebServer) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mux.Lock()
	if s.closed {
		// Shutdown won the race; it already closed the listener
		s.mux.Unlock()
		return http.ErrServerClosed
	}
	s.StartTime = time.Now()
	s.httpServer = &http.Server{
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv, ln := s.httpServer, s.listener
	s.mux.Unlock()

	if s.Reload != nil {
		if err := s.startReloadWatcher(); err != nil {
			log.Printf("[WEB]: Warning: browser reload disabled: %v", err)
		}
	}

	if s.Config.SSL {
		log.Printf("[WEB]: Starting HTTPS server on %s", ln.Addr())
		return srv.ServeTLS(ln, s.Config.CertFile, s.Config.KeyFile)
	}
	log.Printf("[WEB]: Starting HTTP server on %s", ln.Addr())
	return srv.Serve(ln)
}

// Shutdown stops the reload machinery and gracefully stops the HTTP server
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	s.closed = true
	srv, ln, w := s.httpServer, s.listener, s.watcher
	s.watcher = nil
	s.mux.Unlock()

	if w != nil {
		w.Stop()
	}
	if s.Reload != nil {
		// hijacked websocket conns are invisible to http.Server.Shutdown
		s.Reload.Close()
	}
	if srv == nil {
		if ln != nil {
			return ln.Close()
		}
		return nil
	}
	return srv.Shutdown(ctx)
}

// Uptime returns how long the server has been serving
func (s *WebServer) Uptime() time.Duration {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime)
}

func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s"`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
		)
	})
}

// recoverPanic turns a handler panic into a 500 page. Debug mode shows the stack.
func (s *WebServer) recoverPanic(c *gin.Context, recovered any) {
	var stack []byte
	if s.Config.Debug {
		stack = debug.Stack()
	}
	s.writeErrorPage(c, http.StatusInternalServerError, "Internal Server Error", fmt.Sprint(recovered), stack)
	c.Abort()
}
