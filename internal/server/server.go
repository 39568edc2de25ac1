// Package server serves the scan history as a small web dashboard and a
// read-only JSON API.
package server

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/handlescan/internal/database"
	"github.com/nao1215/handlescan/internal/model"
	"github.com/nao1215/handlescan/internal/report"
)

// Store is the part of the history database the dashboard reads.
type Store interface {
	ListScannedHandles(ctx context.Context) ([]string, error)
	GetLatestScanReport(ctx context.Context, handle string) (*model.ScanReport, error)
	GetScanHistoryWithMetadata(ctx context.Context, handle string) ([]database.ScanReportMetadata, error)
	FindHandlesBySignal(ctx context.Context, kind database.SignalKind, value string) ([]database.SignalMatch, error)
}

// shutdownTimeout bounds how long in-flight requests may run after the
// server is asked to stop.
const shutdownTimeout = 5 * time.Second

// Server is the dashboard HTTP server.
type Server struct {
	store   Store
	logger  *slog.Logger
	version string
	engine  *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion is reported by /healthz and recorded in JSON reports.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// New creates a Server reading from store.
func New(store Store, opts ...Option) *Server {
	s := &Server{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.setupRouter()
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/", s.index)
	r.GET("/handles/:handle", s.handlePage)
	r.GET("/healthz", s.health)

	api := r.Group("/api")
	api.GET("/handles", s.listHandles)
	api.GET("/handles/:handle", s.latestReport)
	api.GET("/handles/:handle/history", s.history)
	api.GET("/signals", s.findSignal)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"pathEscape": url.PathEscape,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>handlescan dashboard</title>
<style>
body { background-color: #0e0e0e; color: #eaeaea; font-family: Arial, sans-serif; padding: 20px; }
h1 { color: #00ffff; }
a { color: #00bcd4; }
</style>
</head>
<body>
<h1>handlescan dashboard</h1>
<ul>
{{- range .}}
<li><a href="/handles/{{pathEscape .}}">{{.}}</a></li>
{{- else}}
<li>No scans yet. Run handlescan scan &lt;handle&gt; first.</li>
{{- end}}
</ul>
</body>
</html>
`))

var notFoundTemplate = template.Must(template.New("notfound").Parse(
	`<!DOCTYPE html><html><head><meta charset="utf-8"><title>handlescan</title></head>` +
		`<body><h2>No results found for user: {{.}}</h2></body></html>`))

func (s *Server) index(c *gin.Context) {
	handles, err := s.store.ListScannedHandles(c.Request.Context())
	if err != nil {
		s.internalError(c, "failed to list handles", err)
		return
	}
	s.renderHTML(c, http.StatusOK, indexTemplate, handles)
}

func (s *Server) handlePage(c *gin.Context) {
	handle := c.Param("handle")
	rep, err := s.store.GetLatestScanReport(c.Request.Context(), handle)
	if err != nil {
		s.internalError(c, "failed to load report", err)
		return
	}
	if rep == nil {
		s.renderHTML(c, http.StatusNotFound, notFoundTemplate, handle)
		return
	}

	var buf bytes.Buffer
	if _, err := report.NewHTMLWriter(&buf).Write(rep); err != nil {
		s.internalError(c, "failed to render report", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) listHandles(c *gin.Context) {
	handles, err := s.store.ListScannedHandles(c.Request.Context())
	if err != nil {
		s.internalError(c, "failed to list handles", err)
		return
	}
	if handles == nil {
		handles = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"handles": handles})
}

func (s *Server) latestReport(c *gin.Context) {
	handle := c.Param("handle")
	rep, err := s.store.GetLatestScanReport(c.Request.Context(), handle)
	if err != nil {
		s.internalError(c, "failed to load report", err)
		return
	}
	if rep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan found for " + handle})
		return
	}
	c.JSON(http.StatusOK, report.NewDocument(rep, s.version))
}

func (s *Server) history(c *gin.Context) {
	handle := c.Param("handle")
	meta, err := s.store.GetScanHistoryWithMetadata(c.Request.Context(), handle)
	if err != nil {
		s.internalError(c, "failed to load history", err)
		return
	}
	if len(meta) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan found for " + handle})
		return
	}
	c.JSON(http.StatusOK, gin.H{"handle": handle, "scans": meta})
}

func (s *Server) findSignal(c *gin.Context) {
	kind, err := database.ParseSignalKind(c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	value := c.Query("value")
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	matches, err := s.store.FindHandlesBySignal(c.Request.Context(), kind, value)
	if err != nil {
		s.internalError(c, "failed to query signals", err)
		return
	}
	if matches == nil {
		matches = []database.SignalMatch{}
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "value": value, "matches": matches})
}

func (s *Server) renderHTML(c *gin.Context, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.internalError(c, "failed to render page", err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
