// Package bridge exposes the engine over HTTP: a small gin REST surface for
// device listing and session lifecycle, and a gorilla/websocket endpoint
// that fans out Supervisor events to local consumers (SPEC_FULL B). It is
// the engine's only outward-facing surface; it never builds or decodes
// media itself.
package bridge

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mirrorhost/scrcpy-engine/internal/errs"
	"github.com/mirrorhost/scrcpy-engine/internal/launcher"
	"github.com/mirrorhost/scrcpy-engine/internal/logging"
	"github.com/mirrorhost/scrcpy-engine/internal/registry"
	"github.com/mirrorhost/scrcpy-engine/internal/session"
)

var log = logging.For("bridge")

// Server wires a Registry and Supervisor to gin routes and a websocket hub.
type Server struct {
	registry   *registry.Registry
	supervisor *session.Supervisor
	hub        *hub

	engine *gin.Engine
}

// New builds the route table. Call Handler to obtain an http.Handler, or
// Run to serve directly.
func New(reg *registry.Registry, sup *session.Supervisor) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		registry:   reg,
		supervisor: sup,
		hub:        newHub(),
		engine:     gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.routes()
	go s.hub.run(sup.Events())
	return s
}

// Handler returns the underlying http.Handler for embedding in a custom
// http.Server (e.g. for TLS or graceful shutdown).
func (s *Server) Handler() http.Handler { return s.engine }

// Run blocks serving on addr.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/devices", s.handleListDevices)
	s.engine.POST("/devices/:serial/start", s.handleStart)
	s.engine.POST("/devices/:serial/stop", s.handleStop)
	s.engine.POST("/devices/:serial/clipboard", s.handleClipboard)
	s.engine.GET("/events", s.handleEvents)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListDevices(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry.List())
}

type startRequest struct {
	MaxSize int   `json:"max_size"`
	MaxFPS  int   `json:"max_fps"`
	Bitrate int64 `json:"bitrate"`
	Audio   *bool `json:"audio"`
}

func (s *Server) handleStart(c *gin.Context) {
	serial := c.Param("serial")

	var req startRequest
	_ = c.ShouldBindJSON(&req) // absent/empty body means "use defaults"

	opts := launcher.DefaultOptions()
	if req.MaxSize > 0 {
		opts.MaxSize = req.MaxSize
	}
	if req.MaxFPS > 0 {
		opts.MaxFPS = req.MaxFPS
	}
	if req.Bitrate > 0 {
		opts.Bitrate = req.Bitrate
	}
	if req.Audio != nil {
		opts.Audio = *req.Audio
	}

	port, err := s.supervisor.Start(c.Request.Context(), serial, opts)
	if err != nil {
		if errs.Is(err, errs.DeviceUnknown) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"serial": serial, "port": port})
}

func (s *Server) handleStop(c *gin.Context) {
	serial := c.Param("serial")
	s.supervisor.Stop(c.Request.Context(), serial)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClipboard(c *gin.Context) {
	serial := c.Param("serial")
	if !s.supervisor.RequestClipboard(serial) {
		c.JSON(http.StatusConflict, gin.H{"error": "session not connected"})
		return
	}
	c.Status(http.StatusAccepted)
}
