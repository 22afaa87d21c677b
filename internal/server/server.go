package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	v1 "mealbook/internal/api/v1"
	"mealbook/internal/config"
)

// Server HTTP 서버
type Server struct {
	router *gin.Engine
	app    *App
	v1     *v1.Handler
	http   *http.Server
}

// NewServer 서비스를 조립하고 라우트를 건다
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := NewApp(cfg)
	if err != nil {
		return nil, err
	}
	return newServer(app), nil
}

func newServer(app *App) *Server {
	s := &Server{
		router: gin.Default(),
		app:    app,
		v1: v1.NewHandler(v1.Deps{
			Ledger:      app.Ledger,
			Seats:       app.Seats,
			Journal:     app.Journal,
			Exporter:    app.Exporter,
			StorageRoot: app.Objects.Root(),
			SeatingPath: app.Config.Seating.Path,
		}),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 요청 ID
	s.router.Use(func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "존재하지 않는 경로입니다", "kind": "not_found"})
	})
}

// Handler 테스트용 http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 서버 시작. Shutdown 이 불리면 nil 을 돌려준다.
func (s *Server) Run(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	log.Printf("[server] listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 진행 중 요청을 마치고 저널을 닫는다
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if cerr := s.app.Close(); cerr != nil && err == nil {
		err = cerr
	}
	log.Printf("[server] stopped")
	return err
}
