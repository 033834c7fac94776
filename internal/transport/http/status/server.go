package statushttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"polybot/internal/consensus"
	"polybot/internal/gateway/database"
	"polybot/internal/logger"
	"polybot/internal/risk"

	"github.com/gin-gonic/gin"
)

// Server exposes a read-only view of the decision core: thresholds, approval
// stats and recorded outcomes. Nothing here mutates trading state.
type Server struct {
	addr   string
	router *gin.Engine
}

type ServerConfig struct {
	Addr       string
	Engine     *consensus.Engine
	Controller *risk.Controller
	Store      *database.OutcomeStore
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil || cfg.Controller == nil {
		return nil, errors.New("status http server requires engine and controller")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9980"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.GET("/status", handleStatus(cfg))
	api.GET("/thresholds", handleThresholds(cfg))
	api.GET("/outcomes", handleOutcomes(cfg))

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("status http server listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func handleStatus(cfg ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		hits, misses := cfg.Engine.CacheStats()
		c.JSON(http.StatusOK, gin.H{
			"approval":     cfg.Engine.Stats(),
			"cache_hits":   hits,
			"cache_misses": misses,
			"parameters":   cfg.Controller.Parameters(),
			"metrics":      cfg.Controller.Metrics(),
		})
	}
}

func handleThresholds(cfg ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, cfg.Controller.DynamicThresholds())
	}
}

func handleOutcomes(cfg ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Store == nil {
			c.JSON(http.StatusOK, []database.StoredOutcome{})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		outcomes, err := cfg.Store.RecentOutcomes(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if outcomes == nil {
			outcomes = []database.StoredOutcome{}
		}
		c.JSON(http.StatusOK, outcomes)
	}
}
