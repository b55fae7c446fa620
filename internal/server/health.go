package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	larder "github.com/kode4food/larder"
	"github.com/kode4food/larder/pkg/api"
	"github.com/kode4food/larder/pkg/log"
)

const (
	healthTimeout = 3 * time.Second

	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	res := api.HealthResponse{
		Service: larder.Name,
		Version: larder.Version,
		Status:  statusHealthy,
	}

	if err := s.store.Ping(ctx); err != nil {
		slog.Error("Database health check failed", log.Error(err))
		res.Status = statusUnhealthy
	}
	if err := s.tokens.Ping(ctx); err != nil {
		slog.Error("Redis health check failed", log.Error(err))
		res.Status = statusUnhealthy
	}

	if res.Status != statusHealthy {
		c.JSON(http.StatusServiceUnavailable, res)
		return
	}
	c.JSON(http.StatusOK, res)
}
