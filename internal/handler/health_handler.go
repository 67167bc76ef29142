package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthProber is the connectivity probe of the vector index.
type HealthProber interface {
	HealthCheck(ctx context.Context) bool
}

type HealthHandler struct {
	prober HealthProber
}

func NewHealthHandler(prober HealthProber) *HealthHandler {
	return &HealthHandler{prober: prober}
}

func (h *HealthHandler) Check(c *gin.Context) {
	if !h.prober.HealthCheck(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
