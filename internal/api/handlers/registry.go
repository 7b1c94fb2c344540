package handlers

import (
	"net/http"

	"github.com/cropcert/cropcert/internal/registry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegistryHandler handles registry inspection operations
type RegistryHandler struct {
	registry *registry.Registry
	logger   *zap.Logger
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(reg *registry.Registry, logger *zap.Logger) *RegistryHandler {
	return &RegistryHandler{
		registry: reg,
		logger:   logger,
	}
}

// GetCounter returns the certification counter
// @Summary Get certification counter
// @Description Get the total number of certifications ever issued
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /api/v1/registry/counter [get]
func (h *RegistryHandler) GetCounter(c *gin.Context) {
	counter, err := h.registry.Counter()
	if err != nil {
		h.logger.Error("Failed to get counter", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get counter"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"counter": counter})
}

// GetStatus returns a summary of the registry state
// @Summary Get registry status
// @Description Get the certification counter, authority binding, and per-status certification counts
// @Produce json
// @Success 200 {object} registry.Summary
// @Router /api/v1/registry/status [get]
func (h *RegistryHandler) GetStatus(c *gin.Context) {
	summary, err := h.registry.GetSummary()
	if err != nil {
		h.logger.Error("Failed to get registry status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get registry status"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
