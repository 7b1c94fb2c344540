package handlers

import (
	"net/http"

	"github.com/cropcert/cropcert/internal/registry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthorityHandler handles authority binding operations
type AuthorityHandler struct {
	registry *registry.Registry
	logger   *zap.Logger
}

// NewAuthorityHandler creates a new authority handler
func NewAuthorityHandler(reg *registry.Registry, logger *zap.Logger) *AuthorityHandler {
	return &AuthorityHandler{
		registry: reg,
		logger:   logger,
	}
}

// SetAuthorityRequest represents an authority binding request
type SetAuthorityRequest struct {
	Identity string `json:"identity"`
}

// SetAuthority binds the issuing authority identity
// @Summary Bind registry authority
// @Description Bind the issuing authority identity. The binding succeeds exactly once. An empty request binds the caller's own identity.
// @Accept json
// @Produce json
// @Param request body SetAuthorityRequest false "Authority binding request"
// @Success 200 {object} map[string]string
// @Router /api/v1/authority [post]
func (h *AuthorityHandler) SetAuthority(c *gin.Context) {
	var req SetAuthorityRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Identity == "" {
		req.Identity = c.GetString("identity")
	}

	if err := h.registry.SetAuthority(c.Request.Context(), req.Identity); err != nil {
		h.logger.Error("Failed to bind authority", zap.String("identity", req.Identity), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "authority bound",
		"authority": req.Identity,
	})
}

// GetAuthority returns the bound authority identity
// @Summary Get registry authority
// @Description Get the currently bound issuing authority identity
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/authority [get]
func (h *AuthorityHandler) GetAuthority(c *gin.Context) {
	identity, bound, err := h.registry.Authority()
	if err != nil {
		h.logger.Error("Failed to get authority", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get authority"})
		return
	}
	if !bound {
		c.JSON(http.StatusNotFound, gin.H{"error": "authority not bound"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authority": identity})
}
