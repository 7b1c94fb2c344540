// Package handlers provides HTTP request handlers for the CropCert API.
// It includes handlers for certification lifecycle, authority binding, and
// registry inspection operations, implementing RESTful endpoints with request
// validation.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/cropcert/cropcert/internal/registry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CertificationHandler handles certification lifecycle operations
type CertificationHandler struct {
	registry *registry.Registry
	clock    registry.TimeSource
	logger   *zap.Logger
}

// NewCertificationHandler creates a new certification handler
func NewCertificationHandler(reg *registry.Registry, clock registry.TimeSource, logger *zap.Logger) *CertificationHandler {
	return &CertificationHandler{
		registry: reg,
		clock:    clock,
		logger:   logger,
	}
}

// IssueCertificationRequest represents a certification issuance request
type IssueCertificationRequest struct {
	FarmID    int64  `json:"farm_id"`
	ProductID int64  `json:"product_id"`
	TestID    int64  `json:"test_id"`
	Metadata  string `json:"metadata"`
}

// ReviewRequest carries auditor notes for approve and revoke operations
type ReviewRequest struct {
	Notes string `json:"notes"`
}

// IssueCertification issues a new certification in pending status
// @Summary Issue a certification
// @Description Issue a new GMO-free certification claim for a farm, product, and lab test
// @Accept json
// @Produce json
// @Param request body IssueCertificationRequest true "Issuance request"
// @Success 201 {object} models.Certification
// @Router /api/v1/certifications [post]
func (h *CertificationHandler) IssueCertification(c *gin.Context) {
	var req IssueCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := c.GetString("identity")
	certID, err := h.registry.Issue(c.Request.Context(), caller, h.clock.Now(), registry.IssueRequest{
		FarmID:    req.FarmID,
		ProductID: req.ProductID,
		TestID:    req.TestID,
		Metadata:  req.Metadata,
	})
	if err != nil {
		h.logger.Error("Failed to issue certification", zap.String("caller", caller), zap.Error(err))
		respondError(c, err)
		return
	}

	cert, err := h.registry.GetCertification(certID)
	if err != nil || cert == nil {
		h.logger.Error("Failed to load issued certification", zap.Int64("cert_id", certID), zap.Error(err))
		c.JSON(http.StatusCreated, gin.H{"cert_id": certID})
		return
	}

	c.JSON(http.StatusCreated, cert)
}

// GetCertification retrieves a certification by ID
// @Summary Get certification
// @Description Get certification details by ID
// @Produce json
// @Param id path int true "Certification ID"
// @Success 200 {object} models.Certification
// @Router /api/v1/certifications/{id} [get]
func (h *CertificationHandler) GetCertification(c *gin.Context) {
	certID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid certification id"})
		return
	}

	cert, err := h.registry.GetCertification(certID)
	if err != nil {
		h.logger.Error("Failed to get certification", zap.Int64("cert_id", certID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get certification"})
		return
	}
	if cert == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "certification not found"})
		return
	}

	c.JSON(http.StatusOK, cert)
}

// ListCertifications lists certifications, optionally filtered by status
// @Summary List certifications
// @Description List all certifications, optionally filtered by status
// @Produce json
// @Param status query string false "Status filter (pending, active, revoked)"
// @Success 200 {array} models.Certification
// @Router /api/v1/certifications [get]
func (h *CertificationHandler) ListCertifications(c *gin.Context) {
	status := registry.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	certs, err := h.registry.ListCertifications(status)
	if err != nil {
		h.logger.Error("Failed to list certifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list certifications"})
		return
	}

	c.JSON(http.StatusOK, certs)
}

// GetCertAudit retrieves the audit record for a certification
// @Summary Get audit record
// @Description Get the most recent auditor decision recorded for a certification
// @Produce json
// @Param id path int true "Certification ID"
// @Success 200 {object} models.CertAudit
// @Router /api/v1/certifications/{id}/audit [get]
func (h *CertificationHandler) GetCertAudit(c *gin.Context) {
	certID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid certification id"})
		return
	}

	audit, err := h.registry.GetCertAudit(certID)
	if err != nil {
		h.logger.Error("Failed to get audit record", zap.Int64("cert_id", certID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get audit record"})
		return
	}
	if audit == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit record not found"})
		return
	}

	c.JSON(http.StatusOK, audit)
}

// ApproveCertification approves a pending certification
// @Summary Approve certification
// @Description Approve a pending certification, activating it and recording the auditor decision
// @Accept json
// @Produce json
// @Param id path int true "Certification ID"
// @Param request body ReviewRequest false "Auditor notes"
// @Success 200 {object} map[string]string
// @Router /api/v1/certifications/{id}/approve [put]
func (h *CertificationHandler) ApproveCertification(c *gin.Context) {
	certID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid certification id"})
		return
	}

	var req ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	caller := c.GetString("identity")
	if err := h.registry.Approve(c.Request.Context(), caller, h.clock.Now(), certID, req.Notes); err != nil {
		h.logger.Error("Failed to approve certification", zap.Int64("cert_id", certID), zap.String("caller", caller), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "certification approved"})
}

// RevokeCertification revokes an active certification
// @Summary Revoke certification
// @Description Revoke an active certification, recording the auditor decision
// @Accept json
// @Produce json
// @Param id path int true "Certification ID"
// @Param request body ReviewRequest false "Auditor notes"
// @Success 200 {object} map[string]string
// @Router /api/v1/certifications/{id}/revoke [put]
func (h *CertificationHandler) RevokeCertification(c *gin.Context) {
	certID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid certification id"})
		return
	}

	var req ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	caller := c.GetString("identity")
	if err := h.registry.Revoke(c.Request.Context(), caller, h.clock.Now(), certID, req.Notes); err != nil {
		h.logger.Error("Failed to revoke certification", zap.Int64("cert_id", certID), zap.String("caller", caller), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "certification revoked"})
}
