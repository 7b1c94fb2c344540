package handlers

import (
	"errors"
	"net/http"

	"github.com/cropcert/cropcert/internal/registry"
	"github.com/gin-gonic/gin"
)

// statusForError maps registry errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrInvalidFarmID),
		errors.Is(err, registry.ErrInvalidProductID),
		errors.Is(err, registry.ErrInvalidTestID),
		errors.Is(err, registry.ErrInvalidMetadata),
		errors.Is(err, registry.ErrInvalidNotes):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrNotAuthorized),
		errors.Is(err, registry.ErrAuditorNotVerified):
		return http.StatusForbidden
	case errors.Is(err, registry.ErrCertNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrCertAlreadyExists),
		errors.Is(err, registry.ErrInvalidStatus):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a registry error as a JSON response. Domain errors keep
// their message; anything unrecognized is reported as an internal error.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
