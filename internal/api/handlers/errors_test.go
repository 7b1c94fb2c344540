package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cropcert/cropcert/internal/registry"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Invalid farm id", registry.ErrInvalidFarmID, http.StatusBadRequest},
		{"Invalid product id", registry.ErrInvalidProductID, http.StatusBadRequest},
		{"Invalid test id", registry.ErrInvalidTestID, http.StatusBadRequest},
		{"Metadata too long", registry.ErrInvalidMetadata, http.StatusBadRequest},
		{"Notes too long", registry.ErrInvalidNotes, http.StatusBadRequest},
		{"Not authorized", registry.ErrNotAuthorized, http.StatusForbidden},
		{"Auditor not verified", registry.ErrAuditorNotVerified, http.StatusForbidden},
		{"Certification not found", registry.ErrCertNotFound, http.StatusNotFound},
		{"Certification already exists", registry.ErrCertAlreadyExists, http.StatusConflict},
		{"Invalid transition", registry.ErrInvalidStatus, http.StatusConflict},
		{"Wrapped sentinel", fmt.Errorf("approve: %w", registry.ErrCertNotFound), http.StatusNotFound},
		{"Unknown error", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
