package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusActive, true},
		{StatusRevoked, true},
		{Status(""), false},
		{Status("Pending"), false},
		{Status("expired"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusRevoked, false},
		{StatusPending, StatusPending, false},
		{StatusActive, StatusRevoked, true},
		{StatusActive, StatusActive, false},
		{StatusActive, StatusPending, false},
		{StatusRevoked, StatusPending, false},
		{StatusRevoked, StatusActive, false},
		{StatusRevoked, StatusRevoked, false},
		{Status("bogus"), StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatuses(t *testing.T) {
	assert.Equal(t, []Status{StatusPending, StatusActive, StatusRevoked}, Statuses())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
}
