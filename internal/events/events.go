// Package events carries the registry's certification lifecycle event
// channel. Every successful mutating registry operation emits exactly one
// event after its state change is committed; delivery is best-effort.
package events

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Event names for certification lifecycle transitions
const (
	CertIssued   = "cert-issued"
	CertApproved = "cert-approved"
	CertRevoked  = "cert-revoked"
)

// Event is a single registry lifecycle notification
type Event struct {
	Name   string `json:"event"`
	CertID int64  `json:"cert_id"`
}

// Emitter delivers registry events to a sink
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// LogEmitter writes events to the structured log
type LogEmitter struct {
	logger *zap.Logger
}

// NewLogEmitter creates an emitter backed by the given logger
func NewLogEmitter(logger *zap.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

// Emit logs the event
func (e *LogEmitter) Emit(ctx context.Context, event Event) error {
	e.logger.Info("Registry event",
		zap.String("event", event.Name),
		zap.Int64("cert_id", event.CertID),
	)
	return nil
}

// MultiEmitter fans an event out to several sinks
type MultiEmitter []Emitter

// Emit delivers the event to every sink and joins any failures
func (m MultiEmitter) Emit(ctx context.Context, event Event) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
