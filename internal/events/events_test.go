package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingEmitter collects every event it receives
type recordingEmitter struct {
	events []Event
}

func (r *recordingEmitter) Emit(ctx context.Context, event Event) error {
	r.events = append(r.events, event)
	return nil
}

// failingEmitter always returns its configured error
type failingEmitter struct {
	err error
}

func (f *failingEmitter) Emit(ctx context.Context, event Event) error {
	return f.err
}

func TestLogEmitter(t *testing.T) {
	t.Run("Emit logs the event fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		emitter := NewLogEmitter(zap.New(core))

		err := emitter.Emit(context.Background(), Event{Name: CertIssued, CertID: 42})
		require.NoError(t, err)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "Registry event", entries[0].Message)

		fields := entries[0].ContextMap()
		assert.Equal(t, CertIssued, fields["event"])
		assert.Equal(t, int64(42), fields["cert_id"])
	})
}

func TestMultiEmitter(t *testing.T) {
	t.Run("Emit fans out to all sinks", func(t *testing.T) {
		first := &recordingEmitter{}
		second := &recordingEmitter{}
		multi := MultiEmitter{first, second}

		err := multi.Emit(context.Background(), Event{Name: CertApproved, CertID: 7})
		require.NoError(t, err)

		require.Len(t, first.events, 1)
		require.Len(t, second.events, 1)
		assert.Equal(t, CertApproved, first.events[0].Name)
		assert.Equal(t, int64(7), second.events[0].CertID)
	})

	t.Run("Failure in one sink does not stop the others", func(t *testing.T) {
		sinkErr := errors.New("sink unavailable")
		failing := &failingEmitter{err: sinkErr}
		recording := &recordingEmitter{}
		multi := MultiEmitter{failing, recording}

		err := multi.Emit(context.Background(), Event{Name: CertRevoked, CertID: 3})
		assert.ErrorIs(t, err, sinkErr)
		assert.Len(t, recording.events, 1)
	})

	t.Run("Empty multi emitter is a no-op", func(t *testing.T) {
		var multi MultiEmitter
		err := multi.Emit(context.Background(), Event{Name: CertIssued, CertID: 1})
		assert.NoError(t, err)
	})
}
