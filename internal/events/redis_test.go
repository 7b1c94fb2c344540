package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisEmitter(t *testing.T) {
	t.Run("Empty URL returns nil emitter", func(t *testing.T) {
		emitter, err := NewRedisEmitter("", "cropcert:events")
		require.NoError(t, err)
		assert.Nil(t, emitter)
	})

	t.Run("Invalid URL fails", func(t *testing.T) {
		_, err := NewRedisEmitter("not-a-url", "cropcert:events")
		assert.Error(t, err)
	})
}

// TestRedisEmitter publishes through a real Redis server. It is skipped
// unless CROPCERT_TEST_REDIS_URL is set, e.g. "redis://localhost:6379/0".
func TestRedisEmitter(t *testing.T) {
	url := os.Getenv("CROPCERT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CROPCERT_TEST_REDIS_URL not set, skipping Redis tests")
	}

	const channel = "cropcert:test-events"

	emitter, err := NewRedisEmitter(url, channel)
	require.NoError(t, err)
	defer emitter.Close()

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	// Wait for the subscription to be established before publishing
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	err = emitter.Emit(ctx, Event{Name: CertApproved, CertID: 7})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		var event Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, CertApproved, event.Name)
		assert.Equal(t, int64(7), event.CertID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}
