package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/yieldrouter/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
)

func dialStream(t *testing.T, query string) (*websocket.Conn, *events.Manager) {
	t.Helper()

	s, container := setupServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events/ws" + query
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	return conn, container.EventManager
}

func TestEventsStream_JSON(t *testing.T) {
	conn, manager := dialStream(t, "?types=STRATEGY_PUBLISHED")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	kind, payload, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, kind)

	var hello streamFrame
	require.NoError(t, json.Unmarshal(payload, &hello))
	assert.Equal(t, "connected", hello.Type)

	// Filtered out.
	manager.Emit(events.JobStarted, "scheduler", map[string]interface{}{"job_name": "x"})
	manager.Emit(events.StrategyPublished, "copytrading", map[string]interface{}{"id": "abc"})

	_, payload, err = conn.Read(ctx)
	require.NoError(t, err)

	var frame streamFrame
	require.NoError(t, json.Unmarshal(payload, &frame))
	assert.Equal(t, string(events.StrategyPublished), frame.Type)
	assert.Equal(t, "copytrading", frame.Module)
	assert.Equal(t, "abc", frame.Data["id"])
}

func TestEventsStream_Msgpack(t *testing.T) {
	conn, manager := dialStream(t, "?format=msgpack")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	kind, payload, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageBinary, kind)

	var hello streamFrame
	require.NoError(t, msgpack.Unmarshal(payload, &hello))
	assert.Equal(t, "connected", hello.Type)

	manager.EmitTyped("scheduler", &events.CatalogRefreshedData{Source: "vault-aggregator", Count: 3})

	_, payload, err = conn.Read(ctx)
	require.NoError(t, err)

	var frame streamFrame
	require.NoError(t, msgpack.Unmarshal(payload, &frame))
	assert.Equal(t, string(events.CatalogRefreshed), frame.Type)
	assert.Equal(t, "vault-aggregator", frame.Data["source"])
}
