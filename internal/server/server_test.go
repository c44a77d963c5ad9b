package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/yieldrouter/internal/config"
	"github.com/aristath/yieldrouter/internal/di"
	"github.com/aristath/yieldrouter/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachable is a closed port: routes that only touch local state still work.
const unreachable = "http://127.0.0.1:1"

func setupServer(t *testing.T) (*Server, *di.Container) {
	t.Helper()

	cfg := &config.Config{
		DataDir:                t.TempDir(),
		Port:                   8001,
		VaultAPIURL:            unreachable,
		PoolAPIURL:             unreachable,
		LendingAPIURL:          unreachable,
		CatalogTTL:             5 * time.Minute,
		PoolMarketTTL:          time.Minute,
		SourceTimeout:          time.Second,
		PlatformFeePercent:     10,
		MaxPositions:           5,
		CatalogRefreshSchedule: "@every 5m",
		CacheCleanupSchedule:   "@daily",
		MaintenanceSchedule:    "0 0 4 * * *",
	}
	log := zerolog.New(nil).Level(zerolog.Disabled)

	container, jobs, err := di.Wire(cfg, log)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	return New(Config{Log: log, Port: cfg.Port, DevMode: true, Container: container, Jobs: jobs}), container
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(s.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "yieldrouter", body["service"])
}

func TestHandleSystemStatus(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(s.Handler(), http.MethodGet, "/api/system/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SystemStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "healthy", body.Data.Status)
	assert.Equal(t, 3, body.Data.ScheduledJobs)
	assert.Contains(t, body.Data.Databases, "client_data")
	assert.Contains(t, body.Data.Databases, "strategies")
	assert.Greater(t, body.Data.Goroutines, 0)
}

func TestRoutesMounted(t *testing.T) {
	s, _ := setupServer(t)
	h := s.Handler()

	rec := do(h, http.MethodPost, "/api/health/limits", `{"collateral":10000,"debt":2000,"liquidation_threshold":80}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/opportunities/presets", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	publish := `{"creator":"0xabc","name":"Stable","allocations":[{"opportunity_id":"vault:usdc","chain":"arbitrum","percent":100,"apy":5,"risk":"low"}]}`
	rec = do(h, http.MethodPost, "/api/strategies", publish)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, http.MethodGet, "/api/strategies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Stable"`)

	rec = do(h, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTriggerJob(t *testing.T) {
	s, container := setupServer(t)

	done := make(chan *events.Event, 1)
	id := container.EventBus.Subscribe(events.JobCompleted, func(e *events.Event) {
		done <- e
	})
	defer container.EventBus.Unsubscribe(id)

	rec := do(s.Handler(), http.MethodPost, "/api/jobs/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(s.Handler(), http.MethodPost, "/api/jobs/cache-cleanup", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case e := <-done:
		assert.Equal(t, "client_data_cleanup", e.Data["job_name"])
	case <-time.After(5 * time.Second):
		t.Fatal("cache cleanup job did not complete")
	}
}

func TestEventsStream_RejectsBadQuery(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(s.Handler(), http.MethodGet, "/api/events/ws?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s.Handler(), http.MethodGet, "/api/events/ws?types=NOT_A_TYPE", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseEventTypes(t *testing.T) {
	all, err := parseEventTypes("")
	require.NoError(t, err)
	assert.Equal(t, events.AllEventTypes, all)

	types, err := parseEventTypes(" strategy_published, JOB_FAILED ,STRATEGY_PUBLISHED")
	require.NoError(t, err)
	assert.Equal(t, []events.EventType{events.StrategyPublished, events.JobFailed}, types)

	_, err = parseEventTypes("PRICE_UPDATED")
	assert.Error(t, err)
}

func TestShutdown(t *testing.T) {
	s, _ := setupServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}
