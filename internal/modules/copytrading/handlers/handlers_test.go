package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/yieldrouter/internal/database"
	"github.com/aristath/yieldrouter/internal/modules/copytrading"
	testingpkg "github.com/aristath/yieldrouter/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const publishBody = `{
	"creator": "0xcreator",
	"name": "Blue Chips",
	"allocations": [
		{"opportunity_id": "vault:usdc-1", "chain": "arbitrum", "percent": 70, "apy": 6, "risk": "low"},
		{"opportunity_id": "pool:BTC", "chain": "arbitrum", "percent": 30, "apy": 16, "risk": "medium"}
	]
}`

func setupRouter(t *testing.T) *chi.Mux {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	db := testingpkg.NewTestDB(t, database.NameStrategies)
	service := copytrading.NewService(copytrading.NewRepository(db.Conn(), logger), nil, logger)

	router := chi.NewRouter()
	NewHandler(service, logger).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func publish(t *testing.T, router http.Handler) copytrading.Strategy {
	w := do(router, http.MethodPost, "/strategies/", publishBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data copytrading.Strategy `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestHandlePublishAndGet(t *testing.T) {
	router := setupRouter(t)
	created := publish(t, router)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "arbitrum", created.Chain)
	assert.InDelta(t, 9.0, created.ExpectedAPY, 1e-9)

	w := do(router, http.MethodGet, "/strategies/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data     copytrading.Strategy   `json:"data"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.Data.ID)
	assert.Contains(t, resp.Metadata, "timestamp")
}

func TestHandlePublish_Invalid(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{`},
		{"missing creator", `{"name":"x","allocations":[{"opportunity_id":"a","chain":"c","percent":10,"risk":"low"}]}`},
		{"no allocations", `{"creator":"c","name":"x","allocations":[]}`},
		{"bad tier", `{"creator":"c","name":"x","allocations":[{"opportunity_id":"a","chain":"c","percent":10,"risk":"wild"}]}`},
		{"over 100", `{"creator":"c","name":"x","allocations":[
			{"opportunity_id":"a","chain":"c","percent":60,"risk":"low"},
			{"opportunity_id":"b","chain":"c","percent":60,"risk":"low"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/strategies/", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleList(t *testing.T) {
	router := setupRouter(t)
	publish(t, router)
	publish(t, router)

	w := do(router, http.MethodGet, "/strategies/?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []copytrading.Strategy `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)

	w = do(router, http.MethodGet, "/strategies/?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleFollow(t *testing.T) {
	router := setupRouter(t)
	created := publish(t, router)

	w := do(router, http.MethodPost, "/strategies/"+created.ID+"/follow", `{"follower":"0xf","amount_usd":1500}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data copytrading.Strategy `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Followers)
	assert.Equal(t, 1500.0, resp.Data.TVLUSD)
}

func TestHandleFollow_Errors(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodPost, "/strategies/missing/follow", `{"follower":"0xf","amount_usd":10}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodPost, "/strategies/missing/follow", `{"follower":"0xf","amount_usd":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/strategies/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
