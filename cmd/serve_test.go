package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelsignal/leadgen-cli/internal/config"
	"github.com/fuelsignal/leadgen-cli/internal/pipeline"
	"github.com/fuelsignal/leadgen-cli/internal/store"
)

func testServeConfig() *config.Config {
	return &config.Config{
		Signals: config.SignalsConfig{MaxHits: 20},
		Scoring: config.ScoringConfig{
			BaseScale:        10,
			BaseCap:          60,
			PropensityWeight: 35,
			HighScore:        70,
			HighConfidence:   0.6,
			LowScore:         40,
			LowConfidence:    0.3,
		},
		Learning: config.LearningConfig{
			LearningRate:      0.05,
			MinWeight:         0.25,
			MaxWeight:         4.0,
			MinTrainingEvents: 10,
			Epochs:            200,
			StepSize:          0.1,
		},
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
		Batch:  config.BatchConfig{MaxConcurrent: 2},
	}
}

func newTestEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	p, err := pipeline.New(testServeConfig(), st, nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.Init(context.Background()))

	return &pipelineEnv{Store: st, Pipeline: p}
}

func TestRouterHealth(t *testing.T) {
	router := newRouter(newTestEnv(t), testServeConfig().Server)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouterProcessAndFetchLead(t *testing.T) {
	router := newRouter(newTestEnv(t), testServeConfig().Server)

	payload := map[string]string{
		"company":    "ABC Cement Pvt Ltd",
		"raw_text":   "ABC Cement announces kiln expansion at the plant. Petcoke tender floated for the new line.",
		"source":     "news",
		"source_url": "https://news.example.com/abc",
	}
	body, _ := json.Marshal(payload)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/leads/process", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		ID       string  `json:"id"`
		Industry string  `json:"industry"`
		Score    float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Cement", created.Industry)
	assert.Greater(t, created.Score, 0.0)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/leads?status=New", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/leads/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var detail map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Contains(t, detail, "lead")
	assert.Contains(t, detail, "battlecards")
	assert.Contains(t, detail, "pitch_script")
}

func TestRouterProcessInvalidBody(t *testing.T) {
	router := newRouter(newTestEnv(t), testServeConfig().Server)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/leads/process", bytes.NewReader([]byte("not json"))))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/leads/process", bytes.NewReader([]byte(`{"raw_text":""}`))))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRouterOutcome(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env, testServeConfig().Server)

	lead, err := env.Pipeline.ProcessItem(context.Background(), cementRawItem())
	require.NoError(t, err)

	body := []byte(`{"status":"Accepted","notes":"met procurement head"}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/leads/%s/outcome", lead.ID), bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp, "feedback")

	// Accepted -> Assigned is not a legal transition.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/leads/%s/outcome", lead.ID), bytes.NewReader([]byte(`{"status":"Assigned"}`))))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/leads/missing/outcome", bytes.NewReader([]byte(`{"status":"Accepted"}`))))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouterRetrainInsufficient(t *testing.T) {
	router := newRouter(newTestEnv(t), testServeConfig().Server)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/retrain", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var result struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, "insufficient_data", result.Status)
}

func TestRouterNotificationsEmpty(t *testing.T) {
	router := newRouter(newTestEnv(t), testServeConfig().Server)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/notifications?limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}

func TestRouterNotificationsBadOfficer(t *testing.T) {
	router := newRouter(newTestEnv(t), testServeConfig().Server)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/notifications?officer_id=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
