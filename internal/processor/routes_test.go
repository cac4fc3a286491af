package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanankenbruck/sql-copilot/internal/conversation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestQueryEndpoint tests the full HTTP round trip in simulation mode
func TestQueryEndpoint(t *testing.T) {
	client := &scriptedLLM{replies: []string{"SELECT * FROM flight", "yes"}}
	store := newMemoryStore()
	p := newTestProcessor(t, client, store, Defaults{}, "")
	router := p.SetupRoutes(nil)

	w := postJSON(t, router, "/api/v1/query", gin.H{
		"user_id": "alice",
		"query":   "show me all flights",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp LifecycleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.SQL)
	assert.Equal(t, "SELECT * FROM flight", *resp.SQL)
	assert.NotNil(t, resp.Result)
	assert.Equal(t, []string{"id", "origin_airport_id", "price"}, resp.Schema)
}

// TestQueryEndpointMissingFields tests request binding failures
func TestQueryEndpointMissingFields(t *testing.T) {
	p := newTestProcessor(t, &scriptedLLM{}, newMemoryStore(), Defaults{}, "")
	router := p.SetupRoutes(nil)

	w := postJSON(t, router, "/api/v1/query", gin.H{"user_id": "alice"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

// TestRefineEndpointNoHistory verifies the 400 on refinement without a
// prior query
func TestRefineEndpointNoHistory(t *testing.T) {
	p := newTestProcessor(t, &scriptedLLM{}, newMemoryStore(), Defaults{}, "")
	router := p.SetupRoutes(nil)

	w := postJSON(t, router, "/api/v1/refine", gin.H{
		"user_id":  "alice",
		"feedback": "cheaper",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp LifecycleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.SQL)
	assert.Equal(t, "No previous query to refine.", resp.Error)
}

// TestRefineEndpoint tests a successful refinement over HTTP
func TestRefineEndpoint(t *testing.T) {
	client := &scriptedLLM{replies: []string{"SELECT * FROM flight WHERE price < 200", "yes"}}
	store := newMemoryStore()
	store.Set(context.Background(), "alice", []conversation.Turn{
		{Input: "flights", Output: "SELECT * FROM flight"},
	})
	p := newTestProcessor(t, client, store, Defaults{}, "")
	router := p.SetupRoutes(nil)

	w := postJSON(t, router, "/api/v1/refine", gin.H{
		"user_id":  "alice",
		"feedback": "only cheap ones",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp LifecycleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.SQL)
	assert.Equal(t, "SELECT * FROM flight WHERE price < 200", *resp.SQL)
}

// TestSchemaEndpoint tests the schema description endpoint
func TestSchemaEndpoint(t *testing.T) {
	p := newTestProcessor(t, &scriptedLLM{}, newMemoryStore(), Defaults{}, "")
	router := p.SetupRoutes(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Database Schema:")
	assert.Contains(t, w.Body.String(), "flight")
}

// TestHistoryEndpoint tests conversation history retrieval
func TestHistoryEndpoint(t *testing.T) {
	store := newMemoryStore()
	store.Set(context.Background(), "alice", []conversation.Turn{
		{Input: "flights", Output: "SELECT * FROM flight"},
	})
	p := newTestProcessor(t, &scriptedLLM{}, store, Defaults{}, "")
	router := p.SetupRoutes(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?user_id=alice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	// Missing user_id is a client error
	req = httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestHealthEndpoint tests the fallback health response
func TestHealthEndpoint(t *testing.T) {
	p := newTestProcessor(t, &scriptedLLM{}, newMemoryStore(), Defaults{}, "")
	router := p.SetupRoutes(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
