package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"trophyangler/internal/cache"
	"trophyangler/internal/config"
	"trophyangler/internal/database"
	jwtsvc "trophyangler/internal/pkg/jwt"
)

const internalToken = "e2e-internal-token"

type E2ETestSuite struct {
	router *gin.Engine
	jwt    *jwtsvc.Service
	cache  *cache.Memory
}

type TestResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorDetail    `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func testConfig() *config.Config {
	cfg := &config.Config{AppEnv: "test"}
	cfg.HTTP.RequestTimeout = 5 * time.Second
	cfg.Share.PublicBaseURL = "https://trophy.example.com"
	cfg.Share.SiteName = "Trophy Angler"
	cfg.Share.CacheTTL = time.Minute
	cfg.Limits = config.LimitsConfig{SearchDefault: 50, SearchMax: 500, ListDefault: 20, ListMax: 100}
	cfg.Internal.SyncToken = internalToken
	return cfg
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Connect(dsn, nil, database.Options{LogLevel: logger.Silent})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	jwt := jwtsvc.New("e2e-secret", time.Hour)
	mem := cache.NewMemory()
	router := NewRouter(Deps{
		Config: testConfig(),
		DB:     db,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		JWT:    jwt,
		Cache:  mem,
	})
	return &E2ETestSuite{router: router, jwt: jwt, cache: mem}
}

func (s *E2ETestSuite) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := s.jwt.GenerateToken(userID)
	require.NoError(t, err)
	return tok
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func trophyBody(species string, lat, lon float64, public bool) map[string]any {
	return map[string]any{
		"species":       species,
		"length":        45,
		"width":         20,
		"photo_url":     "https://cdn.example.com/" + species + ".jpg",
		"location_name": "Round Valley",
		"latitude":      lat,
		"longitude":     lon,
		"caught_at":     "2024-05-01T07:00:00Z",
		"is_public":     public,
	}
}

func TestE2E_TrophyLifecycle(t *testing.T) {
	s := setupTestSuite(t)
	alice := s.token(t, "alice")
	bob := s.token(t, "bob")

	// profile mirror from the identity provider
	w := s.makeRequest(http.MethodPut, "/api/v1/internal/users/alice",
		map[string]any{"email": "alice@example.com", "username": "alice"}, internalToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.makeRequest(http.MethodPost, "/api/v1/trophies", trophyBody("bass", 40.0, -74.0, true), alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID        string    `json:"id"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	require.NoError(t, json.Unmarshal(parseResponse(t, w).Data, &created))

	w = s.makeRequest(http.MethodPost, "/api/v1/trophies", trophyBody("trout", 40.0, -74.0, false), alice)
	require.Equal(t, http.StatusCreated, w.Code)
	var hidden struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(parseResponse(t, w).Data, &hidden))

	// nearby finds only the public one
	w = s.makeRequest(http.MethodGet, "/api/v1/trophies/nearby?lat=40.01&lon=-74.01&radius_km=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var nearby struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(parseResponse(t, w).Data, &nearby))
	require.Equal(t, 1, nearby.Count)
	assert.Equal(t, created.ID, nearby.Items[0].ID)

	w = s.makeRequest(http.MethodGet, "/api/v1/trophies/nearby?lat=41.0&lon=-75.0&radius_km=5", nil, "")
	require.NoError(t, json.Unmarshal(parseResponse(t, w).Data, &nearby))
	assert.Equal(t, 0, nearby.Count)

	// private trophy hidden from bob, visible to alice
	w = s.makeRequest(http.MethodGet, "/api/v1/trophies/"+hidden.ID, nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.makeRequest(http.MethodGet, "/api/v1/trophies/"+hidden.ID, nil, alice)
	assert.Equal(t, http.StatusOK, w.Code)

	// share bundle, cached
	w = s.makeRequest(http.MethodGet, "/api/v1/trophies/"+created.ID+"/share", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := w.Body.String()
	w = s.makeRequest(http.MethodGet, "/api/v1/trophies/"+created.ID+"/share", nil, "")
	assert.Equal(t, first, w.Body.String())
	assert.Equal(t, 1, s.cache.Len())
	assert.Contains(t, first, "https://trophy.example.com/trophy/"+created.ID)

	w = s.makeRequest(http.MethodGet, "/api/v1/trophies/"+hidden.ID+"/share", nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// bob cannot touch alice's trophy
	w = s.makeRequest(http.MethodPut, "/api/v1/trophies/"+created.ID, map[string]any{"species": "carp"}, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.makeRequest(http.MethodDelete, "/api/v1/trophies/"+created.ID, nil, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// alice turns it private: it leaves the index
	w = s.makeRequest(http.MethodPut, "/api/v1/trophies/"+created.ID, map[string]any{"is_public": false}, alice)
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		UpdatedAt time.Time `json:"updated_at"`
	}
	require.NoError(t, json.Unmarshal(parseResponse(t, w).Data, &updated))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	w = s.makeRequest(http.MethodGet, "/api/v1/trophies/nearby?lat=40.01&lon=-74.01&radius_km=5", nil, alice)
	require.NoError(t, json.Unmarshal(parseResponse(t, w).Data, &nearby))
	assert.Equal(t, 0, nearby.Count)

	w = s.makeRequest(http.MethodGet, "/api/v1/me/trophies", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)

	// deleting the user cascades
	w = s.makeRequest(http.MethodDelete, "/api/v1/internal/users/alice", nil, internalToken)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = s.makeRequest(http.MethodGet, "/api/v1/trophies/"+created.ID, nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestE2E_AuthAndErrors(t *testing.T) {
	s := setupTestSuite(t)

	w := s.makeRequest(http.MethodPost, "/api/v1/trophies", trophyBody("bass", 40, -74, true), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.makeRequest(http.MethodGet, "/api/v1/trophies", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := parseResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_TOKEN", resp.Error.Code)

	body := trophyBody("bass", 40, -74, true)
	body["length"] = 0
	w = s.makeRequest(http.MethodPost, "/api/v1/trophies", body, s.token(t, "alice"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", parseResponse(t, w).Error.Code)

	w = s.makeRequest(http.MethodGet, "/api/v1/trophies/nearby?lat=95&lon=0&radius_km=5", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_QUERY", parseResponse(t, w).Error.Code)

	w = s.makeRequest(http.MethodPut, "/api/v1/internal/users/x", map[string]any{"email": "x@example.com", "username": "xx"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestE2E_PublicListing(t *testing.T) {
	s := setupTestSuite(t)
	alice := s.token(t, "alice")

	for i, sp := range []string{"bass", "pike", "perch"} {
		body := trophyBody(sp, 40, -74+float64(i), i != 1)
		w := s.makeRequest(http.MethodPost, "/api/v1/trophies", body, alice)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.makeRequest(http.MethodGet, "/api/v1/trophies?limit=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []json.RawMessage `json:"items"`
		Total int64             `json:"total"`
		Limit int               `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(parseResponse(t, w).Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Limit)

	w = s.makeRequest(http.MethodGet, "/api/v1/users/alice/trophies", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
	assert.False(t, strings.Contains(w.Body.String(), `"species":"pike"`))
}

func TestE2E_HealthAndMetrics(t *testing.T) {
	s := setupTestSuite(t)

	w := s.makeRequest(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	_ = s.makeRequest(http.MethodGet, "/api/v1/trophies", nil, "")
	w = s.makeRequest(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `trophy_http_requests_total{method="GET",route="/api/v1/trophies",status="200"} 1`)
}
