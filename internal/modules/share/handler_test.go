package share

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trophyangler/internal/cache"
	"trophyangler/internal/domain"
)

func setupRouter(reader TrophyReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(reader, cache.NewMemory())

	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_JSON(t *testing.T) {
	reader := new(MockTrophyReader)
	reader.On("Get", mock.Anything, domain.Caller{}, "t-1").Return(publicTrophy(), nil)

	w := get(setupRouter(reader), "/api/v1/trophies/t-1/share")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Title string `json:"title"`
			URL   string `json:"url"`
			Tags  []struct {
				Property string `json:"property"`
				Content  string `json:"content"`
			} `json:"tags"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Bass Caught on Trophy Angler", resp.Data.Title)
	assert.Equal(t, "https://trophy.example.com/trophy/t-1", resp.Data.URL)
	require.NotEmpty(t, resp.Data.Tags)
	assert.Equal(t, "og:title", resp.Data.Tags[0].Property)
}

func TestHandler_HTML(t *testing.T) {
	reader := new(MockTrophyReader)
	reader.On("Get", mock.Anything, domain.Caller{}, "t-1").Return(publicTrophy(), nil)

	w := get(setupRouter(reader), "/api/v1/trophies/t-1/share?format=html")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `<meta property="twitter:card" content="summary_large_image">`)
}

func TestHandler_HidesPrivate(t *testing.T) {
	reader := new(MockTrophyReader)
	reader.On("Get", mock.Anything, domain.Caller{}, "secret").Return(nil, domain.ErrForbidden)

	w := get(setupRouter(reader), "/api/v1/trophies/secret/share")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestHandler_BadFormat(t *testing.T) {
	w := get(setupRouter(new(MockTrophyReader)), "/api/v1/trophies/t-1/share?format=xml")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_QUERY")
}
