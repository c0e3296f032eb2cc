package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/config"
	"github.com/projectdesk/dto"
	"github.com/projectdesk/models"
	"github.com/projectdesk/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Field   string          `json:"field"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func (a apiClient) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (a apiClient) login(email, password string) string {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, status, env.Message)
	var resp dto.AuthResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &resp))
	return resp.Token
}

func (a apiClient) register(email string) {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"first_name": "Test", "last_name": "User", "email": email, "password": "s3cret!",
	})
	require.Equal(a.t, http.StatusCreated, status, env.Message)
}

func newTestAPI(t *testing.T) (apiClient, *gorm.DB) {
	db := testutil.NewDB(t)
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Environment: "test", AllowedOrigins: []string{"*"}},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
	}
	return apiClient{t: t, router: SetupRouter(cfg, db, zaptest.NewLogger(t))}, db
}

func TestHealth(t *testing.T) {
	api, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestProjectLifecycle(t *testing.T) {
	api, db := newTestAPI(t)

	api.register("admin@example.com")
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "admin@example.com").Update("role", models.RoleAdmin).Error)
	admin := api.login("admin@example.com", "s3cret!")
	api.register("bob@example.com")
	bob := api.login("bob@example.com", "s3cret!")

	status, _ := api.do(http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(http.MethodPost, "/api/v1/attributes", bob, gin.H{"name": "department", "type": "text"})
	assert.Equal(t, http.StatusForbidden, status)

	attributeIDs := map[string]uint{}
	for name, typ := range map[string]string{"department": "text", "start_date": "date"} {
		status, env := api.do(http.MethodPost, "/api/v1/attributes", admin, gin.H{"name": name, "type": typ})
		require.Equal(t, http.StatusCreated, status, env.Message)
		var attribute models.Attribute
		require.NoError(t, json.Unmarshal(env.Data, &attribute))
		attributeIDs[name] = attribute.ID
	}

	projectIDs := map[string]uint{}
	for name, values := range map[string][2]string{
		"Project A": {"Engineering", "2025-01-01"},
		"Project B": {"Marketing", "2025-03-01"},
	} {
		status, env := api.do(http.MethodPost, "/api/v1/projects", bob, gin.H{
			"name":   name,
			"status": "active",
			"attributes": []gin.H{
				{"attribute_id": attributeIDs["department"], "value": values[0]},
				{"attribute_id": attributeIDs["start_date"], "value": values[1]},
			},
		})
		require.Equal(t, http.StatusCreated, status, env.Message)
		var project dto.ProjectResponse
		require.NoError(t, json.Unmarshal(env.Data, &project))
		projectIDs[name] = project.ID
	}

	status, env := api.do(http.MethodPost, "/api/v1/projects", bob, gin.H{
		"name":       "Project C",
		"status":     "active",
		"attributes": []gin.H{{"attribute_id": attributeIDs["start_date"], "value": "soon"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "attributes[0].value", env.Field)

	query := url.Values{"filters[department][LIKE]": {"Engin"}}
	status, env = api.do(http.MethodGet, "/api/v1/projects?"+query.Encode(), bob, nil)
	require.Equal(t, http.StatusOK, status)
	var found []dto.ProjectResponse
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Project A", found[0].Name)
	assert.Equal(t, "2025-01-01", found[0].Attributes["start_date"])

	query = url.Values{"filters": {`{"start_date": {">": "2025-02-01"}}`}}
	status, env = api.do(http.MethodGet, "/api/v1/projects?"+query.Encode(), bob, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Project B", found[0].Name)

	query = url.Values{"filters[department][contains]": {"x"}}
	status, _ = api.do(http.MethodGet, "/api/v1/projects?"+query.Encode(), bob, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	query = url.Values{
		"filters":                   {`{"start_date": {">": "2025-02-01"}}`},
		"filters[department][LIKE]": {"Engin"},
	}
	status, _ = api.do(http.MethodGet, "/api/v1/projects?"+query.Encode(), bob, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodPut, fmt.Sprintf("/api/v1/attributes/%d", attributeIDs["department"]), admin,
		gin.H{"name": "department", "type": "number"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/attributes/%d", attributeIDs["department"]), admin, nil)
	assert.Equal(t, http.StatusConflict, status)

	var bobUser models.User
	require.NoError(t, db.First(&bobUser, "email = ?", "bob@example.com").Error)
	projectA := projectIDs["Project A"]

	status, _ = api.do(http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/assign", projectA), admin, gin.H{"user_ids": []uint{bobUser.ID}})
	require.Equal(t, http.StatusOK, status)

	status, env = api.do(http.MethodPost, "/api/v1/timesheets", bob, gin.H{
		"task_name": "Kickoff", "date": "2025-01-02", "hours": 2, "project_id": projectA,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d", projectA), admin, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d/users/%d", projectA, bobUser.ID), admin, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d", projectA), admin, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d", projectA), admin, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(http.MethodGet, "/api/v1/projects/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLogoutRevokesToken(t *testing.T) {
	api, _ := newTestAPI(t)
	api.register("ada@example.com")
	token := api.login("ada@example.com", "s3cret!")

	status, _ := api.do(http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMetricsEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)
	api.register("ada@example.com")

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "projectdesk_http_requests_total")
	assert.Contains(t, w.Body.String(), "projectdesk_mutations_total")
}

func TestCORSAllowsCredentialedWildcard(t *testing.T) {
	api, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
