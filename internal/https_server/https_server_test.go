package https_server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"family_hub_server/internal/config"
	"family_hub_server/internal/gateway/websocket"
	"family_hub_server/internal/handler"
	"family_hub_server/internal/service"
	"family_hub_server/internal/service/servicetest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := handler.InitTrans(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testServer struct {
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	env := servicetest.New(t)
	hub := websocket.NewHub()
	t.Cleanup(hub.Close)

	services := service.NewServices(service.Dependencies{
		Repos:     env.Repos,
		Cache:     env.Cache,
		Storage:   env.Storage,
		Mailer:    env.Mailer,
		Publisher: env.Publisher,
	})
	cfg := &config.Config{SecurityConfig: config.SecurityConfig{MaxUploadMB: 5}}
	engine := Init(Options{
		Config:    cfg,
		Handlers:  handler.NewHandlers(services, hub),
		UploadDir: env.Storage.Root(),
	})
	return &testServer{engine: engine}
}

// do 发送 JSON 请求并解析响应体
func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
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
	s.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (s *testServer) register(t *testing.T, name, email string) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func userID(t *testing.T, s *testServer, token string) string {
	t.Helper()
	code, body := s.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, code, body)
	user := body["user"].(map[string]any)
	return user["id"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/api/families", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, body["success"])

	code, _ = s.do(t, http.MethodGet, "/api/families", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{"name": "A", "email": "bad", "password": "1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok, body)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Equal(t, "password must be at least 6 characters in length", errs["password"])

	s.register(t, "Alice", "alice@example.com")
	code, _ = s.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFamilyMembershipScenario(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.register(t, "Alice Smith", "alice@example.com")
	memberToken := s.register(t, "Bob Smith", "bob@example.com")
	bobID := userID(t, s, memberToken)

	code, body := s.do(t, http.MethodPost, "/api/families", adminToken, gin.H{"name": "Smiths"})
	require.Equal(t, http.StatusCreated, code, body)
	familyID := body["family"].(map[string]any)["id"].(string)

	code, body = s.do(t, http.MethodPost, "/api/families/"+familyID+"/members", adminToken, gin.H{"email": "bob@example.com"})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = s.do(t, http.MethodGet, "/api/families/"+familyID, memberToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "member", body["userRole"])
	assert.Len(t, body["members"], 2)

	code, _ = s.do(t, http.MethodPut, "/api/families/"+familyID, memberToken, gin.H{"name": "Bob's family"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(t, http.MethodDelete, "/api/families/"+familyID+"/members/"+bobID, adminToken, nil)
	require.Equal(t, http.StatusOK, code, body)

	code, _ = s.do(t, http.MethodGet, "/api/families/"+familyID, memberToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(t, http.MethodGet, "/api/families", memberToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["families"])
}
