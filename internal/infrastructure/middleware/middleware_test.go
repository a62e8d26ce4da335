package middleware

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"family_hub_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthEngine(handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/me", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString(ContextUserID)})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	jwt.Init("middleware-secret", 5, 1)
	access, err := jwt.GenerateAccessToken("u1")
	require.NoError(t, err)
	refresh, _, err := jwt.GenerateRefreshToken("u1")
	require.NoError(t, err)

	r := newAuthEngine(JWTAuth())
	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"ok", "Bearer " + access, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.status == http.StatusOK {
				assert.Equal(t, "u1", body["userId"])
			} else {
				assert.Equal(t, false, body["success"])
			}
		})
	}
}

func TestJWTAuthWithQuery(t *testing.T) {
	jwt.Init("middleware-secret", 5, 1)
	access, err := jwt.GenerateAccessToken("u2")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	newAuthEngine(JWTAuthWithQuery()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+access, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newAuthEngine(JWTAuth()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+access, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func multipartRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "upload.bin")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadFilter(t *testing.T) {
	r := gin.New()
	r.POST("/upload", UploadFilter(1), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"mime": c.GetString(ContextUploadMIME)})
	})

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, pdf))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "application/pdf")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, []byte("just some plain text")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, append(pdf, make([]byte, 2<<20)...)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
