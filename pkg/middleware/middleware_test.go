package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitwise74/account-api/internal/model"
	"bitwise74/account-api/internal/service"
	"bitwise74/account-api/pkg/httperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var e ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		page, size string
		want       Pagination
	}{
		{"", "", Pagination{0, 10}},
		{"2", "5", Pagination{2, 5}},
		{"-1", "5", Pagination{0, 5}},
		{"abc", "xyz", Pagination{0, 10}},
		{"1", "0", Pagination{1, 10}},
		{"1", "11", Pagination{1, 10}},
		{"1", "10", Pagination{1, 10}},
		{"1", "1", Pagination{1, 1}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePagination(tt.page, tt.size), "page=%q size=%q", tt.page, tt.size)
	}
}

func TestPaginationMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", NewPaginationMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, GetPagination(c))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/?page=3&size=4", nil))
	assert.JSONEq(t, `{"Page":3,"Size":4}`, w.Body.String())
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(NewRequestIDMiddleware(), ErrorHandler())
	r.GET("/validation", func(c *gin.Context) {
		c.Error(httperr.Validation(map[string]string{"email": "E-mail in use"}))
	})
	r.GET("/plain", func(c *gin.Context) {
		c.Error(errors.New("database exploded"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.String(http.StatusTeapot, "short and stout")
		c.Error(httperr.NotFound("ignored"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/validation", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decode(t, w)
	assert.Equal(t, "/validation", e.Path)
	assert.Equal(t, "Validation Failure", e.Message)
	assert.Equal(t, map[string]string{"email": "E-mail in use"}, e.ValidationErrors)
	assert.Positive(t, e.Timestamp)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w).Message)
	assert.NotContains(t, w.Body.String(), "validationErrors")
	assert.NotContains(t, w.Body.String(), "exploded")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short and stout", w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("requestID"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

func TestBodySizeLimiter(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), BodySizeLimiter(8))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Error(httperr.Wrap(http.StatusBadRequest, "Invalid request body", err))
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("way too large for the limit")))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body size exceeds limit", decode(t, w).Message)

	// No content length, caught while reading
	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader("way too large for the limit")))
	req.ContentLength = -1
	w = serve(r, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), RateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 1, Burst: 2}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterDisabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiterMiddleware(RateLimiterConfig{}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 50 {
		require.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestTurnstile(t *testing.T) {
	verifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		if body["secret"] == "secret" && body["response"] == "good" {
			w.Write([]byte(`{"success":true}`))
			return
		}

		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer verifier.Close()

	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/", NewTurnstileMiddleware(TurnstileConfig{
		Enabled:   true,
		Secret:    "secret",
		VerifyURL: verifier.URL,
	}), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := func(token string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if token != "" {
			req.Header.Set("TurnstileToken", token)
		}
		return req
	}

	assert.Equal(t, http.StatusBadRequest, serve(r, req("")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req("bad")).Code)
	assert.Equal(t, http.StatusOK, serve(r, req("good")).Code)
}

type stubVerifier struct {
	users map[string]*model.User
}

func (s stubVerifier) Verify(_ context.Context, token string) (*model.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}

	return nil, service.ErrTokenInvalid
}

func TestTokenAuthentication(t *testing.T) {
	r := gin.New()
	r.Use(TokenAuthentication(stubVerifier{users: map[string]*model.User{
		"valid": {ID: 7, Username: "user7"},
	}}))
	r.GET("/", func(c *gin.Context) {
		u, ok := AuthenticatedUser(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}

		c.String(http.StatusOK, u.Username+" "+c.GetString("userID"))
	})

	req := func(header string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return req
	}

	assert.Equal(t, "user7 7", serve(r, req("Bearer valid")).Body.String())
	assert.Equal(t, "anonymous", serve(r, req("Bearer expired")).Body.String())
	assert.Equal(t, "anonymous", serve(r, req("Basic dXNlcjpwYXNz")).Body.String())
	assert.Equal(t, "anonymous", serve(r, req("")).Body.String())
}
