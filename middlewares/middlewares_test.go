package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teacreek/controller"
	"teacreek/models"
	"teacreek/pkg/errorx"
	"teacreek/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth map[string]*models.Identity

func (s stubAuth) Authenticate(_ context.Context, token string) (*models.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, errorx.ErrInvalidToken
}

func serve(r *gin.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	auth := stubAuth{
		"villager-token": {UserID: 1, Role: models.RoleVillager, Name: "li"},
		"admin-token":    {UserID: 2, Role: models.RoleAdmin, Name: "admin"},
	}
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(auth), func(c *gin.Context) {
		v, _ := c.Get(controller.CtxIdentityKey)
		c.String(http.StatusOK, v.(*models.Identity).Name)
	})
	r.GET("/admin", JWTAuthMiddleware(auth), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic abc", http.StatusForbidden},
		{"empty token", "/me", "Bearer ", http.StatusForbidden},
		{"unknown token", "/me", "Bearer nope", http.StatusForbidden},
		{"valid token", "/me", "Bearer villager-token", http.StatusOK},
		{"villager on admin route", "/admin", "Bearer villager-token", http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer admin-token", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tt.path, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := serve(r, http.MethodGet, "/me", "Bearer villager-token")
	assert.Equal(t, "li", w.Body.String())
}

func TestAdminOnlyWithoutIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin", "").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(time.Hour, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestTimeoutMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TimeoutMiddleware(20 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/slow", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/fast", "").Code)
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New("mw_test")
	r := gin.New()
	r.Use(MetricsMiddleware(m))
	r.GET("/post/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/post/1", "")
	serve(r, http.MethodGet, "/post/2", "")
	serve(r, http.MethodGet, "/missing", "")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/post/:id", "GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("unmatched", "GET", "404")))
}
