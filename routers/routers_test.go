package routers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"teacreek/controller"
	"teacreek/dao/database"
	"teacreek/dao/redis"
	"teacreek/dao/storage"
	"teacreek/logic"
	"teacreek/models"
	"teacreek/pkg/jwt"
	"teacreek/pkg/metrics"
	"teacreek/settings"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

type apiClient struct {
	t *testing.T
	r *gin.Engine
}

func newTestServer(t *testing.T) *apiClient {
	t.Helper()
	require.NoError(t, controller.InitTrans("zh"))

	store, err := database.New(&settings.DatabaseConfig{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "community.db"),
	}, database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	disk, err := storage.NewDisk(afero.NewMemMapFs(), "/data/uploads", "/uploads")
	require.NoError(t, err)

	m := metrics.New("teacreek_test")
	svc := logic.NewService(logic.Deps{
		Store:   store,
		Tokens:  redis.NewFromClient(rdb),
		JWT:     jwt.NewManager("test-secret", "teacreek"),
		Files:   disk,
		Metrics: m,
		Forum: &settings.ForumConfig{
			PinnedDepartment:      "村务公开",
			PinEnabled:            true,
			RestrictedDepartments: []string{"村务公开"},
			ReservedUsernames:     []string{"admin"},
			DefaultRole:           models.RoleVillager,
			AvatarBase:            "https://avatar.test/?seed=",
			Admin:                 &settings.AdminConfig{Username: "admin", Password: "admin123"},
		},
		TokenTTL:      time.Hour,
		AdminTokenTTL: time.Hour,
	})
	require.NoError(t, svc.SeedAdmin(t.Context()))

	r := SetupRouter(controller.NewHandler(svc), svc, Options{
		Mode:            gin.TestMode,
		RateLimit:       &settings.RateLimitConfig{FillInterval: "1ms", Capacity: 1000},
		Metrics:         m,
		UploadURLPrefix: disk.URLPrefix(),
		Uploads:         disk.FileSystem(),
	})
	return &apiClient{t: t, r: r}
}

func (a *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *apiClient) login(path, username, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, path, "", gin.H{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var res controller.LoginResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(a.t, res.Success)
	return res.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	api := newTestServer(t)
	w := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Status    string `json:"status"`
		Timestamp int64  `json:"timestamp"`
	}](t, w)
	assert.Equal(t, "ok", body.Status)
	assert.InDelta(t, time.Now().UnixMilli(), body.Timestamp, float64(time.Minute.Milliseconds()))
}

func TestLoginAndMe(t *testing.T) {
	api := newTestServer(t)

	w := api.do(http.MethodPost, "/api/login", "", gin.H{"username": "张三"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[controller.LoginResponse](t, w)
	assert.True(t, res.Created)
	assert.Equal(t, "张三", res.User.Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = api.do(http.MethodGet, "/api/me", res.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		Success bool        `json:"success"`
		User    models.User `json:"user"`
	}](t, w)
	assert.True(t, me.Success)
	assert.Equal(t, res.User.ID, me.User.ID)

	w = api.do(http.MethodPost, "/api/login", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[controller.ErrorBody](t, w)
	assert.False(t, body.Success)
	assert.Contains(t, body.Errors, "username")

	w = api.do(http.MethodPost, "/api/login", "", gin.H{"username": "admin"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/login", "", gin.H{"username": "carol", "password": strings.Repeat("x", 80)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[controller.ErrorBody](t, w).Errors, "password")

	w = api.do(http.MethodPost, "/api/login", "", gin.H{"username": "Admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthErrors(t *testing.T) {
	api := newTestServer(t)

	w := api.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	api.r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	token := api.login("/api/login", "li", "")
	w = api.do(http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPostLifecycle(t *testing.T) {
	api := newTestServer(t)
	user := api.login("/api/login", "wang", "")
	admin := api.login("/api/admin/login", "admin", "admin123")

	// 普通用户不能发到受限分类
	w := api.do(http.MethodPost, "/api/submit", user, gin.H{"title": "通知", "department": "村务公开"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/submit", user, gin.H{"title": "   ", "department": "闲聊"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/submit", "", gin.H{"title": "t", "department": "闲聊"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/submit", user, gin.H{
		"title": "丢了一只猫", "description": "橘色", "department": "求助", "images": []string{"/uploads/cat.png"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	helpID := decode[struct {
		PostID int64 `json:"postId"`
	}](t, w).PostID

	w = api.do(http.MethodPost, "/api/submit", admin, gin.H{"title": "停水通知", "department": "村务公开"})
	require.Equal(t, http.StatusOK, w.Code)
	noticeID := decode[struct {
		PostID int64 `json:"postId"`
	}](t, w).PostID

	// 置顶分类排在最前
	w = api.do(http.MethodGet, "/api/feed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decode[[]models.Post](t, w)
	require.Len(t, feed, 2)
	assert.Equal(t, noticeID, feed[0].ID)

	w = api.do(http.MethodGet, "/api/feed?tag=%E6%B1%82%E5%8A%A9", "", nil)
	feed = decode[[]models.Post](t, w)
	require.Len(t, feed, 1)
	assert.Equal(t, helpID, feed[0].ID)

	w = api.do(http.MethodGet, "/api/feed?size=1000", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 评论
	w = api.do(http.MethodPost, "/api/post/"+itoa(helpID)+"/comment", user, gin.H{"content": "在村口见过"})
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPost, "/api/comments", admin, gin.H{"postId": helpID, "content": "已转告"})
	require.Equal(t, http.StatusOK, w.Code)
	adminComment := decode[struct {
		CommentID int64 `json:"commentId"`
	}](t, w).CommentID

	w = api.do(http.MethodGet, "/api/comments/"+itoa(helpID), "", nil)
	comments := decode[[]models.Comment](t, w)
	require.Len(t, comments, 2)
	assert.Equal(t, "已转告", comments[0].Content)

	w = api.do(http.MethodDelete, "/api/comments/"+itoa(adminComment), user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 详情：浏览数 +1，附带评论
	w = api.do(http.MethodGet, "/api/post/"+itoa(helpID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		models.Post
		Comments []models.Comment `json:"comments"`
	}](t, w)
	assert.Equal(t, int64(1), detail.Views)
	assert.Equal(t, int64(2), detail.CommentsCount)
	assert.Len(t, detail.Comments, 2)
	assert.Equal(t, []string{"/uploads/cat.png"}, detail.Images)

	w = api.do(http.MethodGet, "/api/post/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodGet, "/api/post/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 点赞
	w = api.do(http.MethodPost, "/api/post/"+itoa(helpID)+"/like", "", gin.H{"isLiked": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[struct {
		Likes int64 `json:"likes"`
	}](t, w).Likes)
	w = api.do(http.MethodPost, "/api/post/"+itoa(helpID)+"/like", "", gin.H{"isLiked": false})
	assert.Equal(t, int64(0), decode[struct {
		Likes int64 `json:"likes"`
	}](t, w).Likes)
	w = api.do(http.MethodPost, "/api/post/"+itoa(helpID)+"/like", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	api := newTestServer(t)
	user := api.login("/api/login", "zhao", "")
	admin := api.login("/api/admin/login", "admin", "admin123")

	w := api.do(http.MethodPost, "/api/admin/login", "", gin.H{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/submit", user, gin.H{"title": "a", "department": "闲聊"})
	require.Equal(t, http.StatusOK, w.Code)
	pid := decode[struct {
		PostID int64 `json:"postId"`
	}](t, w).PostID

	w = api.do(http.MethodGet, "/api/admin/stats", user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[struct {
		Success    bool                     `json:"success"`
		Total      int64                    `json:"total"`
		Today      int64                    `json:"today"`
		Categories []models.DepartmentCount `json:"categories"`
	}](t, w)
	assert.True(t, stats.Success)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.Today)
	assert.Equal(t, []models.DepartmentCount{{Department: "闲聊", Count: 1}}, stats.Categories)

	w = api.do(http.MethodGet, "/api/admin/list", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Post](t, w), 1)

	w = api.do(http.MethodDelete, "/api/admin/post/"+itoa(pid), user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodDelete, "/api/admin/post/"+itoa(pid), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[struct {
		Deleted int64 `json:"deleted"`
	}](t, w).Deleted)
	w = api.do(http.MethodDelete, "/api/admin/post/"+itoa(pid), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadAndServe(t *testing.T) {
	api := newTestServer(t)

	w := api.do(http.MethodPost, "/api/upload", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("images", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	part, err = mw.CreateFormFile("file", "doc.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("pdf-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	api.r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[struct {
		Success bool     `json:"success"`
		URL     string   `json:"url"`
		URLs    []string `json:"urls"`
	}](t, rec)
	require.Len(t, res.URLs, 2)
	assert.Equal(t, res.URLs[0], res.URL)
	assert.True(t, strings.HasSuffix(res.URLs[0], ".jpg"))
	assert.True(t, strings.HasSuffix(res.URLs[1], ".pdf"))

	w = api.do(http.MethodGet, res.URLs[0], "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg-bytes", w.Body.String())
}

func TestNoRouteAndMetrics(t *testing.T) {
	api := newTestServer(t)

	w := api.do(http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode[controller.ErrorBody](t, w).Success)

	api.do(http.MethodGet, "/api/health", "", nil)
	w = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `teacreek_test_http_requests_total{method="GET",route="/api/health",status="200"}`)
}

func TestRateLimitParams(t *testing.T) {
	d, c := rateLimitParams(nil)
	assert.Equal(t, 10*time.Millisecond, d)
	assert.Equal(t, int64(200), c)

	d, c = rateLimitParams(&settings.RateLimitConfig{FillInterval: "bad", Capacity: 5})
	assert.Equal(t, 10*time.Millisecond, d)
	assert.Equal(t, int64(5), c)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
