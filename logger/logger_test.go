package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"teacreek/settings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWritesFileAndChangesLevel(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(&settings.LogConfig{Level: "info", FileName: file, MaxSize: 1}, gin.ReleaseMode))
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	zap.L().Debug("hidden")
	zap.L().Info("visible")
	require.NoError(t, SetLevel("debug"))
	zap.L().Debug("now visible")
	_ = zap.L().Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"hidden"`)
	assert.Contains(t, string(data), `"visible"`)
	assert.Contains(t, string(data), `"now visible"`)

	assert.Error(t, SetLevel("loud"))
}

func TestGinRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinLogger(), GinRecovery(false))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"服务繁忙"}`, w.Body.String())
}
