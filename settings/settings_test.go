package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithoutFileUsesDefaults(t *testing.T) {
	require.NoError(t, Init(filepath.Join(t.TempDir(), "missing.yaml"), nil))

	assert.Equal(t, 5000, Conf.App.Port)
	assert.Equal(t, "sqlite", Conf.Database.Driver)
	assert.False(t, Conf.Redis.Enabled)
	assert.Equal(t, "村务公开", Conf.Forum.PinnedDepartment)
	assert.Equal(t, []string{"村务公开"}, Conf.Forum.RestrictedDepartments)
	assert.Equal(t, "admin", Conf.Forum.Admin.Username)
	assert.Equal(t, "/uploads", Conf.Upload.URLPrefix)
	assert.Equal(t, "24h", Conf.Auth.TokenExpire)
}

func TestInitReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 8081
forum:
  pin_enabled: false
  reserved_usernames: ["admin", "root"]
redis:
  enabled: true
`), 0o644))
	t.Setenv("TEACREEK_AUTH_JWT_SECRET", "from-env")

	require.NoError(t, Init(path, nil))

	assert.Equal(t, 8081, Conf.App.Port)
	assert.False(t, Conf.Forum.PinEnabled)
	assert.Equal(t, []string{"admin", "root"}, Conf.Forum.ReservedUsernames)
	assert.True(t, Conf.Redis.Enabled)
	assert.Equal(t, "from-env", Conf.Auth.JWTSecret)
	// 文件中没有的键仍取默认值
	assert.Equal(t, "zh", Conf.App.Locale)
}

func TestInitRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0o644))
	assert.Error(t, Init(path, nil))
}
