package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 统一使用 Config 后缀
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Mode    string `mapstructure:"mode"`
	Version string `mapstructure:"version"`
	Port    int    `mapstructure:"port"`
	Locale  string `mapstructure:"locale"` // 参数校验错误信息的语言 (zh / en)
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	FileName   string `mapstructure:"file_name"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DatabaseConfig 存储配置
// Driver 为 sqlite 时只使用 Path；为 mysql 时使用 Host 等连接参数
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Path         string `mapstructure:"path"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DbName       string `mapstructure:"db_name"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db_name"`
	PoolSize int    `mapstructure:"pool_size"`
}

type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret"`
	Issuer           string `mapstructure:"issuer"`
	TokenExpire      string `mapstructure:"token_expire"`       // 普通登录有效期，如 "24h"
	AdminTokenExpire string `mapstructure:"admin_token_expire"` // 管理员登录有效期，如 "12h"
	StrictSSO        bool   `mapstructure:"strict_sso"`         // Redis 不可用时是否拒绝请求
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Avatar   string `mapstructure:"avatar"`
}

// ForumConfig 社区业务规则
type ForumConfig struct {
	PinnedDepartment      string       `mapstructure:"pinned_department"`
	PinEnabled            bool         `mapstructure:"pin_enabled"`
	RestrictedDepartments []string     `mapstructure:"restricted_departments"` // 仅管理员可发帖的分类
	ReservedUsernames     []string     `mapstructure:"reserved_usernames"`     // 不允许自动注册的用户名
	DefaultRole           string       `mapstructure:"default_role"`
	AvatarBase            string       `mapstructure:"avatar_base"`
	Admin                 *AdminConfig `mapstructure:"admin"`
}

type UploadConfig struct {
	Dir                string `mapstructure:"dir"`
	URLPrefix          string `mapstructure:"url_prefix"`
	MaxMultipartMemory int64  `mapstructure:"max_multipart_memory"`
}

type SnowflakeConfig struct {
	StartTime string `mapstructure:"start_time"`
	MachineID int64  `mapstructure:"machine_id"`
}

type RateLimitConfig struct {
	FillInterval string `mapstructure:"fill_interval"` // 令牌填充间隔（如 "10ms"）
	Capacity     int64  `mapstructure:"capacity"`      // 令牌桶容量
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// 使用指针区分"配置缺失"和"零值"
type Config struct {
	App       *AppConfig       `mapstructure:"app"`
	Log       *LogConfig       `mapstructure:"log"`
	Database  *DatabaseConfig  `mapstructure:"database"`
	Redis     *RedisConfig     `mapstructure:"redis"`
	Auth      *AuthConfig      `mapstructure:"auth"`
	Forum     *ForumConfig     `mapstructure:"forum"`
	Upload    *UploadConfig    `mapstructure:"upload"`
	Snowflake *SnowflakeConfig `mapstructure:"snowflake"`
	RateLimit *RateLimitConfig `mapstructure:"ratelimit"`
	Tracing   *TracingConfig   `mapstructure:"tracing"`
}

// EnvPrefix 环境变量前缀，例如 TEACREEK_AUTH_JWT_SECRET 覆盖 auth.jwt_secret
const EnvPrefix = "TEACREEK"

// Conf 最近一次加载的配置
var Conf = new(Config)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "teacreek")
	v.SetDefault("app.mode", "debug")
	v.SetDefault("app.version", "v0.1.0")
	v.SetDefault("app.port", 5000)
	v.SetDefault("app.locale", "zh")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file_name", "./logs/teacreek.log")
	v.SetDefault("log.max_size", 200)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./community.db")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.db_name", "teacreek")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db_name", 0)
	v.SetDefault("redis.pool_size", 50)

	v.SetDefault("auth.jwt_secret", "tea_creek_default_secret")
	v.SetDefault("auth.issuer", "teacreek")
	v.SetDefault("auth.token_expire", "24h")
	v.SetDefault("auth.admin_token_expire", "12h")
	v.SetDefault("auth.strict_sso", false)

	v.SetDefault("forum.pinned_department", "村务公开")
	v.SetDefault("forum.pin_enabled", true)
	v.SetDefault("forum.restricted_departments", []string{"村务公开"})
	v.SetDefault("forum.reserved_usernames", []string{"admin"})
	v.SetDefault("forum.default_role", "villager")
	v.SetDefault("forum.avatar_base", "https://api.dicebear.com/7.x/avataaars/svg?seed=")
	v.SetDefault("forum.admin.username", "admin")
	v.SetDefault("forum.admin.password", "admin123")
	v.SetDefault("forum.admin.avatar", "https://api.dicebear.com/7.x/avataaars/svg?seed=Admin")

	v.SetDefault("upload.dir", "./public/uploads")
	v.SetDefault("upload.url_prefix", "/uploads")
	v.SetDefault("upload.max_multipart_memory", 32<<20)

	v.SetDefault("snowflake.start_time", "2024-01-01")
	v.SetDefault("snowflake.machine_id", 1)

	v.SetDefault("ratelimit.fill_interval", "10ms")
	v.SetDefault("ratelimit.capacity", 200)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "127.0.0.1:4317")
	v.SetDefault("tracing.service_name", "teacreek")
	v.SetDefault("tracing.insecure", true)
}

// Init 加载配置文件并监听变化
// 文件不存在时仅使用默认值和环境变量；onChange 在配置文件被修改且解析成功后回调
func Init(filePath string, onChange func(*Config)) (err error) {
	// .env 是可选的，只用来给本地开发注入密钥
	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("godotenv.Load() failed: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(filePath)
	loaded := true
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("viper.ReadInConfig() failed: %w", err)
		}
		loaded = false
	}

	conf := new(Config)
	if err = v.Unmarshal(conf); err != nil {
		return fmt.Errorf("viper.Unmarshal() failed: %w", err)
	}
	Conf = conf

	if !loaded || onChange == nil {
		return nil
	}

	// 热加载：重新解析到新的对象，不修改正在被使用的旧配置
	v.OnConfigChange(func(in fsnotify.Event) {
		next := new(Config)
		if err := v.Unmarshal(next); err != nil {
			fmt.Printf("配置文件热加载失败: %v\n", err)
			return
		}
		Conf = next
		onChange(next)
	})
	v.WatchConfig()
	return nil
}
