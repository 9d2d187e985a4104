package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API        *APIConfig        `mapstructure:"api"`
	Gin        *GinConfig        `mapstructure:"gin"`
	Postgres   *PostgresConfig   `mapstructure:"postgres"`
	Redis      *RedisConfig      `mapstructure:"redis"`
	Cache      *CacheConfig      `mapstructure:"cache"`
	Import     *ImportConfig     `mapstructure:"import"`
	Attendance *AttendanceConfig `mapstructure:"attendance"`
	Realtime   *RealtimeConfig   `mapstructure:"realtime"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	LoginRatePerSecond float64       `mapstructure:"login_rate_per_second"`
	LoginBurst         int           `mapstructure:"login_burst"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	SearchIndexSize int           `mapstructure:"search_index_size"`
	StatsTTL        time.Duration `mapstructure:"stats_ttl"`
}

type ImportConfig struct {
	MaxRows        int   `mapstructure:"max_rows"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
	StrictCPF      bool  `mapstructure:"strict_cpf"`
}

type AttendanceConfig struct {
	EnforceWorkDays bool   `mapstructure:"enforce_work_days"`
	Timezone        string `mapstructure:"timezone"`
}

// Location resolves the timezone used to assign check-ins to a day.
func (c AttendanceConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type RealtimeConfig struct {
	Channel string `mapstructure:"channel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.token_ttl", 12*time.Hour)
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.login_rate_per_second", 1.0)
	v.SetDefault("api.login_burst", 5)
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.search_index_size", 64)
	v.SetDefault("cache.stats_ttl", 30*time.Second)
	v.SetDefault("import.max_rows", 5000)
	v.SetDefault("import.max_upload_bytes", 10<<20)
	v.SetDefault("import.strict_cpf", true)
	v.SetDefault("attendance.enforce_work_days", false)
	v.SetDefault("attendance.timezone", "America/Sao_Paulo")
	v.SetDefault("realtime.channel", "changefeed:operators")
}

// Load reads the YAML file at path. Every key can be overridden by an
// environment variable, e.g. api.jwt_signing_key -> API_JWT_SIGNING_KEY.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	loaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
		loaded = false
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}

	if loaded {
		v.OnConfigChange(func(e fsnotify.Event) {
			zap.L().Info("config file changed, restart to apply", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		})
		v.WatchConfig()
	}

	return conf, nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	// AutomaticEnv is only consulted by Get, bind the secrets explicitly.
	conf.API.JWTSigningKey = v.GetString("api.jwt_signing_key")
	conf.Postgres.Password = v.GetString("postgres.password")
	conf.Redis.Password = v.GetString("redis.password")

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *AppConfig) validate() error {
	if c.API.JWTSigningKey == "" {
		return errors.New("api.jwt_signing_key is required")
	}
	if c.Import.MaxRows <= 0 {
		return fmt.Errorf("import.max_rows must be positive, got %d", c.Import.MaxRows)
	}
	if c.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("import.max_upload_bytes must be positive, got %d", c.Import.MaxUploadBytes)
	}
	return nil
}
