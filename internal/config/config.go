package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RegistryConfig selects and configures the package registry backend.
type RegistryConfig struct {
	// Backend is "adb" or "static"
	Backend string        `mapstructure:"backend"`
	ADBPath string        `mapstructure:"adb_path"`
	Serial  string        `mapstructure:"serial"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Fixture file for the static backend (JSON list of app descriptors)
	FixtureFile string `mapstructure:"fixture_file"`
}

type ScanConfig struct {
	WorkerPoolSize    int  `mapstructure:"worker_pool_size"`
	TopRiskApps       int  `mapstructure:"top_risk_apps"`
	IncludeSystemApps bool `mapstructure:"include_system_apps"`
	OnlyUsefulApps    bool `mapstructure:"only_useful_apps"`
}

type CacheConfig struct {
	ProtectionTTL time.Duration `mapstructure:"protection_ttl"`
	LabelTTL      time.Duration `mapstructure:"label_ttl"`
}

type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/permscope")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("PERMSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("app.environment", "PERMSCOPE_APP_ENVIRONMENT")
	v.BindEnv("server.http_port", "PERMSCOPE_SERVER_HTTP_PORT")
	v.BindEnv("redis.enabled", "PERMSCOPE_REDIS_ENABLED")
	v.BindEnv("redis.host", "PERMSCOPE_REDIS_HOST")
	v.BindEnv("redis.port", "PERMSCOPE_REDIS_PORT")
	v.BindEnv("redis.password", "PERMSCOPE_REDIS_PASSWORD")
	v.BindEnv("registry.backend", "PERMSCOPE_REGISTRY_BACKEND")
	v.BindEnv("registry.adb_path", "PERMSCOPE_REGISTRY_ADB_PATH")
	v.BindEnv("registry.serial", "PERMSCOPE_REGISTRY_SERIAL")
	v.BindEnv("auth.api_key", "PERMSCOPE_AUTH_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "permscope")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-API-Key"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "permscope:")

	v.SetDefault("registry.backend", "adb")
	v.SetDefault("registry.adb_path", "adb")
	v.SetDefault("registry.timeout", 30*time.Second)

	v.SetDefault("scan.worker_pool_size", 2)
	v.SetDefault("scan.top_risk_apps", 5)
	v.SetDefault("scan.include_system_apps", false)
	v.SetDefault("scan.only_useful_apps", false)

	v.SetDefault("cache.protection_ttl", 10*time.Minute)
	v.SetDefault("cache.label_ttl", 10*time.Minute)
}
