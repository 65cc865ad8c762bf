package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Wiki      WikiConfig      `mapstructure:"wiki"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string          `mapstructure:"host"`
	Port           int             `mapstructure:"port"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration   `mapstructure:"write_timeout"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RateLimitConfig allows Requests per Window for each client IP.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type WikiConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RegulationsURL string        `mapstructure:"regulations_url"`
	NewsURL        string        `mapstructure:"news_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Backend string      `mapstructure:"backend"` // "memory" or "redis"
	Redis   RedisConfig `mapstructure:"redis"`
	TTL     TTLConfig   `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// TTLConfig holds how long each upstream response is reused.
type TTLConfig struct {
	Price       time.Duration `mapstructure:"price"`
	Latest      time.Duration `mapstructure:"latest"`
	Mappings    time.Duration `mapstructure:"mappings"`
	Indices     time.Duration `mapstructure:"indices"`
	Regulations time.Duration `mapstructure:"regulations"`
	News        time.Duration `mapstructure:"news"`
}

type StorageConfig struct {
	Backend    string   `mapstructure:"backend"` // "memory", "s3", "postgres" or "sqlite"
	S3         S3Config `mapstructure:"s3"`
	SQLitePath string   `mapstructure:"sqlite_path"`
}

type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// MinJWTSecretLen is the shortest HMAC key accepted for bearer tokens.
const MinJWTSecretLen = 32

var ErrWeakJWTSecret = errors.New("auth.jwt_secret must be set to at least 32 bytes")

func (a AuthConfig) Validate() error {
	if len(a.JWTSecret) < MinJWTSecretLen {
		return ErrWeakJWTSecret
	}
	return nil
}

// SchedulerConfig holds cron expressions (with seconds, UTC). An empty expression disables the job.
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Latest   string `mapstructure:"latest"`
	Mappings string `mapstructure:"mappings"`
	Volumes  string `mapstructure:"volumes"`
	Sweep    string `mapstructure:"sweep"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "https://runetick.com"})
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit.requests", 300)
	v.SetDefault("server.rate_limit.window", 30*time.Second)

	v.SetDefault("wiki.base_url", "https://prices.runescape.wiki/api/v1/osrs")
	v.SetDefault("wiki.regulations_url", "https://oldschool.runescape.wiki/?title=User:Duralith/utils/untaxed_items.json&action=raw&ctype=application%2Fjson")
	v.SetDefault("wiki.news_url", "https://secure.runescape.com/m=news/latest_news.rss?oldschool=true")
	v.SetDefault("wiki.user_agent", "runetick price service - contact: me@brad-jackson.com, 'r1zk' in osrs wiki discord, runetick.com")
	v.SetDefault("wiki.timeout", 10*time.Second)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "runetick:")
	v.SetDefault("cache.ttl.price", 60*time.Second)
	v.SetDefault("cache.ttl.latest", time.Second)
	v.SetDefault("cache.ttl.mappings", time.Hour)
	v.SetDefault("cache.ttl.indices", time.Second)
	v.SetDefault("cache.ttl.regulations", time.Second)
	v.SetDefault("cache.ttl.news", 5*time.Minute)

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.sqlite_path", "data/runetick.db")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "runetick")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.latest", "*/5 * * * * *")
	v.SetDefault("scheduler.mappings", "0 0 * * * *")
	v.SetDefault("scheduler.volumes", "0 0 0 * * *")
	v.SetDefault("scheduler.sweep", "0 */5 * * * *")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "dev")
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables (a .env
// file is loaded first when present). Extra search paths may be given.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if ex, err := os.Executable(); err == nil {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	// Support environment variables with dot notation (e.g., CACHE_BACKEND)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
