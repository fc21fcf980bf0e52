package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Strava   StravaConfig
	Globe    GlobeConfig
	Redis    RedisConfig
	NATS     NATSConfig
	S3       S3Config
	Security SecurityConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type StravaConfig struct {
	ClientID       string
	ClientSecret   string
	RedirectURL    string
	AuthURL        string
	TokenURL       string
	APIBaseURL     string
	Scopes         []string
	PerPage        int
	RequestTimeout time.Duration
	// StreamMaxPages ограничивает websocket стрим, 0 без ограничения
	StreamMaxPages int
}

// GlobeConfig описывает внешний вид треков и подключение Cesium
type GlobeConfig struct {
	PathWidth      int
	Saturation     float64
	Value          float64
	CesiumBaseURL  string
	CesiumIonToken string
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	TTL          time.Duration
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type NATSConfig struct {
	Enabled       bool
	URL           string
	SubjectPrefix string
}

type S3Config struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	KeyPrefix       string
	URLMode         string
	PresignedTTL    time.Duration
}

type SecurityConfig struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	SecureCookies  bool
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	perPage, err := getEnvInt("STRAVA_PER_PAGE", 200)
	if err != nil {
		return nil, err
	}
	if perPage <= 0 || perPage > 200 {
		return nil, fmt.Errorf("invalid STRAVA_PER_PAGE: must be within 1..200, got %d", perPage)
	}

	streamMaxPages, err := getEnvInt("STREAM_MAX_PAGES", 50)
	if err != nil {
		return nil, err
	}
	if streamMaxPages < 0 {
		return nil, fmt.Errorf("invalid STREAM_MAX_PAGES: must not be negative, got %d", streamMaxPages)
	}

	requestTimeout, err := getEnvDuration("STRAVA_REQUEST_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	pathWidth, err := getEnvInt("GLOBE_PATH_WIDTH", 5)
	if err != nil {
		return nil, err
	}

	saturation, err := getEnvFloat("GLOBE_SATURATION", 0.5)
	if err != nil {
		return nil, err
	}

	value, err := getEnvFloat("GLOBE_VALUE", 0.95)
	if err != nil {
		return nil, err
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := getEnvDuration("CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	presignedTTL, err := getEnvDuration("S3_PRESIGNED_TTL", "15m")
	if err != nil {
		return nil, err
	}

	rateLimitRPS, err := getEnvFloat("RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, err
	}

	rateLimitBurst, err := getEnvInt("RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Strava: StravaConfig{
			ClientID:       getEnv("STRAVA_CLIENT_ID", ""),
			ClientSecret:   getEnv("STRAVA_CLIENT_SECRET", ""),
			RedirectURL:    getEnv("STRAVA_REDIRECT_URL", "http://localhost:8080/strava_auth"),
			AuthURL:        getEnv("STRAVA_AUTH_URL", "https://www.strava.com/oauth/authorize"),
			TokenURL:       getEnv("STRAVA_TOKEN_URL", "https://www.strava.com/oauth/token"),
			APIBaseURL:     strings.TrimRight(getEnv("STRAVA_API_BASE_URL", "https://www.strava.com/api/v3"), "/"),
			Scopes:         splitCSV(getEnv("STRAVA_SCOPES", "read,activity:read_all")),
			PerPage:        perPage,
			RequestTimeout: requestTimeout,
			StreamMaxPages: streamMaxPages,
		},
		Globe: GlobeConfig{
			PathWidth:      pathWidth,
			Saturation:     saturation,
			Value:          value,
			CesiumBaseURL:  strings.TrimRight(getEnv("CESIUM_BASE_URL", "https://cesium.com/downloads/cesiumjs/releases/1.121/Build/Cesium"), "/"),
			CesiumIonToken: getEnv("CESIUM_ION_TOKEN", ""),
		},
		Redis: RedisConfig{
			Enabled:      getEnvBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           redisDB,
			TTL:          cacheTTL,
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		NATS: NATSConfig{
			Enabled:       getEnvBool("NATS_ENABLED", false),
			URL:           getEnv("NATS_URL", "nats://localhost:4222"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "activity_globe"),
		},
		S3: S3Config{
			Enabled:         getEnvBool("S3_ENABLED", false),
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "ru-central1"),
			Endpoint:        getEnv("S3_ENDPOINT", "https://storage.yandexcloud.net"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", true),
			KeyPrefix:       getEnv("S3_KEY_PREFIX", "tracks"),
			URLMode:         getEnv("S3_URL_MODE", "presigned"),
			PresignedTTL:    presignedTTL,
		},
		Security: SecurityConfig{
			AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")),
			RateLimitRPS:   rateLimitRPS,
			RateLimitBurst: rateLimitBurst,
			SecureCookies:  getEnvBool("SECURE_COOKIES", false),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Strava.ClientID) == "" || strings.TrimSpace(c.Strava.ClientSecret) == "" {
		return fmt.Errorf("STRAVA_CLIENT_ID and STRAVA_CLIENT_SECRET are required")
	}
	if c.Globe.PathWidth <= 0 {
		return fmt.Errorf("invalid GLOBE_PATH_WIDTH: must be positive")
	}
	if c.Globe.Saturation < 0 || c.Globe.Saturation > 1 {
		return fmt.Errorf("invalid GLOBE_SATURATION: must be within 0..1")
	}
	if c.Globe.Value < 0 || c.Globe.Value > 1 {
		return fmt.Errorf("invalid GLOBE_VALUE: must be within 0..1")
	}
	if c.S3.Enabled && strings.TrimSpace(c.S3.Bucket) == "" {
		return fmt.Errorf("S3_BUCKET is required when S3_ENABLED=true")
	}
	if c.Security.RateLimitRPS <= 0 || c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// Addr returns host:port for the cache connection.
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	parsed, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func splitCSV(raw string) []string {
	items := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
