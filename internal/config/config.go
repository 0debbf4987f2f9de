package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port              int
	DBDSN             string
	DB                PoolConfig
	RedisURL          string
	AppID             string
	JWTSecret         string
	SessionTTL        time.Duration
	CustomTokenSecret string
	BootstrapToken    string
	AllowOrigins      []string
	Feed              FeedConfig
	DisplayLocation   *time.Location
	NoticeTTL         time.Duration
	DraftTTL          time.Duration
	RateLimitPublic   RateLimitConfig
	RateLimitAuth     RateLimitConfig
}

// PoolConfig ajusta o pool de conexões do Postgres.
type PoolConfig struct {
	MinConns        int
	MaxConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// FeedConfig escolhe o barramento de notificações de mudança.
type FeedConfig struct {
	Driver  string
	NATSURL string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

const (
	FeedRedis  = "redis"
	FeedNATS   = "nats"
	FeedMemory = "memory"
)

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.DB = PoolConfig{
		MinConns: getIntEnv("DB_MIN_CONNS", 2),
		MaxConns: getIntEnv("DB_MAX_CONNS", 10),
	}
	if cfg.DB.MaxConnLifetime, err = parseDurationEnv("DB_MAX_CONN_LIFETIME", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DB.MaxConnIdleTime, err = parseDurationEnv("DB_MAX_CONN_IDLE_TIME", 5*time.Minute); err != nil {
		return nil, err
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.AppID = strings.TrimSpace(getEnv("APP_ID", "default-app-id"))
	if cfg.AppID == "" {
		cfg.AppID = "default-app-id"
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	sessionTTL, err := parseDurationEnv("SESSION_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = sessionTTL

	cfg.CustomTokenSecret = strings.TrimSpace(getEnv("CUSTOM_TOKEN_SECRET", ""))
	cfg.BootstrapToken = strings.TrimSpace(getEnv("BOOTSTRAP_TOKEN", ""))
	if cfg.BootstrapToken != "" && cfg.CustomTokenSecret == "" {
		return nil, errors.New("BOOTSTRAP_TOKEN exige CUSTOM_TOKEN_SECRET")
	}

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.Feed.Driver = strings.ToLower(strings.TrimSpace(getEnv("FEED_DRIVER", FeedRedis)))
	switch cfg.Feed.Driver {
	case FeedRedis, FeedMemory:
	case FeedNATS:
		cfg.Feed.NATSURL = strings.TrimSpace(getEnv("NATS_URL", "nats://localhost:4222"))
	default:
		return nil, errors.New("FEED_DRIVER inválido (use redis, nats ou memory)")
	}

	loc, err := time.LoadLocation(getEnv("DISPLAY_TZ", "America/Sao_Paulo"))
	if err != nil {
		return nil, errors.New("DISPLAY_TZ inválido")
	}
	cfg.DisplayLocation = loc

	noticeTTL, err := parseDurationEnv("NOTICE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.NoticeTTL = noticeTTL

	if cfg.DraftTTL, err = parseDurationEnv("DRAFT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 5, Burst: 10}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func getIntEnv(key string, def int) int {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
