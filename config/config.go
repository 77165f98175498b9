package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultEnv                   = "development"
	DefaultPort                  = "8080"
	DefaultAccessTokenExpiryMin  = 15
	DefaultRefreshTokenExpiryMin = 10080
	DefaultSaltRounds            = 10
	DefaultAPIRateLimit          = 100
	DefaultStrictRateLimit       = 10
	DefaultRateLimitWindowMin    = 15
	DefaultDBMaxConns            = 10
	DefaultLogLevel              = "info"
	DefaultCORSAllowOrigins      = "*"
)

// Config is built once at startup and passed by pointer; nothing mutates it afterwards.
type Config struct {
	Env                string
	Port               string
	DBURL              string
	DBMaxConns         int
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessExpiryMin    int
	RefreshExpiryMin   int
	SaltRounds         int
	APIRateLimit       int
	StrictRateLimit    int
	RateLimitWindowMin int
	RedisURL           string
	LogLevel           string
	CORSAllowOrigins   string
}

// Load reads configuration from the process environment, falling back to
// config/.env.dev (or config/.env.prod when ENV=production).
func Load() *Config {
	env := getEnv("ENV", DefaultEnv)
	src := newSource(envFile(env))

	cfg := &Config{
		Env:                env,
		Port:               src.get("PORT", DefaultPort),
		DBURL:              src.mustGet("DB_URL"),
		DBMaxConns:         src.getInt("DB_MAX_CONNS", DefaultDBMaxConns),
		AccessTokenSecret:  src.mustGet("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: src.mustGet("REFRESH_TOKEN_SECRET"),
		AccessExpiryMin:    src.getInt("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiryMin),
		RefreshExpiryMin:   src.getInt("REFRESH_TOKEN_EXPIRY", DefaultRefreshTokenExpiryMin),
		SaltRounds:         src.getInt("SALT_ROUNDS", DefaultSaltRounds),
		APIRateLimit:       src.getInt("API_RATE_LIMIT", DefaultAPIRateLimit),
		StrictRateLimit:    src.getInt("API_STRICT_RATE_LIMIT", DefaultStrictRateLimit),
		RateLimitWindowMin: src.getInt("RATE_LIMIT_WINDOW_MIN", DefaultRateLimitWindowMin),
		RedisURL:           src.get("REDIS_URL", ""),
		LogLevel:           src.get("LOG_LEVEL", DefaultLogLevel),
		CORSAllowOrigins:   src.get("CORS_ALLOW_ORIGINS", DefaultCORSAllowOrigins),
	}

	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		log.Fatalf("Invalid config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	return cfg
}

func envFile(env string) string {
	if env == "production" {
		return filepath.Join("config", ".env.prod")
	}
	return filepath.Join("config", ".env.dev")
}

// source resolves keys from the process environment first, then from the env file.
type source struct {
	file map[string]string
}

func newSource(path string) *source {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Could not read %s: %v", path, err)
		}
		values = map[string]string{}
	}
	return &source{file: values}
}

func (s *source) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return s.file[key]
}

func (s *source) get(key, defaultVal string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	return defaultVal
}

func (s *source) mustGet(key string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

// getInt reads a positive integer. Zero, negative and unparsable values fall
// back to defaultVal.
func (s *source) getInt(key string, defaultVal int) int {
	valStr := s.lookup(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
