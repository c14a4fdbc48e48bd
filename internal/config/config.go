package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/utils"
)

// Blacklist backend selectors.
const (
	BlacklistBackendMemory = "memory"
	BlacklistBackendRedis  = "redis"
)

const (
	AppName         = "auth-service"
	DefaultAppPort  = "8080"
	DefaultTokenTTL = 24 * time.Hour

	// DevJWTSecret is only acceptable for local development. Production
	// deployments must set JWT_SECRET.
	DevJWTSecret = "secret-key-for-jwt-token-generation-secure-key-12345678"
)

// Config holds all application configuration. It is loaded once at
// startup and treated as read-only afterwards.
type Config struct {
	AppName            string
	AppPort            string
	DBUrl              string
	JWTSecret          string
	TokenTTL           time.Duration
	BlacklistBackend   string
	RedisURL           string
	RevokeOnRefresh    bool
	DevMode            bool
	CORSAllowedOrigins []string
}

// LoadConfig reads the environment and returns a *Config, exiting the
// process on invalid or missing required settings.
func LoadConfig() *Config {
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		appPort = DefaultAppPort
	}

	dbUrl := os.Getenv("DATABASE_URL")
	if dbUrl == "" {
		utils.Logger.Fatal("DATABASE_URL env var is missing")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = DevJWTSecret
		utils.Logger.Warn("JWT_SECRET not set; using the built-in development signing secret")
	}

	tokenTTL := DefaultTokenTTL
	if v := os.Getenv("TOKEN_TTL_MS"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil || ms <= 0 {
			utils.Logger.Fatalf("Invalid TOKEN_TTL_MS value %q", v)
		}
		tokenTTL = time.Duration(ms) * time.Millisecond
	}

	backend := strings.ToLower(os.Getenv("BLACKLIST_BACKEND"))
	if backend == "" {
		backend = BlacklistBackendMemory
	}
	if backend != BlacklistBackendMemory && backend != BlacklistBackendRedis {
		utils.Logger.Fatalf("Invalid BLACKLIST_BACKEND value %q (want %q or %q)",
			backend, BlacklistBackendMemory, BlacklistBackendRedis)
	}

	redisURL := os.Getenv("REDIS_URL")
	if backend == BlacklistBackendRedis && redisURL == "" {
		utils.Logger.Fatal("BLACKLIST_BACKEND=redis requires REDIS_URL")
	}

	origins := []string{"*"}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	cfg := &Config{
		AppName:            AppName,
		AppPort:            appPort,
		DBUrl:              dbUrl,
		JWTSecret:          jwtSecret,
		TokenTTL:           tokenTTL,
		BlacklistBackend:   backend,
		RedisURL:           redisURL,
		RevokeOnRefresh:    parseBoolEnv("REVOKE_ON_REFRESH"),
		DevMode:            parseBoolEnv("DEV_MODE"),
		CORSAllowedOrigins: origins,
	}

	utils.DevMode = cfg.DevMode
	if cfg.DevMode {
		utils.Logger.Warn("DEV_MODE is on; error responses will include internal detail")
	}

	return cfg
}

func parseBoolEnv(name string) bool {
	v := os.Getenv(name)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		utils.Logger.Fatalf("Invalid %s value %q", name, v)
	}
	return b
}
