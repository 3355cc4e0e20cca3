package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/velora-app/velora-backend/internal/platform/envutil"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type Config struct {
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RedisEnabled    bool
	Environment     string
	Version         string
	// WelcomeProfileID is the system profile that greets new
	// signups. uuid.Nil disables the welcome message.
	WelcomeProfileID uuid.UUID
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := envutil.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	redisEnabled := envutil.GetEnvAsBool("REDIS_ENABLED", false, log)
	environment := envutil.GetEnv("ENVIRONMENT", "development", log)
	version := envutil.GetEnv("SERVICE_VERSION", "dev", log)
	welcomeProfileID := uuid.Nil
	if raw := envutil.GetEnv("WELCOME_PROFILE_ID", "", log); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			log.Warn("invalid WELCOME_PROFILE_ID, welcome message disabled", "error", err)
		} else {
			welcomeProfileID = parsed
		}
	}
	return Config{
		JWTSecretKey:     jwtSecretKey,
		AccessTokenTTL:   time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL:  time.Duration(refreshTokenTTLSeconds) * time.Second,
		RedisEnabled:     redisEnabled,
		Environment:      environment,
		Version:          version,
		WelcomeProfileID: welcomeProfileID,
	}
}
