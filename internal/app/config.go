package app

import (
	"time"

	"github.com/partaj-app/partaj-backend/internal/platform/envutil"
)

type Config struct {
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	FrontendBaseURL   string
	MailTemplatesPath string

	Environment string
	Version     string
}

func LoadConfig() Config {
	accessTTLSeconds := envutil.Int("ACCESS_TOKEN_TTL", 3600)
	refreshTTLSeconds := envutil.Int("REFRESH_TOKEN_TTL", 86400)
	return Config{
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:    time.Duration(accessTTLSeconds) * time.Second,
		RefreshTokenTTL:   time.Duration(refreshTTLSeconds) * time.Second,
		FrontendBaseURL:   envutil.String("FRONTEND_BASE_URL", "http://localhost:3000"),
		MailTemplatesPath: envutil.String("MAIL_TEMPLATES_PATH", ""),
		Environment:       envutil.String("ENVIRONMENT", "development"),
		Version:           envutil.String("SERVICE_VERSION", ""),
	}
}
