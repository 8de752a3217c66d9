package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DBPath          string
	ServerPort      string
	LogLevel        string
	FrontendURL     string
	UploadDir       string
	ResendAPIKey    string
	InviteFromEmail string
	TwilioSID       string
	TwilioAuthToken string
	TwilioFrom      string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "scotia.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		ResendAPIKey:    getEnv("RESEND_API_KEY", ""),
		InviteFromEmail: getEnv("INVITE_FROM_EMAIL", "invites@scotiasense.app"),
		TwilioSID:       getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken: getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:      getEnv("TWILIO_FROM_NUMBER", ""),
	}

	if cfg.ResendAPIKey == "" {
		logger.Warn().Msg("RESEND_API_KEY not set, invite emails will be logged instead of sent")
	}
	if cfg.TwilioSID == "" || cfg.TwilioAuthToken == "" {
		logger.Warn().Msg("Twilio credentials not set, invite SMS will be logged instead of sent")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("frontend_url", cfg.FrontendURL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
