package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	SessionTTL             time.Duration
	SessionCookieName      string
	OTPTTL                 time.Duration
	AttainmentCacheTTL     time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	WhatsAppBaseURL        string
	WhatsAppToken          string
	WhatsAppSender         string
	UploadMaxSizeMB        int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COPO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "COPO API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie", "copo_session")
	v.SetDefault("otp.ttl", "10m")
	v.SetDefault("attainment.cache_ttl", "15m")
	v.SetDefault("cloudinary.folder", "copo/branding")
	v.SetDefault("upload_max_size_mb", 5)

	sessionTTL, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	otpTTL, err := time.ParseDuration(v.GetString("otp.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid otp ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("attainment.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid attainment cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		SessionTTL:             sessionTTL,
		SessionCookieName:      v.GetString("session.cookie"),
		OTPTTL:                 otpTTL,
		AttainmentCacheTTL:     cacheTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		WhatsAppBaseURL:        v.GetString("whatsapp.base_url"),
		WhatsAppToken:          v.GetString("whatsapp.token"),
		WhatsAppSender:         v.GetString("whatsapp.sender"),
		UploadMaxSizeMB:        v.GetInt("upload_max_size_mb"),
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 10 * time.Minute
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 5
	}

	return cfg, nil
}
