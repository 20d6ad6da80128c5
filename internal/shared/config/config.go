package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string

	// Twilio WhatsApp (Content API templates)
	TwilioAccountSID         string
	TwilioAuthToken          string
	TwilioWhatsAppFrom       string
	TwilioContentSIDHandover string

	// Self-hosted WhatsApp provider (whatsmeow)
	WhatsAppProvider string
	WhatsAppStoreURL string

	// Inactivity sweep
	SweepInterval  time.Duration
	WarnThreshold  time.Duration
	GraceThreshold time.Duration
	CloseThreshold time.Duration

	MaxExtensionReminders int
	ExtensionDuration     time.Duration

	// Bot rate limiting defaults (per conversation, used when the widget
	// config leaves them unset)
	RateLimitMessages int
	RateLimitWindow   time.Duration
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        os.Getenv("PORT"),
		Env:         os.Getenv("ENV"),

		TwilioAccountSID:         os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:          os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom:       os.Getenv("TWILIO_WHATSAPP_FROM"),
		TwilioContentSIDHandover: os.Getenv("TWILIO_CONTENT_SID_HANDOVER"),

		WhatsAppProvider: os.Getenv("WHATSAPP_PROVIDER"),
		WhatsAppStoreURL: os.Getenv("WHATSAPP_STORE_URL"),

		SweepInterval:  getEnvDuration("SWEEP_INTERVAL", 60*time.Second),
		WarnThreshold:  getEnvDuration("INACTIVITY_WARN_THRESHOLD", 5*time.Minute),
		GraceThreshold: getEnvDuration("INACTIVITY_GRACE_THRESHOLD", 12*time.Minute),
		CloseThreshold: getEnvDuration("INACTIVITY_CLOSE_THRESHOLD", 15*time.Minute),

		MaxExtensionReminders: getEnvInt("MAX_EXTENSION_REMINDERS", 3),
		ExtensionDuration:     getEnvDuration("EXTENSION_DURATION", 10*time.Minute),

		RateLimitMessages: getEnvInt("RATE_LIMIT_MESSAGES", 10),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 60*time.Second),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.WhatsAppProvider == "" {
		cfg.WhatsAppProvider = "twilio"
	}

	return cfg
}

func getEnvInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
		log.Printf("⚠️ Invalid value for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
		log.Printf("⚠️ Invalid duration for %s, using default %s", key, fallback)
	}
	return fallback
}
