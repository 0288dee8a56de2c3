package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	// Gateway plan used for the owner platform subscription (rzp plan_...).
	PlatformPlanID string
}

type SMTPConfig struct {
	From     string
	Password string
	Host     string
	Port     string
}

type GoogleConfig struct {
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	FrontendRedirect string
}

type Config struct {
	Port       string
	DBURL      string
	JWTSecret  string
	CORSOrigin string
	AppURL     string

	// Trial length for new owner subscriptions, in days.
	TrialDays int

	Razorpay RazorpayConfig
	SMTP     SMTPConfig
	Google   GoogleConfig
}

// Load reads .env (if present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),
		AppURL:     getEnv("APP_URL", "http://localhost:5173"),
		TrialDays:  getEnvInt("TRIAL_DAYS", 14),
		SMTP: SMTPConfig{
			From:     os.Getenv("SMTP_FROM"),
			Password: os.Getenv("SMTP_PASSWORD"),
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
		},
		Google: GoogleConfig{
			ClientID:         os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret:     os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:      os.Getenv("GOOGLE_REDIRECT_URL"),
			FrontendRedirect: getEnv("GOOGLE_FRONTEND_REDIRECT", ""),
		},
	}

	var err error
	if cfg.DBURL, err = mustEnv("DB_URL"); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = mustEnv("JWT_SECRET"); err != nil {
		return nil, err
	}
	if cfg.Razorpay.KeyID, err = mustEnv("RAZORPAY_KEY_ID"); err != nil {
		return nil, err
	}
	if cfg.Razorpay.KeySecret, err = mustEnv("RAZORPAY_KEY_SECRET"); err != nil {
		return nil, err
	}
	cfg.Razorpay.PlatformPlanID = getEnv("RAZORPAY_PLATFORM_PLAN_ID", "")

	return cfg, nil
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required environment variable: %s", key)
	}
	return v, nil
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
