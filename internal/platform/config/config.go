package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// OutboundTimeout bounds every call to a counterparty. The protocol core has
// no retry or cancellation policy of its own; this is the transport's limit.
var OutboundTimeout = 10 * time.Second

// Party describes a counterparty connection: where to reach it and which
// shared secret to present. Read-only to the protocol core.
type Party struct {
	Code    string `json:"code"`
	BaseURL string `json:"baseUrl"`
	APIKey  string `json:"apiKey"`
}

// Bank captures configuration for the disbursing-party binary.
type Bank struct {
	Addr          string
	DatabaseURL   string
	WebhookAPIKey string
	Parties       []Party
}

// University captures configuration for the receiving-party binary.
type University struct {
	Addr            string
	DatabaseURL     string
	RedisURL        string
	APIKey          string
	WebhookURL      string
	WebhookAPIKey   string
	StudentCacheTTL time.Duration
}

// BankFromEnv builds the bank config from environment variables so main stays
// lean. PARTY_DIRECTORY is a JSON array of party descriptors; when DATABASE_URL
// is set the directory is read from postgres instead.
func BankFromEnv() (Bank, error) {
	cfg := Bank{
		Addr:          envOr("BANK_ADDR", ":5000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		WebhookAPIKey: envOr("WEBHOOK_API_KEY", "dev-webhook-key"),
	}
	if raw := os.Getenv("PARTY_DIRECTORY"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.Parties); err != nil {
			return Bank{}, fmt.Errorf("parse PARTY_DIRECTORY: %w", err)
		}
	}
	return cfg, nil
}

// UniversityFromEnv builds the university config from environment variables.
func UniversityFromEnv() University {
	return University{
		Addr:            envOr("UNIVERSITY_ADDR", ":5100"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		APIKey:          envOr("UNIVERSITY_API_KEY", "dev-university-key"),
		WebhookURL:      envOr("WEBHOOK_URL", "http://localhost:5000/api/payments/webhook"),
		WebhookAPIKey:   envOr("WEBHOOK_API_KEY", "dev-webhook-key"),
		StudentCacheTTL: 5 * time.Minute,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
