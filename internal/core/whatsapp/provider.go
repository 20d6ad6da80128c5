// internal/core/whatsapp/provider.go
package whatsapp

import (
	"fmt"
	"os"
)

// WhatsAppProvider is the interface every WhatsApp transport implements.
// Sends return the provider message SID so inbound webhook traffic can be
// correlated back to a conversation.
type WhatsAppProvider interface {
	// Connect initializes the connection to WhatsApp
	Connect() error

	// Disconnect tears the connection down
	Disconnect()

	// SendMessage sends a plain text message, returning the message SID
	SendMessage(phoneNumber, message string) (string, error)

	// SendTemplate sends a pre-approved content template with variables,
	// returning the message SID
	SendTemplate(phoneNumber, contentSID string, variables map[string]string) (string, error)

	// IsConnected reports whether the transport is usable
	IsConnected() bool

	// GetProviderName returns the provider name for logging
	GetProviderName() string
}

// ProviderType for factory
type ProviderType string

const (
	ProviderTwilio    ProviderType = "twilio"
	ProviderWhatsmeow ProviderType = "whatsmeow"
)

// ProviderConfig for the factory
type ProviderConfig struct {
	Type ProviderType

	// Twilio specific
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string

	// Whatsmeow specific
	StoreURL string
}

// NewProvider factory to create a provider from config
func NewProvider(cfg *ProviderConfig) (WhatsAppProvider, error) {
	switch cfg.Type {
	case ProviderTwilio:
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
			return nil, fmt.Errorf("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required")
		}
		return NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom), nil

	case ProviderWhatsmeow:
		return NewWhatsmeowProvider(cfg.StoreURL), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// LoadProviderFromEnv loads config from environment variables
func LoadProviderFromEnv() (*ProviderConfig, error) {
	providerType := os.Getenv("WHATSAPP_PROVIDER")
	if providerType == "" {
		providerType = "twilio" // default
	}

	cfg := &ProviderConfig{
		Type:     ProviderType(providerType),
		StoreURL: os.Getenv("WHATSAPP_STORE_URL"),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
	}

	return cfg, nil
}
