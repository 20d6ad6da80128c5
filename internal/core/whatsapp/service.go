// internal/core/whatsapp/service.go
package whatsapp

import (
	"log"
)

// Service wraps a WhatsApp provider for dependency injection
type Service struct {
	provider WhatsAppProvider
}

// NewService creates WhatsApp service with provider from environment
func NewService() *Service {
	cfg, err := LoadProviderFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to load WhatsApp config: %v", err)
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create WhatsApp provider: %v", err)
	}

	log.Printf("📱 Using WhatsApp provider: %s", provider.GetProviderName())

	return &Service{provider: provider}
}

// NewServiceWithProvider creates service with custom provider (for testing)
func NewServiceWithProvider(provider WhatsAppProvider) *Service {
	return &Service{provider: provider}
}

// Connect initializes the underlying transport
func (s *Service) Connect() error {
	return s.provider.Connect()
}

// Disconnect tears the transport down
func (s *Service) Disconnect() {
	s.provider.Disconnect()
}

// SendMessage sends a plain text message, returning the message SID
func (s *Service) SendMessage(phoneNumber, message string) (string, error) {
	return s.provider.SendMessage(phoneNumber, message)
}

// SendTemplate sends a content template, returning the message SID
func (s *Service) SendTemplate(phoneNumber, contentSID string, variables map[string]string) (string, error) {
	return s.provider.SendTemplate(phoneNumber, contentSID, variables)
}

// GetProviderName returns current provider name
func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}
