// internal/core/whatsapp/twilio.go
package whatsapp

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioProvider implements the WhatsApp transport over the Twilio
// Messages API, including Content API template sends.
// Documentation: https://www.twilio.com/docs/whatsapp
type TwilioProvider struct {
	accountSID string
	authToken  string
	from       string // e.g. "whatsapp:+14155238886"
	baseURL    string
	client     *http.Client
}

// NewTwilioProvider creates a new Twilio WhatsApp provider
func NewTwilioProvider(accountSID, authToken, from string) *TwilioProvider {
	return &TwilioProvider{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    "https://api.twilio.com/2010-04-01",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Connect is a no-op for Twilio (always connected via HTTP)
func (p *TwilioProvider) Connect() error {
	log.Printf("✅ Twilio WhatsApp initialized (from: %s)", p.from)
	return nil
}

// Disconnect is a no-op for Twilio
func (p *TwilioProvider) Disconnect() {
	log.Printf("👋 Twilio WhatsApp disconnected")
}

// IsConnected always returns true for Twilio
func (p *TwilioProvider) IsConnected() bool {
	return true
}

// GetProviderName returns the provider name
func (p *TwilioProvider) GetProviderName() string {
	return "Twilio WhatsApp"
}

// SendMessage sends a plain text message and returns the Twilio MessageSid
func (p *TwilioProvider) SendMessage(phoneNumber, message string) (string, error) {
	form := url.Values{}
	form.Set("From", p.from)
	form.Set("To", NormalizeWhatsAppNumber(phoneNumber))
	form.Set("Body", message)

	return p.sendRequest(form)
}

// SendTemplate sends a pre-approved content template and returns the
// Twilio MessageSid.
func (p *TwilioProvider) SendTemplate(phoneNumber, contentSID string, variables map[string]string) (string, error) {
	if contentSID == "" {
		return "", fmt.Errorf("content SID is required for template sends")
	}

	form := url.Values{}
	form.Set("From", p.from)
	form.Set("To", NormalizeWhatsAppNumber(phoneNumber))
	form.Set("ContentSid", contentSID)

	if len(variables) > 0 {
		vars, err := json.Marshal(variables)
		if err != nil {
			return "", fmt.Errorf("failed to marshal content variables: %w", err)
		}
		form.Set("ContentVariables", string(vars))
	}

	return p.sendRequest(form)
}

// sendRequest posts to the Messages endpoint and decodes the MessageSid
func (p *TwilioProvider) sendRequest(form url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", p.baseURL, p.accountSID)

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode twilio response: %w", err)
	}

	log.Printf("✅ Twilio message sent (sid: %s)", result.SID)
	return result.SID, nil
}

// NormalizeWhatsAppNumber ensures the "whatsapp:+<digits>" form Twilio expects
func NormalizeWhatsAppNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "whatsapp:")

	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	return "whatsapp:+" + digits.String()
}
