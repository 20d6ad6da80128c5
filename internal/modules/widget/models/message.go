package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message types
const (
	MessageTypeVisitor = "visitor"
	MessageTypeBot     = "bot"
	MessageTypeAgent   = "agent"
	MessageTypeSystem  = "system"
)

// Message is a single transcript entry in a widget conversation
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_widget_messages_conv;uniqueIndex:idx_widget_messages_dedupe,priority:1" json:"conversation_id"`
	Type           string    `gorm:"type:text;not null" json:"type"`
	Body           string    `gorm:"type:text;not null" json:"body"`

	// DedupeKey makes visitor-message delivery replay safe. Uniqueness is
	// scoped to the conversation; different conversations may carry the
	// same client-generated key.
	DedupeKey *string `gorm:"type:text;uniqueIndex:idx_widget_messages_dedupe,priority:2" json:"dedupe_key,omitempty"`

	// ExternalMessageSID correlates outbound/inbound WhatsApp traffic (Twilio MessageSid)
	ExternalMessageSID string `gorm:"type:text;index" json:"external_message_sid,omitempty"`

	// ConfidenceScore is set on bot replies answered from the knowledge base
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_widget_messages_conv" json:"created_at"`
}

// TableName specifies the table name
func (Message) TableName() string {
	return "widget_messages"
}

// BeforeCreate sets UUID before creating
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
