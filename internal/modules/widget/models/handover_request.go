package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handover request statuses
const (
	HandoverStatusPending   = "pending"
	HandoverStatusNotified  = "notified"
	HandoverStatusCompleted = "completed"
	HandoverStatusFailed    = "failed"
)

// HandoverRequest records one attempt to move a conversation to a human
type HandoverRequest struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ConversationID  uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`
	RequestedMethod string    `gorm:"type:text;not null" json:"requested_method"`
	Reason          string    `gorm:"type:text" json:"reason"`
	Status          string    `gorm:"type:text;not null;default:'pending'" json:"status"`
	ErrorMessage    string    `gorm:"type:text" json:"error_message"`
	MessageSID      string    `gorm:"type:text" json:"message_sid"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (HandoverRequest) TableName() string {
	return "widget_handover_requests"
}

// BeforeCreate sets UUID before creating
func (h *HandoverRequest) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
