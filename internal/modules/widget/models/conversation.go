package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Conversation statuses
const (
	StatusIntroPending      = "intro_pending"
	StatusActiveBot         = "active_bot"
	StatusHandoverRequested = "handover_requested"
	StatusHandoverActive    = "handover_active"
	StatusClosed            = "closed"
)

// Handover methods
const (
	HandoverMethodNone     = "none"
	HandoverMethodAgent    = "agent"
	HandoverMethodWhatsApp = "whatsapp"
)

// Close reasons
const (
	CloseReasonInactivity = "inactivity"
	CloseReasonVisitor    = "visitor_ended"
	CloseReasonAgent      = "agent_ended"
)

// Conversation is one visitor chat session on an embedded widget
type Conversation struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WidgetID         uuid.UUID `gorm:"type:uuid;not null;index" json:"widget_id"`
	VisitorSessionID string    `gorm:"type:text;not null;index" json:"visitor_session_id"`
	VisitorName      string    `gorm:"type:text" json:"visitor_name"`
	VisitorEmail     string    `gorm:"type:text" json:"visitor_email"`
	VisitorPhone     string    `gorm:"type:text" json:"visitor_phone"`

	Status         string         `gorm:"type:text;not null;default:'intro_pending';index" json:"status"`
	IntroCompleted bool           `gorm:"default:false" json:"intro_completed"`
	IntroAnswers   datatypes.JSON `gorm:"type:jsonb" json:"intro_answers"`

	HandoverMethod         string `gorm:"type:text;not null;default:'none'" json:"handover_method"`
	HandoverChoicePending  bool   `gorm:"default:false" json:"handover_choice_pending"`
	LastWhatsAppMessageSID string `gorm:"column:last_whatsapp_message_sid;type:text;index" json:"last_whatsapp_message_sid"`

	LastVisitorActivityAt *time.Time `json:"last_visitor_activity_at"`
	LastAgentActivityAt   *time.Time `json:"last_agent_activity_at"`

	ExtensionRemindersCount        int        `gorm:"default:0" json:"extension_reminders_count"`
	VisitorExtensionRemindersCount int        `gorm:"default:0" json:"visitor_extension_reminders_count"`
	ExtensionGrantedUntil          *time.Time `json:"extension_granted_until"`
	LastAgentReminderAt            *time.Time `json:"last_agent_reminder_at"`
	LastVisitorReminderAt          *time.Time `json:"last_visitor_reminder_at"`
	ThrottleNotifiedAt             *time.Time `json:"throttle_notified_at"`

	MessageCount int        `gorm:"default:0" json:"message_count"`
	CloseReason  string     `gorm:"type:text" json:"close_reason"`
	EndedAt      *time.Time `json:"ended_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Conversation) TableName() string {
	return "widget_conversations"
}

// BeforeCreate sets UUID before creating
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsClosed reports whether the conversation reached its terminal state
func (c *Conversation) IsClosed() bool {
	return c.Status == StatusClosed
}

// ParsedIntroAnswers returns the stored intro answers keyed by question ID,
// in answer order.
func (c *Conversation) ParsedIntroAnswers() ([]IntroAnswer, error) {
	if len(c.IntroAnswers) == 0 {
		return nil, nil
	}
	var answers []IntroAnswer
	if err := json.Unmarshal(c.IntroAnswers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// SetIntroAnswers replaces the stored intro answers
func (c *Conversation) SetIntroAnswers(answers []IntroAnswer) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	c.IntroAnswers = datatypes.JSON(raw)
	return nil
}

// IntroAnswer is one recorded answer of the intro flow
type IntroAnswer struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Skipped    bool   `json:"skipped,omitempty"`
}
