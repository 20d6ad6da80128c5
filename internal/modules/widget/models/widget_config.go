package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Intro question kinds; name/email/phone answers also populate the
// conversation's visitor identity fields.
const (
	QuestionKindName  = "name"
	QuestionKindEmail = "email"
	QuestionKindPhone = "phone"
	QuestionKindText  = "text"
)

// IntroQuestion is one entry of a widget's configured intro flow
type IntroQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Kind     string `json:"kind"`
	Required bool   `json:"required"`
}

// HandoverOptions flags which handover methods the tenant enabled
type HandoverOptions struct {
	Agent    bool `json:"agent"`
	WhatsApp bool `json:"whatsapp"`
}

// WidgetConfig is the per-tenant chat widget configuration
type WidgetConfig struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WidgetKey string    `gorm:"type:text;not null;uniqueIndex" json:"widget_key"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	IntroFlowEnabled bool           `gorm:"default:true" json:"intro_flow_enabled"`
	IntroQuestions   datatypes.JSON `gorm:"type:jsonb" json:"intro_questions"`

	// Per-widget model tuning, applied on top of the process-wide provider
	LLMEnabled     bool    `gorm:"default:false" json:"llm_enabled"`
	LLMModel       string  `gorm:"type:text" json:"llm_model"`
	LLMTemperature float32 `gorm:"default:0.7" json:"llm_temperature"`
	LLMMaxTokens   int     `gorm:"default:1024" json:"llm_max_tokens"`

	FallbackMessage string `gorm:"type:text" json:"fallback_message"`

	EmergencyKeywords   pq.StringArray `gorm:"type:text[]" json:"emergency_keywords"`
	AutoDetectEmergency bool           `gorm:"default:true" json:"auto_detect_emergency"`

	HandoverOptionsRaw         datatypes.JSON `gorm:"column:handover_options;type:jsonb" json:"handover_options"`
	EnableHandoverChoice       bool           `gorm:"default:false" json:"enable_handover_choice"`
	DefaultHandoverMethod      string         `gorm:"type:text;default:'agent'" json:"default_handover_method"`
	HandoverWhatsAppNumber     string         `gorm:"column:handover_whatsapp_number;type:text" json:"handover_whatsapp_number"`
	WhatsAppHandoverContentSID string         `gorm:"column:whatsapp_handover_content_sid;type:text" json:"whatsapp_handover_content_sid"`

	RateLimitMessages      int `gorm:"default:0" json:"rate_limit_messages"`
	RateLimitWindowSeconds int `gorm:"default:0" json:"rate_limit_window_seconds"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (WidgetConfig) TableName() string {
	return "widget_configs"
}

// BeforeCreate sets UUID before creating
func (w *WidgetConfig) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// ParsedIntroQuestions decodes the configured intro question list
func (w *WidgetConfig) ParsedIntroQuestions() ([]IntroQuestion, error) {
	if len(w.IntroQuestions) == 0 {
		return nil, nil
	}
	var questions []IntroQuestion
	if err := json.Unmarshal(w.IntroQuestions, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ParsedHandoverOptions decodes the enabled handover methods; an absent
// column means agent-only.
func (w *WidgetConfig) ParsedHandoverOptions() (HandoverOptions, error) {
	if len(w.HandoverOptionsRaw) == 0 {
		return HandoverOptions{Agent: true}, nil
	}
	var opts HandoverOptions
	if err := json.Unmarshal(w.HandoverOptionsRaw, &opts); err != nil {
		return HandoverOptions{}, err
	}
	return opts, nil
}
