package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// KnowledgeBaseEntry is a tenant FAQ entry matched against visitor messages.
// Entry CRUD lives in the admin service; this module only reads.
type KnowledgeBaseEntry struct {
	ID       uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WidgetID uuid.UUID      `gorm:"type:uuid;not null;index" json:"widget_id"`
	Question string         `gorm:"type:text;not null" json:"question"`
	Answer   string         `gorm:"type:text;not null" json:"answer"`
	Keywords pq.StringArray `gorm:"type:text[]" json:"keywords"`
	IsActive bool           `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (KnowledgeBaseEntry) TableName() string {
	return "widget_knowledge_base"
}

// BeforeCreate sets UUID before creating
func (k *KnowledgeBaseEntry) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}
