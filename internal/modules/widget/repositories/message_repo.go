package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
)

type MessageRepo interface {
	Append(msg *models.Message) error
	ListByConversation(conversationID uuid.UUID, limit int) ([]models.Message, error)
	CountVisitorSince(conversationID uuid.UUID, since time.Time) (int64, error)
	ExistsDedupeKey(conversationID uuid.UUID, dedupeKey string) (bool, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Append(msg *models.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepo) ListByConversation(conversationID uuid.UUID, limit int) ([]models.Message, error) {
	var msgs []models.Message
	q := r.db.Where("conversation_id = ?", conversationID).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&msgs).Error
	return msgs, err
}

func (r *messageRepo) CountVisitorSince(conversationID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND type = ? AND created_at >= ?",
			conversationID, models.MessageTypeVisitor, since).
		Count(&count).Error
	return count, err
}

func (r *messageRepo) ExistsDedupeKey(conversationID uuid.UUID, dedupeKey string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND dedupe_key = ?", conversationID, dedupeKey).
		Count(&count).Error
	return count > 0, err
}
