package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
)

type HandoverRepo interface {
	Create(req *models.HandoverRequest) error
	UpdateStatus(id uuid.UUID, status, errorMessage, messageSID string) error
	ListByConversation(conversationID uuid.UUID) ([]models.HandoverRequest, error)
}

type handoverRepo struct {
	db *gorm.DB
}

func NewHandoverRepo(db *gorm.DB) HandoverRepo {
	return &handoverRepo{db: db}
}

func (r *handoverRepo) Create(req *models.HandoverRequest) error {
	return r.db.Create(req).Error
}

func (r *handoverRepo) UpdateStatus(id uuid.UUID, status, errorMessage, messageSID string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	if messageSID != "" {
		updates["message_sid"] = messageSID
	}
	return r.db.Model(&models.HandoverRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *handoverRepo) ListByConversation(conversationID uuid.UUID) ([]models.HandoverRequest, error) {
	var reqs []models.HandoverRequest
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}
