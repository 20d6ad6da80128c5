package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

type ConversationRepo interface {
	GetByID(id uuid.UUID) (*models.Conversation, error)
	GetActiveByVisitorSession(widgetID uuid.UUID, visitorSessionID string) (*models.Conversation, error)
	GetByWhatsAppSID(messageSID string) (*models.Conversation, error)
	ListActiveWhatsAppHandovers() ([]models.Conversation, error)
	ListNonClosed() ([]models.Conversation, error)
	Create(conv *models.Conversation) error
	Save(conv *models.Conversation) error
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) GetByID(id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.First(&conv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepo) GetActiveByVisitorSession(widgetID uuid.UUID, visitorSessionID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Where("widget_id = ? AND visitor_session_id = ? AND status <> ?",
		widgetID, visitorSessionID, models.StatusClosed).
		Order("created_at DESC").
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepo) GetByWhatsAppSID(messageSID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Where("last_whatsapp_message_sid = ?", messageSID).
		Order("updated_at DESC").
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// ListActiveWhatsAppHandovers returns conversations currently live on the
// WhatsApp channel, newest first. Used as the inbound-webhook correlation
// fallback when no quoted-message SID is available.
func (r *conversationRepo) ListActiveWhatsAppHandovers() ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.Where("status = ? AND handover_method = ?",
		models.StatusHandoverActive, models.HandoverMethodWhatsApp).
		Order("updated_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *conversationRepo) ListNonClosed() ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.Where("status <> ?", models.StatusClosed).
		Order("created_at ASC").
		Find(&convs).Error
	return convs, err
}

func (r *conversationRepo) Create(conv *models.Conversation) error {
	return r.db.Create(conv).Error
}

func (r *conversationRepo) Save(conv *models.Conversation) error {
	return r.db.Save(conv).Error
}
