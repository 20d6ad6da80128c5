package repositories

import (
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
)

// WidgetRepo reads widget configs through a read-mostly in-process cache.
// Admin-side config updates call Invalidate; until then readers may see the
// cached snapshot.
type WidgetRepo interface {
	GetByKey(widgetKey string) (*models.WidgetConfig, error)
	GetByID(id uuid.UUID) (*models.WidgetConfig, error)
	Invalidate(widgetID uuid.UUID)
}

type widgetRepo struct {
	db *gorm.DB

	mu      sync.RWMutex
	byKey   map[string]*models.WidgetConfig
	byID    map[uuid.UUID]*models.WidgetConfig
}

func NewWidgetRepo(db *gorm.DB) WidgetRepo {
	return &widgetRepo{
		db:    db,
		byKey: make(map[string]*models.WidgetConfig),
		byID:  make(map[uuid.UUID]*models.WidgetConfig),
	}
}

func (r *widgetRepo) GetByKey(widgetKey string) (*models.WidgetConfig, error) {
	r.mu.RLock()
	if cached, ok := r.byKey[widgetKey]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	var cfg models.WidgetConfig
	if err := r.db.First(&cfg, "widget_key = ?", widgetKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	r.store(&cfg)
	return &cfg, nil
}

func (r *widgetRepo) GetByID(id uuid.UUID) (*models.WidgetConfig, error) {
	r.mu.RLock()
	if cached, ok := r.byID[id]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	var cfg models.WidgetConfig
	if err := r.db.First(&cfg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	r.store(&cfg)
	return &cfg, nil
}

func (r *widgetRepo) Invalidate(widgetID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.byID[widgetID]; ok {
		delete(r.byKey, cached.WidgetKey)
		delete(r.byID, widgetID)
		log.Printf("🧹 Widget config cache invalidated: %s", widgetID)
	}
}

func (r *widgetRepo) store(cfg *models.WidgetConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[cfg.WidgetKey] = cfg
	r.byID[cfg.ID] = cfg
}
