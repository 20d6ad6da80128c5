package kb

import (
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
)

// Match is one scored knowledge base hit
type Match struct {
	Entry models.KnowledgeBaseEntry
	Score float64
}

// Searcher is what the response router consumes
type Searcher interface {
	Search(widgetID uuid.UUID, message string) ([]Match, error)
	Entries(widgetID uuid.UUID, limit int) ([]models.KnowledgeBaseEntry, error)
}

type Retriever struct {
	db *gorm.DB
}

func NewRetriever(db *gorm.DB) *Retriever {
	return &Retriever{db: db}
}

// Search scores all active entries of a widget against the visitor message
// and returns matches above the suggestion threshold, best first.
func (r *Retriever) Search(widgetID uuid.UUID, message string) ([]Match, error) {
	entries, err := r.Entries(widgetID, 200)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, entry := range entries {
		score := Score(message, entry.Question, entry.Keywords)
		if score >= SuggestionThreshold {
			matches = append(matches, Match{Entry: entry, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches, nil
}

// Entries returns the active KB entries for a widget, newest first
func (r *Retriever) Entries(widgetID uuid.UUID, limit int) ([]models.KnowledgeBaseEntry, error) {
	var entries []models.KnowledgeBaseEntry
	if err := r.db.Where("widget_id = ? AND is_active = ?", widgetID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
