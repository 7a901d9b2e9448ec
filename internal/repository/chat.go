package repository

import (
	"context"
	"errors"

	"agora/internal/cache"
	"agora/internal/models"

	"gorm.io/gorm"
)

// ChatRepository defines persistence operations for the sitewide conversation.
type ChatRepository interface {
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
	GetMessage(ctx context.Context, id uint) (*models.ChatMessage, error)
	// GetNewest returns up to k messages, newest first.
	GetNewest(ctx context.Context, k int) ([]models.ChatMessage, error)
	// GetMessages pages backwards through history: beforeID 0 means "from the
	// newest". Results come back in chronological order.
	GetMessages(ctx context.Context, beforeID uint, limit int) ([]models.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository returns a new ChatRepository implementation.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateConversation(ctx)
	return nil
}

func (r *chatRepository) GetMessage(ctx context.Context, id uint) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

func (r *chatRepository) GetNewest(ctx context.Context, k int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(k).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *chatRepository) GetMessages(ctx context.Context, beforeID uint, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage

	// The newest page is the hot read: every client loads it on connect.
	// Older pages are addressed by cursor and served straight from the
	// database. CreateMessage invalidates the cached pages.
	if beforeID == 0 {
		err := cache.Aside(ctx, cache.ConversationKey(limit), &messages, cache.ConversationTTL, func() error {
			return r.fetchMessages(ctx, 0, limit, &messages)
		})
		if err != nil {
			return nil, err
		}
		return messages, nil
	}

	if err := r.fetchMessages(ctx, beforeID, limit, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) fetchMessages(ctx context.Context, beforeID uint, limit int, out *[]models.ChatMessage) error {
	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	if err := q.Find(out).Error; err != nil {
		return models.NewInternalError(err)
	}

	// Fetched DESC to anchor on the newest page; the client expects ASC.
	messages := *out
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return nil
}
