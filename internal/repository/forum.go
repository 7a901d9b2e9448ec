package repository

import (
	"context"
	"errors"

	"agora/internal/cache"
	"agora/internal/models"

	"gorm.io/gorm"
)

// TopicRepository defines persistence operations for forum topics and their posts.
type TopicRepository interface {
	CreateTopic(ctx context.Context, topic *models.Topic) error
	GetTopic(ctx context.Context, id uint) (*models.Topic, error)
	ListTopics(ctx context.Context, limit, offset int) ([]models.Topic, error)
	DeleteTopic(ctx context.Context, id uint) error
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, topicID uint, limit, offset int) ([]models.Post, error)
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository returns a new TopicRepository implementation.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *topicRepository) GetTopic(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic

	err := cache.Aside(ctx, cache.TopicKey(id), &topic, cache.TopicTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Author").First(&topic, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Topic", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) ListTopics(ctx context.Context, limit, offset int) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&topics).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return topics, nil
}

func (r *topicRepository) DeleteTopic(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Topic{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTopic(ctx, id)
	return nil
}

func (r *topicRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *topicRepository) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Topic").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *topicRepository) ListPosts(ctx context.Context, topicID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Preload("Author").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
