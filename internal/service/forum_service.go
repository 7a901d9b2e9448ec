package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
)

// ForumService provides topic and post business logic. Posts created here are
// what the flagging workflow operates on.
type ForumService struct {
	topicRepo repository.TopicRepository
	isAdmin   func(ctx context.Context, userID uint) (bool, error)
}

type CreateTopicInput struct {
	AuthorID uint
	Title    string
}

type CreatePostInput struct {
	AuthorID uint
	TopicID  uint
	Content  string
}

func NewForumService(
	topicRepo repository.TopicRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ForumService {
	return &ForumService{topicRepo: topicRepo, isAdmin: isAdmin}
}

func (s *ForumService) CreateTopic(ctx context.Context, in CreateTopicInput) (*models.Topic, error) {
	const maxTitleLen = 300

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}

	topic := &models.Topic{Title: title, AuthorID: in.AuthorID}
	if err := s.topicRepo.CreateTopic(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *ForumService) GetTopic(ctx context.Context, id uint) (*models.Topic, error) {
	return s.topicRepo.GetTopic(ctx, id)
}

func (s *ForumService) ListTopics(ctx context.Context, limit, offset int) ([]models.Topic, error) {
	return s.topicRepo.ListTopics(ctx, limit, offset)
}

func (s *ForumService) DeleteTopic(ctx context.Context, userID, topicID uint) error {
	topic, err := s.topicRepo.GetTopic(ctx, topicID)
	if err != nil {
		return err
	}

	if topic.AuthorID != userID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own topics")
		}
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own topics")
		}
	}

	return s.topicRepo.DeleteTopic(ctx, topicID)
}

func (s *ForumService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const maxContentLen = 50000

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	// The topic must exist; posting into a deleted topic is a 404.
	if _, err := s.topicRepo.GetTopic(ctx, in.TopicID); err != nil {
		return nil, err
	}

	post := &models.Post{TopicID: in.TopicID, AuthorID: in.AuthorID, Content: content}
	if err := s.topicRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *ForumService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.topicRepo.GetPost(ctx, id)
}

func (s *ForumService) ListPosts(ctx context.Context, topicID uint, limit, offset int) ([]models.Post, error) {
	if _, err := s.topicRepo.GetTopic(ctx, topicID); err != nil {
		return nil, err
	}
	return s.topicRepo.ListPosts(ctx, topicID, limit, offset)
}
