// Package service provides application business logic (conversation, topics, users, moderation).
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"
)

// ChatService provides the sitewide conversation business logic. Message
// submission runs the full moderation pipeline in a fixed short-circuit
// order; a rejection at any stage leaves no trace in storage.
type ChatService struct {
	chatRepo   repository.ChatRepository
	userRepo   repository.UserRepository
	moderation *ModerationService
	notify     NotifyFunc
}

// PostMessageInput is the input for submitting a conversation message.
type PostMessageInput struct {
	UserID     uint
	Content    string
	MediaLinks []string
	ReplyToID  *uint
}

// ConversationPage is one page of conversation history.
type ConversationPage struct {
	Messages []models.ChatMessage `json:"messages"`
	HasMore  bool                 `json:"has_more"`
}

// NewChatService returns a new ChatService.
func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	moderation *ModerationService,
	notify NotifyFunc,
) *ChatService {
	return &ChatService{
		chatRepo:   chatRepo,
		userRepo:   userRepo,
		moderation: moderation,
		notify:     notify,
	}
}

// PostMessage runs the moderation pipeline and persists the message on
// success. Stage order is fixed: input shape, ban, content filter, throttle,
// reply-to resolution, persist.
func (s *ChatService) PostMessage(ctx context.Context, in PostMessageInput) (*models.ChatMessage, error) {
	content := strings.TrimSpace(in.Content)

	if content == "" && len(in.MediaLinks) == 0 {
		observability.ModerationRejectionsTotal.WithLabelValues(observability.StageInput).Inc()
		return nil, models.NewValidationError("Message cannot be empty")
	}
	if len([]rune(content)) > models.MaxMessageContentLen {
		observability.ModerationRejectionsTotal.WithLabelValues(observability.StageInput).Inc()
		return nil, models.NewValidationError(
			fmt.Sprintf("Message content must not exceed %d characters", models.MaxMessageContentLen),
		)
	}
	if len(in.MediaLinks) > models.MaxMediaLinks {
		observability.ModerationRejectionsTotal.WithLabelValues(observability.StageInput).Inc()
		return nil, models.NewValidationError(
			fmt.Sprintf("A message can carry at most %d media links", models.MaxMediaLinks),
		)
	}

	if err := s.moderation.CheckBan(ctx, in.UserID); err != nil {
		return nil, err
	}
	if err := s.moderation.CheckContent(ctx, content); err != nil {
		return nil, err
	}
	if err := s.moderation.CheckThrottle(ctx, in.UserID); err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		UserID:     in.UserID,
		Content:    content,
		MediaLinks: in.MediaLinks,
	}

	if in.ReplyToID != nil {
		parent, err := s.chatRepo.GetMessage(ctx, *in.ReplyToID)
		switch {
		case err == nil:
			msg.ReplyToID = in.ReplyToID
			msg.ReplyToAuthor = parent.UserName
			msg.ReplyToExcerpt = validation.Excerpt(parent.Content)
		case isNotFound(err):
			// Dangling reference: post without the reply snapshot.
		default:
			return nil, err
		}
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	msg.UserName = author.PublicName()

	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	observability.MessagesCreatedTotal.Inc()
	if s.notify != nil {
		s.notify(ctx, "message_created", msg)
	}
	return msg, nil
}

// GetMessages pages backwards through conversation history. before is a
// message ID cursor; zero means the newest page. Messages come back in
// chronological order with a has_more indicator.
func (s *ChatService) GetMessages(ctx context.Context, before uint, limit int) (*ConversationPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	messages, err := s.chatRepo.GetMessages(ctx, before, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		// The extra oldest row only signalled another page.
		messages = messages[1:]
	}

	return &ConversationPage{Messages: messages, HasMore: hasMore}, nil
}

func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == "NOT_FOUND"
}
