package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"
)

// ThrottleWindow is how many newest conversation messages are inspected by the
// consecutive-message throttle. A user owning the entire window is blocked.
const ThrottleWindow = 5

// NotifyFunc publishes a moderation event. Implementations must be fire and
// forget; the pipeline never waits on or fails because of a notification.
type NotifyFunc func(ctx context.Context, event string, payload interface{})

// ModerationService implements the anti-abuse policy checks and the admin
// workflows that feed them: bans with lazy expiry, the consecutive-message
// throttle, the word blacklist, and post flagging/review.
type ModerationService struct {
	modRepo   repository.ModerationRepository
	chatRepo  repository.ChatRepository
	topicRepo repository.TopicRepository
	userRepo  repository.UserRepository
	notify    NotifyFunc
}

// BanUserInput is the input for issuing a chat ban.
type BanUserInput struct {
	AdminID       uint
	TargetID      uint
	Reason        string
	DurationHours int // 0 = permanent
}

// NewModerationService returns a new ModerationService.
func NewModerationService(
	modRepo repository.ModerationRepository,
	chatRepo repository.ChatRepository,
	topicRepo repository.TopicRepository,
	userRepo repository.UserRepository,
	notify NotifyFunc,
) *ModerationService {
	return &ModerationService{
		modRepo:   modRepo,
		chatRepo:  chatRepo,
		topicRepo: topicRepo,
		userRepo:  userRepo,
		notify:    notify,
	}
}

func (s *ModerationService) publish(ctx context.Context, event string, payload interface{}) {
	if s.notify != nil {
		s.notify(ctx, event, payload)
	}
}

// CheckBan allows the user through when they have no active ban. An active ban
// whose deadline has passed is deactivated on the spot (lazy expiry) and the
// user is allowed; otherwise the stored reason comes back in the rejection.
func (s *ModerationService) CheckBan(ctx context.Context, userID uint) error {
	ban, err := s.modRepo.GetActiveBan(ctx, userID)
	if err != nil {
		return err
	}
	if ban == nil {
		return nil
	}

	if ban.Expired(time.Now()) {
		return s.modRepo.DeactivateBan(ctx, ban.ID)
	}

	observability.ModerationRejectionsTotal.WithLabelValues(observability.StageBan).Inc()
	msg := "You are banned from the conversation"
	if ban.Reason != "" {
		msg = fmt.Sprintf("You are banned from the conversation: %s", ban.Reason)
	}
	return models.NewRateLimitedError(msg)
}

// BanUser issues a ban against target, replacing any currently active ban.
// Admins cannot be banned. A zero duration means the ban is permanent.
func (s *ModerationService) BanUser(ctx context.Context, in BanUserInput) (*models.ChatBan, error) {
	target, err := s.userRepo.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin {
		return nil, models.NewForbiddenError("Admins cannot be banned")
	}
	if in.DurationHours < 0 {
		return nil, models.NewValidationError("duration_hours must not be negative")
	}

	if _, err := s.modRepo.DeactivateBansForUser(ctx, in.TargetID); err != nil {
		return nil, err
	}

	now := time.Now()
	ban := &models.ChatBan{
		UserID:         in.TargetID,
		BannedByUserID: in.AdminID,
		Reason:         strings.TrimSpace(in.Reason),
		BannedAt:       now,
		IsActive:       true,
	}
	if in.DurationHours > 0 {
		expires := now.Add(time.Duration(in.DurationHours) * time.Hour)
		ban.ExpiresAt = &expires
	}

	if err := s.modRepo.CreateBan(ctx, ban); err != nil {
		return nil, err
	}

	s.publish(ctx, "user_banned", ban)
	return ban, nil
}

// Unban deactivates the ban unconditionally. Unbanning an already inactive
// ban is a no-op.
func (s *ModerationService) Unban(ctx context.Context, banID uint) error {
	return s.modRepo.DeactivateBan(ctx, banID)
}

// ListBans returns bans for the admin view.
func (s *ModerationService) ListBans(ctx context.Context, activeOnly bool, limit, offset int) ([]models.ChatBan, error) {
	return s.modRepo.ListBans(ctx, activeOnly, limit, offset)
}

// CheckThrottle blocks the user when the newest ThrottleWindow conversation
// messages all belong to them. Fewer messages than the window always passes.
func (s *ModerationService) CheckThrottle(ctx context.Context, userID uint) error {
	newest, err := s.chatRepo.GetNewest(ctx, ThrottleWindow)
	if err != nil {
		return err
	}
	if len(newest) < ThrottleWindow {
		return nil
	}
	for _, msg := range newest {
		if msg.UserID != userID {
			return nil
		}
	}

	observability.ModerationRejectionsTotal.WithLabelValues(observability.StageThrottle).Inc()
	return models.NewRateLimitedError(
		fmt.Sprintf("you have posted %d messages in a row, let someone else speak before posting again", ThrottleWindow),
	)
}

// CheckContent rejects content containing any blacklisted word as a
// case-insensitive substring. Empty content passes without loading the list.
func (s *ModerationService) CheckContent(ctx context.Context, content string) error {
	if content == "" {
		return nil
	}

	entries, err := s.modRepo.ListWords(ctx)
	if err != nil {
		return err
	}
	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.Word
	}

	if _, hit := validation.ContainsBlacklisted(content, words); hit {
		observability.ModerationRejectionsTotal.WithLabelValues(observability.StageContent).Inc()
		return models.NewValidationError("Your message contains a blocked word")
	}
	return nil
}

// AddWord normalizes and stores a new blacklist word.
func (s *ModerationService) AddWord(ctx context.Context, adminID uint, word string) (*models.BlacklistWord, error) {
	normalized, ok := validation.NormalizeBlacklistWord(word)
	if !ok {
		return nil, models.NewValidationError(
			fmt.Sprintf("word must be %d-%d characters after trimming", validation.BlacklistWordMinLen, validation.BlacklistWordMaxLen),
		)
	}

	entry := &models.BlacklistWord{
		Word:            normalized,
		CreatedByUserID: adminID,
	}
	if err := s.modRepo.AddWord(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RemoveWord deletes a blacklist word by ID.
func (s *ModerationService) RemoveWord(ctx context.Context, id uint) error {
	return s.modRepo.DeleteWord(ctx, id)
}

// ListWords returns the current blacklist.
func (s *ModerationService) ListWords(ctx context.Context) ([]models.BlacklistWord, error) {
	return s.modRepo.ListWords(ctx)
}

// FlagPost files a report against a post on behalf of the topic author. The
// flag snapshots the topic title, post content and both display names so the
// review queue reflects what was seen at flag time.
func (s *ModerationService) FlagPost(ctx context.Context, flaggerID, postID uint, reason string) (*models.FlaggedPost, error) {
	// Checks run existence first, then authorization, then input shape, so a
	// flag against a missing post reports NotFound regardless of what else is
	// wrong with the request.
	post, err := s.topicRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	topic, err := s.topicRepo.GetTopic(ctx, post.TopicID)
	if err != nil {
		return nil, err
	}
	if topic.AuthorID != flaggerID {
		return nil, models.NewForbiddenError("Only the topic author can flag posts in it")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.NewValidationError("A reason is required to flag a post")
	}

	if existing, err := s.modRepo.GetPendingFlag(ctx, postID, flaggerID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("You already have a pending flag on this post")
	}

	postAuthor, err := s.userRepo.GetByID(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}
	flagger, err := s.userRepo.GetByID(ctx, flaggerID)
	if err != nil {
		return nil, err
	}

	flag := &models.FlaggedPost{
		PostID:          post.ID,
		TopicID:         topic.ID,
		TopicTitle:      topic.Title,
		PostContent:     post.Content,
		PostAuthorID:    post.AuthorID,
		PostAuthorName:  postAuthor.PublicName(),
		FlaggedByUserID: flaggerID,
		FlaggedByName:   flagger.PublicName(),
		Reason:          reason,
		Status:          models.FlagStatusPending,
	}
	if err := s.modRepo.CreateFlag(ctx, flag); err != nil {
		return nil, err
	}

	observability.FlagsCreatedTotal.Inc()
	return flag, nil
}

// ReviewFlag records an admin decision on a flag. Reviewing an already
// reviewed flag re-records the decision; there is no undo.
func (s *ModerationService) ReviewFlag(ctx context.Context, adminID, flagID uint, decision string) (*models.FlaggedPost, error) {
	if decision != models.FlagStatusReviewed && decision != models.FlagStatusDismissed {
		return nil, models.NewValidationError("status must be 'reviewed' or 'dismissed'")
	}

	flag, err := s.modRepo.GetFlag(ctx, flagID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	flag.Status = decision
	flag.ReviewedAt = &now
	flag.ReviewedByUserID = &adminID
	if err := s.modRepo.UpdateFlag(ctx, flag); err != nil {
		return nil, err
	}

	observability.FlagReviewsTotal.WithLabelValues(decision).Inc()
	s.publish(ctx, "flag_reviewed", flag)
	return flag, nil
}

// ListFlags returns flags for the admin review queue, optionally filtered by
// status.
func (s *ModerationService) ListFlags(ctx context.Context, status string, limit, offset int) ([]models.FlaggedPost, error) {
	if status != "" &&
		status != models.FlagStatusPending &&
		status != models.FlagStatusReviewed &&
		status != models.FlagStatusDismissed {
		return nil, models.NewValidationError("unknown flag status")
	}
	return s.modRepo.ListFlags(ctx, status, limit, offset)
}
