package repository

import (
	"context"
	"errors"

	"agora/internal/cache"
	"agora/internal/models"

	"gorm.io/gorm"
)

// ModerationRepository defines persistence operations for bans, the word
// blacklist and flagged posts.
type ModerationRepository interface {
	// Bans.
	GetActiveBan(ctx context.Context, userID uint) (*models.ChatBan, error)
	CreateBan(ctx context.Context, ban *models.ChatBan) error
	DeactivateBan(ctx context.Context, banID uint) error
	DeactivateBansForUser(ctx context.Context, userID uint) (int64, error)
	ListBans(ctx context.Context, activeOnly bool, limit, offset int) ([]models.ChatBan, error)

	// Blacklist.
	ListWords(ctx context.Context) ([]models.BlacklistWord, error)
	AddWord(ctx context.Context, word *models.BlacklistWord) error
	DeleteWord(ctx context.Context, id uint) error

	// Flags.
	CreateFlag(ctx context.Context, flag *models.FlaggedPost) error
	GetFlag(ctx context.Context, id uint) (*models.FlaggedPost, error)
	GetPendingFlag(ctx context.Context, postID, flaggerID uint) (*models.FlaggedPost, error)
	ListFlags(ctx context.Context, status string, limit, offset int) ([]models.FlaggedPost, error)
	UpdateFlag(ctx context.Context, flag *models.FlaggedPost) error
}

type moderationRepository struct {
	db *gorm.DB
}

// NewModerationRepository returns a new ModerationRepository implementation.
func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func (r *moderationRepository) GetActiveBan(ctx context.Context, userID uint) (*models.ChatBan, error) {
	var ban models.ChatBan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&ban).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &ban, nil
}

func (r *moderationRepository) CreateBan(ctx context.Context, ban *models.ChatBan) error {
	if err := r.db.WithContext(ctx).Create(ban).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return models.NewConflictError("User already has an active ban")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *moderationRepository) DeactivateBan(ctx context.Context, banID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.ChatBan{}).
		Where("id = ?", banID).
		Update("is_active", false).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *moderationRepository) DeactivateBansForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ChatBan{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *moderationRepository) ListBans(ctx context.Context, activeOnly bool, limit, offset int) ([]models.ChatBan, error) {
	var bans []models.ChatBan
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("BannedByUser").
		Order("banned_at DESC").
		Limit(limit).
		Offset(offset)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&bans).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return bans, nil
}

func (r *moderationRepository) ListWords(ctx context.Context) ([]models.BlacklistWord, error) {
	var words []models.BlacklistWord

	err := cache.Aside(ctx, cache.BlacklistKey, &words, cache.BlacklistTTL, func() error {
		if err := r.db.WithContext(ctx).Order("word ASC").Find(&words).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return words, nil
}

func (r *moderationRepository) AddWord(ctx context.Context, word *models.BlacklistWord) error {
	if err := r.db.WithContext(ctx).Create(word).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return models.NewConflictError("Word is already blacklisted")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateBlacklist(ctx)
	return nil
}

func (r *moderationRepository) DeleteWord(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.BlacklistWord{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blacklist word", id)
	}
	cache.InvalidateBlacklist(ctx)
	return nil
}

func (r *moderationRepository) CreateFlag(ctx context.Context, flag *models.FlaggedPost) error {
	if err := r.db.WithContext(ctx).Create(flag).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return models.NewConflictError("You already have a pending flag on this post")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *moderationRepository) GetFlag(ctx context.Context, id uint) (*models.FlaggedPost, error) {
	var flag models.FlaggedPost
	if err := r.db.WithContext(ctx).First(&flag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Flag", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &flag, nil
}

func (r *moderationRepository) GetPendingFlag(ctx context.Context, postID, flaggerID uint) (*models.FlaggedPost, error) {
	var flag models.FlaggedPost
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND flagged_by_user_id = ? AND status = ?", postID, flaggerID, models.FlagStatusPending).
		First(&flag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &flag, nil
}

func (r *moderationRepository) ListFlags(ctx context.Context, status string, limit, offset int) ([]models.FlaggedPost, error) {
	var flags []models.FlaggedPost
	q := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&flags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return flags, nil
}

func (r *moderationRepository) UpdateFlag(ctx context.Context, flag *models.FlaggedPost) error {
	if err := r.db.WithContext(ctx).Save(flag).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
