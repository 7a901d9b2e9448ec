package service

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationService_CheckBan_LazyExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "banned", false)

	expired := time.Now().Add(-time.Hour)
	ban := &models.ChatBan{
		UserID:         user.ID,
		BannedByUserID: 99,
		Reason:         "old offense",
		BannedAt:       time.Now().Add(-2 * time.Hour),
		ExpiresAt:      &expired,
		IsActive:       true,
	}
	require.NoError(t, env.moderation.CreateBan(ctx, ban))

	// The expired ban lets the user through and is deactivated as a side
	// effect, not just ignored.
	assert.NoError(t, env.moderationSvc.CheckBan(ctx, user.ID))

	var stored models.ChatBan
	require.NoError(t, env.db.First(&stored, ban.ID).Error)
	assert.False(t, stored.IsActive)

	// A second check finds nothing active.
	assert.NoError(t, env.moderationSvc.CheckBan(ctx, user.ID))
}

func TestModerationService_CheckBan_ActiveBlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "troll", false)

	_, err := env.moderationSvc.BanUser(ctx, BanUserInput{AdminID: 1, TargetID: user.ID, Reason: "abuse"})
	require.NoError(t, err)

	err = env.moderationSvc.CheckBan(ctx, user.ID)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "RATE_LIMITED", appErr.Code)
	assert.Contains(t, appErr.Message, "abuse")
}

func TestModerationService_BanUser_ReplacesActiveBan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "repeat", false)

	first, err := env.moderationSvc.BanUser(ctx, BanUserInput{AdminID: 1, TargetID: user.ID, Reason: "first"})
	require.NoError(t, err)
	second, err := env.moderationSvc.BanUser(ctx, BanUserInput{AdminID: 1, TargetID: user.ID, Reason: "second"})
	require.NoError(t, err)

	var active []models.ChatBan
	require.NoError(t, env.db.Where("user_id = ? AND is_active = ?", user.ID, true).Find(&active).Error)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)
	assert.Equal(t, "second", active[0].Reason)

	var total int64
	require.NoError(t, env.db.Model(&models.ChatBan{}).Where("user_id = ?", user.ID).Count(&total).Error)
	assert.Equal(t, int64(2), total)

	var old models.ChatBan
	require.NoError(t, env.db.First(&old, first.ID).Error)
	assert.False(t, old.IsActive)
}

func TestModerationService_BanUser_AdminTargetForbidden(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "boss", true)

	_, err := env.moderationSvc.BanUser(context.Background(), BanUserInput{AdminID: 1, TargetID: admin.ID, Reason: "nope"})
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestModerationService_BanUser_Duration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "timed", false)

	permanent, err := env.moderationSvc.BanUser(ctx, BanUserInput{AdminID: 1, TargetID: user.ID})
	require.NoError(t, err)
	assert.Nil(t, permanent.ExpiresAt)

	timed, err := env.moderationSvc.BanUser(ctx, BanUserInput{AdminID: 1, TargetID: user.ID, DurationHours: 24})
	require.NoError(t, err)
	require.NotNil(t, timed.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *timed.ExpiresAt, time.Minute)

	_, err = env.moderationSvc.BanUser(ctx, BanUserInput{AdminID: 1, TargetID: user.ID, DurationHours: -1})
	assert.Error(t, err)
}

func TestModerationService_Unban_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "pardoned", false)

	ban, err := env.moderationSvc.BanUser(ctx, BanUserInput{AdminID: 1, TargetID: user.ID, Reason: "x"})
	require.NoError(t, err)

	require.NoError(t, env.moderationSvc.Unban(ctx, ban.ID))
	require.NoError(t, env.moderationSvc.Unban(ctx, ban.ID))

	assert.NoError(t, env.moderationSvc.CheckBan(ctx, user.ID))
}

func TestModerationService_CheckThrottle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("cold start allows", func(t *testing.T) {
		assert.NoError(t, env.moderationSvc.CheckThrottle(ctx, 1))

		env.postMessages(t, 1, ThrottleWindow-1)
		assert.NoError(t, env.moderationSvc.CheckThrottle(ctx, 1))
	})

	t.Run("trips at five in a row", func(t *testing.T) {
		env.postMessages(t, 1, 1) // now 5 newest all by user 1

		err := env.moderationSvc.CheckThrottle(ctx, 1)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "RATE_LIMITED", appErr.Code)
		assert.Contains(t, appErr.Message, "5 messages in a row")

		// Other users are unaffected.
		assert.NoError(t, env.moderationSvc.CheckThrottle(ctx, 2))
	})

	t.Run("releases after an interleaved message", func(t *testing.T) {
		env.postMessages(t, 2, 1)
		assert.NoError(t, env.moderationSvc.CheckThrottle(ctx, 1))
	})
}

func TestModerationService_CheckContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.moderationSvc.AddWord(ctx, 1, "spam")
	require.NoError(t, err)

	t.Run("substring match is case-insensitive", func(t *testing.T) {
		err := env.moderationSvc.CheckContent(ctx, "this is SPAM!!")
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("clean content passes", func(t *testing.T) {
		assert.NoError(t, env.moderationSvc.CheckContent(ctx, "hello there"))
	})

	t.Run("empty content skips the stage", func(t *testing.T) {
		assert.NoError(t, env.moderationSvc.CheckContent(ctx, ""))
	})
}

func TestModerationService_AddWord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("normalizes before storing", func(t *testing.T) {
		entry, err := env.moderationSvc.AddWord(ctx, 1, "  BadWord  ")
		require.NoError(t, err)
		assert.Equal(t, "badword", entry.Word)
	})

	t.Run("rejects out-of-range length", func(t *testing.T) {
		_, err := env.moderationSvc.AddWord(ctx, 1, "a")
		assert.Error(t, err)
	})

	t.Run("duplicate after normalization conflicts", func(t *testing.T) {
		_, err := env.moderationSvc.AddWord(ctx, 1, "BADWORD")
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "CONFLICT", appErr.Code)
	})

	t.Run("remove then re-add", func(t *testing.T) {
		words, err := env.moderationSvc.ListWords(ctx)
		require.NoError(t, err)
		require.Len(t, words, 1)

		require.NoError(t, env.moderationSvc.RemoveWord(ctx, words[0].ID))
		_, err = env.moderationSvc.AddWord(ctx, 1, "badword")
		assert.NoError(t, err)
	})
}

func flagFixtures(t *testing.T, env *testEnv) (author, poster *models.User, post *models.Post) {
	t.Helper()
	ctx := context.Background()

	author = env.createUser(t, "topicowner", false)
	poster = env.createUser(t, "poster", false)

	topic, err := env.forumSvc.CreateTopic(ctx, CreateTopicInput{AuthorID: author.ID, Title: "Discussion"})
	require.NoError(t, err)
	post, err = env.forumSvc.CreatePost(ctx, CreatePostInput{AuthorID: poster.ID, TopicID: topic.ID, Content: "questionable take"})
	require.NoError(t, err)
	return author, poster, post
}

func TestModerationService_FlagPost_Authorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, poster, post := flagFixtures(t, env)

	_, err := env.moderationSvc.FlagPost(ctx, poster.ID, post.ID, "self flag")
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	flag, err := env.moderationSvc.FlagPost(ctx, author.ID, post.ID, "off topic")
	require.NoError(t, err)
	assert.Equal(t, models.FlagStatusPending, flag.Status)
}

func TestModerationService_FlagPost_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, _, post := flagFixtures(t, env)

	_, err := env.moderationSvc.FlagPost(ctx, author.ID, post.ID, "   ")
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = env.moderationSvc.FlagPost(ctx, author.ID, 9999, "ghost")
	require.Error(t, err)
	appErr, ok = err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	// Existence wins over input shape: a missing post with a blank reason
	// reports NOT_FOUND, not VALIDATION_ERROR.
	_, err = env.moderationSvc.FlagPost(ctx, author.ID, 9999, "   ")
	require.Error(t, err)
	appErr, ok = err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestModerationService_FlagPost_PendingUniqueness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, _, post := flagFixtures(t, env)
	admin := env.createUser(t, "reviewer", true)

	flag, err := env.moderationSvc.FlagPost(ctx, author.ID, post.ID, "spammy")
	require.NoError(t, err)

	_, err = env.moderationSvc.FlagPost(ctx, author.ID, post.ID, "spammy again")
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Code)

	// Once the flag is resolved the same author may flag the post again.
	_, err = env.moderationSvc.ReviewFlag(ctx, admin.ID, flag.ID, models.FlagStatusDismissed)
	require.NoError(t, err)

	_, err = env.moderationSvc.FlagPost(ctx, author.ID, post.ID, "still spammy")
	assert.NoError(t, err)
}

func TestModerationService_FlagPost_SnapshotImmutability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, _, post := flagFixtures(t, env)

	flag, err := env.moderationSvc.FlagPost(ctx, author.ID, post.ID, "as seen")
	require.NoError(t, err)
	assert.Equal(t, "questionable take", flag.PostContent)

	// Editing the post afterwards must not rewrite the snapshot.
	require.NoError(t, env.db.Model(&models.Post{}).Where("id = ?", post.ID).Update("content", "sanitized").Error)

	stored, err := env.moderation.GetFlag(ctx, flag.ID)
	require.NoError(t, err)
	assert.Equal(t, "questionable take", stored.PostContent)
	assert.Equal(t, "Discussion", stored.TopicTitle)
}

func TestModerationService_ReviewFlag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, _, post := flagFixtures(t, env)
	admin := env.createUser(t, "reviewer", true)

	flag, err := env.moderationSvc.FlagPost(ctx, author.ID, post.ID, "check this")
	require.NoError(t, err)

	t.Run("invalid decision", func(t *testing.T) {
		_, err := env.moderationSvc.ReviewFlag(ctx, admin.ID, flag.ID, "escalated")
		assert.Error(t, err)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := env.moderationSvc.ReviewFlag(ctx, admin.ID, 9999, models.FlagStatusReviewed)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("records decision and reviewer", func(t *testing.T) {
		got, err := env.moderationSvc.ReviewFlag(ctx, admin.ID, flag.ID, models.FlagStatusReviewed)
		require.NoError(t, err)
		assert.Equal(t, models.FlagStatusReviewed, got.Status)
		require.NotNil(t, got.ReviewedAt)
		require.NotNil(t, got.ReviewedByUserID)
		assert.Equal(t, admin.ID, *got.ReviewedByUserID)
	})
}
