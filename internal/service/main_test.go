package service

import (
	"context"
	"testing"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires real repositories over an in-memory database so service tests
// exercise the same storage invariants production runs with.
type testEnv struct {
	db         *gorm.DB
	users      repository.UserRepository
	topics     repository.TopicRepository
	chat       repository.ChatRepository
	moderation repository.ModerationRepository

	moderationSvc *ModerationService
	chatSvc       *ChatService
	forumSvc      *ForumService
	userSvc       *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:         db,
		users:      repository.NewUserRepository(db),
		topics:     repository.NewTopicRepository(db),
		chat:       repository.NewChatRepository(db),
		moderation: repository.NewModerationRepository(db),
	}

	env.userSvc = NewUserService(env.users)
	env.moderationSvc = NewModerationService(env.moderation, env.chat, env.topics, env.users, nil)
	env.chatSvc = NewChatService(env.chat, env.users, env.moderationSvc, nil)
	env.forumSvc = NewForumService(env.topics, env.userSvc.IsAdmin)

	return env
}

func (e *testEnv) createUser(t *testing.T, username string, admin bool) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		IsAdmin:  admin,
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) postMessages(t *testing.T, userID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		msg := &models.ChatMessage{UserID: userID, UserName: "u", Content: "filler"}
		require.NoError(t, e.chat.CreateMessage(context.Background(), msg))
	}
}
