package server

import (
	"context"
	"testing"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/repository"
	"agora/internal/service"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer builds a Server over an in-memory sqlite database with the
// full repository and service graph wired, but no Redis and no Prometheus
// middleware. Tests mount the handlers they need on their own fiber app.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	s := &Server{
		config: &config.Config{
			JWTSecret: "test-secret-key-for-agora-tests",
			Env:       "test",
		},
		db:        db,
		userRepo:  repository.NewUserRepository(db),
		topicRepo: repository.NewTopicRepository(db),
		chatRepo:  repository.NewChatRepository(db),
		modRepo:   repository.NewModerationRepository(db),
	}
	s.userService = service.NewUserService(s.userRepo)
	s.forumService = service.NewForumService(s.topicRepo, s.isAdminByUserID)
	s.moderationService = service.NewModerationService(
		s.modRepo, s.chatRepo, s.topicRepo, s.userRepo, nil)
	s.chatService = service.NewChatService(
		s.chatRepo, s.userRepo, s.moderationService, nil)

	return s
}

func testCtx() context.Context {
	return context.Background()
}
