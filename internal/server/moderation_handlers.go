// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FlagPost handles POST /api/posts/:postId/flag
func (s *Server) FlagPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	flag, err := s.moderationService.FlagPost(ctx, userID, postID, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(flag)
}

// GetFlaggedPosts handles GET /api/admin/flagged-posts.
// Optional ?status=pending|reviewed|dismissed filters the queue.
func (s *Server) GetFlaggedPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p := parsePagination(c, 50)
	status := c.Query("status")

	flags, err := s.moderationService.ListFlags(ctx, status, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(flags)
}

// ReviewFlaggedPost handles PATCH /api/admin/flagged-posts/:flagId
func (s *Server) ReviewFlaggedPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	adminID := c.Locals("userID").(uint)
	flagID, err := s.parseID(c, "flagId")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	flag, err := s.moderationService.ReviewFlag(ctx, adminID, flagID, req.Status)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(flag)
}

// GetChatBans handles GET /api/admin/chat-bans.
// Pass ?active=true to restrict to bans still in force.
func (s *Server) GetChatBans(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p := parsePagination(c, 50)
	activeOnly := c.QueryBool("active", false)

	bans, err := s.moderationService.ListBans(ctx, activeOnly, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(bans)
}

// CreateChatBan handles POST /api/admin/chat-bans
func (s *Server) CreateChatBan(c *fiber.Ctx) error {
	ctx := c.UserContext()
	adminID := c.Locals("userID").(uint)

	var req struct {
		UserID        uint   `json:"user_id"`
		Reason        string `json:"reason"`
		DurationHours int    `json:"duration_hours"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	ban, err := s.moderationService.BanUser(ctx, service.BanUserInput{
		AdminID:       adminID,
		TargetID:      req.UserID,
		Reason:        req.Reason,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ban)
}

// DeleteChatBan handles DELETE /api/admin/chat-bans/:banId
func (s *Server) DeleteChatBan(c *fiber.Ctx) error {
	ctx := c.UserContext()
	banID, err := s.parseID(c, "banId")
	if err != nil {
		return nil
	}

	if err := s.moderationService.Unban(ctx, banID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Ban lifted"})
}

// GetBlacklist handles GET /api/admin/chat-blacklist
func (s *Server) GetBlacklist(c *fiber.Ctx) error {
	ctx := c.UserContext()

	words, err := s.moderationService.ListWords(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(words)
}

// AddBlacklistWord handles POST /api/admin/chat-blacklist
func (s *Server) AddBlacklistWord(c *fiber.Ctx) error {
	ctx := c.UserContext()
	adminID := c.Locals("userID").(uint)

	var req struct {
		Word string `json:"word"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	word, err := s.moderationService.AddWord(ctx, adminID, req.Word)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(word)
}

// DeleteBlacklistWord handles DELETE /api/admin/chat-blacklist?id=<id>.
// The word ID travels as a query parameter so clients never have to URL-encode
// the word itself into a path segment.
func (s *Server) DeleteBlacklistWord(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id := c.QueryInt("id", 0)
	if id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
	}

	if err := s.moderationService.RemoveWord(ctx, uint(id)); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Word removed from blacklist"})
}
