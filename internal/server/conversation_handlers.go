// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetConversation handles GET /api/conversation. Messages are returned oldest
// first; pass ?before=<id> to page backwards from a known message.
func (s *Server) GetConversation(c *fiber.Ctx) error {
	ctx := c.UserContext()

	before := c.QueryInt("before", 0)
	if before < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid before cursor"))
	}
	limit := c.QueryInt("limit", 0)

	page, err := s.chatService.GetMessages(ctx, uint(before), limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(page)
}

// PostConversationMessage handles POST /api/conversation
func (s *Server) PostConversationMessage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var req struct {
		Content    string   `json:"content"`
		MediaLinks []string `json:"media_links,omitempty"`
		ReplyToID  *uint    `json:"reply_to_id,omitempty"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.chatService.PostMessage(ctx, service.PostMessageInput{
		UserID:     userID,
		Content:    req.Content,
		MediaLinks: req.MediaLinks,
		ReplyToID:  req.ReplyToID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}
