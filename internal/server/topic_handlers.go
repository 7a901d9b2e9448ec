// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTopics handles GET /api/topics
func (s *Server) GetTopics(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p := parsePagination(c, 20)

	topics, err := s.forumService.ListTopics(ctx, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(topics)
}

// GetTopic handles GET /api/topics/:id
func (s *Server) GetTopic(c *fiber.Ctx) error {
	ctx := c.UserContext()
	topicID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	topic, err := s.forumService.GetTopic(ctx, topicID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(topic)
}

// GetTopicPosts handles GET /api/topics/:id/posts
func (s *Server) GetTopicPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	topicID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	posts, err := s.forumService.ListPosts(ctx, topicID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.forumService.GetPost(ctx, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// CreateTopic handles POST /api/topics
func (s *Server) CreateTopic(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title string `json:"title"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	topic, err := s.forumService.CreateTopic(ctx, service.CreateTopicInput{
		AuthorID: userID,
		Title:    req.Title,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(topic)
}

// CreateTopicPost handles POST /api/topics/:id/posts
func (s *Server) CreateTopicPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	topicID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.forumService.CreatePost(ctx, service.CreatePostInput{
		TopicID:  topicID,
		AuthorID: userID,
		Content:  req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeleteTopic handles DELETE /api/topics/:id
func (s *Server) DeleteTopic(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	topicID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.forumService.DeleteTopic(ctx, userID, topicID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Topic deleted"})
}
