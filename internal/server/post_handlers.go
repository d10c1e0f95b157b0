package server

import (
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/posts
func (s *Server) GetFeed(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	items, err := s.posts.GetFeed(c.Context(), user.UserID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(items)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.posts.CreatePost(c.Context(), user.UserID, req.Content)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	item := models.FeedItem{
		Post:     *post,
		Username: user.Username,
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	postID := c.Params("id")
	post, err := s.posts.GetPost(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", postID))
	}

	liked, err := s.posts.ToggleLike(c.Context(), user.UserID, postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	count, err := s.posts.LikeCount(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"liked":      liked,
		"like_count": count,
	})
}

// DeletePost handles DELETE /api/posts/:id. A missing post and a post owned by
// someone else are the same outcome for the caller.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	postID := c.Params("id")
	deleted, err := s.posts.DeletePost(c.Context(), postID, user.UserID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if !deleted {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", postID))
	}

	return c.JSON(fiber.Map{
		"deleted": true,
	})
}
