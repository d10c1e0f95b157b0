package server

import (
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me: account metadata plus the caller's
// own posts with like counts.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	posts, err := s.posts.GetByUserID(c.Context(), user.UserID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"user":       user,
		"posts":      posts,
		"post_count": len(posts),
	})
}

// GetStats handles GET /api/stats
func (s *Server) GetStats(c *fiber.Ctx) error {
	userCount, err := s.users.Count(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	postCount, err := s.posts.Count(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"users": userCount,
		"posts": postCount,
	})
}
