// Package seed creates demo data for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"chirp/internal/models"
	"chirp/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls how much demo data is generated.
type Options struct {
	Users int
	Posts int
	// LikeRatio is the chance that any given user likes any given post.
	LikeRatio float64
}

// Seeder populates the tables through the regular repositories so the
// generated data goes through the same validation as real traffic.
type Seeder struct {
	users repository.UserDirectory
	posts repository.PostRepository
}

// NewSeeder returns a Seeder writing through the given repositories.
func NewSeeder(users repository.UserDirectory, posts repository.PostRepository) *Seeder {
	return &Seeder{users: users, posts: posts}
}

// Run generates opts.Users demo accounts, opts.Posts posts with random
// authors, and random likes.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.LikeRatio <= 0 {
		opts.LikeRatio = 0.2
	}

	accounts := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(10, 99))
		password := gofakeit.Password(true, true, true, false, false, 12)

		user, err := s.users.Register(ctx, username, password)
		if err != nil {
			// Username collisions are possible with generated names; skip.
			log.Printf("seed: skipping user %q: %v", username, err)
			continue
		}
		accounts = append(accounts, user)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("no demo users could be created")
	}

	posts := make([]*models.Post, 0, opts.Posts)
	for i := 0; i < opts.Posts; i++ {
		author := accounts[rand.Intn(len(accounts))]
		content := gofakeit.Sentence(gofakeit.Number(4, 18))

		post, err := s.posts.CreatePost(ctx, author.UserID, content)
		if err != nil {
			return fmt.Errorf("seed post %d: %w", i, err)
		}
		posts = append(posts, post)
	}

	liked := 0
	for _, user := range accounts {
		for _, post := range posts {
			if rand.Float64() >= opts.LikeRatio {
				continue
			}
			if _, err := s.posts.ToggleLike(ctx, user.UserID, post.PostID); err != nil {
				return fmt.Errorf("seed like: %w", err)
			}
			liked++
		}
	}

	log.Printf("seed: created %d users, %d posts, %d likes", len(accounts), len(posts), liked)
	return nil
}
