// Command main creates the data directory and fills it with demo content.
package main

import (
	"context"
	"flag"
	"log"

	"chirp/internal/config"
	"chirp/internal/middleware"
	"chirp/internal/repository"
	"chirp/internal/seed"
	"chirp/internal/store"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of demo users to create")
	numPosts := flag.Int("posts", 40, "Number of demo posts to create")
	likeRatio := flag.Float64("like-ratio", 0.2, "Chance each user likes each post")
	tablesOnly := flag.Bool("tables-only", false, "Only create the empty table files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st := store.New(middleware.Logger)
	users, err := repository.NewUserDirectory(st, cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize user directory: %v", err)
	}
	posts, err := repository.NewPostRepository(st, cfg.DataDir, users)
	if err != nil {
		log.Fatalf("Failed to initialize post repository: %v", err)
	}

	log.Printf("Tables ready under %s", cfg.DataDir)
	if *tablesOnly {
		return
	}

	s := seed.NewSeeder(users, posts)
	if err := s.Run(context.Background(), seed.Options{
		Users:     *numUsers,
		Posts:     *numPosts,
		LikeRatio: *likeRatio,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
