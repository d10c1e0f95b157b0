package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/store"

	"github.com/google/uuid"
)

// PostRepository defines the interface for post and like data operations.
type PostRepository interface {
	CreatePost(ctx context.Context, userID, content string) (*models.Post, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	GetFeed(ctx context.Context, currentUserID string) ([]models.FeedItem, error)
	GetByUserID(ctx context.Context, userID string) ([]models.FeedItem, error)
	ToggleLike(ctx context.Context, userID, postID string) (bool, error)
	IsLikedBy(ctx context.Context, userID, postID string) (bool, error)
	LikeCount(ctx context.Context, postID string) (int, error)
	DeletePost(ctx context.Context, postID, userID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type postRepository struct {
	store     *store.Store
	postsPath string
	likesPath string
	users     UserDirectory
}

// NewPostRepository returns a PostRepository backed by posts.csv and likes.csv
// under dataDir, creating the table files if needed. The user directory is
// used to resolve author usernames in feed reads.
func NewPostRepository(st *store.Store, dataDir string, users UserDirectory) (PostRepository, error) {
	postsPath := filepath.Join(dataDir, "posts.csv")
	likesPath := filepath.Join(dataDir, "likes.csv")
	if err := st.EnsureTable(postsPath, models.PostColumns); err != nil {
		return nil, fmt.Errorf("ensure posts table: %w", err)
	}
	if err := st.EnsureTable(likesPath, models.LikeColumns); err != nil {
		return nil, fmt.Errorf("ensure likes table: %w", err)
	}
	return &postRepository{
		store:     st,
		postsPath: postsPath,
		likesPath: likesPath,
		users:     users,
	}, nil
}

// newToken returns a fresh 8-character random identifier for posts and likes.
func newToken() string {
	return uuid.NewString()[:8]
}

func (r *postRepository) CreatePost(ctx context.Context, userID, content string) (*models.Post, error) {
	ctx, span := observability.TraceTableOperation(ctx, "create", "posts")
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Content must not be empty")
	}

	post := models.Post{
		PostID:    newToken(),
		UserID:    strings.TrimSpace(userID),
		Content:   content,
		Timestamp: time.Now().Format(models.TimestampLayout),
	}

	t := r.store.Load(r.postsPath, models.PostColumns)
	// Newest first on disk; feed reads still sort by timestamp so the order
	// survives interleaved writers and equal-second timestamps.
	t.Rows = append([][]string{post.Row()}, t.Rows...)
	r.store.Save(r.postsPath, t)

	cache.InvalidateFeeds(ctx)
	return &post, nil
}

func (r *postRepository) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	t := r.store.Load(r.postsPath, models.PostColumns)
	for _, row := range t.Rows {
		if row[0] == postID {
			post := models.PostFromRow(row)
			return &post, nil
		}
	}
	return nil, nil
}

func (r *postRepository) GetFeed(ctx context.Context, currentUserID string) ([]models.FeedItem, error) {
	ctx, span := observability.TraceTableOperation(ctx, "feed", "posts")
	defer span.End()

	var items []models.FeedItem
	err := cache.Aside(ctx, cache.FeedKey(currentUserID), &items, cache.FeedTTL, func() error {
		items = r.buildFeed(ctx, currentUserID, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.FeedItem{}
	}
	return items, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID string) ([]models.FeedItem, error) {
	var items []models.FeedItem
	err := cache.Aside(ctx, cache.ProfileKey(userID), &items, cache.FeedTTL, func() error {
		items = r.buildFeed(ctx, userID, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.FeedItem{}
	}
	return items, nil
}

// buildFeed joins posts with like counts and author usernames, marks which
// posts currentUserID likes, and sorts newest first. A non-empty authorID
// restricts the result to that author's posts.
func (r *postRepository) buildFeed(ctx context.Context, currentUserID, authorID string) []models.FeedItem {
	posts := r.store.Load(r.postsPath, models.PostColumns)
	likes := r.store.Load(r.likesPath, models.LikeColumns)

	likeCounts := make(map[string]int)
	likedByCurrent := make(map[string]bool)
	for _, row := range likes.Rows {
		likeCounts[row[2]]++
		if row[1] == currentUserID {
			likedByCurrent[row[2]] = true
		}
	}

	usernames := make(map[string]string)
	if users, err := r.users.List(ctx); err == nil {
		for _, u := range users {
			usernames[u.UserID] = u.Username
		}
	}

	items := make([]models.FeedItem, 0, len(posts.Rows))
	for _, row := range posts.Rows {
		post := models.PostFromRow(row)
		if authorID != "" && post.UserID != authorID {
			continue
		}
		username, ok := usernames[post.UserID]
		if !ok {
			username = models.UnknownUsername
		}
		items = append(items, models.FeedItem{
			Post:      post,
			Username:  username,
			LikeCount: likeCounts[post.PostID],
			Liked:     likedByCurrent[post.PostID],
		})
	}

	// The timestamp layout sorts lexicographically; a stable sort keeps the
	// newest-first storage order for posts created within the same second.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	return items
}

func (r *postRepository) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	ctx, span := observability.TraceTableOperation(ctx, "toggle_like", "likes")
	defer span.End()

	userID = strings.TrimSpace(userID)
	postID = strings.TrimSpace(postID)

	t := r.store.Load(r.likesPath, models.LikeColumns)
	for i, row := range t.Rows {
		if row[1] == userID && row[2] == postID {
			t.Rows = append(t.Rows[:i], t.Rows[i+1:]...)
			r.store.Save(r.likesPath, t)
			cache.InvalidateFeeds(ctx)
			return false, nil
		}
	}

	like := models.Like{
		LikeID:    newToken(),
		UserID:    userID,
		PostID:    postID,
		Timestamp: time.Now().Format(models.TimestampLayout),
	}
	t.Rows = append(t.Rows, like.Row())
	r.store.Save(r.likesPath, t)
	cache.InvalidateFeeds(ctx)
	return true, nil
}

func (r *postRepository) IsLikedBy(ctx context.Context, userID, postID string) (bool, error) {
	t := r.store.Load(r.likesPath, models.LikeColumns)
	for _, row := range t.Rows {
		if row[1] == userID && row[2] == postID {
			return true, nil
		}
	}
	return false, nil
}

func (r *postRepository) LikeCount(ctx context.Context, postID string) (int, error) {
	t := r.store.Load(r.likesPath, models.LikeColumns)
	count := 0
	for _, row := range t.Rows {
		if row[2] == postID {
			count++
		}
	}
	return count, nil
}

func (r *postRepository) DeletePost(ctx context.Context, postID, userID string) (bool, error) {
	ctx, span := observability.TraceTableOperation(ctx, "delete", "posts")
	defer span.End()

	posts := r.store.Load(r.postsPath, models.PostColumns)
	found := false
	kept := posts.Rows[:0]
	for _, row := range posts.Rows {
		if row[0] == postID && row[1] == userID {
			found = true
			continue
		}
		kept = append(kept, row)
	}
	if !found {
		return false, nil
	}
	posts.Rows = kept
	r.store.Save(r.postsPath, posts)

	// Cascade: drop likes referencing the deleted post. The two writes are
	// not atomic with each other; a crash in between leaves orphaned likes.
	likes := r.store.Load(r.likesPath, models.LikeColumns)
	keptLikes := likes.Rows[:0]
	for _, row := range likes.Rows {
		if row[2] == postID {
			continue
		}
		keptLikes = append(keptLikes, row)
	}
	likes.Rows = keptLikes
	r.store.Save(r.likesPath, likes)

	cache.InvalidateFeeds(ctx)
	return true, nil
}

func (r *postRepository) Count(ctx context.Context) (int, error) {
	t := r.store.Load(r.postsPath, models.PostColumns)
	return len(t.Rows), nil
}
