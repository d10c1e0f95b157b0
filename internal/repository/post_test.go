package repository

import (
	"context"
	"testing"

	"chirp/internal/models"
	"chirp/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (UserDirectory, PostRepository) {
	t.Helper()
	dataDir := t.TempDir()
	st := store.New(nil)
	users, err := NewUserDirectory(st, dataDir)
	require.NoError(t, err)
	posts, err := NewPostRepository(st, dataDir, users)
	require.NoError(t, err)
	return users, posts
}

func TestCreatePost(t *testing.T) {
	users, posts := newTestRepos(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	post, err := posts.CreatePost(ctx, alice.UserID, "  hello world  ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Content, "content is stored trimmed")
	assert.Equal(t, alice.UserID, post.UserID)
	assert.Regexp(t, `^[0-9a-f]{8}$`, post.PostID)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, post.Timestamp)

	got, err := posts.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *post, *got)
}

func TestCreatePostRejectsEmptyContent(t *testing.T) {
	_, posts := newTestRepos(t)
	ctx := context.Background()

	for _, content := range []string{"", "   ", "\t\n"} {
		_, err := posts.CreatePost(ctx, "user_aaaaaaaa", content)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	}

	count, err := posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCreatePostKeepsCommasAndQuotes(t *testing.T) {
	users, posts := newTestRepos(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	content := `she said "hi, there", then left 🎉`
	post, err := posts.CreatePost(ctx, alice.UserID, content)
	require.NoError(t, err)

	got, err := posts.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, content, got.Content)
}

func TestGetFeedOrdering(t *testing.T) {
	users, posts := newTestRepos(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	first, err := posts.CreatePost(ctx, alice.UserID, "first")
	require.NoError(t, err)
	second, err := posts.CreatePost(ctx, alice.UserID, "second")
	require.NoError(t, err)

	feed, err := posts.GetFeed(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.PostID, feed[0].PostID, "newest post comes first")
	assert.Equal(t, first.PostID, feed[1].PostID)
	assert.Equal(t, "alice", feed[0].Username)
}

func TestGetFeedEmpty(t *testing.T) {
	_, posts := newTestRepos(t)

	feed, err := posts.GetFeed(context.Background(), "user_aaaaaaaa")
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}

func TestGetFeedUnknownAuthor(t *testing.T) {
	_, posts := newTestRepos(t)
	ctx := context.Background()

	// Author was never registered (or its users row was lost).
	_, err := posts.CreatePost(ctx, "user_deadbeef", "orphan post")
	require.NoError(t, err)

	feed, err := posts.GetFeed(ctx, "user_aaaaaaaa")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, models.UnknownUsername, feed[0].Username)
}

func TestGetByUserID(t *testing.T) {
	users, posts := newTestRepos(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	bob, err := users.Register(ctx, "bob", "pw")
	require.NoError(t, err)

	_, err = posts.CreatePost(ctx, alice.UserID, "from alice")
	require.NoError(t, err)
	_, err = posts.CreatePost(ctx, bob.UserID, "from bob")
	require.NoError(t, err)

	mine, err := posts.GetByUserID(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "from alice", mine[0].Content)
	assert.Equal(t, "alice", mine[0].Username)
}

func TestToggleLike(t *testing.T) {
	users, posts := newTestRepos(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	post, err := posts.CreatePost(ctx, alice.UserID, "hello")
	require.NoError(t, err)

	liked, err := posts.ToggleLike(ctx, alice.UserID, post.PostID)
	require.NoError(t, err)
	assert.True(t, liked)

	isLiked, err := posts.IsLikedBy(ctx, alice.UserID, post.PostID)
	require.NoError(t, err)
	assert.True(t, isLiked)

	count, err := posts.LikeCount(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Second toggle removes the like.
	liked, err = posts.ToggleLike(ctx, alice.UserID, post.PostID)
	require.NoError(t, err)
	assert.False(t, liked)

	isLiked, err = posts.IsLikedBy(ctx, alice.UserID, post.PostID)
	require.NoError(t, err)
	assert.False(t, isLiked)

	count, err = posts.LikeCount(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestToggleLikeIsIdempotentPerUser(t *testing.T) {
	users, posts := newTestRepos(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	bob, err := users.Register(ctx, "bob", "pw")
	require.NoError(t, err)
	post, err := posts.CreatePost(ctx, alice.UserID, "hello")
	require.NoError(t, err)

	_, err = posts.ToggleLike(ctx, alice.UserID, post.PostID)
	require.NoError(t, err)
	_, err = posts.ToggleLike(ctx, bob.UserID, post.PostID)
	require.NoError(t, err)

	count, err := posts.LikeCount(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Alice un-liking leaves Bob's like alone.
	liked, err := posts.ToggleLike(ctx, alice.UserID, post.PostID)
	require.NoError(t, err)
	assert.False(t, liked)

	count, err = posts.LikeCount(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	isLiked, err := posts.IsLikedBy(ctx, bob.UserID, post.PostID)
	require.NoError(t, err)
	assert.True(t, isLiked)
}

func TestDeletePostOwnerOnly(t *testing.T) {
	users, posts := newTestRepos(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	bob, err := users.Register(ctx, "bob", "pw")
	require.NoError(t, err)
	post, err := posts.CreatePost(ctx, alice.UserID, "mine")
	require.NoError(t, err)

	deleted, err := posts.DeletePost(ctx, post.PostID, bob.UserID)
	require.NoError(t, err)
	assert.False(t, deleted, "only the owner can delete")

	got, err := posts.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	deleted, err = posts.DeletePost(ctx, post.PostID, alice.UserID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err = posts.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Nil(t, got)

	deleted, err = posts.DeletePost(ctx, post.PostID, alice.UserID)
	require.NoError(t, err)
	assert.False(t, deleted, "already deleted")
}

func TestDeletePostCascadesLikes(t *testing.T) {
	users, posts := newTestRepos(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	bob, err := users.Register(ctx, "bob", "pw")
	require.NoError(t, err)

	doomed, err := posts.CreatePost(ctx, alice.UserID, "doomed")
	require.NoError(t, err)
	kept, err := posts.CreatePost(ctx, alice.UserID, "kept")
	require.NoError(t, err)

	for _, u := range []string{alice.UserID, bob.UserID} {
		_, err = posts.ToggleLike(ctx, u, doomed.PostID)
		require.NoError(t, err)
	}
	_, err = posts.ToggleLike(ctx, bob.UserID, kept.PostID)
	require.NoError(t, err)

	deleted, err := posts.DeletePost(ctx, doomed.PostID, alice.UserID)
	require.NoError(t, err)
	require.True(t, deleted)

	count, err := posts.LikeCount(ctx, doomed.PostID)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "likes of the deleted post are removed")

	count, err = posts.LikeCount(ctx, kept.PostID)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "other posts keep their likes")
}

// Walks a full session: two users sign up, post, like and unlike each other's
// posts, and one deletes a post, checking the feed after each step.
func TestFeedScenario(t *testing.T) {
	users, posts := newTestRepos(t)
	ctx := context.Background()

	alice, err := users.Register(ctx, "alice", "pw-a")
	require.NoError(t, err)
	bob, err := users.Register(ctx, "bob", "pw-b")
	require.NoError(t, err)

	aPost, err := posts.CreatePost(ctx, alice.UserID, "hello from alice")
	require.NoError(t, err)
	bPost, err := posts.CreatePost(ctx, bob.UserID, "hello from bob")
	require.NoError(t, err)

	_, err = posts.ToggleLike(ctx, alice.UserID, bPost.PostID)
	require.NoError(t, err)
	_, err = posts.ToggleLike(ctx, bob.UserID, aPost.PostID)
	require.NoError(t, err)
	_, err = posts.ToggleLike(ctx, bob.UserID, bPost.PostID)
	require.NoError(t, err)

	feed, err := posts.GetFeed(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	// Bob's post is newer, carries two likes, and Alice likes it.
	assert.Equal(t, bPost.PostID, feed[0].PostID)
	assert.Equal(t, "bob", feed[0].Username)
	assert.Equal(t, 2, feed[0].LikeCount)
	assert.True(t, feed[0].Liked)

	assert.Equal(t, aPost.PostID, feed[1].PostID)
	assert.Equal(t, 1, feed[1].LikeCount)
	assert.False(t, feed[1].Liked, "alice did not like her own post")

	// Alice withdraws her like of Bob's post.
	_, err = posts.ToggleLike(ctx, alice.UserID, bPost.PostID)
	require.NoError(t, err)

	feed, err = posts.GetFeed(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, feed[0].LikeCount)
	assert.False(t, feed[0].Liked)

	// Bob deletes his post; only Alice's remains.
	deleted, err := posts.DeletePost(ctx, bPost.PostID, bob.UserID)
	require.NoError(t, err)
	require.True(t, deleted)

	feed, err = posts.GetFeed(ctx, bob.UserID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, aPost.PostID, feed[0].PostID)
	assert.True(t, feed[0].Liked, "bob still likes alice's post")
}

// Repositories read the tables from disk on every call, so state written by
// one instance is visible to a fresh instance over the same data directory.
func TestPersistenceAcrossInstances(t *testing.T) {
	dataDir := t.TempDir()
	st := store.New(nil)
	ctx := context.Background()

	users1, err := NewUserDirectory(st, dataDir)
	require.NoError(t, err)
	posts1, err := NewPostRepository(st, dataDir, users1)
	require.NoError(t, err)

	alice, err := users1.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	post, err := posts1.CreatePost(ctx, alice.UserID, "durable")
	require.NoError(t, err)
	_, err = posts1.ToggleLike(ctx, alice.UserID, post.PostID)
	require.NoError(t, err)

	users2, err := NewUserDirectory(st, dataDir)
	require.NoError(t, err)
	posts2, err := NewPostRepository(st, dataDir, users2)
	require.NoError(t, err)

	auth, err := users2.Authenticate(ctx, "alice", "pw")
	require.NoError(t, err)
	require.NotNil(t, auth)

	feed, err := posts2.GetFeed(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "durable", feed[0].Content)
	assert.Equal(t, 1, feed[0].LikeCount)
	assert.True(t, feed[0].Liked)
}
