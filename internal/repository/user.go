// Package repository implements the data access layer over the flat-file
// tables: the user directory and the post repository.
package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/store"

	"github.com/google/uuid"
)

// UserDirectory defines persistence operations for users. Lookups that find
// nothing return (nil, nil); errors are reserved for validation and conflict
// failures.
type UserDirectory interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int, error)
}

type userDirectory struct {
	store *store.Store
	path  string
}

// NewUserDirectory returns a UserDirectory backed by users.csv under dataDir,
// creating the table file if needed.
func NewUserDirectory(st *store.Store, dataDir string) (UserDirectory, error) {
	path := filepath.Join(dataDir, "users.csv")
	if err := st.EnsureTable(path, models.UserColumns); err != nil {
		return nil, fmt.Errorf("ensure users table: %w", err)
	}
	return &userDirectory{store: st, path: path}, nil
}

// newUserID returns a fresh random user identifier. Random tokens replace the
// row-count-derived ids of earlier revisions, which collide under concurrent
// registration.
func newUserID() string {
	return "user_" + uuid.NewString()[:8]
}

func (d *userDirectory) Register(ctx context.Context, username, password string) (*models.User, error) {
	ctx, span := observability.TraceTableOperation(ctx, "register", "users")
	defer span.End()

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	t := d.store.Load(d.path, models.UserColumns)
	for _, row := range t.Rows {
		if row[1] == username {
			return nil, models.NewConflictError("Username already taken")
		}
	}

	user := models.User{
		UserID:    newUserID(),
		Username:  username,
		Password:  password,
		CreatedAt: time.Now().Format(models.DateLayout),
	}
	t.Rows = append(t.Rows, user.Row())
	d.store.Save(d.path, t)

	return &user, nil
}

func (d *userDirectory) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	t := d.store.Load(d.path, models.UserColumns)

	var matches []models.User
	usernameExists := false
	for _, row := range t.Rows {
		if row[1] != username {
			continue
		}
		usernameExists = true
		if row[2] == password {
			matches = append(matches, models.UserFromRow(row))
		}
	}

	// Exactly one matching row is a login; anything else is the merged
	// "invalid credentials" outcome. The distinction only reaches the logs.
	if len(matches) != 1 {
		if usernameExists {
			middleware.Logger.DebugContext(ctx, "login failed: password mismatch or duplicate rows",
				"username", username, "matches", len(matches))
		} else {
			middleware.Logger.DebugContext(ctx, "login failed: unknown username",
				"username", username)
		}
		return nil, nil
	}
	return &matches[0], nil
}

func (d *userDirectory) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	t := d.store.Load(d.path, models.UserColumns)
	for _, row := range t.Rows {
		if row[1] == username {
			user := models.UserFromRow(row)
			return &user, nil
		}
	}
	return nil, nil
}

func (d *userDirectory) GetByID(ctx context.Context, id string) (*models.User, error) {
	t := d.store.Load(d.path, models.UserColumns)
	for _, row := range t.Rows {
		if row[0] == id {
			user := models.UserFromRow(row)
			return &user, nil
		}
	}
	return nil, nil
}

func (d *userDirectory) List(ctx context.Context) ([]models.User, error) {
	t := d.store.Load(d.path, models.UserColumns)
	users := make([]models.User, 0, len(t.Rows))
	for _, row := range t.Rows {
		users = append(users, models.UserFromRow(row))
	}
	return users, nil
}

func (d *userDirectory) Count(ctx context.Context) (int, error) {
	t := d.store.Load(d.path, models.UserColumns)
	return len(t.Rows), nil
}
