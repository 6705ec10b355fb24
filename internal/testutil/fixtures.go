package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/markloft/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a profile record keyed by a fake provider subject.
func (f *Fixtures) CreateUser(ctx context.Context, email, name string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:          "sub-" + uuid.NewString()[:8],
		Email:       email,
		DisplayName: name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateGroup inserts a non-deleted group owned by userID.
func (f *Fixtures) CreateGroup(ctx context.Context, userID, name string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:        "GZIMD_" + uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// CreateBookmark inserts a non-deleted bookmark at the given position.
func (f *Fixtures) CreateBookmark(ctx context.Context, userID, groupID, title string, position int) models.Bookmark {
	f.t.Helper()

	now := time.Now().UTC()
	pos := position
	b := models.Bookmark{
		ID:        "BZIMD_" + uuid.NewString(),
		UserID:    userID,
		GroupID:   groupID,
		Title:     title,
		URL:       "https://example.com/" + title,
		Favicon:   "https://example.com/favicon.ico",
		Position:  &pos,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("bookmarks").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test bookmark: %v", err)
	}
	return b
}

// CreateLegacyBookmark inserts a bookmark without a position, as records
// written before ordering existed.
func (f *Fixtures) CreateLegacyBookmark(ctx context.Context, userID, groupID, title string, created time.Time) models.Bookmark {
	f.t.Helper()

	b := models.Bookmark{
		ID:        "BZIMD_" + uuid.NewString(),
		UserID:    userID,
		GroupID:   groupID,
		Title:     title,
		URL:       "https://example.com/" + title,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if _, err := f.db.Collection("bookmarks").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create legacy test bookmark: %v", err)
	}
	return b
}
