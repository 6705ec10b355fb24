// Package indexes ensures the indexes each query path relies on.
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Each ensure* function is idempotent.
// Errors are aggregated so every problem is visible and startup can fail
// fast.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureBookmarks(ctx, db); err != nil {
		problems = append(problems, "bookmarks: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	if logger != nil {
		logger.Info("indexes ensured",
			zap.Strings("collections", []string{"users", "groups", "bookmarks"}))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	// _id is the identity provider subject, so lookups by user need no
	// extra index. Email lookup exists for support tooling only.
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email"),
		},
	})
	return err
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	// Listing reads every non-deleted group of one owner, newest first.
	_, err := db.Collection("groups").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "deleted", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("user_deleted_created"),
		},
	})
	return err
}

func ensureBookmarks(ctx context.Context, db *mongo.Database) error {
	// The ordering engine always works on the non-deleted set of one
	// (user, group); the position key lets Mongo return it presorted.
	_, err := db.Collection("bookmarks").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "group_id", Value: 1},
				{Key: "deleted", Value: 1},
				{Key: "position", Value: 1},
			},
			Options: options.Index().SetName("user_group_deleted_position"),
		},
		{
			// Stale-client fallback: locate a bookmark owned by the user
			// without knowing its current group.
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("user_bookmark"),
		},
	})
	return err
}
