package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/markloft/internal/app/system/txn"
	"github.com/dalemusser/markloft/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when the group does not exist (or is soft
// deleted) in the caller's namespace.
var ErrNotFound = errors.New("group not found")

// GroupIDPrefix marks group document ids. The prefix is part of the wire
// contract with clients; the uuid suffix replaced an epoch-millisecond
// suffix that could collide under concurrent creates.
const GroupIDPrefix = "GZIMD_"

type Store struct {
	groups    *mongo.Collection
	bookmarks *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		groups:    db.Collection("groups"),
		bookmarks: db.Collection("bookmarks"),
	}
}

// NewID mints a group document id.
func NewID() string {
	return GroupIDPrefix + uuid.NewString()
}

// Create inserts a named group owned by userID.
func (s *Store) Create(ctx context.Context, userID, name string) (models.Group, error) {
	now := time.Now().UTC()
	g := models.Group{
		ID:        NewID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.groups.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// GetByID loads a non-deleted group in the owner's namespace.
func (s *Store) GetByID(ctx context.Context, userID, groupID string) (models.Group, error) {
	var g models.Group
	err := s.groups.FindOne(ctx, bson.M{"_id": groupID, "user_id": userID, "deleted": false}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Group{}, ErrNotFound
	}
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Rename updates the group's name.
func (s *Store) Rename(ctx context.Context, userID, groupID, name string) error {
	res, err := s.groups.UpdateOne(ctx,
		bson.M{"_id": groupID, "user_id": userID, "deleted": false},
		bson.M{"$set": bson.M{"name": name, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the owner's non-deleted groups, newest first.
func (s *Store) List(ctx context.Context, userID string) ([]models.Group, error) {
	cur, err := s.groups.Find(ctx,
		bson.M{"user_id": userID, "deleted": false},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// SoftDelete hides the group and cascades to every bookmark currently in
// it, deleted or not, in one atomic unit. Bookmark records persist; they
// are only flagged.
func (s *Store) SoftDelete(ctx context.Context, userID, groupID string) error {
	// Verify the target first so a stale id is NotFound, not a no-op.
	if _, err := s.GetByID(ctx, userID, groupID); err != nil {
		return err
	}

	now := time.Now().UTC()
	flag := bson.M{"$set": bson.M{
		"deleted":    true,
		"deleted_at": now,
		"updated_at": now,
	}}

	return txn.WithTransaction(ctx, s.groups.Database().Client(), func(ctx context.Context) error {
		res, err := s.groups.UpdateOne(ctx,
			bson.M{"_id": groupID, "user_id": userID, "deleted": false}, flag)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		_, err = s.bookmarks.UpdateMany(ctx,
			bson.M{"user_id": userID, "group_id": groupID}, flag)
		return err
	})
}
