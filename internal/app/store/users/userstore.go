package userstore

import (
	"context"
	"time"

	"github.com/dalemusser/markloft/internal/app/system/auth"
	"github.com/dalemusser/markloft/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by identity-provider subject id.
// Returns mongo.ErrNoDocuments if the user has never signed in.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert records a successful sign-in. The first sign-in creates the
// profile record; later sign-ins only bump updated_at, so the profile
// fields reflect what the provider reported when the account was first
// seen. Users are never deleted by this system.
func (s *Store) Upsert(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	now := time.Now().UTC()

	var existing models.User
	err := s.c.FindOne(ctx, bson.M{"_id": claims.UserID}).Decode(&existing)
	if err == nil {
		_, err = s.c.UpdateByID(ctx, existing.ID, bson.M{"$set": bson.M{"updated_at": now}})
		if err != nil {
			return nil, err
		}
		existing.UpdatedAt = now
		return &existing, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	u := models.User{
		ID:          claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// A concurrent first sign-in can race the FindOne above; upsert on
	// _id keeps this a single profile either way.
	_, err = s.c.UpdateByID(ctx, u.ID,
		bson.M{"$setOnInsert": bson.M{
			"email":        u.Email,
			"display_name": u.DisplayName,
			"photo_url":    u.PhotoURL,
			"created_at":   u.CreatedAt,
		}, "$set": bson.M{"updated_at": now}},
		options.Update().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return &u, nil
}
