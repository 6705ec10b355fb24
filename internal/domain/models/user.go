package models

import "time"

// User is the profile record kept for each authenticated account.
//
// NOTE:
//   - The document _id is the identity provider's subject (Google "sub"),
//     not a generated ObjectID. The provider owns identity; we only mirror
//     the profile fields we display.
//   - Users are created on first successful sign-in and never deleted.
type User struct {
	ID          string    `bson:"_id" json:"uid"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"display_name" json:"displayName"`
	PhotoURL    string    `bson:"photo_url" json:"photoURL"`

	CreatedAt time.Time `bson:"created_at" json:"-"`
	UpdatedAt time.Time `bson:"updated_at" json:"-"`
}
