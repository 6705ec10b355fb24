package models

import "time"

// Group is a user-owned named container for bookmarks (a folder).
//
// NOTE:
//   - Groups are soft-deleted only: Deleted hides the group from listings
//     but the document persists.
//   - Bookmarks are not embedded; they live in the bookmarks collection
//     keyed by (user_id, group_id).
type Group struct {
	ID     string `bson:"_id" json:"id"`
	UserID string `bson:"user_id" json:"-"`
	Name   string `bson:"name" json:"name"`

	CreatedAt time.Time  `bson:"created_at" json:"-"`
	UpdatedAt time.Time  `bson:"updated_at" json:"-"`
	Deleted   bool       `bson:"deleted" json:"-"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
}
