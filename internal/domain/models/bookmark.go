package models

import "time"

// Bookmark is a saved link inside exactly one group at a time.
//
// Position is the zero-based rank of the bookmark among the non-deleted
// bookmarks of its group. Within one group those ranks are kept dense:
// exactly 0..N-1 with no duplicates and no gaps, ascending = display
// order. Soft-deleted bookmarks keep their last position value but are
// excluded from all ordering computations, so a delete can leave a gap
// among survivors until the next reorder rewrites the group.
//
// Position is a pointer because records that predate ordering have no
// position at all; listing sorts those after every positioned record.
type Bookmark struct {
	ID      string `bson:"_id" json:"id"`
	UserID  string `bson:"user_id" json:"-"`
	GroupID string `bson:"group_id" json:"groupId"`
	Title   string `bson:"title" json:"title"`
	URL     string `bson:"url" json:"url"`
	Favicon string `bson:"favicon,omitempty" json:"favicon,omitempty"`

	Position *int `bson:"position,omitempty" json:"position,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"-"`
	UpdatedAt time.Time  `bson:"updated_at" json:"-"`
	Deleted   bool       `bson:"deleted" json:"-"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
}

// HasPosition reports whether the bookmark carries an ordering rank.
func (b Bookmark) HasPosition() bool { return b.Position != nil }
