// Package bookmarkstore is the single source of truth for bookmark
// display order. All reorder and cross-group move operations go through
// it so the dense-position invariant is maintained in exactly one place.
package bookmarkstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dalemusser/markloft/internal/app/system/favicon"
	"github.com/dalemusser/markloft/internal/app/system/txn"
	"github.com/dalemusser/markloft/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when the bookmark is absent from the
	// claimed group (and, for operations that scan, from every group
	// the user owns).
	ErrNotFound = errors.New("bookmark not found")

	// ErrGroupNotFound is returned when a move names a source or
	// destination group that does not exist in the user's namespace.
	ErrGroupNotFound = errors.New("one or both groups do not exist")
)

// BookmarkIDPrefix marks bookmark document ids, kept for client
// compatibility; the uuid suffix replaced an epoch-millisecond suffix
// that could collide under concurrent creates.
const BookmarkIDPrefix = "BZIMD_"

type Store struct {
	c      *mongo.Collection // bookmarks
	groups *mongo.Collection // read-only: names and existence checks
	icons  favicon.Resolver
}

func New(db *mongo.Database, icons favicon.Resolver) *Store {
	return &Store{
		c:      db.Collection("bookmarks"),
		groups: db.Collection("groups"),
		icons:  icons,
	}
}

// NewID mints a bookmark document id.
func NewID() string {
	return BookmarkIDPrefix + uuid.NewString()
}

// Create appends a bookmark to the end of the group's display order.
// Favicon resolution is best effort: the resolver never errors, so a
// dead site still yields a persisted bookmark with a fallback icon.
func (s *Store) Create(ctx context.Context, userID, groupID, title, url string) (models.Bookmark, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"user_id": userID, "group_id": groupID, "deleted": false,
	})
	if err != nil {
		return models.Bookmark{}, err
	}

	now := time.Now().UTC()
	pos := int(n)
	bm := models.Bookmark{
		ID:        NewID(),
		UserID:    userID,
		GroupID:   groupID,
		Title:     title,
		URL:       url,
		Favicon:   s.icons.Resolve(ctx, url),
		Position:  &pos,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, bm); err != nil {
		return models.Bookmark{}, err
	}
	return bm, nil
}

// List returns the group's non-deleted bookmarks in display order:
// positioned records ascending, then any legacy records without a
// position, newest first.
func (s *Store) List(ctx context.Context, userID, groupID string) ([]models.Bookmark, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"user_id": userID, "group_id": groupID, "deleted": false,
	})
	if err != nil {
		return nil, err
	}
	var items []models.Bookmark
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	sortForDisplay(items)
	return items, nil
}

// GroupBookmarks pairs one group with its ordered bookmark list.
type GroupBookmarks struct {
	Group     models.Group
	Bookmarks []models.Bookmark
}

// ListAll returns, for every non-deleted group the user owns (newest
// group first), that group's ordered bookmark list.
func (s *Store) ListAll(ctx context.Context, userID string) ([]GroupBookmarks, error) {
	cur, err := s.groups.Find(ctx, bson.M{"user_id": userID, "deleted": false})
	if err != nil {
		return nil, err
	}
	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	// Newest group first, matching the group listing.
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})

	out := make([]GroupBookmarks, 0, len(groups))
	for _, g := range groups {
		items, err := s.List(ctx, userID, g.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, GroupBookmarks{Group: g, Bookmarks: items})
	}
	return out, nil
}

// Reposition moves a bookmark to target within its own group and
// rewrites the whole group's positions as one atomic batch. Targets
// past the end clamp to append.
func (s *Store) Reposition(ctx context.Context, userID, groupID, bookmarkID string, target int) error {
	items, err := s.List(ctx, userID, groupID)
	if err != nil {
		return err
	}
	ordered, ok := spliceTo(items, bookmarkID, target)
	if !ok {
		return ErrNotFound
	}
	renumber(ordered)
	return s.writePositions(ctx, userID, ordered, "", nil)
}

// MoveResult reports where a bookmark ended up, for UI feedback.
type MoveResult struct {
	BookmarkID    string
	FromGroupID   string
	FromGroupName string
	ToGroupID     string
	ToGroupName   string
	Position      int
	Moved         bool // false when the operation degraded to a same-group reorder
}

// Move relocates a bookmark from one group to another, splicing it into
// the destination's order at target and renumbering the destination
// densely. The destination rewrite and the ownership change commit as
// one atomic unit. The source group's survivors keep their positions: a
// gap may appear there and is tolerated until that group's next reorder.
// Equal group ids degrade to Reposition.
func (s *Store) Move(ctx context.Context, userID, fromGroupID, toGroupID, bookmarkID string, target int) (MoveResult, error) {
	fromName, toName, err := s.groupNames(ctx, userID, fromGroupID, toGroupID)
	if err != nil {
		return MoveResult{}, err
	}

	if fromGroupID == toGroupID {
		if err := s.Reposition(ctx, userID, fromGroupID, bookmarkID, target); err != nil {
			return MoveResult{}, err
		}
		return MoveResult{
			BookmarkID:  bookmarkID,
			FromGroupID: fromGroupID, FromGroupName: fromName,
			ToGroupID: toGroupID, ToGroupName: toName,
			Position: target,
		}, nil
	}

	var bm models.Bookmark
	err = s.c.FindOne(ctx, bson.M{
		"_id": bookmarkID, "user_id": userID, "group_id": fromGroupID, "deleted": false,
	}).Decode(&bm)
	if err == mongo.ErrNoDocuments {
		return MoveResult{}, ErrNotFound
	}
	if err != nil {
		return MoveResult{}, err
	}

	dest, err := s.List(ctx, userID, toGroupID)
	if err != nil {
		return MoveResult{}, err
	}
	bm.GroupID = toGroupID
	ordered := spliceIn(dest, bm, target)
	renumber(ordered)

	if err := s.writePositions(ctx, userID, ordered, bookmarkID, bson.M{"group_id": toGroupID}); err != nil {
		return MoveResult{}, err
	}

	return MoveResult{
		BookmarkID:  bookmarkID,
		FromGroupID: fromGroupID, FromGroupName: fromName,
		ToGroupID: toGroupID, ToGroupName: toName,
		Position: *ordered[indexOf(ordered, bookmarkID)].Position,
		Moved:    true,
	}, nil
}

// UpdateResult reports the outcome of an update, including whether it
// degraded into a cross-group move.
type UpdateResult struct {
	Bookmark models.Bookmark
	Move     *MoveResult
}

// Update rewrites title and url. The bookmark is located by id across
// all of the user's groups, so a stale client-side group id still finds
// it. A changed url re-resolves the favicon; a changed group degrades
// into a Move that keeps the bookmark's current rank as its target slot
// in the new group.
func (s *Store) Update(ctx context.Context, userID, groupID, bookmarkID, title, url string) (UpdateResult, error) {
	var bm models.Bookmark
	err := s.c.FindOne(ctx, bson.M{
		"_id": bookmarkID, "user_id": userID, "deleted": false,
	}).Decode(&bm)
	if err == mongo.ErrNoDocuments {
		return UpdateResult{}, ErrNotFound
	}
	if err != nil {
		return UpdateResult{}, err
	}

	now := time.Now().UTC()
	set := bson.M{"title": title, "url": url, "updated_at": now}
	if bm.URL != url {
		set["favicon"] = s.icons.Resolve(ctx, url)
	}

	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": bm.ID, "user_id": userID}, bson.M{"$set": set}); err != nil {
		return UpdateResult{}, err
	}
	bm.Title = title
	bm.URL = url
	if v, ok := set["favicon"].(string); ok {
		bm.Favicon = v
	}
	bm.UpdatedAt = now

	if groupID == "" || groupID == bm.GroupID {
		return UpdateResult{Bookmark: bm}, nil
	}

	// Destination differs from where the bookmark actually lives:
	// relocate, keeping its current rank as the requested slot.
	var target int
	if bm.HasPosition() {
		target = *bm.Position
	} else {
		dest, err := s.List(ctx, userID, groupID)
		if err != nil {
			return UpdateResult{}, err
		}
		target = len(dest)
	}

	res, err := s.Move(ctx, userID, bm.GroupID, groupID, bm.ID, target)
	if err != nil {
		return UpdateResult{}, err
	}
	bm.GroupID = res.ToGroupID
	bm.Position = &res.Position
	return UpdateResult{Bookmark: bm, Move: &res}, nil
}

// SoftDelete flags the bookmark deleted. When the claimed group is
// stale, the user's whole namespace is searched and the group the
// bookmark was actually found in is reported back. Repeated deletes are
// tolerated; they only refresh the timestamps.
func (s *Store) SoftDelete(ctx context.Context, userID, groupID, bookmarkID string) (actualGroupID string, err error) {
	now := time.Now().UTC()
	flag := bson.M{"$set": bson.M{
		"deleted":    true,
		"deleted_at": now,
		"updated_at": now,
	}}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": bookmarkID, "user_id": userID, "group_id": groupID}, flag)
	if err != nil {
		return "", err
	}
	if res.MatchedCount > 0 {
		return groupID, nil
	}

	// Stale client state: the bookmark may live in another group now.
	var found models.Bookmark
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": bookmarkID, "user_id": userID}, flag).Decode(&found)
	if err == mongo.ErrNoDocuments {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return found.GroupID, nil
}

// writePositions persists one group's renumbering as a single batch.
// movedID (optional) names a document that additionally receives
// movedSet, used by Move to flip group ownership inside the same unit
// so the bookmark can never be observed in both groups or neither.
func (s *Store) writePositions(ctx context.Context, userID string, ordered []models.Bookmark, movedID string, movedSet bson.M) error {
	if len(ordered) == 0 {
		return nil
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(ordered))
	for i := range ordered {
		set := bson.M{"position": i, "updated_at": now}
		if ordered[i].ID == movedID {
			for k, v := range movedSet {
				set[k] = v
			}
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": ordered[i].ID, "user_id": userID}).
			SetUpdate(bson.M{"$set": set}))
	}

	return txn.WithTransaction(ctx, s.c.Database().Client(), func(ctx context.Context) error {
		_, err := s.c.BulkWrite(ctx, writes)
		return err
	})
}

// groupNames loads both group names, erroring when either group is
// missing or deleted in the user's namespace.
func (s *Store) groupNames(ctx context.Context, userID, fromGroupID, toGroupID string) (string, string, error) {
	ids := bson.A{fromGroupID, toGroupID}
	cur, err := s.groups.Find(ctx, bson.M{
		"_id": bson.M{"$in": ids}, "user_id": userID, "deleted": false,
	})
	if err != nil {
		return "", "", err
	}
	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return "", "", err
	}

	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	fromName, okFrom := names[fromGroupID]
	toName, okTo := names[toGroupID]
	if !okFrom || !okTo {
		return "", "", ErrGroupNotFound
	}
	return fromName, toName, nil
}
