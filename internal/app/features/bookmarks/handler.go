package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	bookmarkstore "github.com/dalemusser/markloft/internal/app/store/bookmarks"
	"github.com/dalemusser/markloft/internal/app/system/auth"
	"github.com/dalemusser/markloft/internal/app/system/respond"
	"github.com/dalemusser/markloft/internal/app/system/stamp"
	"github.com/dalemusser/markloft/internal/app/system/timeouts"
	"github.com/dalemusser/markloft/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Handler serves the bookmark endpoints. Every route is behind the
// bearer middleware, so auth.CurrentUser is always populated.
type Handler struct {
	Bookmarks    *bookmarkstore.Store
	Log          *zap.Logger
	ExposeErrors bool
}

// NewHandler constructs a bookmarks Handler.
func NewHandler(bookmarks *bookmarkstore.Store, logger *zap.Logger, exposeErrors bool) *Handler {
	return &Handler{
		Bookmarks:    bookmarks,
		Log:          logger,
		ExposeErrors: exposeErrors,
	}
}

// bookmarkPayload is the bookmark object carried in responses.
// Position is a pointer so legacy records without one serialize as
// null rather than 0.
type bookmarkPayload struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Favicon   string `json:"favicon"`
	Position  *int   `json:"position"`
	GroupID   string `json:"groupId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func payloadFor(b models.Bookmark) bookmarkPayload {
	return bookmarkPayload{
		ID:        b.ID,
		Title:     b.Title,
		URL:       b.URL,
		Favicon:   b.Favicon,
		Position:  b.Position,
		GroupID:   b.GroupID,
		CreatedAt: stamp.Format(b.CreatedAt),
		UpdatedAt: stamp.Format(b.UpdatedAt),
	}
}

func payloadList(items []models.Bookmark) []bookmarkPayload {
	out := make([]bookmarkPayload, 0, len(items))
	for _, b := range items {
		out = append(out, payloadFor(b))
	}
	return out
}

// createRequest accepts both the current field names and the legacy
// name/link aliases older clients still send.
type createRequest struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
	Link    string `json:"link"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// HandleCreate handles POST /bookmarks. The new bookmark lands at the
// end of the group's display order.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentUser(r)

	var req createRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	title := firstNonEmpty(strings.TrimSpace(req.Title), strings.TrimSpace(req.Name))
	url := firstNonEmpty(strings.TrimSpace(req.URL), strings.TrimSpace(req.Link))
	groupID := strings.TrimSpace(req.GroupID)

	if title == "" || url == "" || groupID == "" {
		respond.MissingFields(w, respond.MsgAllFieldsRequired)
		return
	}

	// Long deadline: creation may wait on favicon scraping.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	bm, err := h.Bookmarks.Create(ctx, claims.UserID, groupID, title, url)
	if err != nil {
		h.Log.Error("bookmark create failed", zap.Error(err),
			zap.String("user_id", claims.UserID), zap.String("group_id", groupID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Status:  respond.Success,
		Data:    map[string]any{"bookmark": payloadFor(bm)},
	})
}

// updateRequest accepts both the current field names and the legacy
// group_id/id aliases.
type updateRequest struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	GroupID    string `json:"groupId"`
	BookmarkID string `json:"bookmarkId"`
	Name       string `json:"name"`
	Link       string `json:"link"`
	LegacyGID  string `json:"group_id"`
	LegacyID   string `json:"id"`
}

// HandleUpdate handles PUT /bookmarks. When the claimed group differs
// from where the bookmark actually lives, the update degrades into a
// cross-group move appended to the destination.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentUser(r)

	var req updateRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	title := firstNonEmpty(strings.TrimSpace(req.Title), strings.TrimSpace(req.Name))
	url := firstNonEmpty(strings.TrimSpace(req.URL), strings.TrimSpace(req.Link))
	groupID := firstNonEmpty(strings.TrimSpace(req.GroupID), strings.TrimSpace(req.LegacyGID))
	bookmarkID := firstNonEmpty(strings.TrimSpace(req.BookmarkID), strings.TrimSpace(req.LegacyID))

	if title == "" || url == "" || groupID == "" || bookmarkID == "" {
		respond.MissingFields(w, respond.MsgAllFieldsRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Bookmarks.Update(ctx, claims.UserID, groupID, bookmarkID, title, url)
	if err == bookmarkstore.ErrNotFound {
		respond.Missing(w, "Bookmark not found")
		return
	}
	if err == bookmarkstore.ErrGroupNotFound {
		respond.Missing(w, respond.MsgGroupsNotExist)
		return
	}
	if err != nil {
		h.Log.Error("bookmark update failed", zap.Error(err),
			zap.String("user_id", claims.UserID), zap.String("bookmark_id", bookmarkID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	if res.Move != nil {
		respond.JSON(w, http.StatusOK, respond.Envelope{
			Success: true,
			Status:  respond.Success,
			Message: fmt.Sprintf("Bookmark moved from %q to %q",
				res.Move.FromGroupName, res.Move.ToGroupName),
			Data: map[string]any{
				"moved":       true,
				"fromGroupId": res.Move.FromGroupID,
				"toGroupId":   res.Move.ToGroupID,
			},
		})
		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Status:  respond.Success,
		Message: "Bookmark updated in same group",
		Data:    map[string]any{"bookmark": payloadFor(res.Bookmark)},
	})
}

// HandleMove handles PATCH /bookmarks?fromGroupId=&toGroupId=&bookmarkId=&position=.
// Equal group ids reorder within the group; different ids move across
// groups with the destination renumbered.
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentUser(r)

	fromGroupID := strings.TrimSpace(query.Get(r, "fromGroupId"))
	toGroupID := strings.TrimSpace(query.Get(r, "toGroupId"))
	bookmarkID := strings.TrimSpace(query.Get(r, "bookmarkId"))
	position, posErr := strconv.Atoi(strings.TrimSpace(query.Get(r, "position")))

	if fromGroupID == "" || toGroupID == "" || bookmarkID == "" || posErr != nil {
		respond.MissingFields(w, respond.MsgFieldsAndPositionValid)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Bookmarks.Move(ctx, claims.UserID, fromGroupID, toGroupID, bookmarkID, position)
	if err == bookmarkstore.ErrGroupNotFound {
		respond.Missing(w, respond.MsgGroupsNotExist)
		return
	}
	if err == bookmarkstore.ErrNotFound {
		respond.Missing(w, respond.MsgBookmarkNotInSource)
		return
	}
	if err != nil {
		h.Log.Error("bookmark move failed", zap.Error(err),
			zap.String("user_id", claims.UserID), zap.String("bookmark_id", bookmarkID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	if !res.Moved {
		respond.OKMessage(w, fmt.Sprintf("Bookmark position updated to %d in same group", position))
		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Status:  respond.Success,
		Message: fmt.Sprintf("Bookmark moved from %q to %q at position %d",
			res.FromGroupName, res.ToGroupName, position),
		Data: map[string]any{
			"moved":       true,
			"fromGroupId": res.FromGroupID,
			"toGroupId":   res.ToGroupID,
			"position":    res.Position,
		},
	})
}

// groupSummary is the flat group entry in the all-groups listing.
type groupSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// groupedBookmarks is one group with its ordered bookmark list.
type groupedBookmarks struct {
	Group struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		CreatedAt string `json:"createdAt"`
	} `json:"group"`
	Bookmarks []bookmarkPayload `json:"bookmarks"`
}

// HandleList handles GET /bookmarks. With ?groupId= it returns that
// group's ordered list; without it, every group with its bookmarks
// plus a flat group summary.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentUser(r)

	groupID := strings.TrimSpace(query.Get(r, "groupId"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if groupID != "" {
		items, err := h.Bookmarks.List(ctx, claims.UserID, groupID)
		if err != nil {
			h.Log.Error("bookmark list failed", zap.Error(err),
				zap.String("user_id", claims.UserID), zap.String("group_id", groupID))
			respond.StoreError(w, err, h.ExposeErrors)
			return
		}
		respond.JSON(w, http.StatusOK, respond.Envelope{
			Success:   true,
			Status:    respond.Success,
			Bookmarks: payloadList(items),
		})
		return
	}

	all, err := h.Bookmarks.ListAll(ctx, claims.UserID)
	if err != nil {
		h.Log.Error("bookmark list-all failed", zap.Error(err),
			zap.String("user_id", claims.UserID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	grouped := make([]groupedBookmarks, 0, len(all))
	summaries := make([]groupSummary, 0, len(all))
	for _, gb := range all {
		var g groupedBookmarks
		g.Group.ID = gb.Group.ID
		g.Group.Name = gb.Group.Name
		g.Group.CreatedAt = stamp.Format(gb.Group.CreatedAt)
		g.Bookmarks = payloadList(gb.Bookmarks)
		grouped = append(grouped, g)
		summaries = append(summaries, groupSummary{ID: gb.Group.ID, Name: gb.Group.Name})
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success:   true,
		Status:    respond.Success,
		Bookmarks: grouped,
		Groups:    summaries,
	})
}

// HandleDelete handles DELETE /bookmarks?groupId=&bookmarkId= (legacy
// g_id/id aliases accepted). A stale groupId from an out-of-date
// client is tolerated: the store finds the bookmark wherever it lives.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentUser(r)

	groupID := firstNonEmpty(
		strings.TrimSpace(query.Get(r, "groupId")),
		strings.TrimSpace(query.Get(r, "g_id")))
	bookmarkID := firstNonEmpty(
		strings.TrimSpace(query.Get(r, "bookmarkId")),
		strings.TrimSpace(query.Get(r, "id")))

	if groupID == "" || bookmarkID == "" {
		respond.MissingFields(w, respond.MsgAllFieldsRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actualGroupID, err := h.Bookmarks.SoftDelete(ctx, claims.UserID, groupID, bookmarkID)
	if err == bookmarkstore.ErrNotFound {
		respond.Missing(w, "Bookmark not found")
		return
	}
	if err != nil {
		h.Log.Error("bookmark delete failed", zap.Error(err),
			zap.String("user_id", claims.UserID), zap.String("bookmark_id", bookmarkID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Status:  respond.Success,
		Data:    map[string]any{"groupId": actualGroupID},
	})
}
