package groups

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	groupstore "github.com/dalemusser/markloft/internal/app/store/groups"
	"github.com/dalemusser/markloft/internal/app/system/auth"
	"github.com/dalemusser/markloft/internal/app/system/respond"
	"github.com/dalemusser/markloft/internal/app/system/stamp"
	"github.com/dalemusser/markloft/internal/app/system/timeouts"
	"github.com/dalemusser/markloft/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Handler serves the bookmark-group endpoints. Every route is behind
// the bearer middleware, so auth.CurrentUser is always populated.
type Handler struct {
	Groups       *groupstore.Store
	Log          *zap.Logger
	ExposeErrors bool
}

// NewHandler constructs a groups Handler.
func NewHandler(groups *groupstore.Store, logger *zap.Logger, exposeErrors bool) *Handler {
	return &Handler{
		Groups:       groups,
		Log:          logger,
		ExposeErrors: exposeErrors,
	}
}

// groupPayload is the group object carried in responses.
type groupPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func payloadFor(g models.Group) groupPayload {
	return groupPayload{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: stamp.Format(g.CreatedAt),
	}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentUser(r)

	var req createGroupRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respond.MissingFields(w, respond.MsgAllFieldsRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	group, err := h.Groups.Create(ctx, claims.UserID, name)
	if err != nil {
		h.Log.Error("group create failed", zap.Error(err), zap.String("user_id", claims.UserID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Status:  respond.Success,
		Data:    map[string]any{"group": payloadFor(group)},
	})
}

type renameGroupRequest struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

// HandleRename handles PUT /groups.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentUser(r)

	var req renameGroupRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	groupID := strings.TrimSpace(req.GroupID)
	name := strings.TrimSpace(req.Name)
	if groupID == "" || name == "" {
		respond.MissingFields(w, respond.MsgAllFieldsRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Groups.Rename(ctx, claims.UserID, groupID, name)
	if err == groupstore.ErrNotFound {
		respond.Missing(w, "Group not found")
		return
	}
	if err != nil {
		h.Log.Error("group rename failed", zap.Error(err),
			zap.String("user_id", claims.UserID), zap.String("group_id", groupID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	respond.OKMessage(w, "Group updated successfully")
}

// HandleList handles GET /groups.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	groups, err := h.Groups.List(ctx, claims.UserID)
	if err != nil {
		h.Log.Error("group list failed", zap.Error(err), zap.String("user_id", claims.UserID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	payload := make([]groupPayload, 0, len(groups))
	for _, g := range groups {
		payload = append(payload, payloadFor(g))
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Status:  respond.Success,
		Groups:  payload,
	})
}

// HandleDelete handles DELETE /groups?groupId=. The group and every
// bookmark it holds are soft-deleted together.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentUser(r)

	groupID := strings.TrimSpace(query.Get(r, "groupId"))
	if groupID == "" {
		respond.MissingFields(w, respond.MsgAllFieldsRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Groups.SoftDelete(ctx, claims.UserID, groupID)
	if err == groupstore.ErrNotFound {
		respond.Missing(w, "Group not found")
		return
	}
	if err != nil {
		h.Log.Error("group delete failed", zap.Error(err),
			zap.String("user_id", claims.UserID), zap.String("group_id", groupID))
		respond.StoreError(w, err, h.ExposeErrors)
		return
	}

	respond.OKMessage(w, "Group and its bookmarks deleted successfully")
}
